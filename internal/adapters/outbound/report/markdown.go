// Package report renders audit documents as Markdown for sharing outside
// the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/camelcase"
	"github.com/nao1215/markdown"

	"github.com/liftlens/liftlens/internal/domain"
)

// MarkdownWriter outputs audit documents in Markdown format.
type MarkdownWriter struct {
	output io.Writer
}

func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// Write renders the full audit report.
func (w *MarkdownWriter) Write(doc *domain.Document) error {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, doc)
	w.writeScorecard(md, doc)
	w.writeCriticalIssues(md, doc)
	w.writeFindings(md, doc)
	w.writeQuickWins(md, doc)
	w.writeTests(md, doc)
	w.writeFooter(md)

	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, doc *domain.Document) {
	md.H1("CRO Audit Report")
	md.PlainText("")

	status := "Generated"
	if doc.IsEdited {
		status = "Edited " + doc.EditedAt
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", doc.URL},
			{"Analyzed", doc.AnalyzedAt},
			{"Overall Score", fmt.Sprintf("%d/100 (%s)", doc.OverallScore, domain.Grade(doc.OverallScore))},
			{"Status", status},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeScorecard(md *markdown.Markdown, doc *domain.Document) {
	md.H2("LIFT Scorecard")
	md.PlainText("")

	rows := make([][]string, 0, len(domain.CategoryKeys))
	for _, key := range domain.CategoryKeys {
		cat := doc.LiftCategories[key]
		role := "Driver"
		if cat.IsInhibitor {
			role = "Inhibitor"
		}
		passed := 0
		for _, a := range cat.Assertions {
			if a.Status == domain.StatusPass {
				passed++
			}
		}
		rows = append(rows, []string{
			cat.Name,
			strconv.Itoa(cat.Score),
			domain.Grade(cat.Score),
			fmt.Sprintf("%d/%d", passed, len(cat.Assertions)),
			role,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Score", "Grade", "Passed", "Role"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeCriticalIssues(md *markdown.Markdown, doc *domain.Document) {
	md.H2("Critical Issues")
	md.PlainText("")

	if len(doc.CriticalIssues) == 0 {
		md.Tip("No critical conversion blockers detected.")
		md.PlainText("")
		return
	}

	md.Cautionf("%d issue(s) with major conversion impact require attention.", len(doc.CriticalIssues))
	md.PlainText("")

	rows := make([][]string, len(doc.CriticalIssues))
	for i, issue := range doc.CriticalIssues {
		rows[i] = []string{issue.Category, issue.Title, string(issue.Impact)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Issue", "Impact"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, doc *domain.Document) {
	md.H2("Findings")
	md.PlainText("")

	for _, key := range domain.CategoryKeys {
		cat := doc.LiftCategories[key]
		md.H3(fmt.Sprintf("%s (%d/100)", cat.Name, cat.Score))
		md.PlainText("")

		if len(cat.Assertions) == 0 {
			md.PlainText("No assertions evaluated.")
			md.PlainText("")
			continue
		}

		rows := make([][]string, len(cat.Assertions))
		for i, a := range cat.Assertions {
			rows[i] = []string{
				a.Name,
				statusLabel(a.Status),
				string(a.Severity),
				truncateString(a.Evidence, 80),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Assertion", "Status", "Severity", "Evidence"},
			Rows:   rows,
		})
		md.PlainText("")

		for _, a := range cat.Assertions {
			if a.Recommendation != "" {
				md.Details("Fix: "+a.Name, a.Recommendation)
			}
		}
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeQuickWins(md *markdown.Markdown, doc *domain.Document) {
	md.H2("Quick Wins")
	md.PlainText("")

	if len(doc.QuickWins) == 0 {
		md.PlainText("No quick wins identified.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(doc.QuickWins))
	for i, win := range doc.QuickWins {
		rows[i] = []string{
			win.Title,
			truncateString(win.Current, 50),
			truncateString(win.Suggested, 50),
			string(win.Effort),
			string(win.Impact),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Change", "Current", "Suggested", "Effort", "Impact"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTests(md *markdown.Markdown, doc *domain.Document) {
	md.H2("Prioritized A/B Tests")
	md.PlainText("")

	if len(doc.Tests) == 0 {
		md.PlainText("No tests recommended.")
		md.PlainText("")
		return
	}

	for _, t := range doc.Tests {
		md.H3(fmt.Sprintf("#%d %s (PXL %d)", t.ID, t.Title, t.PxlScore))
		md.PlainText("")
		if t.Hypothesis != "" {
			md.Blockquote(t.Hypothesis)
			md.PlainText("")
		}

		var granted []string
		for _, key := range domain.FactorKeys {
			if t.PxlFactors.Get(key) {
				granted = append(granted, factorLabel(key))
			}
		}
		if len(granted) > 0 {
			md.PlainText("PXL factors: " + strings.Join(granted, ", "))
			md.PlainText("")
		}

		rows := make([][]string, len(t.Variants))
		for i, v := range t.Variants {
			rows[i] = []string{v.Name, v.Description}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Variant", "Description"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [liftlens](https://github.com/liftlens/liftlens)*")
}

func statusLabel(s domain.Status) string {
	switch s {
	case domain.StatusPass:
		return "✅ pass"
	case domain.StatusFail:
		return "❌ fail"
	default:
		return "⚠️ warning"
	}
}

// factorLabel turns a camelCase factor key into a readable label, e.g.
// "noticeableIn5Sec" becomes "Noticeable In 5 Sec".
func factorLabel(key domain.FactorKey) string {
	words := camelcase.Split(string(key))
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
