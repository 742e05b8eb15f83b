// Package tui renders audit documents for terminal output.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/camelcase"

	"github.com/liftlens/liftlens/internal/domain"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	gradeColors = map[string]lipgloss.Color{
		"A+": success,
		"A":  success,
		"B":  lipgloss.Color("#A3E635"), // lime
		"C":  warning,
		"D":  lipgloss.Color("#FB923C"), // orange
		"F":  danger,
	}

	dimStyle         = lipgloss.NewStyle().Foreground(dim)
	faintStyle       = lipgloss.NewStyle().Foreground(faint)
	passStyle        = lipgloss.NewStyle().Foreground(success)
	failStyle        = lipgloss.NewStyle().Foreground(danger)
	warnStyle        = lipgloss.NewStyle().Foreground(warning)
	criticalTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	highTagStyle     = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle     = lipgloss.NewStyle().Foreground(info)
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(fg)
	catNameStyle     = lipgloss.NewStyle().Bold(true).Foreground(fg)
	inhibitorStyle   = lipgloss.NewStyle().Foreground(info).Italic(true)
	separatorLine    = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderAudit formats a full audit document for the terminal.
func RenderAudit(doc *domain.Document) string {
	var b strings.Builder

	// ── Header ──
	grade := domain.Grade(doc.OverallScore)
	title := headerStyle.Render("liftlens")
	subtitle := dimStyle.Render("CRO Audit · " + doc.URL)
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(grade)).
		Render(fmt.Sprintf("%d / 100", doc.OverallScore))
	gradeStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(grade)).
		Render(grade)

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + gradeStyled))
	b.WriteString("\n\n")

	// ── Categories ──
	for i, key := range domain.CategoryKeys {
		renderCategory(&b, doc.LiftCategories[key])
		if i < len(domain.CategoryKeys)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	renderCriticalIssues(&b, doc.CriticalIssues)
	renderQuickWins(&b, doc.QuickWins)
	renderTests(&b, doc.Tests)

	b.WriteString("\n")
	return b.String()
}

func renderCategory(b *strings.Builder, cat domain.Category) {
	color := scoreColor(cat.Score)
	scoreText := lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprintf("%d", cat.Score))
	bar := coloredBar(cat.Score, 20)

	name := catNameStyle.Render(padRight(cat.Name, 20))
	tag := ""
	if cat.IsInhibitor {
		tag = "  " + inhibitorStyle.Render("inhibitor")
	}
	fmt.Fprintf(b, "  %s %s  %s%s\n", name, bar, scoreText, tag)

	for _, a := range cat.Assertions {
		renderAssertion(b, a)
	}
}

func renderAssertion(b *strings.Builder, a domain.Assertion) {
	var icon string
	switch a.Status {
	case domain.StatusPass:
		icon = passStyle.Render("●")
	case domain.StatusFail:
		icon = failStyle.Render("●")
	default:
		icon = warnStyle.Render("●")
	}

	name := padRight(a.Name, 28)
	detail := a.Evidence
	if a.Status != domain.StatusPass && a.Recommendation != "" {
		detail = a.Recommendation
	}
	fmt.Fprintf(b, "    %s %s %s  %s\n",
		icon, name, dimStyle.Render(string(a.Severity)), faintStyle.Render(truncate(detail, 60)))
}

func renderCriticalIssues(b *strings.Builder, issues []domain.CriticalIssue) {
	b.WriteString("  " + titleStyle.Render("Critical Issues"))
	if len(issues) == 0 {
		b.WriteString("  " + passStyle.Render("none") + "\n\n")
		return
	}
	b.WriteString("\n\n")

	for _, issue := range issues {
		tag := highTagStyle.Render("high    ")
		if issue.Impact == domain.SeverityCritical {
			tag = criticalTagStyle.Render("critical")
		}
		fmt.Fprintf(b, "    %s %s\n", tag, dimStyle.Render(issue.Category+": "+issue.Title))
	}
	b.WriteString("\n")
}

func renderQuickWins(b *strings.Builder, wins []domain.QuickWin) {
	if len(wins) == 0 {
		return
	}
	b.WriteString("  " + titleStyle.Render("Quick Wins") + "\n\n")
	for _, win := range wins {
		fmt.Fprintf(b, "    %s %s\n", passStyle.Render("▸"), win.Title)
		fmt.Fprintf(b, "      %s\n", faintStyle.Render(truncate(win.Current+" → "+win.Suggested, 70)))
	}
	b.WriteString("\n")
}

func renderTests(b *strings.Builder, tests []domain.Test) {
	if len(tests) == 0 {
		return
	}
	b.WriteString("  " + titleStyle.Render("A/B Tests") + "\n\n")
	for _, t := range tests {
		pxl := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(t.PxlScore)).
			Render(fmt.Sprintf("PXL %3d", t.PxlScore))
		fmt.Fprintf(b, "    %s  %s\n", pxl, t.Title)
		if t.Hypothesis != "" {
			fmt.Fprintf(b, "      %s\n", dimStyle.Render(truncate(t.Hypothesis, 72)))
		}
		var granted []string
		for _, key := range domain.FactorKeys {
			if t.PxlFactors.Get(key) {
				granted = append(granted, factorLabel(key))
			}
		}
		if len(granted) > 0 {
			fmt.Fprintf(b, "      %s\n", faintStyle.Render(strings.Join(granted, " · ")))
		}
	}
}

// RenderHistory formats stored audits for terminal output, most recent first.
func RenderHistory(docs []domain.Document) string {
	if len(docs) == 0 {
		return "  " + dimStyle.Render("No audit history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Audit History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, doc := range docs {
		date := doc.AnalyzedAt
		if len(date) > 10 {
			date = date[:10]
		}

		scoreStyled := lipgloss.NewStyle().
			Foreground(scoreColor(doc.OverallScore)).
			Render(fmt.Sprintf("%d/100", doc.OverallScore))

		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(date),
			scoreStyled,
			domain.Grade(doc.OverallScore),
			truncate(doc.URL, 40),
		)
		if doc.IsEdited {
			line += "  " + infoTagStyle.Render("edited")
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func coloredBar(score, width int) string {
	filled := max(0, min(score*width/100, width))
	empty := width - filled

	color := scoreColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= 80:
		return success
	case score >= 60:
		return lipgloss.Color("#A3E635") // lime
	case score >= 40:
		return warning
	default:
		return danger
	}
}

func gradeColor(grade string) lipgloss.Color {
	if c, ok := gradeColors[grade]; ok {
		return c
	}
	return fg
}

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

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
