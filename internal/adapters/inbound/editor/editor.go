// Package editor is the interactive terminal editor for audit documents.
// It follows The Elm Architecture: the model holds the edit session, every
// keystroke maps to exactly one session operation, and the view re-renders
// from the session's working copy.
package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/liftlens/liftlens/internal/domain"
	"github.com/liftlens/liftlens/internal/domain/session"
)

type tab int

const (
	tabFindings tab = iota
	tabTests
)

// Committer persists a saved session. Satisfied by application.EditService.
type Committer interface {
	Commit(*session.Session) (*domain.Document, error)
}

type keyMap struct {
	NextTab    key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Status     key.Binding
	Severity   key.Binding
	Toggle     key.Binding
	Delete     key.Binding
	Mode       key.Binding
	Save       key.Binding
	Cancel     key.Binding
	HelpToggle key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		NextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch tab")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev factor")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next factor")),
		Status:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle status")),
		Severity:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "cycle severity")),
		Toggle:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle factor")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete assertion")),
		Mode:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "score mode")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel:     key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc/q", "cancel")),
		HelpToggle: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Status, k.Toggle, k.Save, k.Cancel, k.HelpToggle}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.Up, k.Down, k.Left, k.Right},
		{k.Status, k.Severity, k.Delete, k.Toggle, k.Mode},
		{k.Save, k.Cancel, k.HelpToggle},
	}
}

// assertionRef addresses one assertion in the flattened findings list.
type assertionRef struct {
	key domain.CategoryKey
	id  string
}

// Model is the editor state.
type Model struct {
	sess      *session.Session
	committer Committer
	keys      keyMap
	help      help.Model

	tab       tab
	findIdx   int
	testIdx   int
	factorIdx int

	status   string
	saved    *domain.Document
	quitting bool
	err      error
}

// New creates an editor over doc's session and begins editing immediately.
func New(sess *session.Session, committer Committer) Model {
	sess.Begin()
	return Model{
		sess:      sess,
		committer: committer,
		keys:      defaultKeyMap(),
		help:      help.New(),
	}
}

// Saved returns the committed document, set after a save quit.
func (m Model) Saved() *domain.Document { return m.saved }

// Err returns the commit error, set when saving failed.
func (m Model) Err() error { return m.err }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.sess.Cancel()
			m.quitting = true
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Cancel):
		m.sess.Cancel()
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Save):
		doc, err := m.committer.Commit(m.sess)
		if err != nil {
			m.err = err
			m.status = "save failed: " + err.Error()
			return m, nil
		}
		m.saved = doc
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.HelpToggle):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, keys.NextTab):
		if m.tab == tabFindings {
			m.tab = tabTests
		} else {
			m.tab = tabFindings
		}
		return m, nil

	case key.Matches(msg, keys.Mode):
		if m.sess.Mode() == session.ScoreDerived {
			m.sess.SetMode(session.ScoreOverridden)
			m.status = "scores frozen for manual override"
		} else {
			m.sess.SetMode(session.ScoreDerived)
			m.status = "scores derived automatically"
		}
		return m, nil
	}

	if m.tab == tabFindings {
		return m.handleFindingsKey(msg)
	}
	return m.handleTestsKey(msg)
}

func (m Model) handleFindingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	refs := m.assertionRefs()
	keys := m.keys

	switch {
	case key.Matches(msg, keys.Up):
		if m.findIdx > 0 {
			m.findIdx--
		}
	case key.Matches(msg, keys.Down):
		if m.findIdx < len(refs)-1 {
			m.findIdx++
		}
	case key.Matches(msg, keys.Status):
		if ref, ok := m.currentAssertion(refs); ok {
			next := nextStatus(m.lookupAssertion(ref).Status)
			m.sess.SetAssertionField(ref.key, ref.id, session.AssertionPatch{Status: &next})
			m.status = ref.id + " → " + string(next)
		}
	case key.Matches(msg, keys.Severity):
		if ref, ok := m.currentAssertion(refs); ok {
			next := nextSeverity(m.lookupAssertion(ref).Severity)
			m.sess.SetAssertionField(ref.key, ref.id, session.AssertionPatch{Severity: &next})
			m.status = ref.id + " → " + string(next)
		}
	case key.Matches(msg, keys.Delete):
		if ref, ok := m.currentAssertion(refs); ok {
			if m.sess.DeleteAssertion(ref.key, ref.id) {
				m.status = "deleted " + ref.id
				if m.findIdx > 0 {
					m.findIdx--
				}
			}
		}
	}
	return m, nil
}

func (m Model) handleTestsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tests := m.sess.Document().Tests
	keys := m.keys

	switch {
	case key.Matches(msg, keys.Up):
		if m.testIdx > 0 {
			m.testIdx--
		}
	case key.Matches(msg, keys.Down):
		if m.testIdx < len(tests)-1 {
			m.testIdx++
		}
	case key.Matches(msg, keys.Left):
		if m.factorIdx > 0 {
			m.factorIdx--
		}
	case key.Matches(msg, keys.Right):
		if m.factorIdx < len(domain.FactorKeys)-1 {
			m.factorIdx++
		}
	case key.Matches(msg, keys.Toggle):
		if m.testIdx < len(tests) {
			factor := domain.FactorKeys[m.factorIdx]
			if m.sess.ToggleTestFactor(tests[m.testIdx].ID, factor) {
				m.status = fmt.Sprintf("toggled %s on test #%d", factor, tests[m.testIdx].ID)
			}
		}
	case key.Matches(msg, keys.Delete):
		if m.testIdx < len(tests) {
			if m.sess.DeleteTest(tests[m.testIdx].ID) {
				m.status = fmt.Sprintf("deleted test #%d", tests[m.testIdx].ID)
				if m.testIdx > 0 {
					m.testIdx--
				}
			}
		}
	}
	return m, nil
}

func (m Model) assertionRefs() []assertionRef {
	doc := m.sess.Document()
	var refs []assertionRef
	for _, key := range domain.CategoryKeys {
		for _, a := range doc.LiftCategories[key].Assertions {
			refs = append(refs, assertionRef{key: key, id: a.ID})
		}
	}
	return refs
}

func (m Model) currentAssertion(refs []assertionRef) (assertionRef, bool) {
	if len(refs) == 0 || m.findIdx >= len(refs) {
		return assertionRef{}, false
	}
	return refs[m.findIdx], true
}

func (m Model) lookupAssertion(ref assertionRef) domain.Assertion {
	for _, a := range m.sess.Document().LiftCategories[ref.key].Assertions {
		if a.ID == ref.id {
			return a
		}
	}
	return domain.Assertion{}
}

func nextStatus(s domain.Status) domain.Status {
	switch s {
	case domain.StatusPass:
		return domain.StatusWarning
	case domain.StatusWarning:
		return domain.StatusFail
	default:
		return domain.StatusPass
	}
}

func nextSeverity(s domain.Severity) domain.Severity {
	switch s {
	case domain.SeverityCritical:
		return domain.SeverityHigh
	case domain.SeverityHigh:
		return domain.SeverityMedium
	case domain.SeverityMedium:
		return domain.SeverityLow
	default:
		return domain.SeverityCritical
	}
}

// ── view ──

var (
	editorTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D97706"))
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	inactiveTab      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706"))
	dimTextStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	statusBarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8B949E")).Italic(true)
	passText         = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	failText         = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	warnText         = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	doc := m.sess.Document()
	var b strings.Builder

	mode := "derived"
	if m.sess.Mode() == session.ScoreOverridden {
		mode = "overridden"
	}
	fmt.Fprintf(&b, "%s  %s  %s\n\n",
		editorTitleStyle.Render("liftlens edit"),
		dimTextStyle.Render(doc.URL),
		dimTextStyle.Render(fmt.Sprintf("score %d · mode %s", doc.OverallScore, mode)))

	findingsTab := "Findings"
	testsTab := "Tests"
	if m.tab == tabFindings {
		b.WriteString(activeTabStyle.Render(findingsTab) + "  " + inactiveTab.Render(testsTab))
	} else {
		b.WriteString(inactiveTab.Render(findingsTab) + "  " + activeTabStyle.Render(testsTab))
	}
	b.WriteString("\n\n")

	if m.tab == tabFindings {
		m.viewFindings(&b, doc)
	} else {
		m.viewTests(&b, doc)
	}

	if m.status != "" {
		b.WriteString("\n" + statusBarStyle.Render(m.status) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func (m Model) viewFindings(b *strings.Builder, doc domain.Document) {
	i := 0
	for _, key := range domain.CategoryKeys {
		cat := doc.LiftCategories[key]
		fmt.Fprintf(b, "%s %s\n", editorTitleStyle.Render(cat.Name), dimTextStyle.Render(fmt.Sprintf("%d/100", cat.Score)))
		for _, a := range cat.Assertions {
			cursor := "  "
			if i == m.findIdx {
				cursor = cursorStyle.Render("> ")
			}
			fmt.Fprintf(b, "%s%s %s %s\n", cursor, statusText(a.Status), a.Name, dimTextStyle.Render(string(a.Severity)))
			i++
		}
	}
}

func (m Model) viewTests(b *strings.Builder, doc domain.Document) {
	for i, t := range doc.Tests {
		cursor := "  "
		if i == m.testIdx {
			cursor = cursorStyle.Render("> ")
		}
		fmt.Fprintf(b, "%s#%d %s %s\n", cursor, t.ID, t.Title, dimTextStyle.Render(fmt.Sprintf("PXL %d", t.PxlScore)))
		if i == m.testIdx {
			var cells []string
			for fi, factor := range domain.FactorKeys {
				mark := "○"
				if t.PxlFactors.Get(factor) {
					mark = "●"
				}
				cell := mark + " " + string(factor)
				if fi == m.factorIdx {
					cell = cursorStyle.Render(cell)
				} else {
					cell = dimTextStyle.Render(cell)
				}
				cells = append(cells, cell)
			}
			fmt.Fprintf(b, "    %s\n", strings.Join(cells, "  "))
		}
	}
}

func statusText(s domain.Status) string {
	switch s {
	case domain.StatusPass:
		return passText.Render("pass")
	case domain.StatusFail:
		return failText.Render("fail")
	default:
		return warnText.Render("warn")
	}
}
