package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/quantmind-br/offsync/internal/config"
)

type screen int

const (
	screenMenu screen = iota
	screenForm
	screenConfirm
	screenSaved
	screenError
)

// Options configures the editor
type Options struct {
	Config *config.Config
	// Path is shown in the header
	Path       string
	SaveFunc   func(*config.Config) error
	Accessible bool
}

// Model is the bubbletea model of the configuration editor. The last
// menu row (index len(Categories)) is the save action.
type Model struct {
	opts     Options
	original *config.Config
	values   *ConfigValues

	screen screen
	cursor int
	form   *huh.Form
	dirty  bool
	err    error
}

func NewModel(opts Options) Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	return Model{
		opts:     opts,
		original: opts.Config,
		values:   FromConfig(opts.Config),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		if m.screen == screenForm {
			return m.stepForm(msg)
		}
		return m, nil
	}

	switch m.screen {
	case screenMenu:
		return m.onMenuKey(key)
	case screenForm:
		if key.String() == "esc" {
			m.screen = screenMenu
			return m, nil
		}
		return m.stepForm(key)
	case screenConfirm:
		return m.onConfirmKey(key)
	default:
		return m, tea.Quit
	}
}

// stepForm forwards msg to the open form and returns to the menu once
// the form completes
func (m Model) stepForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		m.screen = screenMenu
		return m, nil
	}
	next, cmd := m.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.dirty = true
		m.screen = screenMenu
		return m, nil
	}
	return m, cmd
}

func (m Model) onMenuKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(Categories))
	case "s":
		return m.save()
	case "r":
		m.values = FromConfig(m.original)
		m.dirty = false
	case "q", "esc", "ctrl+c":
		if m.dirty {
			m.screen = screenConfirm
			return m, nil
		}
		return m, tea.Quit
	case "enter":
		if m.cursor == len(Categories) {
			return m.save()
		}
		return m.openForm(Categories[m.cursor].ID)
	}
	return m, nil
}

func (m Model) openForm(categoryID string) (tea.Model, tea.Cmd) {
	form := GetFormForCategory(categoryID, m.values)
	if form == nil {
		return m, nil
	}
	if m.opts.Accessible {
		form = form.WithAccessible(true)
	}
	m.form = form
	m.screen = screenForm
	return m, form.Init()
}

func (m Model) onConfirmKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(key.String()) {
	case "y":
		return m.save()
	case "n", "esc":
		return m, tea.Quit
	case "c":
		m.screen = screenMenu
	}
	return m, nil
}

func (m Model) save() (tea.Model, tea.Cmd) {
	cfg, err := m.values.ToConfig()
	if err == nil && m.opts.SaveFunc != nil {
		err = m.opts.SaveFunc(cfg)
	}
	if err != nil {
		m.err = err
		m.screen = screenError
		return m, nil
	}
	m.dirty = false
	m.screen = screenSaved
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("offsync configuration"))
	if m.opts.Path != "" {
		b.WriteString("\n" + DescriptionStyle.Render(m.opts.Path))
	}
	b.WriteString("\n\n")

	const anyKey = "\n\nPress any key to exit."
	switch m.screen {
	case screenMenu:
		b.WriteString(m.menuView())
	case screenForm:
		if m.form != nil {
			b.WriteString(m.form.View())
		}
	case screenConfirm:
		b.WriteString(confirmStyle.Render("You have unsaved changes.\n\nSave before quitting?\n\n[y] Yes  [n] No  [c] Cancel"))
	case screenSaved:
		b.WriteString(SuccessStyle.Render("Configuration saved.") + anyKey)
	case screenError:
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + anyKey)
	}
	return b.String()
}

func (m Model) menuView() string {
	var b strings.Builder

	row := func(i int, label string) {
		if i == m.cursor {
			b.WriteString(SelectedStyle.Render("> " + label))
			return
		}
		b.WriteString(UnselectedStyle.Render("  " + label))
	}

	for i, cat := range Categories {
		row(i, cat.Name)
		if i == m.cursor {
			b.WriteString(DescriptionStyle.Render("  " + cat.Description))
		}
		b.WriteString("\n")
	}

	label := "Save Configuration"
	if m.dirty {
		label += " *"
	}
	b.WriteString("\n")
	row(len(Categories), label)
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("↑/↓ navigate • enter edit • s save • r revert • q quit"))
	return b.String()
}

// Run starts the editor in the alternate screen and blocks until it exits
func Run(opts Options) error {
	_, err := tea.NewProgram(NewModel(opts), tea.WithAltScreen()).Run()
	return err
}
