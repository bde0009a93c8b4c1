// Package tui implements the terminal interface, a keyboard-driven
// alternative to the GTK window for SSH sessions and terminal users.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yllada/nordvpn-gui/common"
	"github.com/yllada/nordvpn-gui/nordvpn"
)

type keyMap struct {
	Connect    key.Binding
	QuickConn  key.Binding
	Disconnect key.Binding
	Refresh    key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Connect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect to selection"),
		),
		QuickConn: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "quick connect"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "disconnect"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	connectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).Bold(true)
	disconnectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("203")).Bold(true)
	busyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).Bold(true)
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

type statusMsg nordvpn.Status
type countriesMsg []string
type errMsg struct{ err error }
type tickMsg struct{}
type actionDoneMsg struct {
	status nordvpn.Status
	err    error
}

// countryItem is one list entry. Filtering matches the display name,
// so typing "united s" finds United_States.
type countryItem string

func (i countryItem) FilterValue() string {
	return nordvpn.DisplayName(string(i))
}

// countryDelegate renders one country per line with a cursor marker.
type countryDelegate struct{}

func (countryDelegate) Height() int { return 1 }

func (countryDelegate) Spacing() int { return 0 }

func (countryDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (countryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(countryItem)
	if !ok {
		return
	}
	name := nordvpn.DisplayName(string(ci))
	if index == m.Index() {
		fmt.Fprint(w, cursorStyle.Render("> "+name))
		return
	}
	fmt.Fprint(w, "  "+name)
}

// Model is the bubbletea model for the terminal interface.
type Model struct {
	client  *nordvpn.Client
	version string
	keys    keyMap

	status nordvpn.Status
	list   list.Model

	busy    bool
	lastErr string
}

// NewModel returns a model backed by the given client.
func NewModel(client *nordvpn.Client, version string) Model {
	l := list.New(nil, countryDelegate{}, 40, 16)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return Model{
		client:  client,
		version: version,
		keys:    defaultKeyMap(),
		list:    l,
	}
}

// Run starts the terminal interface and blocks until it exits.
func Run(version string) error {
	model := NewModel(nordvpn.NewClient(), version)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.fetchCountries(), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, listHeight(msg.Height))
		return m, nil

	case statusMsg:
		m.status = nordvpn.Status(msg)
		return m, nil

	case countriesMsg:
		items := make([]list.Item, len(msg))
		for i, country := range msg {
			items[i] = countryItem(country)
		}
		cmd := m.list.SetItems(items)
		m.list.ResetSelected()
		return m, cmd

	case errMsg:
		m.lastErr = friendlyError(msg.err)
		return m, nil

	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.lastErr = friendlyError(msg.err)
		} else {
			m.lastErr = ""
			m.status = msg.status
		}
		return m, nil

	case tickMsg:
		if m.busy {
			return m, tick()
		}
		return m, tea.Batch(m.fetchStatus(), tick())

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the filter prompt is open every key is input for it,
	// including the letters bound to actions below.
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.fetchStatus(), m.fetchCountries())

	case key.Matches(msg, m.keys.Connect):
		if m.busy {
			return m, nil
		}
		item, ok := m.list.SelectedItem().(countryItem)
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, m.connect(string(item))

	case key.Matches(msg, m.keys.QuickConn):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.connect("")

	case key.Matches(msg, m.keys.Disconnect):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.disconnect()
	}

	// Navigation and the "/" filter key go to the list.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(common.AppName+" "+m.version) + "\n\n")
	b.WriteString(m.statusLine() + "\n")
	if m.lastErr != "" {
		b.WriteString(errStyle.Render(m.lastErr) + "\n")
	}
	b.WriteString("\n")

	if len(m.list.Items()) == 0 {
		b.WriteString(dimStyle.Render("Loading countries...") + "\n")
	} else {
		b.WriteString(m.list.View())
	}

	b.WriteString("\n" + dimStyle.Render(
		"up/down move | / filter | enter connect | c quick connect | d disconnect | r refresh | q quit"))
	return b.String()
}

func (m Model) statusLine() string {
	if m.busy {
		return busyStyle.Render("Working...")
	}
	switch m.status.State {
	case nordvpn.StateConnected:
		line := "Connected to " + m.status.Server.Label()
		if m.status.IP != "" {
			line += "  " + m.status.IP
		}
		return connectedStyle.Render(line)
	default:
		return disconnectedStyle.Render("Disconnected")
	}
}

// listHeight is how many rows fit under the header and above the
// footer.
func listHeight(total int) int {
	rows := total - 8
	if rows < 3 {
		rows = 3
	}
	return rows
}

func (m Model) fetchStatus() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), common.CommandTimeout)
		defer cancel()
		status, err := client.Status(ctx)
		if err != nil {
			return errMsg{err}
		}
		return statusMsg(status)
	}
}

func (m Model) fetchCountries() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), common.CommandTimeout)
		defer cancel()
		countries, err := client.Countries(ctx)
		if err != nil {
			return errMsg{err}
		}
		return countriesMsg(countries)
	}
}

func (m Model) connect(target string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), common.ConnectTimeout)
		defer cancel()
		status, err := client.Connect(ctx, target)
		return actionDoneMsg{status: status, err: err}
	}
}

func (m Model) disconnect() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), common.ConnectTimeout)
		defer cancel()
		status, err := client.Disconnect(ctx)
		return actionDoneMsg{status: status, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(common.StatusPollInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func friendlyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, common.ErrNotLoggedIn):
		return "Not logged in. Run: nordvpn-gui --login"
	case errors.Is(err, common.ErrTimeout):
		return "The nordvpn client did not respond in time."
	default:
		return fmt.Sprintf("error: %v", err)
	}
}
