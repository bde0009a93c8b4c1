package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yllada/nordvpn-gui/nordvpn"
)

func testModel() Model {
	return NewModel(nordvpn.NewClient(), "test")
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModelCursorMovement(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(countriesMsg{"Albania", "Germany", "Poland"})
	m = updated.(Model)

	updated, _ = m.Update(keyRune('j'))
	m = updated.(Model)
	if m.list.Index() != 1 {
		t.Errorf("index = %d, want 1", m.list.Index())
	}

	updated, _ = m.Update(keyRune('j'))
	m = updated.(Model)
	updated, _ = m.Update(keyRune('j'))
	m = updated.(Model)
	if m.list.Index() != 2 {
		t.Errorf("index = %d, want clamped at 2", m.list.Index())
	}

	updated, _ = m.Update(keyRune('k'))
	m = updated.(Model)
	if m.list.Index() != 1 {
		t.Errorf("index = %d, want 1", m.list.Index())
	}
}

func TestModelStatusMsgUpdatesView(t *testing.T) {
	m := testModel()
	status := nordvpn.Status{
		State:  nordvpn.StateConnected,
		Server: nordvpn.ServerRef{Country: "US", ID: "1234"},
		IP:     "198.51.100.7",
	}

	updated, _ := m.Update(statusMsg(status))
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "US #1234") {
		t.Errorf("view should show the server, got:\n%s", view)
	}
}

func TestModelConnectUsesSelection(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(countriesMsg{"Albania", "Germany"})
	m = updated.(Model)

	updated, _ = m.Update(keyRune('j'))
	m = updated.(Model)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("enter on a selection should start a connect")
	}
	if !m.busy {
		t.Error("busy should be set while the connect runs")
	}
	if item, _ := m.list.SelectedItem().(countryItem); string(item) != "Germany" {
		t.Errorf("selected = %q, want Germany", string(item))
	}
}

func TestModelBusyBlocksActions(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(countriesMsg{"Germany"})
	m = updated.(Model)
	m.busy = true

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("no command should start while busy")
	}
}

func TestModelActionDoneClearsBusy(t *testing.T) {
	m := testModel()
	m.busy = true

	updated, _ := m.Update(actionDoneMsg{
		status: nordvpn.Status{State: nordvpn.StateConnected},
	})
	m = updated.(Model)

	if m.busy {
		t.Error("busy should clear after the action finishes")
	}
	if m.status.State != nordvpn.StateConnected {
		t.Errorf("status = %v, want Connected", m.status.State)
	}
}

func TestModelQuit(t *testing.T) {
	m := testModel()
	_, cmd := m.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("q should produce a quit command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("command = %v, want tea.Quit", msg)
	}
}

func TestModelCountriesResetCursor(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(countriesMsg{"Albania", "Germany", "Poland"})
	m = updated.(Model)
	updated, _ = m.Update(keyRune('j'))
	m = updated.(Model)
	updated, _ = m.Update(keyRune('j'))
	m = updated.(Model)

	updated, _ = m.Update(countriesMsg{"Albania"})
	m = updated.(Model)
	if m.list.Index() != 0 {
		t.Errorf("index = %d, want reset to 0", m.list.Index())
	}
}

func TestModelFilterCapturesActionKeys(t *testing.T) {
	m := testModel()
	updated, _ := m.Update(countriesMsg{"Albania", "Germany", "Poland"})
	m = updated.(Model)

	updated, _ = m.Update(keyRune('/'))
	m = updated.(Model)
	if m.list.FilterState() != list.Filtering {
		t.Fatalf("FilterState = %v, want Filtering", m.list.FilterState())
	}

	// While typing a filter, action letters are filter input, not
	// commands.
	updated, _ = m.Update(keyRune('d'))
	m = updated.(Model)
	if m.busy {
		t.Error("d while filtering must not start a disconnect")
	}
	if m.list.FilterState() != list.Filtering {
		t.Errorf("FilterState = %v, want still Filtering", m.list.FilterState())
	}
}

func TestCountryItemFilterValue(t *testing.T) {
	if got := countryItem("United_States").FilterValue(); got != "United States" {
		t.Errorf("FilterValue() = %q, want United States", got)
	}
}
