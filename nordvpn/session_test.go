package nordvpn

import "testing"

func TestConnectionStateString(t *testing.T) {
	tests := []struct {
		state    ConnectionState
		expected string
	}{
		{StateDisconnected, "Disconnected"},
		{StateConnecting, "Connecting"},
		{StateConnected, "Connected"},
		{StateDisconnecting, "Disconnecting"},
		{ConnectionState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestServerRefLabel(t *testing.T) {
	tests := []struct {
		name     string
		ref      ServerRef
		expected string
	}{
		{
			name:     "country and id",
			ref:      ServerRef{Country: "US", ID: "1234"},
			expected: "US #1234",
		},
		{
			name:     "hostname only",
			ref:      ServerRef{Hostname: "us1234.nordvpn.com"},
			expected: "us1234.nordvpn.com",
		},
		{
			name:     "id only",
			ref:      ServerRef{ID: "us1234"},
			expected: "us1234",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Label(); got != tt.expected {
				t.Errorf("Label() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSessionSnapshotIsolation(t *testing.T) {
	session := NewSession()
	session.setSettings([]SettingToggle{{Name: "Kill Switch", CLIName: "killswitch"}})

	snap := session.Snapshot()
	snap.Settings[0].Enabled = true

	if session.Snapshot().Settings[0].Enabled {
		t.Error("mutating a snapshot must not affect the session")
	}
}

func TestSessionLogoutResetsConnection(t *testing.T) {
	session := NewSession()
	session.setStatus(Status{State: StateConnected, Server: ServerRef{Country: "US", ID: "1234"}})

	if session.Login() != LoggedIn {
		t.Fatal("a connected status implies a logged-in account")
	}

	session.setLogin(LoggedOut)

	snap := session.Snapshot()
	if snap.Connection != StateDisconnected {
		t.Errorf("Connection = %v, want Disconnected", snap.Connection)
	}
	if !snap.Status.Server.IsZero() {
		t.Errorf("Server = %+v, want zero", snap.Status.Server)
	}
}
