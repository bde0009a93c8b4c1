package nordvpn

import (
	"sync"
	"time"
)

// ConnectionState represents the tunnel state as last reported by the
// nordvpn client.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateDisconnecting
)

// String returns the string representation of the connection state.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return "Unknown"
	}
}

// LoginState represents the account state as last reported by the
// nordvpn client.
type LoginState int

const (
	LoginUnknown LoginState = iota
	LoggedOut
	LoggingIn
	LoggedIn
)

// String returns the string representation of the login state.
func (s LoginState) String() string {
	switch s {
	case LoggedOut:
		return "Logged out"
	case LoggingIn:
		return "Logging in"
	case LoggedIn:
		return "Logged in"
	default:
		return "Unknown"
	}
}

// ServerRef identifies a NordVPN server.
type ServerRef struct {
	// Country is the country code or name, e.g. "US" or "United States".
	Country string
	// City is the city name when known.
	City string
	// ID is the short server identifier, e.g. "1234" or "us1234".
	ID string
	// Hostname is the full server hostname when known,
	// e.g. "us1234.nordvpn.com".
	Hostname string
}

// Label returns a human-readable server label.
func (s ServerRef) Label() string {
	if s.Country != "" && s.ID != "" {
		return s.Country + " #" + s.ID
	}
	if s.Hostname != "" {
		return s.Hostname
	}
	return s.ID
}

// IsZero reports whether no server information is present.
func (s ServerRef) IsZero() bool {
	return s.Country == "" && s.City == "" && s.ID == "" && s.Hostname == ""
}

// Status is the parsed output of `nordvpn status`.
type Status struct {
	State      ConnectionState
	Server     ServerRef
	IP         string
	Technology string
	Protocol   string
	Transfer   string
	Uptime     string
}

// AccountInfo is the parsed output of `nordvpn account`.
type AccountInfo struct {
	Email     string
	ExpiresAt string
	Active    bool
}

// SettingToggle is one boolean setting as reported by `nordvpn settings`.
type SettingToggle struct {
	// Name is the settings key as the nordvpn client prints it,
	// e.g. "Kill Switch".
	Name string
	// CLIName is the argument passed to `nordvpn set`,
	// e.g. "killswitch".
	CLIName string
	Enabled bool
}

// Session is the application's view of the nordvpn client state.
// It is only mutated by Client after a command completes successfully,
// so it may lag reality but never reflects a failed command.
type Session struct {
	mu sync.RWMutex

	login      LoginState
	connection ConnectionState
	status     Status
	account    AccountInfo
	settings   []SettingToggle
	updatedAt  time.Time
}

// NewSession returns a session with everything unknown.
func NewSession() *Session {
	return &Session{
		login:      LoginUnknown,
		connection: StateDisconnected,
	}
}

// SessionSnapshot is an immutable copy of the session state.
type SessionSnapshot struct {
	Login      LoginState
	Connection ConnectionState
	Status     Status
	Account    AccountInfo
	Settings   []SettingToggle
	UpdatedAt  time.Time
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings := make([]SettingToggle, len(s.settings))
	copy(settings, s.settings)

	return SessionSnapshot{
		Login:      s.login,
		Connection: s.connection,
		Status:     s.status,
		Account:    s.account,
		Settings:   settings,
		UpdatedAt:  s.updatedAt,
	}
}

// Login returns the current login state.
func (s *Session) Login() LoginState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.login
}

// Connection returns the current connection state.
func (s *Session) Connection() ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connection
}

// Server returns the currently connected server, if any.
func (s *Session) Server() ServerRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Server
}

func (s *Session) setStatus(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.connection = status.State
	if status.State == StateConnected {
		// A live tunnel implies a logged-in account.
		s.login = LoggedIn
	}
	s.updatedAt = time.Now()
}

func (s *Session) setLogin(state LoginState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.login = state
	if state == LoggedOut {
		s.connection = StateDisconnected
		s.status = Status{}
		s.account = AccountInfo{}
	}
	s.updatedAt = time.Now()
}

func (s *Session) setAccount(account AccountInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
	if account.Active {
		s.login = LoggedIn
	}
	s.updatedAt = time.Now()
}

func (s *Session) setSettings(settings []SettingToggle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.updatedAt = time.Now()
}
