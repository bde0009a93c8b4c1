package nordvpn

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yllada/nordvpn-gui/common"
)

// fakeRunner replays canned results keyed by the first argument.
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]common.CommandResult
	errs    map[string]error
	calls   []string
	argLog  [][]string

	// blockCh, when set, makes Run wait until the channel is closed.
	blockCh chan struct{}
	// enteredCh is closed the first time Run starts blocking.
	enteredCh chan struct{}
	enterOnce sync.Once
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		results: make(map[string]common.CommandResult),
		errs:    make(map[string]error),
	}
}

func (f *fakeRunner) stub(command string, result common.CommandResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[command] = result
}

func (f *fakeRunner) stubErr(command string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[command] = err
}

func (f *fakeRunner) callCount(command string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == command {
			n++
		}
	}
	return n
}

// argsFor returns the full arguments of the first call to command.
func (f *fakeRunner) argsFor(command string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, args := range f.argLog {
		if args[0] == command {
			return args
		}
	}
	return nil
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) (common.CommandResult, error) {
	f.mu.Lock()
	command := args[0]
	f.calls = append(f.calls, command)
	f.argLog = append(f.argLog, append([]string(nil), args...))
	block := f.blockCh
	result := f.results[command]
	err := f.errs[command]
	f.mu.Unlock()

	if block != nil {
		f.enterOnce.Do(func() {
			if f.enteredCh != nil {
				close(f.enteredCh)
			}
		})
		select {
		case <-block:
		case <-ctx.Done():
			return common.CommandResult{}, common.ErrTimeout
		}
	}

	if err != nil {
		return common.CommandResult{}, err
	}
	return result, nil
}

func TestClientStatusUpdatesSession(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("status", common.CommandResult{
		Stdout: "Status: Connected\nServer: US #1234\nIP: 198.51.100.7",
	})

	client := NewClientWithRunner(runner)
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	if status.State != StateConnected {
		t.Errorf("State = %v, want Connected", status.State)
	}

	snap := client.Session().Snapshot()
	if snap.Connection != StateConnected {
		t.Errorf("session Connection = %v, want Connected", snap.Connection)
	}
	if snap.Login != LoggedIn {
		t.Errorf("session Login = %v, want LoggedIn", snap.Login)
	}
	if snap.Status.Server.ID != "1234" {
		t.Errorf("session server ID = %q, want 1234", snap.Status.Server.ID)
	}
}

func TestClientFailedCommandLeavesSessionUntouched(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("status", common.CommandResult{
		Stdout: "Status: Connected\nServer: US #1234",
	})
	client := NewClientWithRunner(runner)

	if _, err := client.Status(context.Background()); err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	before := client.Session().Snapshot()

	// Subsequent failure must not change anything.
	runner.stub("status", common.CommandResult{
		ExitCode: 1,
		Stderr:   "Whoops! Something went wrong.",
	})

	_, err := client.Status(context.Background())
	if !errors.Is(err, common.ErrCommandFailed) {
		t.Fatalf("error = %v, want ErrCommandFailed", err)
	}
	if !strings.Contains(err.Error(), "Whoops") {
		t.Errorf("error %q should carry the client message", err)
	}

	after := client.Session().Snapshot()
	if after.Connection != before.Connection || after.Status != before.Status {
		t.Error("session changed after a failed command")
	}
}

func TestClientUnparseableOutputLeavesSessionUntouched(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("status", common.CommandResult{Stdout: "no usable fields"})
	client := NewClientWithRunner(runner)

	before := client.Session().Snapshot()
	_, err := client.Status(context.Background())
	if !errors.Is(err, common.ErrUnexpectedOutput) {
		t.Fatalf("error = %v, want ErrUnexpectedOutput", err)
	}

	after := client.Session().Snapshot()
	if after.UpdatedAt != before.UpdatedAt {
		t.Error("session changed after unparseable output")
	}
}

func TestClientNotLoggedIn(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("account", common.CommandResult{
		ExitCode: 1,
		Stderr:   "You are not logged in.",
	})
	client := NewClientWithRunner(runner)

	_, err := client.Account(context.Background())
	if !errors.Is(err, common.ErrNotLoggedIn) {
		t.Errorf("error = %v, want ErrNotLoggedIn", err)
	}
}

func TestClientConcurrentMutationReturnsBusy(t *testing.T) {
	runner := newFakeRunner()
	runner.blockCh = make(chan struct{})
	runner.enteredCh = make(chan struct{})
	runner.stub("connect", common.CommandResult{Stdout: "You are connected to US #1234!"})
	runner.stub("status", common.CommandResult{Stdout: "Status: Connected\nServer: US #1234"})

	client := NewClientWithRunner(runner)

	doneCh := make(chan error, 1)
	go func() {
		_, err := client.Connect(context.Background(), "United_States")
		doneCh <- err
	}()

	// Wait until the first connect is inside the runner.
	select {
	case <-runner.enteredCh:
	case <-time.After(2 * time.Second):
		t.Fatal("first connect never started")
	}

	if _, err := client.Disconnect(context.Background()); !errors.Is(err, common.ErrBusy) {
		t.Errorf("second mutating call error = %v, want ErrBusy", err)
	}

	close(runner.blockCh)
	select {
	case err := <-doneCh:
		if err != nil {
			t.Errorf("first connect error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first connect never finished")
	}
}

func TestClientConnectRefreshesStatus(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("connect", common.CommandResult{Stdout: "You are connected to Germany #42!"})
	runner.stub("status", common.CommandResult{Stdout: "Status: Connected\nServer: DE #42"})

	client := NewClientWithRunner(runner)
	status, err := client.Connect(context.Background(), "Germany")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if status.Server.ID != "42" {
		t.Errorf("server ID = %q, want 42", status.Server.ID)
	}
	if runner.callCount("status") != 1 {
		t.Errorf("status called %d times, want 1", runner.callCount("status"))
	}
}

func TestClientConnectCityTarget(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("connect", common.CommandResult{Stdout: "You are connected to Germany #42!"})
	runner.stub("status", common.CommandResult{Stdout: "Status: Connected\nServer: DE #42"})

	client := NewClientWithRunner(runner)
	if _, err := client.Connect(context.Background(), "Germany Berlin"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	want := []string{"connect", "Germany", "Berlin"}
	got := runner.argsFor("connect")
	if len(got) != len(want) {
		t.Fatalf("connect args = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("connect args = %v, want %v", got, want)
		}
	}
}

func TestClientConnectFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("connect", common.CommandResult{
		ExitCode: 1,
		Stdout:   "The specified server does not exist.",
	})

	client := NewClientWithRunner(runner)
	_, err := client.Connect(context.Background(), "Atlantis")
	if !errors.Is(err, common.ErrCommandFailed) {
		t.Fatalf("error = %v, want ErrCommandFailed", err)
	}
	if runner.callCount("status") != 0 {
		t.Error("status should not run after a failed connect")
	}
	if client.Session().Connection() != StateDisconnected {
		t.Error("session should remain disconnected after a failed connect")
	}
}

func TestClientLogout(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("status", common.CommandResult{Stdout: "Status: Connected\nServer: US #1234"})
	runner.stub("logout", common.CommandResult{Stdout: "You are logged out."})

	client := NewClientWithRunner(runner)
	if _, err := client.Status(context.Background()); err != nil {
		t.Fatalf("Status() error = %v", err)
	}

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	snap := client.Session().Snapshot()
	if snap.Login != LoggedOut {
		t.Errorf("Login = %v, want LoggedOut", snap.Login)
	}
	if snap.Connection != StateDisconnected {
		t.Errorf("Connection = %v, want Disconnected", snap.Connection)
	}
}

func TestClientLoginWithToken(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("login", common.CommandResult{Stdout: "Welcome to NordVPN!"})

	client := NewClientWithRunner(runner)
	if err := client.LoginWithToken(context.Background(), "tok-abc"); err != nil {
		t.Fatalf("LoginWithToken() error = %v", err)
	}
	if client.Session().Login() != LoggedIn {
		t.Error("session should be logged in")
	}
}

func TestClientLoginAlreadyLoggedIn(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("login", common.CommandResult{Stdout: "You are already logged in."})

	client := NewClientWithRunner(runner)
	opened := false
	err := client.Login(context.Background(), func(url string) error {
		opened = true
		return nil
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if opened {
		t.Error("browser should not open when already logged in")
	}
	if client.Session().Login() != LoggedIn {
		t.Error("session should be logged in")
	}
}

func TestClientSetSetting(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("set", common.CommandResult{Stdout: "Kill Switch is set to 'enabled'."})
	runner.stub("settings", common.CommandResult{Stdout: "Kill Switch: enabled"})

	client := NewClientWithRunner(runner)
	if err := client.SetSetting(context.Background(), "killswitch", true); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}

	snap := client.Session().Snapshot()
	if len(snap.Settings) != 1 || !snap.Settings[0].Enabled {
		t.Errorf("Settings = %+v, want one enabled toggle", snap.Settings)
	}
}

func TestClientCountries(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("countries", common.CommandResult{Stdout: "Albania, Germany, United_States"})

	client := NewClientWithRunner(runner)
	countries, err := client.Countries(context.Background())
	if err != nil {
		t.Fatalf("Countries() error = %v", err)
	}
	if len(countries) != 3 || countries[2] != "United_States" {
		t.Errorf("Countries() = %v", countries)
	}
}

func TestClientRunnerErrorPassthrough(t *testing.T) {
	runner := newFakeRunner()
	runner.stubErr("status", common.ErrTimeout)

	client := NewClientWithRunner(runner)
	_, err := client.Status(context.Background())
	if !errors.Is(err, common.ErrTimeout) {
		t.Errorf("error = %v, want ErrTimeout", err)
	}
}

func TestClientRefresh(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("status", common.CommandResult{Stdout: "Status: Connected\nServer: US #1234"})
	runner.stub("account", common.CommandResult{Stdout: "Email Address: user@example.com\nVPN Service: Active (Expires on Jan 2, 2027)"})
	runner.stub("settings", common.CommandResult{Stdout: "Kill Switch: enabled"})

	client := NewClientWithRunner(runner)
	snap, err := client.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if snap.Connection != StateConnected {
		t.Errorf("Connection = %v, want Connected", snap.Connection)
	}
	if snap.Account.Email != "user@example.com" {
		t.Errorf("Account.Email = %q", snap.Account.Email)
	}
	if len(snap.Settings) != 1 {
		t.Errorf("Settings = %+v, want one toggle", snap.Settings)
	}
}

func TestClientRefreshLoggedOut(t *testing.T) {
	runner := newFakeRunner()
	runner.stub("status", common.CommandResult{Stdout: "Status: Disconnected"})
	runner.stub("account", common.CommandResult{ExitCode: 1, Stderr: "You are not logged in."})
	runner.stub("settings", common.CommandResult{Stdout: "Kill Switch: disabled"})

	client := NewClientWithRunner(runner)
	snap, err := client.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if snap.Login != LoggedOut {
		t.Errorf("Login = %v, want LoggedOut", snap.Login)
	}
}
