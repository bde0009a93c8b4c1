// Package nordvpn wraps the official nordvpn command-line client.
//
// The package never talks to NordVPN servers directly. Every operation
// spawns one `nordvpn` child process, waits for it to exit, and parses
// its stdout into typed results. Session state only changes after a
// command completes successfully; failed or timed-out commands leave
// the session untouched.
//
// The main entry point is Client:
//
//	client := nordvpn.NewClient()
//	status, err := client.Status(ctx)
//	if errors.Is(err, common.ErrNotLoggedIn) {
//	    // Start the login flow
//	}
//
// At most one mutating command (connect, disconnect, login, logout,
// set) runs at a time. Concurrent mutating calls fail fast with
// common.ErrBusy instead of queueing.
package nordvpn
