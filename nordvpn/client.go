package nordvpn

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yllada/nordvpn-gui/common"
)

// Client exposes typed operations over the nordvpn command-line
// client and keeps the Session in sync with their results.
type Client struct {
	runner  common.CommandRunner
	session *Session

	// mutGate serializes mutating commands. Queries run freely.
	mutGate sync.Mutex
}

// NewClient returns a client that talks to the installed nordvpn
// binary.
func NewClient() *Client {
	return NewClientWithRunner(NewRunner())
}

// NewClientWithRunner returns a client using a custom runner.
// Used by tests to substitute a fake process.
func NewClientWithRunner(runner common.CommandRunner) *Client {
	return &Client{
		runner:  runner,
		session: NewSession(),
	}
}

// Session returns the client's session.
func (c *Client) Session() *Session {
	return c.session
}

// run executes one command and normalizes its outcome. A non-zero
// exit with "not logged in" in the output becomes
// common.ErrNotLoggedIn; any other non-zero exit becomes
// common.ErrCommandFailed carrying the client's message.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	result, err := c.runner.Run(ctx, args...)
	if err != nil {
		return "", err
	}

	combined := result.Stdout + "\n" + result.Stderr
	if result.ExitCode != 0 {
		if containsNotLoggedIn(combined) {
			return "", common.ErrNotLoggedIn
		}
		msg := strings.TrimSpace(scrubOutput(combined))
		if msg == "" {
			msg = "exit code " + strconv.Itoa(result.ExitCode)
		}
		return "", common.WrapError(common.ErrCommandFailed, msg)
	}
	return result.Stdout, nil
}

// tryAcquire takes the mutating-command gate without blocking.
func (c *Client) tryAcquire() error {
	if !c.mutGate.TryLock() {
		return common.ErrBusy
	}
	return nil
}

// Status runs `nordvpn status` and updates the session on success.
func (c *Client) Status(ctx context.Context) (Status, error) {
	out, err := c.run(ctx, "status")
	if err != nil {
		return Status{}, err
	}

	status, err := ParseStatus(out)
	if err != nil {
		return Status{}, err
	}

	c.session.setStatus(status)
	return status, nil
}

// Account runs `nordvpn account` and updates the session on success.
func (c *Client) Account(ctx context.Context) (AccountInfo, error) {
	out, err := c.run(ctx, "account")
	if err != nil {
		return AccountInfo{}, err
	}

	info, err := ParseAccount(out)
	if err != nil {
		return AccountInfo{}, err
	}

	c.session.setAccount(info)
	return info, nil
}

// Countries runs `nordvpn countries` and returns the available
// country names.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "countries")
	if err != nil {
		return nil, err
	}
	return ParseList(out), nil
}

// Cities runs `nordvpn cities <country>`.
func (c *Client) Cities(ctx context.Context, country string) ([]string, error) {
	out, err := c.run(ctx, "cities", country)
	if err != nil {
		return nil, err
	}
	return ParseList(out), nil
}

// Groups runs `nordvpn groups` and returns the available server
// groups, e.g. P2P or Onion_Over_VPN.
func (c *Client) Groups(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "groups")
	if err != nil {
		return nil, err
	}
	return ParseList(out), nil
}

// Settings runs `nordvpn settings` and updates the session on
// success.
func (c *Client) Settings(ctx context.Context) ([]SettingToggle, error) {
	out, err := c.run(ctx, "settings")
	if err != nil {
		return nil, err
	}

	toggles := ParseSettings(out)
	c.session.setSettings(toggles)
	return toggles, nil
}

// Version returns the installed nordvpn client version.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "version")
	if err != nil {
		return "", err
	}
	return ParseVersion(out)
}

// Connect runs `nordvpn connect [target...]`. The target may be a
// country, a country followed by a city ("Germany Berlin"), a group,
// or a specific server; empty means the client picks the best server.
// On success the session is refreshed from `nordvpn status`.
func (c *Client) Connect(ctx context.Context, target string) (Status, error) {
	if err := c.tryAcquire(); err != nil {
		return Status{}, err
	}
	defer c.mutGate.Unlock()

	args := append([]string{"connect"}, strings.Fields(target)...)

	common.LogInfo("connecting to %q", target)
	if _, err := c.run(ctx, args...); err != nil {
		common.LogWarn("connect failed: %v", err)
		return Status{}, err
	}

	return c.Status(ctx)
}

// Disconnect runs `nordvpn disconnect`. On success the session is
// refreshed from `nordvpn status`.
func (c *Client) Disconnect(ctx context.Context) (Status, error) {
	if err := c.tryAcquire(); err != nil {
		return Status{}, err
	}
	defer c.mutGate.Unlock()

	common.LogInfo("disconnecting")
	if _, err := c.run(ctx, "disconnect"); err != nil {
		return Status{}, err
	}

	return c.Status(ctx)
}

// Login starts the browser login flow. It runs `nordvpn login`,
// hands the returned URL to openURL, then polls the account state
// until login completes or the context expires.
func (c *Client) Login(ctx context.Context, openURL func(url string) error) error {
	if err := c.tryAcquire(); err != nil {
		return err
	}
	defer c.mutGate.Unlock()

	out, err := c.run(ctx, "login")
	if err != nil {
		return err
	}

	if strings.Contains(strings.ToLower(out), "already logged in") {
		c.session.setLogin(LoggedIn)
		return nil
	}

	url, err := ParseLoginURL(out)
	if err != nil {
		return err
	}

	common.LogInfo("opening browser login flow")
	if err := openURL(url); err != nil {
		return common.WrapError(err, "failed to open browser")
	}

	c.session.setLogin(LoggingIn)
	return c.waitForLogin(ctx)
}

// waitForLogin polls `nordvpn account` until it reports a logged-in
// account.
func (c *Client) waitForLogin(ctx context.Context) error {
	ticker := time.NewTicker(common.LoginPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.session.setLogin(LoggedOut)
			return common.WrapError(common.ErrTimeout, "login flow")
		case <-ticker.C:
			_, err := c.Account(ctx)
			if err == nil {
				c.session.setLogin(LoggedIn)
				common.LogInfo("login completed")
				return nil
			}
			if !errors.Is(err, common.ErrNotLoggedIn) {
				common.LogDebug("login poll: %v", err)
			}
		}
	}
}

// LoginWithToken runs `nordvpn login --token <token>`.
func (c *Client) LoginWithToken(ctx context.Context, token string) error {
	if err := c.tryAcquire(); err != nil {
		return err
	}
	defer c.mutGate.Unlock()

	if _, err := c.run(ctx, "login", "--token", token); err != nil {
		return err
	}

	c.session.setLogin(LoggedIn)
	common.LogInfo("logged in with access token")
	return nil
}

// Logout runs `nordvpn logout`. On success the session is reset to
// logged out.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.tryAcquire(); err != nil {
		return err
	}
	defer c.mutGate.Unlock()

	if _, err := c.run(ctx, "logout"); err != nil {
		return err
	}

	c.session.setLogin(LoggedOut)
	common.LogInfo("logged out")
	return nil
}

// SetSetting runs `nordvpn set <name> enabled|disabled` and refreshes
// the settings on success.
func (c *Client) SetSetting(ctx context.Context, cliName string, enabled bool) error {
	if err := c.tryAcquire(); err != nil {
		return err
	}
	defer c.mutGate.Unlock()

	value := "disabled"
	if enabled {
		value = "enabled"
	}

	common.LogInfo("setting %s %s", cliName, value)
	if _, err := c.run(ctx, "set", cliName, value); err != nil {
		return err
	}

	_, err := c.Settings(ctx)
	return err
}

// Refresh re-reads status, account, and settings concurrently and
// updates the session. An account that reports logged out is not an
// error; the session just records it.
func (c *Client) Refresh(ctx context.Context) (SessionSnapshot, error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := c.Status(gctx)
		return err
	})
	g.Go(func() error {
		_, err := c.Account(gctx)
		if errors.Is(err, common.ErrNotLoggedIn) {
			c.session.setLogin(LoggedOut)
			return nil
		}
		return err
	})
	g.Go(func() error {
		_, err := c.Settings(gctx)
		if errors.Is(err, common.ErrNotLoggedIn) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return c.session.Snapshot(), err
	}
	return c.session.Snapshot(), nil
}
