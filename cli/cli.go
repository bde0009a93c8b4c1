// Package cli implements the non-graphical command mode. It mirrors a
// subset of the GUI so scripts and quick terminal checks don't need a
// display server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/yllada/nordvpn-gui/cache"
	"github.com/yllada/nordvpn-gui/common"
	"github.com/yllada/nordvpn-gui/keyring"
	"github.com/yllada/nordvpn-gui/nordvpn"
)

// App bundles the dependencies of the command mode.
type App struct {
	Client *nordvpn.Client
	Cache  *cache.Store
	Tokens common.TokenStore
}

// NewApp returns a command-mode app talking to the installed nordvpn
// binary.
func NewApp() (*App, error) {
	store, err := cache.Open()
	if err != nil {
		common.LogWarn("cache unavailable: %v", err)
		store = nil
	}
	if store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), common.CommandTimeout)
		if err := store.PruneHistory(ctx, common.HistoryRetention); err != nil {
			common.LogWarn("failed to prune connection history: %v", err)
		}
		cancel()
	}

	return &App{
		Client: nordvpn.NewClient(),
		Cache:  store,
		Tokens: keyring.NewStore(),
	}, nil
}

// Close releases resources.
func (a *App) Close() {
	if a.Cache != nil {
		a.Cache.Close()
	}
}

// PrintStatus shows the current connection state.
func (a *App) PrintStatus(ctx context.Context) error {
	status, err := a.Client.Status(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "Status:\t%s\n", status.State)
	if status.State == nordvpn.StateConnected {
		fmt.Fprintf(w, "Server:\t%s\n", status.Server.Label())
		if status.Server.Hostname != "" {
			fmt.Fprintf(w, "Hostname:\t%s\n", status.Server.Hostname)
		}
		if status.IP != "" {
			fmt.Fprintf(w, "IP:\t%s\n", status.IP)
		}
		if status.Technology != "" {
			fmt.Fprintf(w, "Technology:\t%s\n", status.Technology)
		}
		if status.Uptime != "" {
			fmt.Fprintf(w, "Uptime:\t%s\n", status.Uptime)
		}
	}
	return w.Flush()
}

// Connect connects to the given target, or the best server when the
// target is empty.
func (a *App) Connect(ctx context.Context, target string) error {
	if target == "" {
		fmt.Println("Connecting to the best available server...")
	} else {
		fmt.Printf("Connecting to %s...\n", nordvpn.DisplayName(target))
	}

	status, err := a.Client.Connect(ctx, target)
	if err != nil {
		return err
	}

	fmt.Printf("Connected to %s\n", status.Server.Label())
	a.recordConnection(target, status)
	return nil
}

func (a *App) recordConnection(target string, status nordvpn.Status) {
	if a.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), common.CommandTimeout)
	defer cancel()
	if err := a.Cache.RecordConnection(ctx, target, status.Server.ID, status.Server.Country); err != nil {
		common.LogWarn("failed to record connection: %v", err)
	}
}

// Disconnect tears down the current connection.
func (a *App) Disconnect(ctx context.Context) error {
	status, err := a.Client.Disconnect(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Status: %s\n", status.State)
	return nil
}

// PrintCountries lists the available countries. Cached data is shown
// when the client call fails.
func (a *App) PrintCountries(ctx context.Context) error {
	countries, err := a.Client.Countries(ctx)
	if err != nil {
		countries = a.cachedList(cache.KindCountries)
		if len(countries) == 0 {
			return err
		}
		fmt.Println("(cached)")
	} else if a.Cache != nil {
		if cacheErr := a.Cache.PutList(ctx, cache.KindCountries, countries); cacheErr != nil {
			common.LogWarn("failed to cache countries: %v", cacheErr)
		}
	}

	printColumns(countries)
	return nil
}

// PrintCities lists the cities of one country. Cached data is shown
// when the client call fails.
func (a *App) PrintCities(ctx context.Context, country string) error {
	cities, err := a.Client.Cities(ctx, country)
	if err != nil {
		cities = a.cachedList(cache.KindCities(country))
		if len(cities) == 0 {
			return err
		}
		fmt.Println("(cached)")
	} else if a.Cache != nil {
		if cacheErr := a.Cache.PutList(ctx, cache.KindCities(country), cities); cacheErr != nil {
			common.LogWarn("failed to cache cities: %v", cacheErr)
		}
	}

	if len(cities) == 0 {
		fmt.Printf("No cities listed for %s\n", nordvpn.DisplayName(country))
		return nil
	}
	printColumns(cities)
	return nil
}

// PrintGroups lists the available server groups. Cached data is shown
// when the client call fails.
func (a *App) PrintGroups(ctx context.Context) error {
	groups, err := a.Client.Groups(ctx)
	if err != nil {
		groups = a.cachedList(cache.KindGroups)
		if len(groups) == 0 {
			return err
		}
		fmt.Println("(cached)")
	} else if a.Cache != nil {
		if cacheErr := a.Cache.PutList(ctx, cache.KindGroups, groups); cacheErr != nil {
			common.LogWarn("failed to cache groups: %v", cacheErr)
		}
	}

	printColumns(groups)
	return nil
}

func (a *App) cachedList(kind string) []string {
	if a.Cache == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), common.CommandTimeout)
	defer cancel()
	names, err := a.Cache.GetList(ctx, kind)
	if err != nil {
		return nil
	}
	return names
}

// printColumns prints names in aligned columns, three per row.
func printColumns(names []string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for i := 0; i < len(names); i += 3 {
		end := i + 3
		if end > len(names) {
			end = len(names)
		}
		row := make([]string, 0, 3)
		for _, name := range names[i:end] {
			row = append(row, nordvpn.DisplayName(name))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// PrintSettings shows the client's boolean settings as a table.
func (a *App) PrintSettings(ctx context.Context) error {
	toggles, err := a.Client.Settings(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "SETTING\tCLI NAME\tSTATE")
	for _, tg := range toggles {
		state := "disabled"
		if tg.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", tg.Name, tg.CLIName, state)
	}
	return w.Flush()
}

// Set changes one boolean setting. Value must be on/off or
// enabled/disabled.
func (a *App) Set(ctx context.Context, name, value string) error {
	enabled, err := parseToggleValue(value)
	if err != nil {
		return err
	}

	if err := a.Client.SetSetting(ctx, name, enabled); err != nil {
		return err
	}
	fmt.Printf("%s is now %s\n", name, value)
	return nil
}

// Login runs the browser login flow, falling back to a token prompt
// when no browser can be opened.
func (a *App) Login(ctx context.Context) error {
	err := a.Client.Login(ctx, func(url string) error {
		fmt.Printf("Continue in your browser:\n  %s\n", url)
		return openBrowser(url)
	})
	if err != nil {
		return err
	}
	fmt.Println("Logged in.")
	return nil
}

// LoginWithToken reads an access token from the terminal (without
// echo) and logs in with it. The token is saved for later sessions.
func (a *App) LoginWithToken(ctx context.Context) error {
	fmt.Print("Access token: ")
	tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return common.WrapError(err, "failed to read token")
	}

	token := strings.TrimSpace(string(tokenBytes))
	if token == "" {
		return errors.New("empty token")
	}

	if err := a.Client.LoginWithToken(ctx, token); err != nil {
		return err
	}

	if err := a.Tokens.Store(token); err != nil {
		common.LogWarn("failed to save token: %v", err)
	}
	fmt.Println("Logged in.")
	return nil
}

// Logout logs out and forgets the stored token.
func (a *App) Logout(ctx context.Context) error {
	if err := a.Client.Logout(ctx); err != nil {
		return err
	}
	if err := a.Tokens.Delete(); err != nil && !errors.Is(err, common.ErrTokenNotFound) {
		common.LogWarn("failed to delete stored token: %v", err)
	}
	fmt.Println("Logged out.")
	return nil
}

// parseToggleValue converts a user-supplied on/off value.
func parseToggleValue(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "enabled", "true", "1":
		return true, nil
	case "off", "disabled", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid value %q, use on or off", value)
	}
}

// openBrowser opens a URL with the desktop's default handler.
func openBrowser(url string) error {
	return exec.Command("xdg-open", url).Start()
}

// PrintHelp shows command-mode usage.
func PrintHelp() {
	fmt.Println(`NordVPN GUI - graphical front-end for the nordvpn client

Usage:
  nordvpn-gui                 Start the graphical interface
  nordvpn-gui --tui           Start the terminal interface
  nordvpn-gui --status        Show the connection status
  nordvpn-gui --connect [t]   Connect (optionally to a country, city,
                              group, or server)
  nordvpn-gui --disconnect    Disconnect
  nordvpn-gui --countries     List available countries
  nordvpn-gui --cities c      List the cities of a country
  nordvpn-gui --groups        List available server groups
  nordvpn-gui --settings      Show client settings
  nordvpn-gui --set k=v       Change a setting, e.g. killswitch=on
  nordvpn-gui --login         Log in via browser
  nordvpn-gui --token         Log in with an access token
  nordvpn-gui --logout        Log out
  nordvpn-gui --version       Show version information
  nordvpn-gui --help          Show this help`)
}
