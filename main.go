// NordVPN GUI is a desktop front-end for the official nordvpn
// command-line client. It never opens tunnels itself; every action is
// delegated to the nordvpn binary and the interface re-renders from
// its output.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yllada/nordvpn-gui/cli"
	"github.com/yllada/nordvpn-gui/common"
	"github.com/yllada/nordvpn-gui/nordvpn"
	"github.com/yllada/nordvpn-gui/tui"
	"github.com/yllada/nordvpn-gui/ui"
)

// Set at build time via -ldflags.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	var (
		tuiMode     = flag.Bool("tui", false, "start the terminal interface")
		showStatus  = flag.Bool("status", false, "show the connection status")
		connect     = flag.Bool("connect", false, "connect, optionally to the target given as argument")
		disconnect  = flag.Bool("disconnect", false, "disconnect")
		countries   = flag.Bool("countries", false, "list available countries")
		cities      = flag.String("cities", "", "list the cities of a country")
		groups      = flag.Bool("groups", false, "list available server groups")
		settings    = flag.Bool("settings", false, "show client settings")
		setValue    = flag.String("set", "", "change a setting, e.g. killswitch=on")
		login       = flag.Bool("login", false, "log in via browser")
		tokenLogin  = flag.Bool("token", false, "log in with an access token")
		logout      = flag.Bool("logout", false, "log out")
		showVersion = flag.Bool("version", false, "show version information")
		showHelp    = flag.Bool("help", false, "show help")
		debug       = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if *showHelp {
		cli.PrintHelp()
		return
	}
	if *showVersion {
		fmt.Printf("%s %s (built %s)\n", common.AppName, version, buildDate)
		if err := nordvpn.CheckInstalled(); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), common.CommandTimeout)
			if v, err := nordvpn.NewClient().Version(ctx); err == nil {
				fmt.Printf("nordvpn client %s\n", v)
			}
			cancel()
		}
		return
	}

	level := common.LevelInfo
	if *debug {
		level = common.LevelDebug
	}
	if err := common.InitLogger(common.LogConfig{Level: level, EnableFile: true}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
	defer common.CloseLogger()

	if err := nordvpn.CheckInstalled(); err != nil {
		fmt.Fprintln(os.Stderr, "The nordvpn client is not installed or not on PATH.")
		fmt.Fprintln(os.Stderr, "Install it from https://nordvpn.com/download/linux/ and try again.")
		os.Exit(1)
	}

	commandMode := *showStatus || *connect || *disconnect || *countries ||
		*cities != "" || *groups || *settings || *setValue != "" ||
		*login || *tokenLogin || *logout

	switch {
	case commandMode:
		os.Exit(runCommand(commandFlags{
			status:     *showStatus,
			connect:    *connect,
			disconnect: *disconnect,
			countries:  *countries,
			cities:     *cities,
			groups:     *groups,
			settings:   *settings,
			set:        *setValue,
			login:      *login,
			tokenLogin: *tokenLogin,
			logout:     *logout,
		}))
	case *tuiMode:
		os.Exit(runTUI())
	default:
		os.Exit(runGUI())
	}
}

type commandFlags struct {
	status     bool
	connect    bool
	disconnect bool
	countries  bool
	cities     string
	groups     bool
	settings   bool
	set        string
	login      bool
	tokenLogin bool
	logout     bool
}

func runCommand(flags commandFlags) int {
	app, err := cli.NewApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer app.Close()

	ctx, cancel := signalContext()
	defer cancel()

	var runErr error
	switch {
	case flags.status:
		runErr = withTimeout(ctx, common.CommandTimeout, app.PrintStatus)
	case flags.connect:
		runErr = withTimeout(ctx, common.ConnectTimeout, func(ctx context.Context) error {
			return app.Connect(ctx, flag.Arg(0))
		})
	case flags.disconnect:
		runErr = withTimeout(ctx, common.ConnectTimeout, app.Disconnect)
	case flags.countries:
		runErr = withTimeout(ctx, common.CommandTimeout, app.PrintCountries)
	case flags.cities != "":
		runErr = withTimeout(ctx, common.CommandTimeout, func(ctx context.Context) error {
			return app.PrintCities(ctx, flags.cities)
		})
	case flags.groups:
		runErr = withTimeout(ctx, common.CommandTimeout, app.PrintGroups)
	case flags.settings:
		runErr = withTimeout(ctx, common.CommandTimeout, app.PrintSettings)
	case flags.set != "":
		name, value, found := cutSetting(flags.set)
		if !found {
			fmt.Fprintln(os.Stderr, "error: --set expects name=value, e.g. killswitch=on")
			return 2
		}
		runErr = withTimeout(ctx, common.CommandTimeout, func(ctx context.Context) error {
			return app.Set(ctx, name, value)
		})
	case flags.login:
		runErr = withTimeout(ctx, common.LoginTimeout, app.Login)
	case flags.tokenLogin:
		runErr = withTimeout(ctx, common.LoginTimeout, app.LoginWithToken)
	case flags.logout:
		runErr = withTimeout(ctx, common.CommandTimeout, app.Logout)
	}

	if runErr != nil {
		printError(runErr)
		return 1
	}
	return 0
}

func withTimeout(parent context.Context, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	return fn(ctx)
}

func cutSetting(s string) (name, value string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// printError translates sentinel errors into friendlier messages.
func printError(err error) {
	switch {
	case errors.Is(err, common.ErrNotLoggedIn):
		fmt.Fprintln(os.Stderr, "You are not logged in. Run: nordvpn-gui --login")
	case errors.Is(err, common.ErrTimeout):
		fmt.Fprintln(os.Stderr, "The nordvpn client did not respond in time.")
	case errors.Is(err, common.ErrBusy):
		fmt.Fprintln(os.Stderr, "Another command is already running.")
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Canceled.")
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runTUI() int {
	if err := tui.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func runGUI() int {
	common.LogInfo("starting %s %s", common.AppName, version)
	app, err := ui.NewApplication(version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return app.Run()
}
