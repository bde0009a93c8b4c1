package nordvpn

import (
	"regexp"
	"strings"

	"github.com/yllada/nordvpn-gui/common"
)

// The nordvpn client animates a spinner by emitting frames separated
// by carriage returns. Only the text after the last \r on a line is
// the real content.
func scrubOutput(raw string) string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if idx := strings.LastIndex(line, "\r"); idx >= 0 {
			line = line[idx+1:]
		}
		line = strings.TrimSpace(line)
		if line == "" || isSpinnerFrame(line) {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isSpinnerFrame(line string) bool {
	switch line {
	case "-", "\\", "|", "/":
		return true
	}
	return false
}

// parseKeyValues splits "Key: Value" lines into a map. Lines without
// a colon are ignored.
func parseKeyValues(output string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key != "" {
			values[key] = value
		}
	}
	return values
}

// serverPattern matches server labels like "US #1234" or
// "United States #9876".
var serverPattern = regexp.MustCompile(`^(.+?)\s+#(\w+)$`)

// hostnamePattern matches hostnames like "us1234.nordvpn.com".
var hostnamePattern = regexp.MustCompile(`^([a-z]{2}\d+)\.`)

// ParseStatus parses the output of `nordvpn status`.
// Returns common.ErrUnexpectedOutput when no Status line is present.
func ParseStatus(output string) (Status, error) {
	values := parseKeyValues(scrubOutput(output))

	stateText, ok := values["Status"]
	if !ok {
		return Status{}, common.WrapError(common.ErrUnexpectedOutput, "no status line in output")
	}

	status := Status{
		State:      parseConnectionState(stateText),
		IP:         values["IP"],
		Technology: values["Current technology"],
		Protocol:   values["Current protocol"],
		Transfer:   values["Transfer"],
		Uptime:     values["Uptime"],
	}

	status.Server = parseServerRef(values)
	return status, nil
}

func parseConnectionState(text string) ConnectionState {
	switch strings.ToLower(text) {
	case "connected":
		return StateConnected
	case "connecting":
		return StateConnecting
	case "disconnecting":
		return StateDisconnecting
	default:
		return StateDisconnected
	}
}

// parseServerRef assembles a ServerRef from status fields. The client
// has printed the server as "Server: US #1234" in older releases and
// as separate Hostname/Country/City lines in newer ones; both forms
// are handled.
func parseServerRef(values map[string]string) ServerRef {
	ref := ServerRef{
		Country: values["Country"],
		City:    values["City"],
	}

	server := values["Server"]
	if server == "" {
		server = values["Current server"]
	}
	if m := serverPattern.FindStringSubmatch(server); m != nil {
		if ref.Country == "" {
			ref.Country = m[1]
		}
		ref.ID = m[2]
	}

	if hostname := values["Hostname"]; hostname != "" {
		ref.Hostname = hostname
		if ref.ID == "" {
			if m := hostnamePattern.FindStringSubmatch(hostname); m != nil {
				ref.ID = m[1]
			}
		}
	}

	return ref
}

// ParseList parses outputs of `nordvpn countries`, `nordvpn cities`
// and `nordvpn groups`. The client prints names separated by commas
// and whitespace, with underscores in place of spaces.
func ParseList(output string) []string {
	cleaned := scrubOutput(output)
	fields := strings.FieldsFunc(cleaned, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\t' || r == ' '
	})

	names := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		names = append(names, f)
	}
	return names
}

// DisplayName converts a list entry like "United_States" into a
// human-readable form.
func DisplayName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// settingCLINames maps settings keys as printed by `nordvpn settings`
// to the argument names accepted by `nordvpn set`.
var settingCLINames = map[string]string{
	"Kill Switch":            "killswitch",
	"Threat Protection Lite": "threatprotectionlite",
	"CyberSec":               "cybersec",
	"Auto-connect":           "autoconnect",
	"Notify":                 "notify",
	"Obfuscate":              "obfuscate",
	"Firewall":               "firewall",
	"Routing":                "routing",
	"Analytics":              "analytics",
	"IPv6":                   "ipv6",
	"LAN Discovery":          "lan-discovery",
}

// ParseSettings parses the output of `nordvpn settings`, keeping only
// the boolean toggles. Non-boolean values like Technology or DNS are
// skipped.
func ParseSettings(output string) []SettingToggle {
	cleaned := scrubOutput(output)
	toggles := make([]SettingToggle, 0, 8)

	for _, line := range strings.Split(cleaned, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.ToLower(strings.TrimSpace(value))

		var enabled bool
		switch value {
		case "enabled", "on", "true":
			enabled = true
		case "disabled", "off", "false":
			enabled = false
		default:
			continue
		}

		cliName, ok := settingCLINames[key]
		if !ok {
			cliName = deriveCLIName(key)
		}

		toggles = append(toggles, SettingToggle{
			Name:    key,
			CLIName: cliName,
			Enabled: enabled,
		})
	}
	return toggles
}

func deriveCLIName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "")
	return strings.ReplaceAll(name, "-", "")
}

var urlPattern = regexp.MustCompile(`https://\S+`)

// ParseLoginURL extracts the browser login URL from the output of
// `nordvpn login`. Returns common.ErrUnexpectedOutput when no URL is
// present.
func ParseLoginURL(output string) (string, error) {
	url := urlPattern.FindString(scrubOutput(output))
	if url == "" {
		return "", common.WrapError(common.ErrUnexpectedOutput, "no login URL in output")
	}
	return url, nil
}

// ParseAccount parses the output of `nordvpn account`.
func ParseAccount(output string) (AccountInfo, error) {
	cleaned := scrubOutput(output)
	if containsNotLoggedIn(cleaned) {
		return AccountInfo{}, common.ErrNotLoggedIn
	}

	values := parseKeyValues(cleaned)
	info := AccountInfo{
		Email: values["Email Address"],
	}

	service := values["VPN Service"]
	if strings.HasPrefix(service, "Active") {
		info.Active = true
		if open := strings.Index(service, "("); open >= 0 {
			expires := service[open+1:]
			expires = strings.TrimSuffix(expires, ")")
			expires = strings.TrimPrefix(expires, "Expires on ")
			info.ExpiresAt = strings.TrimSpace(expires)
		}
	}

	if info.Email == "" && !info.Active {
		return AccountInfo{}, common.WrapError(common.ErrUnexpectedOutput, "no account fields in output")
	}
	return info, nil
}

var versionPattern = regexp.MustCompile(`(\d+\.\d+[\d.]*)`)

// ParseVersion extracts the client version from `nordvpn version`
// output like "NordVPN Version 3.16.9".
func ParseVersion(output string) (string, error) {
	version := versionPattern.FindString(scrubOutput(output))
	if version == "" {
		return "", common.WrapError(common.ErrUnexpectedOutput, "no version in output")
	}
	return version, nil
}

// containsNotLoggedIn reports whether the client output indicates a
// logged-out account.
func containsNotLoggedIn(output string) bool {
	return strings.Contains(strings.ToLower(output), "not logged in")
}
