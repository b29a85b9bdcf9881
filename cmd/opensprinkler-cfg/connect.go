package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/opensprinkler/internal/config"
	"github.com/muurk/opensprinkler/internal/discovery"
	"github.com/muurk/opensprinkler/internal/logging"
	"github.com/muurk/opensprinkler/internal/sprinkler"
	"github.com/muurk/opensprinkler/internal/transport"
	"github.com/muurk/opensprinkler/internal/ui"
	"github.com/muurk/opensprinkler/internal/version"
)

// Connection flags shared by every controller command
var (
	deviceIP       string
	devicePort     int
	deviceURL      string
	controllerName string
	outputFormat   string
	timeoutSecs    int
	assumeYes      bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&deviceIP, "device", "", "Controller IP address (skips discovery)")
	flags.IntVar(&devicePort, "port", sprinkler.DefaultPort, "Controller HTTP port (with --device)")
	flags.StringVar(&deviceURL, "url", "", "Controller base URL, e.g. http://os-garden.local:8080")
	flags.StringVarP(&controllerName, "controller", "c", "", "Registered controller name")
	flags.StringVar(&outputFormat, "format", "", "Output format (detailed, compact, json)")
	flags.IntVar(&timeoutSecs, "timeout", 0, "Request timeout in seconds; for scan, the discovery window")
	flags.BoolVarP(&assumeYes, "yes", "y", false, "Skip confirmation prompts")
}

// session is a resolved controller plus the password to use with it.
type session struct {
	client   *sprinkler.Client
	password string

	// name is the registry entry, empty for ad-hoc endpoints
	name     string
	entry    *config.Controller
	registry *config.Registry
}

// label identifies the controller in headers and results.
func (s *session) label() string {
	if s.entry != nil && s.entry.Nickname != "" {
		return s.entry.Nickname
	}
	if s.name != "" {
		return s.name
	}
	return s.client.BaseURL
}

// stationName prefers a local label from the registry over the
// controller-side name.
func (s *session) stationName(stations *sprinkler.StationNamesAndAttributes, sid int) string {
	return s.entry.StationLabel(sid, stations.Name(sid))
}

func loadRegistry() *config.Registry {
	reg, err := config.LoadRegistry()
	if err != nil {
		logging.Warn("Failed to load registry, using defaults", zap.Error(err))
		return config.NewRegistry()
	}
	return reg
}

// connect resolves the controller and, when withPassword is set, the
// password. Passwords are normalized to their md5 form.
func connect(ctx context.Context, withPassword bool) (*session, error) {
	reg := loadRegistry()

	endpoint, name, err := resolveEndpoint(ctx, reg)
	if err != nil {
		return nil, err
	}

	client := sprinkler.NewClientWithURL(endpoint)
	if h, ok := client.Transport.(*transport.HTTP); ok {
		h.UserAgent = version.UserAgent()
	}
	if timeoutSecs > 0 {
		client.SetTimeout(time.Duration(timeoutSecs) * time.Second)
	}

	s := &session{
		client:   client,
		name:     name,
		entry:    reg.GetController(name),
		registry: reg,
	}

	if withPassword {
		pw, err := config.ResolvePassword("Controller password: ")
		if err != nil {
			return nil, err
		}
		s.password = sprinkler.NormalizePassword(pw)
	}

	logging.Debug("Using controller",
		zap.String("endpoint", endpoint),
		zap.String("name", name),
	)
	return s, nil
}

// resolveEndpoint applies the precedence: --url, --device, environment,
// registry, discovery.
func resolveEndpoint(ctx context.Context, reg *config.Registry) (endpoint, name string, err error) {
	switch {
	case deviceURL != "":
		return strings.TrimRight(deviceURL, "/"), "", nil
	case deviceIP != "":
		return sprinkler.NewClient(deviceIP, devicePort).BaseURL, "", nil
	}

	if controllerName == "" {
		if env, ok := config.EnvEndpoint(); ok {
			return strings.TrimRight(env, "/"), "", nil
		}
	}

	if name, c, ok := reg.Resolve(controllerName); ok {
		if c.Endpoint != "" {
			return c.Endpoint, name, nil
		}
		if c.LastIP != "" {
			return "http://" + c.LastIP, name, nil
		}
	}
	if controllerName != "" {
		return "", "", fmt.Errorf("controller %q is not registered; see 'opensprinkler-cfg controllers list'", controllerName)
	}

	if reg.Preferences != nil && !reg.Preferences.AutoDiscover {
		return "", "", fmt.Errorf("no controller specified. Use --url, --device or --controller")
	}
	return discoverEndpoint(ctx, reg)
}

func discoverEndpoint(ctx context.Context, reg *config.Registry) (string, string, error) {
	scanner := discovery.NewScanner()
	if reg.Preferences != nil && reg.Preferences.DiscoverTimeout > 0 {
		scanner.Timeout = time.Duration(reg.Preferences.DiscoverTimeout) * time.Second
	}

	fmt.Fprintln(os.Stderr, "No controller specified, attempting auto-discovery...")
	devices, err := scanner.ScanForDevices(ctx)
	if err != nil {
		return "", "", fmt.Errorf("discovery failed: %w", err)
	}

	switch len(devices) {
	case 0:
		return "", "", fmt.Errorf("no controllers found. Use --url or --device to specify one manually")
	case 1:
	default:
		fmt.Fprintf(os.Stderr, "Found %d controllers:\n", len(devices))
		for i, d := range devices {
			fmt.Fprintf(os.Stderr, "%d. %s (%s)\n", i+1, d.Name, d.IP)
		}
		return "", "", fmt.Errorf("multiple controllers found. Use --device or --controller to pick one")
	}

	device := devices[0]
	fmt.Fprintf(os.Stderr, "Found controller: %s (%s)\n\n", device.Name, device.IP)

	if reg.GetController(device.Name) == nil {
		reg.AddController(device.Name, device.BaseURL())
	}
	reg.UpdateControllerLastSeen(device.Name, device.IP)
	if err := reg.Save(); err != nil {
		logging.Warn("Failed to save registry", zap.Error(err))
	}
	return device.BaseURL(), device.Name, nil
}

// format returns the effective output format: flag, then preference.
func format(reg *config.Registry) string {
	if outputFormat != "" {
		return outputFormat
	}
	if reg != nil && reg.Preferences != nil && reg.Preferences.OutputFormat != "" {
		return reg.Preferences.OutputFormat
	}
	return config.FormatDetailed
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// confirm asks for phrase unless --yes was given.
func confirm(title string, warnings []string, phrase string) bool {
	if assumeYes {
		return true
	}
	return ui.Confirm(os.Stdin, os.Stdout, title, warnings, phrase)
}

// readFailed prints a failure box for a read operation.
func readFailed(title string, err error) error {
	ui.NewPrinter(nil).PrintError(title, err)
	return &reportedError{err: err}
}

// runCommand prints a header, sends one write operation and prints its
// result. A rejected command is returned as a *sprinkler.CommandError.
func runCommand(cmd *cobra.Command, s *session, title, path string, params map[string]string,
	send func(ctx context.Context) (*sprinkler.CommandResult, error)) error {
	if format(s.registry) == config.FormatJSON {
		res, err := send(cmd.Context())
		if err != nil {
			return err
		}
		if err := printJSON(map[string]any{
			"path":    path,
			"result":  int(res.Code),
			"message": res.Message(),
		}); err != nil {
			return err
		}
		if err := res.Err(); err != nil {
			return &reportedError{err: err}
		}
		return nil
	}

	printer := ui.NewPrinter(nil)
	if params == nil {
		params = map[string]string{}
	}
	params["controller"] = s.label()
	printer.PrintHeader(title, path, params)

	res, err := send(cmd.Context())
	if err != nil {
		printer.PrintError(title, err)
		return &reportedError{err: err}
	}

	printer.PrintResult(ui.NewCommandResult(title, res).AddDetail("Result", res.String()))
	if err := res.Err(); err != nil {
		return &reportedError{err: err}
	}
	return nil
}
