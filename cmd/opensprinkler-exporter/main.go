// Opensprinkler-exporter serves Prometheus metrics for one OpenSprinkler
// controller.
//
// Every scrape of /metrics issues a single /ja request to the controller.
//
// Usage:
//
//	opensprinkler-exporter [flags]
//
// The controller and password come from flags, the environment
// (OPENSPRINKLER_ENDPOINT, OPENSPRINKLER_PASSWORD, OPENSPRINKLER_LISTEN) or a
// .env file in the working directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/opensprinkler/internal/config"
	"github.com/muurk/opensprinkler/internal/exporter"
	"github.com/muurk/opensprinkler/internal/logging"
	"github.com/muurk/opensprinkler/internal/sprinkler"
	"github.com/muurk/opensprinkler/internal/transport"
	"github.com/muurk/opensprinkler/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	listen         string
	endpoint       string
	controllerName string
	scrapeTimeout  time.Duration
	logLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "opensprinkler-exporter",
	Short: "Prometheus exporter for OpenSprinkler controllers",
	Long: `Serve Prometheus metrics for one OpenSprinkler controller.

Metrics include controller state (enabled, rain delay, sensors, queue),
per-station activity and attributes, water level, and reboot and weather
diagnostics. Each scrape reads the controller once via /ja.`,
	Example: `  # Controller and password from the environment
  OPENSPRINKLER_ENDPOINT=http://192.168.1.20 OPENSPRINKLER_PASSWORD=opendoor opensprinkler-exporter

  # Registered controller on a custom port
  opensprinkler-exporter --controller garden --listen :9100`,
	Version:      version.Version,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runExporter,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVar(&listen, "listen", "", "Listen address (default "+exporter.DefaultListen+", or "+config.ListenEnvVar+")")
	rootCmd.Flags().StringVar(&endpoint, "url", "", "Controller base URL (or "+config.EndpointEnvVar+")")
	rootCmd.Flags().StringVarP(&controllerName, "controller", "c", "", "Registered controller name")
	rootCmd.Flags().DurationVar(&scrapeTimeout, "scrape-timeout", 10*time.Second, "Timeout for each /ja request")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

func runExporter(cmd *cobra.Command, args []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	if err := logging.InitializeJSON(logLevel); err != nil {
		return err
	}
	defer logging.Sync()

	addr, err := resolveListen()
	if err != nil {
		return err
	}
	target, err := resolveEndpoint()
	if err != nil {
		return err
	}
	pw, err := config.ResolvePassword("Controller password: ")
	if err != nil {
		return err
	}

	client := sprinkler.NewClientWithURL(target)
	if h, ok := client.Transport.(*transport.HTTP); ok {
		h.UserAgent = version.UserAgent()
	}
	client.SetTimeout(scrapeTimeout)

	logging.Info("Exporter configured",
		zap.String("version", version.Full()),
		zap.String("controller", client.BaseURL),
	)

	srv := exporter.New(&exporter.Config{
		Listen:        addr,
		Endpoint:      client.BaseURL,
		Password:      sprinkler.NormalizePassword(pw),
		ScrapeTimeout: scrapeTimeout,
	}, client)
	return srv.Start(cmd.Context())
}

func resolveListen() (string, error) {
	if listen != "" {
		return listen, nil
	}
	if v := strings.TrimSpace(os.Getenv(config.ListenEnvVar)); v != "" {
		return v, nil
	}
	return exporter.DefaultListen, nil
}

// resolveEndpoint applies --url, the environment, then the registry.
func resolveEndpoint() (string, error) {
	if endpoint != "" {
		return endpoint, nil
	}
	if controllerName == "" {
		if v, ok := config.EnvEndpoint(); ok {
			return v, nil
		}
	}

	reg, err := config.LoadRegistry()
	if err != nil {
		return "", fmt.Errorf("failed to load registry: %w", err)
	}
	name, c, ok := reg.Resolve(controllerName)
	if !ok || c.Endpoint == "" {
		if controllerName != "" {
			return "", fmt.Errorf("controller %q is not registered", controllerName)
		}
		return "", fmt.Errorf("no controller specified: use --url, --controller or %s", config.EndpointEnvVar)
	}
	logging.Debug("Using registered controller", zap.String("name", name))
	return c.Endpoint, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("opensprinkler-exporter %s\n", version.Full())
	},
}
