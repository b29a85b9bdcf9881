package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/opensprinkler/internal/config"
	"github.com/muurk/opensprinkler/internal/discovery"
	"github.com/muurk/opensprinkler/internal/export"
	"github.com/muurk/opensprinkler/internal/sprinkler"
	"github.com/muurk/opensprinkler/internal/ui"
)

// Read command flags
var (
	scanSave      bool
	logDays       int
	logFrom       string
	logTo         string
	logType       string
	logXLSX       string
	watchInterval int
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(stationsCmd)
	rootCmd.AddCommand(specialCmd)
	rootCmd.AddCommand(programsCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(watchCmd)

	scanCmd.Flags().BoolVar(&scanSave, "save", false, "Add discovered controllers to the registry")

	logsCmd.Flags().IntVar(&logDays, "days", 0, "Days of history to fetch (0 is today)")
	logsCmd.Flags().StringVar(&logFrom, "from", "", "Start date (YYYY-MM-DD, controller local time)")
	logsCmd.Flags().StringVar(&logTo, "to", "", "End date, inclusive (YYYY-MM-DD); defaults to --from")
	logsCmd.Flags().StringVar(&logType, "type", "", "Special event type (s1, s2, rd, fl, wl)")
	logsCmd.Flags().StringVar(&logXLSX, "xlsx", "", "Write the records and per-station totals to an Excel workbook")

	watchCmd.Flags().IntVar(&watchInterval, "interval", int(ui.DefaultWatchInterval/time.Second), "Poll interval in seconds")
}

var scanCmd = &cobra.Command{
	Use:   "scan [name]",
	Short: "Scan for OpenSprinkler controllers on the network",
	Long: `Scan for OpenSprinkler controllers using mDNS/DNS-SD discovery.

Controllers advertise themselves as OS-XXXXXX, where XXXXXX is taken from
their MAC address.`,
	Example: `  # Scan for 5 seconds (default)
  opensprinkler-cfg scan

  # Longer scan and remember what was found
  opensprinkler-cfg scan --timeout 15 --save

  # Wait for one controller by name or ID and stop as soon as it answers
  opensprinkler-cfg scan OS-4A1B2C --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	scanner := discovery.NewScanner()
	if timeoutSecs > 0 {
		scanner.Timeout = time.Duration(timeoutSecs) * time.Second
	}

	var devices []*discovery.Device
	if len(args) == 1 {
		fmt.Printf("Waiting for %s (timeout: %s)...\n\n", args[0], scanner.Timeout)
		device, err := scanner.WaitForDevice(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		devices = append(devices, device)
	} else {
		fmt.Printf("Scanning for OpenSprinkler controllers (timeout: %s)...\n\n", scanner.Timeout)
		found, err := scanner.ScanForDevices(cmd.Context())
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		devices = found
	}

	if len(devices) == 0 {
		fmt.Println("No controllers found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the controller is powered on and connected to the network")
		fmt.Println("  - mDNS does not cross subnets or most VPNs")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Use --device or --url to specify the controller manually")
		return nil
	}

	if format(nil) == config.FormatJSON {
		return printJSON(devices)
	}

	fmt.Printf("Found %d controller(s):\n\n", len(devices))
	for i, d := range devices {
		fmt.Printf("%d. %s\n", i+1, d.Name)
		fmt.Printf("   Host:    %s\n", d.Hostname)
		fmt.Printf("   URL:     %s\n", d.BaseURL())
		if fw := d.GetMetadata("fwv"); fw != "" {
			fmt.Printf("   Firmware: %s\n", fw)
		}
		if len(d.Metadata) > 0 {
			fmt.Printf("   Metadata: %v\n", d.Metadata)
		}
		fmt.Println()
	}

	if scanSave {
		reg := loadRegistry()
		for _, d := range devices {
			if reg.GetController(d.Name) == nil {
				reg.AddController(d.Name, d.BaseURL())
			}
			reg.UpdateControllerLastSeen(d.Name, d.IP)
		}
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		fmt.Printf("Saved %d controller(s) to the registry\n", len(devices))
		return nil
	}

	fmt.Println("Use 'opensprinkler-cfg show --device <ip>' to view controller state")
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the full controller state",
	Long: `Fetch status, options, stations and programs in a single /ja request
and display them.`,
	Example: `  opensprinkler-cfg show --device 192.168.1.20
  opensprinkler-cfg show --format compact
  opensprinkler-cfg show --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		all, err := s.client.GetAll(cmd.Context(), s.password)
		if err != nil {
			return readFailed("Fetching controller state", err)
		}

		switch format(s.registry) {
		case config.FormatJSON:
			return printJSON(all)
		case config.FormatCompact:
			fmt.Print(all.FormatCompact())
		default:
			fmt.Println(all.FormatDetailed())
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show controller variables (/jc)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		cv, err := s.client.GetControllerVariables(cmd.Context(), s.password)
		if err != nil {
			return readFailed("Fetching controller variables", err)
		}

		switch format(s.registry) {
		case config.FormatJSON:
			return printJSON(cv)
		case config.FormatCompact:
			fmt.Println(cv.Summary())
		default:
			fmt.Println(cv.FormatStatus())
		}
		return nil
	},
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show controller options (/jo)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		opts, err := s.client.GetOptions(cmd.Context(), s.password)
		if err != nil {
			return readFailed("Fetching options", err)
		}

		switch format(s.registry) {
		case config.FormatJSON:
			return printJSON(opts)
		case config.FormatCompact:
			fmt.Printf("Firmware %s, hardware %d, port %d, water level %d%%\n",
				opts.FirmwareVersion(), opts.HardwareVersion, opts.HTTPPort(), opts.WaterLevel)
		default:
			fmt.Println(opts.FormatDetailed())
		}
		return nil
	},
}

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "Show station names, attributes and status (/jn, /js)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		stations, err := s.client.GetStationNamesAndAttributes(ctx, s.password)
		if err != nil {
			return readFailed("Fetching stations", err)
		}
		status, err := s.client.GetStationStatus(ctx, s.password)
		if err != nil {
			return readFailed("Fetching station status", err)
		}

		switch format(s.registry) {
		case config.FormatJSON:
			return printJSON(map[string]any{"stations": stations, "status": status})
		case config.FormatCompact:
			for sid := 0; sid < stations.NumStations(); sid++ {
				state := "off"
				if status.Active(sid) {
					state = "ON"
				}
				fmt.Printf("%3d  %-24s %s\n", sid+1, s.stationName(stations, sid), state)
			}
		default:
			fmt.Print(stations.FormatStations(status))
			if s.entry != nil && len(s.entry.StationLabels) > 0 {
				fmt.Println("\nLocal labels:")
				for sid := 0; sid < stations.NumStations(); sid++ {
					if label, ok := s.entry.StationLabels[sid]; ok {
						fmt.Printf("  %3d  %s\n", sid+1, label)
					}
				}
			}
		}
		return nil
	},
}

var specialCmd = &cobra.Command{
	Use:   "special",
	Short: "Show special station data (/je)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		data, err := s.client.GetSpecialStationData(cmd.Context(), s.password)
		if err != nil {
			return readFailed("Fetching special stations", err)
		}

		if format(s.registry) == config.FormatJSON {
			return printJSON(data)
		}
		ids := data.StationIDs()
		if len(ids) == 0 {
			fmt.Println("No special stations configured.")
			return nil
		}
		for _, sid := range ids {
			st, _ := data.Station(sid)
			fmt.Printf("%3d  %-12s %s\n", sid+1, st.Type, st.Data)
		}
		return nil
	},
}

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "Show stored programs (/jp)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		pd, err := s.client.GetPrograms(cmd.Context(), s.password)
		if err != nil {
			return readFailed("Fetching programs", err)
		}

		switch format(s.registry) {
		case config.FormatJSON:
			return printJSON(pd)
		case config.FormatCompact:
			for pid := range pd.Programs {
				p := &pd.Programs[pid]
				fmt.Printf("%2d  %-20s %-8s %s\n", pid, p.Name, onOffLabel(p.Enabled()), p.ScheduleType())
			}
		default:
			fmt.Print(pd.FormatPrograms())
		}
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show watering logs (/jl)",
	Long: `Fetch log records, either the last --days days or the --from/--to date
range. --type selects special events (sensor, rain delay, flow, water level)
instead of station runs.`,
	Example: `  # Today's runs
  opensprinkler-cfg logs

  # Last week, exported to Excel
  opensprinkler-cfg logs --days 7 --xlsx week.xlsx

  # Rain delay events in May
  opensprinkler-cfg logs --from 2024-05-01 --to 2024-05-31 --type rd`,
	RunE: runLogs,
}

func runLogs(cmd *cobra.Command, args []string) error {
	query, err := buildLogQuery()
	if err != nil {
		return err
	}

	s, err := connect(cmd.Context(), true)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	records, err := s.client.GetLogData(ctx, s.password, query)
	if err != nil {
		return readFailed("Fetching logs", err)
	}

	var names []string
	if stations, err := s.client.GetStationNamesAndAttributes(ctx, s.password); err == nil {
		names = make([]string, stations.NumStations())
		for sid := range names {
			names[sid] = s.stationName(stations, sid)
		}
	}

	if logXLSX != "" {
		f, err := os.Create(logXLSX)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", logXLSX, err)
		}
		if err := export.WriteLogWorkbook(f, records, names); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Wrote %d record(s) to %s\n", len(records), logXLSX)
		return nil
	}

	if format(s.registry) == config.FormatJSON {
		return printJSON(records)
	}

	if len(records) == 0 {
		fmt.Println("No log records.")
		return nil
	}
	for i := range records {
		fmt.Println(records[i].Format(names))
	}

	if format(s.registry) == config.FormatDetailed {
		totals := export.Summarize(records, names)
		if len(totals) > 0 {
			fmt.Println("\n=== Totals ===")
			for _, t := range totals {
				fmt.Printf("  %-20s %3d run(s)  %s\n", t.Name, t.Runs, time.Duration(t.Seconds)*time.Second)
			}
		}
	}
	return nil
}

func buildLogQuery() (sprinkler.LogQuery, error) {
	var query sprinkler.LogQuery

	if logFrom != "" {
		from, err := parseDate(logFrom)
		if err != nil {
			return query, err
		}
		to := from
		if logTo != "" {
			if to, err = parseDate(logTo); err != nil {
				return query, err
			}
		}
		if to.Before(from) {
			return query, fmt.Errorf("--to %s is before --from %s", logTo, logFrom)
		}
		query = sprinkler.LogRange(from, to.Add(24*time.Hour-time.Second))
	} else {
		if logTo != "" {
			return query, fmt.Errorf("--to requires --from")
		}
		if logDays < 0 {
			return query, fmt.Errorf("--days must be >= 0, got %d", logDays)
		}
		query = sprinkler.LogHistory(logDays)
	}

	if logType != "" {
		t := logType
		query.Type = &t
	}
	return query, nil
}

// parseDate reads YYYY-MM-DD. The controller stores local wall time as
// epoch seconds, so dates are taken as UTC.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show the controller debug printout (/db)",
	Long:  `Fetch the firmware debug printout. This endpoint needs no password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context(), false)
		if err != nil {
			return err
		}
		raw, err := s.client.GetDebugPrintout(cmd.Context())
		if err != nil {
			return readFailed("Fetching debug printout", err)
		}

		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			fmt.Println(string(raw))
			return nil
		}
		fmt.Println(out.String())
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of station activity",
	Long: `Poll the controller and show which stations are running, with the
time remaining for each. Press r to refresh, q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ui.IsTerminal() {
			return fmt.Errorf("watch needs an interactive terminal")
		}
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}

		stations, err := s.client.GetStationNamesAndAttributes(cmd.Context(), s.password)
		if err != nil {
			return readFailed("Fetching stations", err)
		}
		if s.entry != nil {
			names := make([]string, stations.NumStations())
			for sid := range names {
				names[sid] = s.stationName(stations, sid)
			}
			stations.Names = names
		}

		title := "OpenSprinkler " + strings.TrimPrefix(s.label(), "http://")
		fetch := ui.ClientFetcher(s.client, s.password, stations)
		return ui.RunWatch(cmd.Context(), title, fetch, time.Duration(watchInterval)*time.Second)
	},
}

func onOffLabel(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
