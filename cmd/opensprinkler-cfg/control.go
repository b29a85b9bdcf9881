package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/opensprinkler/internal/config"
	"github.com/muurk/opensprinkler/internal/sprinkler"
	"github.com/muurk/opensprinkler/internal/ui"
)

// Control command flags
var (
	stopShift      bool
	programWeather bool
	runOnceRepeat  int
	runOnceEvery   int
	runOnceWeather bool
	pauseReplace   bool

	stationName  string
	stationGroup int
	stationFlags = map[string]*bool{}
	specialType  int
	specialData  string
	noVerify     bool
	retries      int
)

// stationFlagNames are the boolean attribute flags of set-station.
var stationFlagNames = []string{"disabled", "master1", "master2", "ignore-rain", "ignore-sensor1", "ignore-sensor2", "special"}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(rebootCmd)
	rootCmd.AddCommand(rainDelayCmd)
	rootCmd.AddCommand(resetStationsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(startProgramCmd)
	rootCmd.AddCommand(runOnceCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(deleteLogsCmd)
	rootCmd.AddCommand(setPasswordCmd)
	rootCmd.AddCommand(setJSPCmd)
	rootCmd.AddCommand(setStationCmd)

	stopCmd.Flags().BoolVar(&stopShift, "shift", false, "Shift the remaining queued stations forward")
	startProgramCmd.Flags().BoolVar(&programWeather, "weather", false, "Apply the watering level")

	runOnceCmd.Flags().IntVar(&runOnceRepeat, "repeat", 0, "Number of repeats")
	runOnceCmd.Flags().IntVar(&runOnceEvery, "interval", 0, "Minutes between repeats")
	runOnceCmd.Flags().BoolVar(&runOnceWeather, "weather", false, "Apply the watering level")

	pauseCmd.Flags().BoolVar(&pauseReplace, "replace", false, "Replace the running pause instead of toggling")

	setStationCmd.Flags().StringVar(&stationName, "name", "", "New station name")
	setStationCmd.Flags().IntVar(&stationGroup, "group", 0, "Sequential group (0-3, 255 for parallel)")
	for _, name := range stationFlagNames {
		v := new(bool)
		stationFlags[name] = v
		setStationCmd.Flags().BoolVar(v, name, false, "Set or clear the "+name+" attribute (--"+name+"=false clears)")
	}
	setStationCmd.Flags().IntVar(&specialType, "special-type", 0, "Special station type (with --special-data)")
	setStationCmd.Flags().StringVar(&specialData, "special-data", "", "Special station data, e.g. a GPIO or remote address")
	setStationCmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip reading the attributes back after the update")
	setStationCmd.Flags().IntVar(&retries, "retries", 3, "Number of verification retries")
}

// parseStation converts a 1-based station number as listed by 'stations'
// into a station index.
func parseStation(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid station %q (want a number from 1, as listed by 'stations')", arg)
	}
	return n - 1, nil
}

func parseProgram(arg string) (int, error) {
	pid, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid program %q (want an index as listed by 'programs')", arg)
	}
	return pid, nil
}

func parseSeconds(arg, what string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, arg)
	}
	return n, nil
}

// controllerUpdate sends a /cv update. /cv always carries en, so the
// current enable state is read first and preserved.
func controllerUpdate(cmd *cobra.Command, title string, params map[string]string,
	apply func(u *sprinkler.ControllerVariablesUpdate)) error {
	s, err := connect(cmd.Context(), true)
	if err != nil {
		return err
	}
	cv, err := s.client.GetControllerVariables(cmd.Context(), s.password)
	if err != nil {
		return readFailed("Fetching controller variables", err)
	}

	update := sprinkler.ControllerVariablesUpdate{Enable: cv.IsEnabled()}
	apply(&update)
	return runCommand(cmd, s, title, "/cv", params, func(ctx context.Context) (*sprinkler.CommandResult, error) {
		return s.client.SetControllerVariables(ctx, s.password, update)
	})
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable station operation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return controllerUpdate(cmd, "Enable Controller", nil, func(u *sprinkler.ControllerVariablesUpdate) {
			u.Enable = true
		})
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable station operation",
	Long:  `Disable the controller. Programs will not start until it is enabled again.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return controllerUpdate(cmd, "Disable Controller", nil, func(u *sprinkler.ControllerVariablesUpdate) {
			u.Enable = false
		})
	},
}

var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the controller",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm("Reboot Controller", []string{
			"Running stations will stop",
			"The controller is unreachable for a few seconds",
		}, "reboot") {
			return nil
		}
		return controllerUpdate(cmd, "Reboot Controller", nil, func(u *sprinkler.ControllerVariablesUpdate) {
			u.Reboot = true
		})
	},
}

var rainDelayCmd = &cobra.Command{
	Use:   "rain-delay <hours>",
	Short: "Set or clear a rain delay",
	Example: `  # Hold off watering for two days
  opensprinkler-cfg rain-delay 48

  # Clear the rain delay
  opensprinkler-cfg rain-delay 0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, err := parseSeconds(args[0], "hours")
		if err != nil {
			return err
		}
		if err := sprinkler.ValidateRainDelay(hours); err != nil {
			return err
		}
		return controllerUpdate(cmd, "Set Rain Delay", map[string]string{"hours": args[0]}, func(u *sprinkler.ControllerVariablesUpdate) {
			u.RainDelay = sprinkler.Int(hours)
		})
	},
}

var resetStationsCmd = &cobra.Command{
	Use:   "reset-stations",
	Short: "Stop all stations and clear the queue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return controllerUpdate(cmd, "Stop All Stations", nil, func(u *sprinkler.ControllerVariablesUpdate) {
			u.ResetStations = true
		})
	},
}

var runCmd = &cobra.Command{
	Use:   "run <station> <seconds>",
	Short: "Run one station for a number of seconds",
	Example: `  # Run station 3 for ten minutes
  opensprinkler-cfg run 3 600`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sid, err := parseStation(args[0])
		if err != nil {
			return err
		}
		secs, err := parseSeconds(args[1], "duration")
		if err != nil {
			return err
		}
		if err := sprinkler.ValidateStationTimer(secs); err != nil {
			return err
		}

		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		run := sprinkler.StationRun{StationID: sid, Enable: true, Timer: sprinkler.Int(secs)}
		return runCommand(cmd, s, "Run Station", "/cm",
			map[string]string{"station": args[0], "seconds": args[1]},
			func(ctx context.Context) (*sprinkler.CommandResult, error) {
				return s.client.ManualStationRun(ctx, s.password, run)
			})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <station>",
	Short: "Stop one station",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sid, err := parseStation(args[0])
		if err != nil {
			return err
		}

		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		run := sprinkler.StationRun{StationID: sid}
		if cmd.Flags().Changed("shift") {
			run.Shift = sprinkler.Bool(stopShift)
		}
		return runCommand(cmd, s, "Stop Station", "/cm",
			map[string]string{"station": args[0]},
			func(ctx context.Context) (*sprinkler.CommandResult, error) {
				return s.client.ManualStationRun(ctx, s.password, run)
			})
	},
}

var startProgramCmd = &cobra.Command{
	Use:   "start-program <program>",
	Short: "Start a stored program now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseProgram(args[0])
		if err != nil {
			return err
		}
		if err := sprinkler.ValidateProgramIndex(pid, -1, false); err != nil {
			return err
		}

		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		run := sprinkler.ProgramRun{ProgramID: pid, UseWeather: programWeather}
		return runCommand(cmd, s, "Start Program", "/mp",
			map[string]string{"program": args[0], "weather": strconv.FormatBool(programWeather)},
			func(ctx context.Context) (*sprinkler.CommandResult, error) {
				return s.client.ManualStartProgram(ctx, s.password, run)
			})
	},
}

var runOnceCmd = &cobra.Command{
	Use:   "run-once <seconds>...",
	Short: "Run a one-off program with per-station durations",
	Long: `Start a run-once program. Give one duration in seconds per station,
in station order; use 0 to skip a station.`,
	Example: `  # Station 1 for 5 minutes, skip station 2, station 3 for 2 minutes
  opensprinkler-cfg run-once 300 0 120

  # Three passes, 30 minutes apart
  opensprinkler-cfg run-once 300 300 --repeat 2 --interval 30`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		durations := make([]int, len(args))
		for i, arg := range args {
			d, err := parseSeconds(arg, "duration")
			if err != nil {
				return err
			}
			durations[i] = d
		}
		if err := sprinkler.ValidateRunOnceDurations(durations, 0); err != nil {
			return err
		}

		prog := sprinkler.RunOnceProgram{Durations: durations}
		if cmd.Flags().Changed("repeat") {
			prog.Repeat = sprinkler.Int(runOnceRepeat)
		}
		if cmd.Flags().Changed("interval") {
			prog.Interval = sprinkler.Int(runOnceEvery)
		}
		if cmd.Flags().Changed("weather") {
			prog.UseWeather = sprinkler.Bool(runOnceWeather)
		}

		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		return runCommand(cmd, s, "Run Once", "/cr",
			map[string]string{"stations": strconv.Itoa(len(durations))},
			func(ctx context.Context) (*sprinkler.CommandResult, error) {
				return s.client.StartRunOnceProgram(ctx, s.password, prog)
			})
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause [seconds]",
	Short: "Pause or resume the station queue",
	Long: `Pause the station queue for a number of seconds. Without an argument
the controller toggles the pause state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var pause sprinkler.QueuePause
		params := map[string]string{}
		if len(args) == 1 {
			secs, err := parseSeconds(args[0], "duration")
			if err != nil {
				return err
			}
			if err := sprinkler.ValidatePauseDuration(secs); err != nil {
				return err
			}
			if pauseReplace {
				pause.Replace = sprinkler.Int(secs)
			} else {
				pause.Duration = sprinkler.Int(secs)
			}
			params["seconds"] = args[0]
		} else if pauseReplace {
			return fmt.Errorf("--replace needs a duration")
		}

		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		return runCommand(cmd, s, "Pause Queue", "/pq", params,
			func(ctx context.Context) (*sprinkler.CommandResult, error) {
				return s.client.PauseQueue(ctx, s.password, pause)
			})
	},
}

var deleteLogsCmd = &cobra.Command{
	Use:   "delete-logs <day|all>",
	Short: "Delete log files",
	Long: `Delete the log file for one day, given as YYYY-MM-DD or an epoch day
number, or every log file with "all".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var day sprinkler.LogDay
		if t, err := parseDate(args[0]); err == nil {
			day = sprinkler.LogDayFromTime(t)
		} else if day, err = sprinkler.ParseLogDay(args[0]); err != nil {
			return err
		}

		if day.IsAll() && !confirm("Delete All Logs", []string{
			"Every watering and event log on the controller is removed",
			"This cannot be undone",
		}, "delete") {
			return nil
		}

		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		return runCommand(cmd, s, "Delete Logs", "/dl",
			map[string]string{"day": day.String()},
			func(ctx context.Context) (*sprinkler.CommandResult, error) {
				return s.client.DeleteLogData(ctx, s.password, day)
			})
	},
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Change the controller password",
	Long: `Change the controller password. The new password is prompted for twice
and sent as its md5 hash. Update OPENSPRINKLER_PASSWORD afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}

		npw, err := config.PromptPassword("New password: ")
		if err != nil {
			return err
		}
		cpw, err := config.PromptPassword("Confirm new password: ")
		if err != nil {
			return err
		}
		if err := sprinkler.ValidateNewPassword(npw, cpw); err != nil {
			return err
		}

		return runCommand(cmd, s, "Change Password", "/sp", nil,
			func(ctx context.Context) (*sprinkler.CommandResult, error) {
				return s.client.SetPassword(ctx, s.password, sprinkler.HashPassword(npw), sprinkler.HashPassword(cpw))
			})
	},
}

var setJSPCmd = &cobra.Command{
	Use:     "set-jsp <url>",
	Short:   "Change the URL the controller loads its web UI scripts from",
	Example: `  opensprinkler-cfg set-jsp https://ui.opensprinkler.com/js`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsp := args[0]
		if err := sprinkler.ValidateJavascriptURL(jsp); err != nil {
			return err
		}

		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		return runCommand(cmd, s, "Change Script URL", "/cu",
			map[string]string{"jsp": jsp},
			func(ctx context.Context) (*sprinkler.CommandResult, error) {
				return s.client.ChangeJavascriptURL(ctx, s.password, jsp)
			})
	},
}

var setStationCmd = &cobra.Command{
	Use:   "set-station <station>",
	Short: "Change a station's name, group or attributes",
	Long: `Change one station. The current attributes are read first so only the
flags given are changed; other stations on the same board keep their bits.`,
	Example: `  # Rename station 4 and let it ignore the rain sensor
  opensprinkler-cfg set-station 4 --name Roses --ignore-rain

  # Move station 2 to the parallel group and re-enable it
  opensprinkler-cfg set-station 2 --group 255 --disabled=false

  # Mark station 8 as a GPIO special station
  opensprinkler-cfg set-station 8 --special --special-type 2 --special-data 05`,
	Args: cobra.ExactArgs(1),
	RunE: runSetStation,
}

func runSetStation(cmd *cobra.Command, args []string) error {
	sid, err := parseStation(args[0])
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("special-data") != flags.Changed("special-type") {
		return fmt.Errorf("--special-type and --special-data must be given together")
	}

	s, err := connect(cmd.Context(), true)
	if err != nil {
		return err
	}
	current, err := s.client.GetStationNamesAndAttributes(cmd.Context(), s.password)
	if err != nil {
		return readFailed("Fetching stations", err)
	}

	b := sprinkler.NewStationAttributesBuilder(current)
	params := map[string]string{"station": args[0]}
	if flags.Changed("name") {
		b.SetName(sid, stationName)
		params["name"] = stationName
	}
	if flags.Changed("group") {
		b.SetGroup(sid, stationGroup)
		params["group"] = sprinkler.GroupName(stationGroup)
	}

	setters := map[string]func(int, bool) *sprinkler.StationAttributesBuilder{
		"disabled":       b.SetDisabled,
		"master1":        b.SetMaster1,
		"master2":        b.SetMaster2,
		"ignore-rain":    b.SetIgnoreRain,
		"ignore-sensor1": b.SetIgnoreSensor1,
		"ignore-sensor2": b.SetIgnoreSensor2,
		"special":        b.SetSpecial,
	}
	for _, name := range stationFlagNames {
		if flags.Changed(name) {
			setters[name](sid, *stationFlags[name])
			params[name] = strconv.FormatBool(*stationFlags[name])
		}
	}

	update, err := b.Build()
	if err != nil {
		return err
	}
	if flags.Changed("special-type") {
		update.SpecialStationID = sprinkler.Int(sid)
		update.SpecialType = sprinkler.Int(specialType)
		update.SpecialData = sprinkler.String(specialData)
	}
	if update.IsEmpty() {
		return fmt.Errorf("nothing to change; see 'opensprinkler-cfg set-station --help'")
	}

	if noVerify || format(s.registry) == config.FormatJSON {
		return runCommand(cmd, s, "Update Station", "/cs", params,
			func(ctx context.Context) (*sprinkler.CommandResult, error) {
				return s.client.SetStationNamesAndAttributes(ctx, s.password, update)
			})
	}

	printer := ui.NewPrinter(nil)
	params["controller"] = s.label()
	printer.PrintHeader("Update Station", "/cs", params)

	opts := sprinkler.DefaultVerificationOptions()
	opts.MaxRetries = retries
	result := s.client.UpdateStationsAndVerify(cmd.Context(), s.password, update, opts)
	if !result.Success {
		r := ui.NewErrorResult("Update Station", result.Err)
		for _, m := range result.Mismatches {
			r.AddDetail("Mismatch", m)
		}
		printer.PrintResult(r)
		return &reportedError{err: result.Err}
	}

	printer.PrintResult(ui.NewSuccessResult("Update Station").
		AddDetail("Verified", fmt.Sprintf("%d attempt(s)", result.Attempts)))
	return nil
}
