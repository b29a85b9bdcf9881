package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/opensprinkler/internal/sprinkler"
)

func init() {
	rootCmd.AddCommand(programCmd)

	programCmd.AddCommand(programEnableCmd)
	programCmd.AddCommand(programDisableCmd)
	programCmd.AddCommand(programWeatherCmd)
	programCmd.AddCommand(programRenameCmd)
	programCmd.AddCommand(programCopyCmd)
	programCmd.AddCommand(programDurationCmd)
	programCmd.AddCommand(programDeleteCmd)
	programCmd.AddCommand(programUpCmd)
}

var programCmd = &cobra.Command{
	Use:   "program",
	Short: "Edit stored programs",
	Long: `Edit the programs stored on the controller. Programs are addressed by
the index shown by 'opensprinkler-cfg programs'.`,
}

// loadProgram fetches /jp and returns program pid.
func loadProgram(cmd *cobra.Command, s *session, pid int) (*sprinkler.ProgramData, *sprinkler.Program, error) {
	pd, err := s.client.GetPrograms(cmd.Context(), s.password)
	if err != nil {
		return nil, nil, readFailed("Fetching programs", err)
	}
	if err := sprinkler.ValidateProgramIndex(pid, len(pd.Programs), false); err != nil {
		return nil, nil, err
	}
	return pd, &pd.Programs[pid], nil
}

func changeProgram(cmd *cobra.Command, s *session, title string, params map[string]string, change sprinkler.ProgramChange) error {
	return runCommand(cmd, s, title, "/cp", params, func(ctx context.Context) (*sprinkler.CommandResult, error) {
		return s.client.ChangeProgram(ctx, s.password, change)
	})
}

func toggleProgram(title string, enable bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
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
		return changeProgram(cmd, s, title, map[string]string{"program": args[0]},
			sprinkler.ProgramChange{ProgramID: pid, Enable: sprinkler.Bool(enable)})
	}
}

var programEnableCmd = &cobra.Command{
	Use:   "enable <program>",
	Short: "Enable a program",
	Args:  cobra.ExactArgs(1),
	RunE:  toggleProgram("Enable Program", true),
}

var programDisableCmd = &cobra.Command{
	Use:   "disable <program>",
	Short: "Disable a program",
	Args:  cobra.ExactArgs(1),
	RunE:  toggleProgram("Disable Program", false),
}

var programWeatherCmd = &cobra.Command{
	Use:   "weather <program> <on|off>",
	Short: "Turn the weather adjustment on or off for a program",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseProgram(args[0])
		if err != nil {
			return err
		}
		on, err := parseOnOff(args[1])
		if err != nil {
			return err
		}
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		return changeProgram(cmd, s, "Program Weather Adjustment",
			map[string]string{"program": args[0], "weather": args[1]},
			sprinkler.ProgramChange{ProgramID: pid, UseWeather: sprinkler.Bool(on)})
	},
}

var programRenameCmd = &cobra.Command{
	Use:   "rename <program> <name>",
	Short: "Rename a program",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseProgram(args[0])
		if err != nil {
			return err
		}
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		pd, p, err := loadProgram(cmd, s, pid)
		if err != nil {
			return err
		}
		if err := sprinkler.ValidateName(args[1], pd.MaxNameLength); err != nil {
			return err
		}

		// /cp rejects a name without the schedule, so the current one is resent.
		return changeProgram(cmd, s, "Rename Program",
			map[string]string{"program": args[0], "name": args[1]},
			scheduleChange(pid, args[1], p))
	},
}

var programCopyCmd = &cobra.Command{
	Use:   "copy <program> <name>",
	Short: "Add a new program with the schedule of an existing one",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseProgram(args[0])
		if err != nil {
			return err
		}
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		pd, p, err := loadProgram(cmd, s, pid)
		if err != nil {
			return err
		}
		if err := sprinkler.ValidateName(args[1], pd.MaxNameLength); err != nil {
			return err
		}
		if pd.MaxPrograms > 0 && pd.NumPrograms >= pd.MaxPrograms {
			return fmt.Errorf("controller already holds the maximum of %d programs", pd.MaxPrograms)
		}

		return changeProgram(cmd, s, "Add Program",
			map[string]string{"from": args[0], "name": args[1]},
			scheduleChange(-1, args[1], p))
	},
}

var programDurationCmd = &cobra.Command{
	Use:   "set-duration <program> <station> <seconds>",
	Short: "Change how long a program waters one station",
	Example: `  # Program 0 waters station 3 for 15 minutes
  opensprinkler-cfg program set-duration 0 3 900`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseProgram(args[0])
		if err != nil {
			return err
		}
		sid, err := parseStation(args[1])
		if err != nil {
			return err
		}
		secs, err := parseSeconds(args[2], "duration")
		if err != nil {
			return err
		}
		if secs < 0 || secs > sprinkler.MaxStationTimer {
			return sprinkler.NewValidationError(fmt.Sprintf("duration must be 0-%d seconds, got %d", sprinkler.MaxStationTimer, secs))
		}

		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		_, p, err := loadProgram(cmd, s, pid)
		if err != nil {
			return err
		}
		if err := sprinkler.ValidateStationIndex(sid, len(p.Durations)); err != nil {
			return err
		}

		change := scheduleChange(pid, p.Name, p)
		change.Schedule.Durations[sid] = secs
		return changeProgram(cmd, s, "Change Program Duration",
			map[string]string{"program": args[0], "station": args[1], "seconds": args[2]},
			change)
	},
}

// scheduleChange builds a full /cp edit from an existing program.
func scheduleChange(pid int, name string, p *sprinkler.Program) sprinkler.ProgramChange {
	schedule := p.Schedule()
	change := sprinkler.ProgramChange{
		ProgramID: pid,
		Name:      sprinkler.String(name),
		Schedule:  &schedule,
	}
	if p.DateRange != nil {
		change.From = sprinkler.Int(p.DateRange.From)
		change.To = sprinkler.Int(p.DateRange.To)
	}
	return change
}

var programDeleteCmd = &cobra.Command{
	Use:   "delete <program|all>",
	Short: "Delete one program or every program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid := -1
		if args[0] != "all" {
			var err error
			if pid, err = parseProgram(args[0]); err != nil {
				return err
			}
			if err := sprinkler.ValidateProgramIndex(pid, -1, false); err != nil {
				return err
			}
		}

		warnings := []string{"This cannot be undone"}
		title := "Delete Program " + args[0]
		if pid == -1 {
			title = "Delete All Programs"
			warnings = append([]string{"Every stored program is removed"}, warnings...)
		}
		if !confirm(title, warnings, "delete") {
			return nil
		}

		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		return runCommand(cmd, s, title, "/dp", map[string]string{"program": strconv.Itoa(pid)},
			func(ctx context.Context) (*sprinkler.CommandResult, error) {
				return s.client.DeleteProgram(ctx, s.password, pid)
			})
	},
}

var programUpCmd = &cobra.Command{
	Use:   "up <program>",
	Short: "Move a program one place up the list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parseProgram(args[0])
		if err != nil {
			return err
		}
		if err := sprinkler.ValidateProgramIndex(pid, -1, false); err != nil {
			return err
		}
		if pid == 0 {
			return fmt.Errorf("program 0 is already first")
		}
		s, err := connect(cmd.Context(), true)
		if err != nil {
			return err
		}
		return runCommand(cmd, s, "Move Program Up", "/up", map[string]string{"program": args[0]},
			func(ctx context.Context) (*sprinkler.CommandResult, error) {
				return s.client.MoveProgramUp(ctx, s.password, pid)
			})
	},
}

func parseOnOff(arg string) (bool, error) {
	switch arg {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q (want on or off)", arg)
}
