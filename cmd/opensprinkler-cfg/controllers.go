package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/opensprinkler/internal/config"
)

var nickname string

func init() {
	rootCmd.AddCommand(controllersCmd)

	controllersCmd.AddCommand(controllersListCmd)
	controllersCmd.AddCommand(controllersAddCmd)
	controllersCmd.AddCommand(controllersRemoveCmd)
	controllersCmd.AddCommand(controllersDefaultCmd)
	controllersCmd.AddCommand(controllersLabelCmd)

	controllersAddCmd.Flags().StringVar(&nickname, "nickname", "", "Display name for the controller")
}

var controllersCmd = &cobra.Command{
	Use:   "controllers",
	Short: "Manage the registry of known controllers",
	Long: `Manage named controllers stored in the configuration file. A named
controller can be selected with --controller; the default one is used when
no controller is given.`,
}

var controllersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered controllers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := loadRegistry()
		if format(reg) == config.FormatJSON {
			return printJSON(reg.Controllers)
		}

		names := reg.ControllerNames()
		if len(names) == 0 {
			fmt.Println("No controllers registered.")
			fmt.Println("Use 'opensprinkler-cfg controllers add <name> <url>' or 'opensprinkler-cfg scan --save'")
			return nil
		}

		def := reg.Preferences.DefaultController
		for _, name := range names {
			c := reg.GetController(name)
			marker := " "
			if name == def {
				marker = "*"
			}
			fmt.Printf("%s %-16s %s\n", marker, name, c.Endpoint)
			if c.Nickname != "" {
				fmt.Printf("    Nickname:  %s\n", c.Nickname)
			}
			if !c.LastSeen.IsZero() {
				fmt.Printf("    Last seen: %s (%s)\n", c.LastSeen.Format("2006-01-02 15:04"), c.LastIP)
			}
			if len(c.StationLabels) > 0 {
				fmt.Printf("    Labels:    %d station(s)\n", len(c.StationLabels))
			}
		}
		return nil
	},
}

var controllersAddCmd = &cobra.Command{
	Use:     "add <name> <url>",
	Short:   "Register a controller",
	Example: `  opensprinkler-cfg controllers add garden http://192.168.1.20 --nickname "Back garden"`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, endpoint := args[0], args[1]
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "http://" + endpoint
		}

		reg := loadRegistry()
		reg.AddController(name, endpoint)
		if nickname != "" {
			reg.SetControllerNickname(name, nickname)
		}
		if len(reg.Controllers) == 1 {
			reg.Preferences.DefaultController = name
		}
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		fmt.Printf("Registered %s at %s\n", name, reg.GetController(name).Endpoint)
		return nil
	},
}

var controllersRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Forget a controller",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := loadRegistry()
		if !reg.RemoveController(args[0]) {
			return fmt.Errorf("controller %q is not registered", args[0])
		}
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

var controllersDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the controller used when none is given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := loadRegistry()
		if reg.GetController(args[0]) == nil {
			return fmt.Errorf("controller %q is not registered", args[0])
		}
		reg.Preferences.DefaultController = args[0]
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		fmt.Printf("Default controller is now %s\n", args[0])
		return nil
	},
}

var controllersLabelCmd = &cobra.Command{
	Use:   "label <name> <station> [label]",
	Short: "Set a local display label for a station",
	Long: `Set a label shown instead of the controller-side station name by
'stations', 'logs' and 'watch'. The label is stored only in the local
configuration file. Omit the label to remove it.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := loadRegistry()
		if reg.GetController(args[0]) == nil {
			return fmt.Errorf("controller %q is not registered", args[0])
		}
		sid, err := parseStation(args[1])
		if err != nil {
			return err
		}

		label := ""
		if len(args) == 3 {
			label = strings.TrimSpace(args[2])
		}
		reg.SetStationLabel(args[0], sid, label)
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		if label == "" {
			fmt.Printf("Cleared label for station %s\n", args[1])
		} else {
			fmt.Printf("Station %s is now shown as %q\n", args[1], label)
		}
		return nil
	},
}
