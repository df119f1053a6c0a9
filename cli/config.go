package cli

import (
	"github.com/mobile-next/gesturecli/commands"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Gesture tunables",
	Long:  `Inspect gesture tunables.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show [kind]",
	Short: "Show effective gesture tunables",
	Long:  `Shows the built-in tunables, with the --tunables file applied on top when given. Timeouts are in milliseconds.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := absSettingsPaths()
		if err != nil {
			return err
		}

		req := commands.ConfigShowRequest{Tunables: paths.Tunables}
		if len(args) == 1 {
			req.Kind = args[0]
		}

		return printResponse(commands.ConfigShowCommand(req))
	},
}

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Semantic action map",
	Long:  `Inspect the map from (zone, gesture, direction) to semantic event names.`,
}

var actionsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective action map",
	Long:  `Shows the built-in action map, or the one loaded from the --actions file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := absSettingsPaths()
		if err != nil {
			return err
		}

		return printResponse(commands.ActionsShowCommand(commands.ActionsShowRequest{Actions: paths.Actions}))
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(actionsCmd)

	configCmd.AddCommand(configShowCmd)
	actionsCmd.AddCommand(actionsShowCmd)

	configShowCmd.Flags().StringVar(&tunablesPath, "tunables", "", "Gesture tunables file (ini)")
	actionsShowCmd.Flags().StringVar(&actionsPath, "actions", "", "Semantic action map file (yaml)")
}
