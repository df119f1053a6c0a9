package cli

import (
	"fmt"
	"os"

	"github.com/mobile-next/gesturecli/commands"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.jsonl>",
	Short: "Replay recorded raw input through the gesture engine",
	Long: `Feeds a recording of raw touch or pointer events through a gesture engine running
on a virtual clock and prints every emitted event as one JSON line.

Each line is a raw event, {"targets":[...]} to register target nodes, or
{"scrollY":n} to set the scroll offset. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := absSettingsPaths()
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				response := commands.NewErrorResponse(fmt.Errorf("failed to open replay file: %w", err))
				printJson(response)
				return fmt.Errorf("%s", response.Error)
			}
			defer f.Close()
			in = f
		}

		err = commands.Replay(in, paths, func(ev commands.ReplayEvent) {
			printJsonLine(ev)
		})
		if err != nil {
			response := commands.NewErrorResponse(err)
			printJson(response)
			return fmt.Errorf("%s", response.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&tunablesPath, "tunables", "", "Gesture tunables file (ini)")
	replayCmd.Flags().StringVar(&actionsPath, "actions", "", "Semantic action map file (yaml)")
}
