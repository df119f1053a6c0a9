package cli

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/mobile-next/gesturecli/commands"
	"github.com/mobile-next/gesturecli/utils"
	"github.com/spf13/cobra"
)

const version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gesturecli",
	Short: "A touch gesture recognition engine and server",
	Long:  `Classifies raw touch and pointer input into gestures and context-aware semantic events`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func initConfig() {
	utils.SetVerbose(verbose)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command
func Execute() error {
	// enable microseconds in logs
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	return rootCmd.Execute()
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(rootCmd.OutOrStdout(), string(jsonData))
}

// printJsonLine prints data as a single line, for streamed output
func printJsonLine(data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(rootCmd.OutOrStdout(), string(jsonData))
}

// printResponse prints a command response and returns its error, if any
func printResponse(response *commands.CommandResponse) error {
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}
