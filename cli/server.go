package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mobile-next/gesturecli/daemon"
	"github.com/mobile-next/gesturecli/server"
	"github.com/mobile-next/gesturecli/settings"
	"github.com/spf13/cobra"
)

const defaultServerAddress = "localhost:12000"

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the gesturecli server.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gesturecli server",
	Long:  `Starts the gesturecli server. Hosts send raw input over JSON-RPC on /rpc or /ws and receive gesture events.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr := cmd.Flag("listen").Value.String()
		if listenAddr == "" {
			listenAddr = defaultServerAddress
		}

		// GetBool/GetString cannot fail for defined flags
		enableCORS, _ := cmd.Flags().GetBool("cors")
		isDaemon, _ := cmd.Flags().GetBool("daemon")

		paths, err := absSettingsPaths()
		if err != nil {
			return err
		}

		// load once up front so a bad file fails before daemonizing
		holder, err := settings.NewHolder(paths)
		if err != nil {
			return err
		}

		if isDaemon && !daemon.IsChild() {
			_, err := daemon.Daemonize(daemonArgs(os.Args, paths))
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", listenAddr)
			return nil
		}

		return server.StartServer(server.Config{
			Addr:       listenAddr,
			EnableCORS: enableCORS,
			Settings:   holder,
			Watch:      watchSettings,
		})
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized gesturecli server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// GetString cannot fail for defined flags
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = defaultServerAddress
		}

		err := daemon.KillServer(addr)
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

// absSettingsPaths resolves the settings flags against the working directory
func absSettingsPaths() (settings.Paths, error) {
	var paths settings.Paths
	for _, p := range []struct {
		in  string
		out *string
	}{
		{tunablesPath, &paths.Tunables},
		{actionsPath, &paths.Actions},
	} {
		if p.in == "" {
			continue
		}
		abs, err := filepath.Abs(p.in)
		if err != nil {
			return settings.Paths{}, fmt.Errorf("invalid settings path %s: %w", p.in, err)
		}
		*p.out = abs
	}
	return paths, nil
}

// daemonArgs rewrites settings flags to absolute paths, since the daemon
// child does not keep the working directory.
func daemonArgs(args []string, paths settings.Paths) []string {
	out := make([]string, 0, len(args)+4)
	skip := false
	for _, a := range args {
		if skip {
			skip = false
			continue
		}
		switch {
		case a == "--tunables" || a == "--actions":
			skip = true
			continue
		case strings.HasPrefix(a, "--tunables="), strings.HasPrefix(a, "--actions="):
			continue
		}
		out = append(out, a)
	}
	if paths.Tunables != "" {
		out = append(out, "--tunables", paths.Tunables)
	}
	if paths.Actions != "" {
		out = append(out, "--actions", paths.Actions)
	}
	return out
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", "Address to listen on (e.g., 'localhost:12000' or '0.0.0.0:13000')")
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")
	serverStartCmd.Flags().StringVar(&tunablesPath, "tunables", "", "Gesture tunables file (ini)")
	serverStartCmd.Flags().StringVar(&actionsPath, "actions", "", "Semantic action map file (yaml)")
	serverStartCmd.Flags().BoolVar(&watchSettings, "watch", false, "Reload settings files when they change")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", fmt.Sprintf("Address of server to kill (default: %s)", defaultServerAddress))
}
