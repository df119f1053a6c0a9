package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mobile-next/gesturecli/cli"
	"github.com/mobile-next/gesturecli/commands"
	"github.com/mobile-next/gesturecli/surfaces"
	"github.com/mobile-next/gesturecli/utils"
)

func main() {
	// create surface registry shared by the server and commands
	registry, err := surfaces.NewRegistry(surfaces.DefaultSize)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	commands.SetRegistry(registry)

	hooks := utils.NewShutdownHooks()
	hooks.Register("surfaces", func() error {
		registry.CleanupAll()
		return nil
	})

	// setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// run command in goroutine
	done := make(chan error, 1)
	go func() {
		done <- cli.Execute()
	}()

	// wait for command completion or signal
	select {
	case <-sigChan:
		// stop pending gesture timers on signal
		if err := hooks.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(0)
	case err := <-done:
		_ = hooks.Run()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
