package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"qtermphase/internal/config"
	"qtermphase/internal/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	if cfg.Headless {
		log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return runHeadless(ctx, cfg, log, stdout)
	}

	// The explorer owns the terminal, so logs go to a file or nowhere.
	log, closer, err := logger.Open(logger.Config{Level: cfg.LogLevel}, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	m := initialModel(paramsFromConfig(cfg), newBackend(cfg.Seed, log), log, cfg.QASMPath, cfg.ReportPath)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
