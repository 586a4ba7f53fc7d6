package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"brandpulse/analysis"
	"brandpulse/client"
	"brandpulse/config"
	"brandpulse/demo/tui"
	"brandpulse/logger"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Parse command-line flags
	apiURL := flag.String("url", cfg.APIURL, "Analysis service URL")
	interval := flag.Duration("interval", cfg.PollInterval, "Delay between status checks")
	attempts := flag.Int("attempts", cfg.MaxPollAttempts, "Maximum number of status re-checks")
	logFile := flag.String("log-file", cfg.LogFile, "Write logs to this file (the terminal is owned by the UI)")
	flag.Parse()

	log, err := logger.NewFile(cfg.LogLevel, cfg.LogFormat, *logFile)
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	api := client.NewAnalysisClient(*apiURL, client.WithTimeout(cfg.HTTPTimeout))
	machine := analysis.NewMachine(*attempts, *interval)

	// Create TUI model
	m := tui.NewModel(api, machine,
		tui.WithLogger(log),
		tui.WithRequestTimeout(cfg.HTTPTimeout))

	// Create the tea program
	program := tea.NewProgram(m, tea.WithAltScreen())

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		program.Quit()
	}()

	log.Info("starting form client", zap.String("url", api.BaseURL()),
		zap.Duration("interval", machine.Interval()), zap.Int("max_attempts", machine.MaxAttempts()))

	// Run the program
	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
