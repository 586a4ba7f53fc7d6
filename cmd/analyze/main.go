// Command analyze submits one analysis request and waits for the result
// without the terminal UI. Useful for scripts and smoke tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"brandpulse/analysis"
	"brandpulse/client"
	"brandpulse/config"
	"brandpulse/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	apiURL := flag.String("url", cfg.APIURL, "Analysis service URL")
	prompt := flag.String("prompt", "", "Analysis prompt")
	input := flag.String("input", "", "Brand or context to analyze")
	interval := flag.Duration("interval", cfg.PollInterval, "Delay between status checks")
	attempts := flag.Int("attempts", cfg.MaxPollAttempts, "Maximum number of status re-checks")
	flag.Parse()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.NewAnalysisClient(*apiURL, client.WithTimeout(cfg.HTTPTimeout))
	runner := analysis.NewRunner(api, analysis.NewMachine(*attempts, *interval),
		analysis.WithLogger(log),
		analysis.WithObserver(func(s analysis.State) {
			if s.Phase == analysis.PhasePolling {
				log.Debug("waiting for result", zap.String("job_id", s.JobID), zap.Int("attempt", s.Attempts))
			}
		}))

	state, err := runner.Run(ctx, *prompt, *input)
	if err != nil {
		fmt.Fprintln(os.Stderr, state.Error)
		os.Exit(1)
	}
	fmt.Println(state.Result)
}
