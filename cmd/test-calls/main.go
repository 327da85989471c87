// Command test-calls delivers synthetic post-call transcripts to a running
// service instance and verifies the resulting assessments.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/speechwell/speechwell/internal/testcalls"
	"github.com/speechwell/speechwell/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	cfg := testcalls.DefaultConfig()
	flag.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the running service")
	flag.IntVar(&cfg.NumCalls, "calls", cfg.NumCalls, "number of synthetic calls to deliver")
	flag.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "number of in-flight deliveries")
	flag.StringVar(&cfg.WebhookSecret, "secret", os.Getenv("SPEECHWELL_WEBHOOK_SECRET"), "webhook signing secret")
	flag.DurationVar(&cfg.VerifyWait, "wait", cfg.VerifyWait, "wait before verifying assessments")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stats, err := testcalls.Run(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("test-call run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	if stats.Missing > 0 || stats.Rejected > 0 {
		os.Exit(1)
	}
}
