package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/spindle/internal/feedsim"
	"github.com/okian/spindle/pkg/logger"
)

func main() {
	cfg := feedsim.NewConfig()
	var (
		addr     = flag.String("addr", cfg.Addr, "Listen address for the simulated feed")
		interval = flag.Duration("interval", cfg.Interval, "How often a new outcome appears")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Addr = *addr
	cfg.Interval = *interval
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}

	if err := feedsim.NewServer(cfg).Run(ctx); err != nil {
		os.Stderr.WriteString("simulated feed failed: " + err.Error() + "\n")
	}
}
