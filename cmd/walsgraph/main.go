package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yungbote/walsgraph/internal/app"
	"github.com/yungbote/walsgraph/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	process := flag.Bool("process", false, "download the WALS dataset and generate chunk files")
	build := flag.Bool("build", false, "build the knowledge graph from generated chunks")
	queryMode := flag.Bool("query", false, "interactive query console")
	demo := flag.Bool("demo", false, "run the demo questions")
	full := flag.Bool("full", false, "process, build, then run the demo questions")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg := app.LoadConfig()
	log, err := logger.New(cfg.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		return err
	}
	defer a.Close(context.Background())

	var runErr error
	switch {
	case *process:
		runErr = a.Process(ctx)
	case *build:
		runErr = a.Build(ctx)
	case *demo:
		runErr = a.Demo(ctx)
	case *full:
		runErr = a.Full(ctx)
	case *queryMode:
		runErr = a.Interactive(ctx)
	default:
		runErr = a.Menu(ctx)
	}
	if runErr != nil {
		log.Error("run failed", "error", runErr)
	}
	return runErr
}
