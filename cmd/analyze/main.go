// Package main analyzes a product photo from the command line and prints the
// report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samber/lo"

	"github.com/nutriverse/nutribot/internal/app"
	"github.com/nutriverse/nutribot/internal/config"
	"github.com/nutriverse/nutribot/internal/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	imagePath := flag.String("image", "", "Path to the product photo")
	diets := flag.String("diets", "", "Comma separated diets; defaults to assistant.default_diets")
	flag.Parse()

	if *imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -image <path> [-diets vegan,celiac] [-config config.yaml]")
		return 2
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}
	log := logger.New(os.Stderr, cfg.Logger.Level, cfg.Logger.JSON)

	data, err := os.ReadFile(*imagePath)
	if err != nil {
		log.Error("Failed to read image", "path", *imagePath, "error", err)
		return 1
	}

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize components", "error", err)
		return 1
	}
	defer a.Close()

	dietList := cfg.Assistant.DefaultDiets
	if *diets != "" {
		dietList = lo.Compact(lo.Map(strings.Split(*diets, ","), func(d string, _ int) string {
			return strings.TrimSpace(d)
		}))
	}

	report, err := a.Coordinator.Analyze(ctx, "cli", data, http.DetectContentType(data), dietList)
	if err != nil {
		log.Error("Analysis failed", "error", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error("Failed to write report", "error", err)
		return 1
	}
	return 0
}
