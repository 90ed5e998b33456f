// Command repscore-mcp serves the RepScore MCP tools over stdio. Data comes
// from a running RepScore server (-url) or straight from the database (-config).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/repscore/internal/config"
	"github.com/meltforce/repscore/internal/mcp"
	"github.com/meltforce/repscore/internal/scoring"
	"github.com/meltforce/repscore/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	baseURL := flag.String("url", "", "base URL of a RepScore server, e.g. http://repscore")
	configPath := flag.String("config", "", "path to config file; read the database directly instead of -url")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("repscore-mcp", Version)
		return
	}

	// stdout carries the protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if (*baseURL == "") == (*configPath == "") {
		fmt.Fprintf(os.Stderr, "Usage: repscore-mcp -url http://repscore | -config config.yaml\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var (
		ds       mcp.DataSource
		feedback = scoring.DefaultFeedbackThresholds()
		payout   = scoring.DefaultRewardConfig()
	)
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		feedback, payout = cfg.Scoring.Feedback, cfg.Scoring.Rewards
	} else {
		ds = mcp.NewHTTPClient(*baseURL)
	}

	classifier, err := scoring.NewClassifier(feedback)
	if err != nil {
		log.Error("invalid feedback thresholds", "error", err)
		os.Exit(1)
	}
	rewards, err := scoring.NewRewardCalculator(payout)
	if err != nil {
		log.Error("invalid reward config", "error", err)
		os.Exit(1)
	}

	s := mcp.New(ds, classifier, rewards, Version, log)
	log.Info("repscore-mcp serving on stdio", "version", Version)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
