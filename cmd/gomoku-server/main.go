package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/IlikeChooros/gomoku-mcts/internal/logging"
	"github.com/IlikeChooros/gomoku-mcts/internal/server"
	"github.com/IlikeChooros/gomoku-mcts/pkg/config"
	"github.com/IlikeChooros/gomoku-mcts/pkg/engine"
	"github.com/IlikeChooros/gomoku-mcts/pkg/mcts"
)

var (
	flagConfig     = flag.String("config", "", "Path to a config file (default: user config directory)")
	flagAddr       = flag.String("addr", "", "Listen address, overrides server.addr")
	flagBudget     = flag.Int("budget", -1, "Default search budget in ms, overrides search_budget_ms")
	flagGrace      = flag.Int("grace", 0, "Extra time in ms before an engine is replaced, overrides grace_ms")
	flagMaxTreeMb  = flag.Int("max-tree-mb", -1, "Tree memory cap in MB, 0 disables it, overrides max_tree_mb")
	flagSeed       = flag.Int64("seed", 0, "Fixed search seed, overrides seed")
	flagLogLevel   = flag.String("log-level", "", "Log level, overrides log_level")
	flagSaveConfig = flag.Bool("save-config", false, "Write the effective config to the user config directory and exit")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *flagSaveConfig {
		path, err := cfg.Save()
		if err != nil {
			log.Fatal().Err(err).Msg("save-config-failed")
		}
		log.Info().Str("path", path).Msg("config-saved")
		return
	}

	opts := []engine.Option{engine.WithMaxTreeMb(cfg.MaxTreeMb)}
	if cfg.Seed != 0 {
		seed := cfg.Seed
		mcts.SetSeedGeneratorFn(func() int64 { return seed })
		opts = append(opts, engine.WithSeed(seed))
	}

	supervisor := engine.NewSupervisor(func() engine.Thinker {
		return engine.New(opts...)
	}, time.Duration(cfg.GraceMs)*time.Millisecond)
	analyzer := engine.New(append(opts, engine.WithMultiPv(3))...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("engine", supervisor.Engine().ID()).
		Int("budget-ms", cfg.SearchBudgetMs).
		Int("max-tree-mb", cfg.MaxTreeMb).
		Msg("engine-ready")

	if err := server.New(cfg, supervisor, analyzer).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server-failed")
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *flagConfig != "" {
		cfg, err = config.Load(*flagConfig)
	} else {
		cfg, err = config.InitConfig()
	}
	if err != nil {
		return nil, err
	}

	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagBudget >= 0 {
		cfg.SearchBudgetMs = *flagBudget
	}
	if *flagGrace > 0 {
		cfg.GraceMs = *flagGrace
	}
	if *flagMaxTreeMb >= 0 {
		cfg.MaxTreeMb = *flagMaxTreeMb
	}
	if *flagSeed != 0 {
		cfg.Seed = *flagSeed
	}
	if *flagLogLevel != "" {
		cfg.LogLevel = *flagLogLevel
	}
	return cfg, cfg.Validate()
}
