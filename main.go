package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"kriegspiel/config"
	"kriegspiel/experiments"
	"kriegspiel/oracle"
	"kriegspiel/prior"
)

func main() {
	mode := flag.String("mode", "play", "play, evaluate or serve")
	games := flag.Int("games", 10, "Number of games to evaluate")
	out := flag.String("out", "experiments", "Directory for evaluation records")
	opponent := flag.String("opponent", experiments.OpponentQuantal, "Simulated opponent: quantal or random")
	addr := flag.String("addr", ":8080", "Listen address of the oracle service")
	flag.Parse()

	if err := config.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	zerolog.SetGlobalLevel(config.LogLevel())
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch *mode {
	case "play":
		err = run(ctx, *opponent, 1, "")
	case "evaluate":
		err = run(ctx, *opponent, *games, *out)
	case "serve":
		err = serve(*addr)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("kriegspiel failed")
	}
}

func run(ctx context.Context, opponent string, games int, out string) error {
	table := prior.Uniform()
	if path := config.PriorPath(); path != "" {
		t, err := prior.Load(path)
		if err != nil {
			return err
		}
		table = t
	}

	o, closeOracle, err := newOracle()
	if err != nil {
		return err
	}
	defer closeOracle()

	seed := config.Seed()
	log.Info().Msgf("seed %d", seed)

	summary, err := experiments.Evaluate(ctx, experiments.Config{
		Games:               games,
		OutDir:              out,
		Opponent:            opponent,
		AgentRationality:    config.AgentRationality(),
		OpponentRationality: config.OpponentRationality(),
		MaxHypotheses:       config.MaxHypotheses(),
		Workers:             config.Workers(),
		Ensemble:            config.Ensemble(),
		FilterOwnMoves:      config.FilterOwnMoves(),
		MaxAttempts:         config.MaxAttempts(),
		Announcer:           config.Announcer(),
		Seed:                seed,
		Prior:               table,
		Oracle:              o,
	})
	if err != nil {
		return err
	}
	fmt.Printf("games %d, wins %d, draws %d, losses %d\n", summary.Games, summary.Wins, summary.Draws, summary.Losses)
	if summary.Dir != "" {
		fmt.Printf("records in %s\n", summary.Dir)
	}
	return nil
}

// newOracle picks a UCI engine, then a remote service, then material.
func newOracle() (oracle.Oracle, func(), error) {
	if path := config.EnginePath(); path != "" {
		u, err := oracle.NewUCI(path, config.EngineDepth())
		if err != nil {
			return nil, nil, err
		}
		return u, func() {
			if err := u.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close engine")
			}
		}, nil
	}
	if url := config.OracleURL(); url != "" {
		return oracle.NewRemote(url, config.OracleTimeout()), func() {}, nil
	}
	return oracle.Material{}, func() {}, nil
}

// serve exposes the configured oracle over HTTP.
func serve(addr string) error {
	o, closeOracle, err := newOracle()
	if err != nil {
		return err
	}
	defer closeOracle()

	log.Info().Msgf("oracle listening on %s", addr)
	return http.ListenAndServe(addr, oracle.NewHandler(o))
}
