package experiments

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"kriegspiel/agent"
	"kriegspiel/belief"
	"kriegspiel/engine"
	"kriegspiel/experiments/metrics"
	"kriegspiel/game"
	"kriegspiel/gamemaster"
	"kriegspiel/oracle"
	"kriegspiel/prior"
	"kriegspiel/quantal"
)

const (
	OpponentQuantal = "quantal"
	OpponentRandom  = "random"
)

// Config describes an evaluation: the Bayesian agent plays white against a
// simulated opponent for a number of games.
type Config struct {
	Games    int
	OutDir   string // empty skips the CSV records
	Opponent string

	AgentRationality    float64
	OpponentRationality float64
	MaxHypotheses       int
	Workers             int
	Ensemble            int
	FilterOwnMoves      bool
	MaxAttempts         int
	Announcer           game.Announcer
	Seed                uint64

	Prior  *prior.Table  // uniform when nil
	Oracle oracle.Oracle // the agent's oracle, material when nil
	Start  *game.Board   // standard position when nil
}

type Summary struct {
	Games  int
	Wins   int
	Draws  int
	Losses int
	Dir    string // where the records went, empty when not written
}

// Evaluate plays cfg.Games games and tallies them from the agent's side.
func Evaluate(ctx context.Context, cfg Config) (Summary, error) {
	if cfg.Opponent != OpponentQuantal && cfg.Opponent != OpponentRandom {
		return Summary{}, fmt.Errorf("unknown opponent %q", cfg.Opponent)
	}

	summary := Summary{}
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting evaluation of %d games against the %s opponent...", cfg.Games, cfg.Opponent)

	for i := 0; i < cfg.Games; i++ {
		log.Info().Msgf("starting game %d of %d...", i+1, cfg.Games)

		gameMetric, moveMetrics, err := PlayGame(ctx, cfg, cfg.Seed+uint64(i))
		if err != nil {
			return summary, fmt.Errorf("game %d: %w", i+1, err)
		}
		summary.Games++
		switch gameMetric.Winner {
		case game.White.String():
			summary.Wins++
		case game.Black.String():
			summary.Losses++
		default:
			summary.Draws++
		}

		gameRecords = append(gameRecords, metrics.GameRecord{
			ID:         i + 1,
			Agent1:     1,
			Agent2:     2,
			GameMetric: gameMetric,
		})
		for _, mm := range moveMetrics {
			moveRecords = append(moveRecords, metrics.MoveRecord{
				Game:       i + 1,
				MoveMetric: mm,
			})
		}

		log.Info().Msgf("completed game %d of %d with winner: %s", i+1, cfg.Games, gameMetric.Winner)
	}

	log.Info().Msgf("completed evaluation: %d wins, %d draws, %d losses", summary.Wins, summary.Draws, summary.Losses)

	if cfg.OutDir == "" {
		return summary, nil
	}
	dir, err := writeRecords(cfg, gameRecords, moveRecords)
	if err != nil {
		return summary, err
	}
	summary.Dir = dir
	return summary, nil
}

func writeRecords(cfg Config, games []metrics.GameRecord, moves []metrics.MoveRecord) (string, error) {
	writer, err := metrics.NewWriter(cfg.OutDir, "evaluation")
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	err = writer.WriteAgentConfigs(agentConfigs(cfg))
	if err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	err = writer.WriteGameRecords(games)
	if err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	err = writer.WriteMoveRecords(moves)
	if err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msgf("stored move records in %s", writer.Dir())
	return writer.Dir(), nil
}

func agentConfigs(cfg Config) []metrics.AgentConfig {
	opponent := metrics.AgentConfig{ID: 2, Kind: cfg.Opponent}
	if cfg.Opponent == OpponentQuantal {
		opponent.Rationality = cfg.OpponentRationality
	}
	return []metrics.AgentConfig{
		{ID: 1, Kind: "bayesian", Rationality: cfg.AgentRationality, MaxHypotheses: cfg.MaxHypotheses, Ensemble: cfg.Ensemble},
		opponent,
	}
}

// PlayGame plays one game with every random stream derived from seed.
func PlayGame(ctx context.Context, cfg Config, seed uint64) (metrics.GameMetric, []metrics.MoveMetric, error) {
	start := game.NewBoard()
	if cfg.Start != nil {
		start = *cfg.Start
	}
	referee := gamemaster.NewReferee(gamemaster.WithPosition(start), gamemaster.WithAnnouncer(cfg.Announcer))

	bayesian, err := newAgent(cfg, start, seed)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	opponent, err := newOpponent(cfg, referee, seed)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}

	var opts []engine.Option
	if cfg.MaxAttempts > 0 {
		opts = append(opts, engine.WithMaxAttempts(cfg.MaxAttempts))
	}
	opts = append(opts, engine.WithCollector(metrics.NewCollector()))
	controller, err := engine.NewController(referee, bayesian, opponent, opts...)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}

	startTime := time.Now()
	result, err := controller.Run(ctx)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	endTime := time.Now()

	return metrics.GameMetric{
		Winner:          result.WinnerName(),
		Outcome:         result.Outcome,
		StartTime:       startTime,
		EndTime:         endTime,
		Duration:        endTime.Sub(startTime),
		TotalMoves:      result.Plies,
		IllegalAttempts: referee.IllegalAttempts(game.White) + referee.IllegalAttempts(game.Black),
		Recoveries:      bayesian.Belief().Stats().Recoveries,
	}, result.Moves, nil
}

func newAgent(cfg Config, start game.Board, seed uint64) (*agent.Bayesian, error) {
	opts := []belief.Option{
		belief.WithAnnouncer(cfg.Announcer),
		belief.WithOwnMoveFilter(cfg.FilterOwnMoves),
		belief.WithRand(rand.NewPCG(seed, 1)),
	}
	if cfg.MaxHypotheses > 0 {
		opts = append(opts, belief.WithMaxHypotheses(cfg.MaxHypotheses))
	}
	if cfg.Workers > 0 {
		opts = append(opts, belief.WithWorkers(cfg.Workers))
	}
	if cfg.Prior != nil {
		opts = append(opts, belief.WithPrior(cfg.Prior))
	}
	if cfg.Opponent == OpponentQuantal && cfg.OpponentRationality > 0 {
		opts = append(opts, belief.WithLikelihood(agent.OpponentModel(oracle.Material{}, cfg.OpponentRationality)))
	}
	b := belief.New(game.White, opts...)
	b.Initialize(start)

	model, err := quantal.NewModel(cfg.AgentRationality, quantal.NewSource(seed))
	if err != nil {
		return nil, err
	}
	o := cfg.Oracle
	if o == nil {
		o = oracle.Material{}
	}
	var agentOpts []agent.BayesianOption
	if cfg.Ensemble > 1 {
		agentOpts = append(agentOpts, agent.WithEnsemble(cfg.Ensemble))
	}
	if cfg.Workers > 0 {
		agentOpts = append(agentOpts, agent.WithEvalWorkers(cfg.Workers))
	}
	return agent.NewBayesian(game.White, b, o, model, agentOpts...), nil
}

func newOpponent(cfg Config, referee *gamemaster.Referee, seed uint64) (agent.Agent, error) {
	src := rand.NewPCG(seed, 2)
	if cfg.Opponent == OpponentRandom {
		return agent.NewRandom(game.Black, referee.Snapshot, src), nil
	}
	model, err := quantal.NewModel(cfg.OpponentRationality, src)
	if err != nil {
		return nil, err
	}
	return agent.NewQuantal(game.Black, referee.Snapshot, oracle.Material{}, model), nil
}
