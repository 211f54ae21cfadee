// Package config reads flat environment variables, optionally from a .env
// file.
package config

import (
	"math"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"kriegspiel/game"
)

// Load reads the file named by KRIEG_ENV, .env by default. Variables already
// set in the environment win. A missing file is not an error.
func Load() error {
	envFile := os.Getenv("KRIEG_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err != nil {
		return nil
	}
	return godotenv.Load(envFile)
}

func MaxHypotheses() int {
	return positiveInt("KRIEG_MAX_HYPOTHESES", 2000)
}

// AgentRationality is the agent's quantal λ. Defaults to 0.02.
func AgentRationality() float64 {
	return nonNegativeFloat("KRIEG_AGENT_RATIONALITY", 0.02)
}

// OpponentRationality is the simulated opponent's λ, also used by the
// agent's opponent model. Defaults to 0.004.
func OpponentRationality() float64 {
	return nonNegativeFloat("KRIEG_OPPONENT_RATIONALITY", 0.004)
}

// PriorPath is the prior table file, empty for the uniform table.
func PriorPath() string {
	return os.Getenv("KRIEG_PRIOR_PATH")
}

// EnginePath is a UCI engine binary, empty for the material oracle.
func EnginePath() string {
	return os.Getenv("KRIEG_ENGINE_PATH")
}

func EngineDepth() int {
	return positiveInt("KRIEG_ENGINE_DEPTH", 12)
}

// OracleURL is a remote evaluation service, used when no engine is set.
func OracleURL() string {
	return os.Getenv("KRIEG_ORACLE_URL")
}

func OracleTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv("KRIEG_ORACLE_TIMEOUT"))
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// CheckHints falls back to direction hints on unknown values.
func CheckHints() game.CheckPolicy {
	p, err := game.ParseCheckPolicy(os.Getenv("KRIEG_CHECK_HINTS"))
	if err != nil {
		return game.CheckHintDirection
	}
	return p
}

// MoveCap is the ply limit after which a game is drawn. 0 disables it.
func MoveCap() int {
	n, err := strconv.Atoi(os.Getenv("KRIEG_MOVE_CAP"))
	if err != nil || n < 0 {
		return 600
	}
	return n
}

func MaxAttempts() int {
	return positiveInt("KRIEG_MAX_ATTEMPTS", 64)
}

func Workers() int {
	return positiveInt("KRIEG_WORKERS", runtime.NumCPU())
}

func Ensemble() int {
	return positiveInt("KRIEG_ENSEMBLE", 1)
}

// Seed is KRIEG_SEED, or a random seed when it is unset or malformed.
func Seed() uint64 {
	seed, err := strconv.ParseUint(os.Getenv("KRIEG_SEED"), 10, 64)
	if err != nil {
		return frand.Uint64n(math.MaxUint64)
	}
	return seed
}

func FilterOwnMoves() bool {
	on, err := strconv.ParseBool(os.Getenv("KRIEG_FILTER_OWN_MOVES"))
	if err != nil {
		return true
	}
	return on
}

// LogLevel defaults to info.
func LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Announcer is the rule set shared by referee and beliefs.
func Announcer() game.Announcer {
	return game.Announcer{Checks: CheckHints(), MoveCap: MoveCap()}
}

func positiveInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func nonNegativeFloat(key string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f < 0 || math.IsNaN(f) {
		return def
	}
	return f
}
