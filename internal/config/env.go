package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"battleship/internal/app"
	"battleship/internal/game"
)

// Config is the process configuration. Environment variables supply defaults
// and subcommand flags override them.
type Config struct {
	BoardSize       int    `env:"BATTLESHIP_BOARD_SIZE" envDefault:"10"`
	ShipLength      int    `env:"BATTLESHIP_SHIP_LENGTH" envDefault:"3"`
	ShipOrientation string `env:"BATTLESHIP_SHIP_ORIENTATION" envDefault:"H"`
	ShipRow         int    `env:"BATTLESHIP_SHIP_ROW" envDefault:"0"`
	ShipCol         int    `env:"BATTLESHIP_SHIP_COL" envDefault:"0"`
	RandomizeCPU    bool   `env:"BATTLESHIP_RANDOMIZE_CPU" envDefault:"false"`
	Seed            int64  `env:"BATTLESHIP_SEED" envDefault:"0"`
	Prove           bool   `env:"BATTLESHIP_PROVE" envDefault:"false"`
	KeysDir         string `env:"BATTLESHIP_KEYS_DIR" envDefault:"./keys"`
	Addr            string `env:"BATTLESHIP_ADDR" envDefault:":8080"`
	LogLevel        string `env:"BATTLESHIP_LOG_LEVEL" envDefault:"warn"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GameFlags registers the game-shape flags on fs, defaulting to cfg's values.
func (c *Config) GameFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.BoardSize, "size", c.BoardSize, "board size N (N×N grid)")
	fs.IntVar(&c.ShipLength, "ship-length", c.ShipLength, "ship length")
	fs.StringVar(&c.ShipOrientation, "ship-orientation", c.ShipOrientation, "ship orientation, H or V")
	fs.IntVar(&c.ShipRow, "ship-row", c.ShipRow, "ship origin row")
	fs.IntVar(&c.ShipCol, "ship-col", c.ShipCol, "ship origin column")
	fs.BoolVar(&c.RandomizeCPU, "random-cpu", c.RandomizeCPU, "place the CPU ship at random")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "RNG seed, 0 for random")
	fs.BoolVar(&c.Prove, "prove", c.Prove, "commit to the CPU board and prove every answer")
	fs.StringVar(&c.KeysDir, "keys", c.KeysDir, "proving/verifying keys directory")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
}

// Game builds the session configuration.
func (c Config) Game() (app.Config, error) {
	o, err := game.ParseOrientation(c.ShipOrientation)
	if err != nil {
		return app.Config{}, err
	}
	cfg := app.Config{
		BoardSize: c.BoardSize,
		Fleet: []app.ShipSpec{{
			Origin:      game.Coord{Row: c.ShipRow, Col: c.ShipCol},
			Length:      c.ShipLength,
			Orientation: o,
		}},
		RandomizeCPU: c.RandomizeCPU,
		Seed:         c.Seed,
	}
	if err := cfg.Validate(); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

// Logger builds a console logger on stderr at the configured level.
func (c Config) Logger() (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger(), nil
}
