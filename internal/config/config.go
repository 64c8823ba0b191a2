// Package config loads the command configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	// Environment is the running environment (development, production, ...).
	Environment string `env:"APP_ENV" env-default:"development" validate:"required"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text" validate:"oneof=text json"`

	// BcryptCost is the work factor used to protect passwords.
	BcryptCost int `env:"BCRYPT_COST" env-default:"10" validate:"min=4,max=31"`

	JWTSecret string        `env:"JWT_SECRET" env-default:"default-secret-key-change-in-production" validate:"required"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" env-default:"24h" validate:"gt=0"`

	Simulation Simulation
}

// Simulation configures the fleet simulation command.
type Simulation struct {
	Riders int `env:"SIM_RIDERS" env-default:"5" validate:"min=1"`
	Bikes  int `env:"SIM_BIKES" env-default:"10" validate:"min=1"`
	Rides  int `env:"SIM_RIDES" env-default:"50" validate:"min=0"`
	// MaxRideDuration bounds the simulated length of one ride.
	MaxRideDuration time.Duration `env:"SIM_MAX_RIDE_DURATION" env-default:"3h" validate:"gt=0"`
	Seed            int64         `env:"SIM_SEED" env-default:"1"`
}

// Load reads envFile into the process environment when it exists, then
// fills and validates a Config from the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load env file: %w", err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
