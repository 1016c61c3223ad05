package main

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jbaris/grain-price-analyzer/cmd/cli/cmd"
	"github.com/jbaris/grain-price-analyzer/database"
)

const (
	envFile = "./cmd/cli/.env"
)

// cli only touches the database, so it reads the DB_* subset of the task env.
type envVars struct {
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
}

func (ev envVars) dbConfig() database.Config {
	return database.Config{
		Host:     ev.DBHost,
		Port:     ev.DBPort,
		User:     ev.DBUser,
		Password: ev.DBPassword,
		DBName:   ev.DBName,
		SSLMode:  ev.DBSSLMode,
	}
}

func loadEnv() (envVars, error) {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return envVars{}, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return envVars{}, fmt.Errorf("failed to check env file existence: %w", err)
	}

	ev, err := env.ParseAs[envVars]()
	if err != nil {
		return envVars{}, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	return ev, nil
}

func main() {
	ev, err := loadEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.WithValue(context.Background(), database.CTXKeyDBConfig, ev.dbConfig())

	command := cmd.NewRootCmd()
	command.SetContext(ctx)

	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
