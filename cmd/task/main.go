package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/samber/do"

	"github.com/jbaris/grain-price-analyzer/cmd/task/cmd"
	"github.com/jbaris/grain-price-analyzer/database"
	"github.com/jbaris/grain-price-analyzer/internal/api/bna"
	"github.com/jbaris/grain-price-analyzer/internal/api/datosgobar"
	"github.com/jbaris/grain-price-analyzer/internal/api/ggsa"
	"github.com/jbaris/grain-price-analyzer/internal/report"
)

const (
	envFile = "./cmd/task/.env"
)

type envVars struct {
	DataDir         string `env:"DATA_DIR" envDefault:"../data"`
	ExchangeDestURL string `env:"EXCHANGE_DEST_URL" envDefault:"file://../data/dolar_exchange.json"`
	PricesDestURL   string `env:"PRICES_DEST_URL"`

	DatosGobArBaseURL string `env:"DATOSGOBAR_BASE_URL" envDefault:"https://apis.datos.gob.ar"`
	GGSABaseURL       string `env:"GGSA_BASE_URL" envDefault:"https://www.ggsa.com.ar"`
	BNABaseURL        string `env:"BNA_BASE_URL" envDefault:"https://www.bna.com.ar"`
	GGSACSRFToken     string `env:"GGSA_CSRF_TOKEN"`
	GGSASessionID     string `env:"GGSA_SESSION_ID"`

	LogLevel          string `env:"LOG_LEVEL" envDefault:"info"`
	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"development"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
}

var ev envVars

func init() {
	_, err := os.Stat(envFile)
	if err == nil {
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load .env file: %v\n", err)
			os.Exit(1)
		}
	} else if !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to check env file existence: %v\n", err)
		os.Exit(1)
	}

	ev, err = env.ParseAs[envVars]()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse environment variables: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	runID := uuid.NewString()

	var level slog.Level
	if err := level.UnmarshalText([]byte(ev.LogLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).With("run_id", runID)

	sentryEnabled, err := report.Init(ev.SentryDSN, ev.SentryEnvironment)
	if err != nil {
		logger.Warn("failed to initialize sentry", "error", err)
	}

	dbConfig := database.Config{
		Host:     ev.DBHost,
		Port:     ev.DBPort,
		User:     ev.DBUser,
		Password: ev.DBPassword,
		DBName:   ev.DBName,
		SSLMode:  ev.DBSSLMode,
	}

	ctx := context.Background()

	injector := do.New()
	do.ProvideValue(injector, logger)
	do.ProvideValue(injector, cmd.Paths{
		DataDir:         ev.DataDir,
		ExchangeDestURL: ev.ExchangeDestURL,
		PricesDestURL:   ev.PricesDestURL,
	})
	do.Provide(injector, func(i *do.Injector) (*datosgobar.Client, error) {
		return datosgobar.NewClient(ev.DatosGobArBaseURL), nil
	})
	do.Provide(injector, func(i *do.Injector) (*ggsa.Client, error) {
		return ggsa.NewClient(ev.GGSABaseURL, ggsa.Credentials{
			CSRFToken: ev.GGSACSRFToken,
			SessionID: ev.GGSASessionID,
		}), nil
	})
	do.Provide(injector, func(i *do.Injector) (*bna.Client, error) {
		return bna.NewClient(ev.BNABaseURL), nil
	})
	do.Provide(injector, func(i *do.Injector) (database.DB, error) {
		return database.Connect(ctx, dbConfig)
	})

	command := cmd.NewRootCmd(injector)
	command.SetContext(ctx)

	executed, err := command.ExecuteC()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)

		if sentryEnabled {
			report.CaptureCommandError(executed.CommandPath(), runID, report.CurrentHub(), err)
			report.Flush()
		}
		os.Exit(1)
	}
}
