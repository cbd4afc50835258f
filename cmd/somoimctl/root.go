package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/metacode22/study-somoim/internal/app/backend"
	"github.com/metacode22/study-somoim/internal/app/system/phase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cliConfig is read from SOMOIM_* environment variables after an optional
// .env file is loaded.
type cliConfig struct {
	BackendBaseURL string        `envconfig:"BACKEND_BASE_URL" default:"http://localhost:4000/study-somoim"`
	Timezone       string        `envconfig:"TIMEZONE" default:"Asia/Seoul"`
	UserID         string        `envconfig:"USER_ID"`
	Timeout        time.Duration `envconfig:"CLI_TIMEOUT" default:"15s"`
}

type globalOptions struct {
	envFile string
	output  string
	at      string
	debug   bool
}

// env is everything a subcommand needs, built once in PersistentPreRunE.
type env struct {
	cfg    cliConfig
	api    *backend.Client
	loc    *time.Location
	clock  phase.Clock
	format format
	log    *zap.Logger
}

type envKey struct{}

func envFrom(cmd *cobra.Command) *env {
	e, _ := cmd.Context().Value(envKey{}).(*env)
	return e
}

func newRootCommand() *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:           "somoimctl",
		Short:         "Inspect chapters, recruiting groups and eligibility",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading SOMOIM_* variables")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format: table, json or yaml")
	root.PersistentFlags().StringVar(&opts.at, "at", "", "evaluate phases at this instant (RFC 3339) instead of now")
	root.PersistentFlags().BoolVarP(&opts.debug, "debug", "D", false, "log backend calls")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		e, err := buildEnv(opts)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(context.WithValue(ctx, envKey{}, e))
		return nil
	}

	root.AddCommand(
		phaseCommand(),
		chaptersCommand(),
		groupsCommand(),
		eligibilityCommand(),
	)
	return root
}

func buildEnv(opts globalOptions) (*env, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", opts.envFile, err)
		}
	}

	var cfg cliConfig
	if err := envconfig.Process("SOMOIM", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return newEnv(cfg, opts)
}

func newEnv(cfg cliConfig, opts globalOptions) (*env, error) {
	f, err := parseFormat(opts.output)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}

	var clock phase.Clock = phase.SystemClock{}
	if opts.at != "" {
		t, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return nil, fmt.Errorf("--at: %w", err)
		}
		clock = phase.FixedClock(t)
	}

	logger := zap.NewNop()
	if opts.debug {
		if logger, err = zap.NewDevelopment(); err != nil {
			return nil, err
		}
	}

	api, err := backend.New(cfg.BackendBaseURL,
		backend.WithHTTPClient(&http.Client{Timeout: cfg.Timeout, Transport: backend.NewTransport(4)}),
		backend.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, api: api, loc: loc, clock: clock, format: f, log: logger}, nil
}

// context bounds one command's backend calls by the configured timeout.
func (e *env) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), e.cfg.Timeout)
}
