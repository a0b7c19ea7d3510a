package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/attendance-engine-go/internal/app"
	"github.com/cmlabs-hris/attendance-engine-go/internal/cli"
	"github.com/cmlabs-hris/attendance-engine-go/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-engine-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/jwt"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(cli.Deps{
		Services: loadServices,
		Tokens:   loadTokens,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads configuration and routes engine logs to stderr so stdout
// carries only command output.
func loadConfig(opts *cli.RootOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(appHTTP.NewLogger(os.Stderr, level, cfg.App.Env))
	return cfg, nil
}

func loadServices(ctx context.Context, opts *cli.RootOptions) (*cli.Services, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &cli.Services{
		Absences: a.Absences,
		Payroll:  a.Payroll,
		Close:    a.Close,
	}, nil
}

func loadTokens(opts *cli.RootOptions) (jwt.Service, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration), nil
}
