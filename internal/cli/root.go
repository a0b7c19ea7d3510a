// Package cli implements attendancectl, the operator command line for the engine.
package cli

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/absence"
	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Services are the engine operations the commands drive. Close releases them.
type Services struct {
	Absences absence.AbsenceService
	Payroll  payroll.PayrollService
	Close    func()
}

// Deps builds what commands need on demand, so issue-token never opens a database.
type Deps struct {
	Services func(ctx context.Context, opts *RootOptions) (*Services, error)
	Tokens   func(opts *RootOptions) (jwt.Service, error)
}

func NewRootCommand(deps Deps) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "attendancectl",
		Short: "Operate the attendance engine",
		Long:  "Run absence detection and salary recalculation on demand, and mint tokens for local testing.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewDetectAbsencesCommand(opts, deps))
	cmd.AddCommand(NewRecalcSalaryCommand(opts, deps))
	cmd.AddCommand(NewIssueTokenCommand(opts, deps))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// withServices loads the services, runs fn and always releases them.
func withServices(ctx context.Context, opts *RootOptions, deps Deps, fn func(*Services) error) error {
	svc, err := deps.Services(ctx, opts)
	if err != nil {
		return err
	}
	if svc.Close != nil {
		defer svc.Close()
	}
	return fn(svc)
}
