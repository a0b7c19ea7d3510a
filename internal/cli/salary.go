package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-engine-go/internal/pkg/validator"
	"github.com/spf13/cobra"
)

type recalcOptions struct {
	employeeID string
	date       string
	period     bool
	all        bool
}

func (o recalcOptions) validate() error {
	switch {
	case o.all && o.employeeID != "":
		return errors.New("--all and --employee are mutually exclusive")
	case o.all && o.period:
		return errors.New("--period requires --employee")
	case !o.all && o.employeeID == "":
		return errors.New("either --employee or --all is required")
	case o.date != "" && o.period:
		return errors.New("--date and --period are mutually exclusive")
	}
	if o.date != "" {
		if _, ok := validator.IsValidDate(o.date); !ok {
			return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", o.date)
		}
	}
	return nil
}

func NewRecalcSalaryCommand(rootOpts *RootOptions, deps Deps) *cobra.Command {
	opts := recalcOptions{}

	cmd := &cobra.Command{
		Use:   "recalc-salary",
		Short: "Recompute stored daily salaries",
		Long: `Recompute daily salary rows.

With --employee, one day (--date, default today) or the whole current pay period
(--period) is recomputed for that employee. With --all, the date is recomputed
for every active employee.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			out := newFormatter(rootOpts, cmd)
			return withServices(cmd.Context(), rootOpts, deps, func(svc *Services) error {
				if opts.all {
					return recalcAll(cmd, out, svc.Payroll, opts.date)
				}
				return recalcEmployee(cmd, out, svc.Payroll, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.employeeID, "employee", "", "employee id")
	cmd.Flags().StringVar(&opts.date, "date", "", "business date YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&opts.period, "period", false, "recompute the whole current pay period")
	cmd.Flags().BoolVar(&opts.all, "all", false, "recompute every active employee")

	return cmd
}

func recalcAll(cmd *cobra.Command, out *OutputFormatter, svc payroll.PayrollService, date string) error {
	out.VerboseLog("Recalculating all employees for %q", date)
	res, err := svc.RecalculateAll(cmd.Context(), date)
	if err != nil {
		return fmt.Errorf("recalculation failed: %w", err)
	}
	if err := out.Print(res, func(w io.Writer) {
		fmt.Fprintf(w, "date %s: calculated %d, failed %d\n", res.Date, res.Calculated, len(res.Failed))
		for _, id := range res.Failed {
			fmt.Fprintf(w, "  failed %s\n", id)
		}
	}); err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d employee(s) failed", len(res.Failed))
	}
	return nil
}

func recalcEmployee(cmd *cobra.Command, out *OutputFormatter, svc payroll.PayrollService, opts recalcOptions) error {
	req := payroll.CalculateDailyRequest{
		EmployeeID:        opts.employeeID,
		RecalculatePeriod: opts.period,
	}
	if opts.date != "" {
		req.Date = &opts.date
	}

	out.VerboseLog("Recalculating employee %s", opts.employeeID)
	res, err := svc.CalculateDaily(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("recalculation failed: %w", err)
	}
	return out.Print(res, func(w io.Writer) {
		fmt.Fprintf(w, "employee %s, period %s..%s\n", res.EmployeeID, res.Period.Start, res.Period.End)
		for _, day := range res.PerDay {
			fmt.Fprintf(w, "  %s  hours %.2f  gross %s  deductions %s  net %s\n",
				day.Date, day.TotalWorkHours, day.GrossSalary.StringFixed(2),
				day.TotalDeductions.StringFixed(2), day.NetSalary.StringFixed(2))
		}
		fmt.Fprintf(w, "period net %s\n", res.PeriodTotals.Net.StringFixed(2))
	})
}
