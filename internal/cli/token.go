package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/attendance-engine-go/internal/domain/user"
	"github.com/spf13/cobra"
)

type issuedToken struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
}

func NewIssueTokenCommand(rootOpts *RootOptions, deps Deps) *cobra.Command {
	var (
		employeeID string
		role       string
		branchID   string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Print a signed access token for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			actor := user.Actor{EmployeeID: employeeID, Role: user.Role(role)}
			if !actor.Role.Valid() {
				return fmt.Errorf("invalid role %q: must be one of %v", role, user.AllRoles())
			}
			if branchID != "" {
				actor.BranchID = &branchID
			}

			tokens, err := deps.Tokens(rootOpts)
			if err != nil {
				return err
			}
			token, expiresAt, err := tokens.GenerateAccessToken(actor, ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			out := newFormatter(rootOpts, cmd)
			out.VerboseLog("Issued %s token for %s, expires %s", role, employeeID, time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
			return out.Print(issuedToken{AccessToken: token, ExpiresAt: expiresAt}, func(w io.Writer) {
				fmt.Fprintln(w, token)
			})
		},
	}

	cmd.Flags().StringVar(&employeeID, "employee", "", "employee id (required)")
	cmd.Flags().StringVar(&role, "role", string(user.RoleStaff), "role claim")
	cmd.Flags().StringVar(&branchID, "branch", "", "branch id claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default: configured)")
	_ = cmd.MarkFlagRequired("employee")

	return cmd
}
