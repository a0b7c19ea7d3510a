package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func NewDetectAbsencesCommand(rootOpts *RootOptions, deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "detect-absences",
		Short: "Record absences for shifts that ended without attendance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			return withServices(cmd.Context(), rootOpts, deps, func(svc *Services) error {
				out.VerboseLog("Running absence detection")
				res, err := svc.Absences.Detect(cmd.Context())
				if err != nil {
					return fmt.Errorf("absence detection failed: %w", err)
				}
				return out.Print(res, func(w io.Writer) {
					fmt.Fprintf(w, "date %s: checked %d, recorded %d, failures %d\n",
						res.Date, res.Checked, len(res.Created), res.Failures)
					for _, id := range res.Created {
						fmt.Fprintf(w, "  absence %s\n", id)
					}
				})
			})
		},
	}
}
