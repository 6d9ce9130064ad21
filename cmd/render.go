package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/skinalyze/internal/domain/types"
)

func newRenderCmd(st *cliState) *cobra.Command {
	var tab string

	cmd := &cobra.Command{
		Use:   "render <patient-id>",
		Short: "Print the patient page as JSON",
		Long: `The render command builds the patient page for one patient and prints it
as JSON. Unknown patients print the not-found page and exit non-zero.

Example:
  skinalyze render 1
  skinalyze render 1 --tab progress`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, stop, err := newService(ctx, st.cfg)
			if err != nil {
				return err
			}
			defer stop()

			page := svc.PatientPage(ctx, args[0], types.ParseTab(tab))
			if err := printJSON(cmd.OutOrStdout(), page); err != nil {
				return err
			}
			if !page.Found {
				return fmt.Errorf("patient %q not found", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&tab, "tab", "t", types.TabDiagnoses.String(), "Active tab: diagnoses or progress")
	return cmd
}
