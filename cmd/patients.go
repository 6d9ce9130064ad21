package main

import (
	"github.com/spf13/cobra"
)

func newPatientsCmd(st *cliState) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Print patient summary cards as JSON",
		Long: `The patients command lists patient cards ordered by id.

Example:
  skinalyze patients
  skinalyze patients --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, stop, err := newService(ctx, st.cfg)
			if err != nil {
				return err
			}
			defer stop()

			cards, err := svc.Patients(ctx, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cards)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of patients (0 uses max_patient_list)")
	return cmd
}
