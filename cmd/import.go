package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/skinalyze/internal/adapters/repository"
	"github.com/okian/skinalyze/internal/config"
	"github.com/okian/skinalyze/internal/domain/model"
	"github.com/okian/skinalyze/pkg/logger"
)

// ErrImportStore is returned when import runs against a store that does
// not persist.
var ErrImportStore = errors.New("import requires store: postgres")

// patientWriter stores one patient with all of its records.
type patientWriter interface {
	Put(ctx context.Context, p model.Patient) error
}

func newImportCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "import <fixtures>",
		Short: "Load a patient fixtures file into PostgreSQL",
		Long: `The import command reads a YAML or JSON file with a top-level "patients"
list, applies the schema and writes every patient. Existing patients with
the same id are replaced together with their records.

Example:
  SKINALYZE_STORE=postgres SKINALYZE_DATABASE_URL=postgres://... skinalyze import patients.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			patients, err := repository.LoadFixtures(args[0])
			if err != nil {
				return err
			}
			if st.cfg.Store != config.StorePostgres {
				return fmt.Errorf("%w (configured %q)", ErrImportStore, st.cfg.Store)
			}

			loc, err := st.cfg.Location()
			if err != nil {
				return fmt.Errorf("resolve timezone: %w", err)
			}
			store, err := openPGStore(ctx, st.cfg, loc)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := importPatients(ctx, store, patients)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d patients\n", n)
			return nil
		},
	}
}

// importPatients writes patients in order and stops at the first failure.
// It returns how many were written.
func importPatients(ctx context.Context, w patientWriter, patients []model.Patient) (int, error) {
	log := logger.Named("import")
	for i, p := range patients {
		if err := w.Put(ctx, p); err != nil {
			return i, fmt.Errorf("import patient %q: %w", p.ID, err)
		}
		log.Debug(ctx, "imported patient", logger.String("patient_id", p.ID))
	}
	return len(patients), nil
}
