package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/skinalyze/internal/adapters/repository"
	service "github.com/okian/skinalyze/internal/app"
	"github.com/okian/skinalyze/internal/domain/model"
	"github.com/okian/skinalyze/internal/domain/presentation"
	"github.com/okian/skinalyze/internal/domain/types"
	"github.com/okian/skinalyze/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

var errBackendDown = errors.New("backend down")

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (model.Patient, error) {
	return model.Patient{}, errBackendDown
}
func (brokenStore) List(context.Context, int) ([]model.Patient, error) { return nil, errBackendDown }
func (brokenStore) Count(context.Context) (int, error)                 { return 0, errBackendDown }
func (brokenStore) Close() error                                       { return nil }

func fixedClock() presentation.Option {
	return presentation.WithClock(func() time.Time {
		return time.Date(2025, time.November, 6, 9, 5, 0, 0, time.UTC)
	})
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["maxPatientList"], ShouldEqual, 100)
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()

		Convey("When rendering", func() {
			_, err := svc.Patients(context.Background(), 0)
			page := svc.PatientPage(context.Background(), "1", types.TabDiagnoses)

			Convey("Then calls fail or degrade", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(page.Found, ShouldBeFalse)
			})
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithMapperOptions(fixedClock(), presentation.WithLocation(time.UTC)))
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start with the demo patients", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["totalPatients"], ShouldEqual, len(repository.SeedPatients()))
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a fixtures file", t, func() {
		path := filepath.Join(t.TempDir(), "patients.yaml")
		So(os.WriteFile(path, []byte("patients:\n  - id: f-1\n    name: Fixture Patient\n"), 0o600), ShouldBeNil)

		svc := service.New(service.WithFixturesPath(path))
		defer svc.Stop()

		Convey("When starting", func() {
			err := svc.Start(context.Background())

			Convey("Then the fixtures are served", func() {
				So(err, ShouldBeNil)
				cards, err := svc.Patients(context.Background(), 0)
				So(err, ShouldBeNil)
				So(cards, ShouldHaveLength, 1)
				So(cards[0].Initials, ShouldEqual, "FP")
			})
		})
	})

	Convey("Given a missing fixtures file", t, func() {
		svc := service.New(service.WithFixturesPath(filepath.Join(t.TempDir(), "absent.yaml")))

		Convey("When starting", func() {
			err := svc.Start(context.Background())

			Convey("Then start fails with a fixtures error", func() {
				So(errors.Is(err, repository.ErrLoadFixtures), ShouldBeTrue)
			})
		})
	})
}

func TestService_PatientPage(t *testing.T) {
	Convey("Given a started service with demo patients", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithMapperOptions(fixedClock(), presentation.WithLocation(time.UTC)))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When rendering a known patient", func() {
			page := svc.PatientPage(ctx, "1", types.TabDiagnoses)

			Convey("Then the diagnoses tab is built", func() {
				So(page.Found, ShouldBeTrue)
				So(page.Header.Name, ShouldEqual, "Sarah Johnson")
				So(page.Diagnoses, ShouldNotBeNil)
				So(page.Diagnoses.Diagnoses[0].RiskCategory, ShouldEqual, types.CategoryPositive)
				So(page.Progress, ShouldBeNil)
			})
		})

		Convey("When rendering the progress tab", func() {
			page := svc.PatientPage(ctx, "1", types.TabProgress)

			Convey("Then the summary reports improvement", func() {
				So(page.Progress, ShouldNotBeNil)
				So(page.Progress.Summary.Message, ShouldEqual, "Improving by 9% since first observation")
			})
		})

		Convey("When rendering an unknown patient", func() {
			page := svc.PatientPage(ctx, "missing", types.TabDiagnoses)

			Convey("Then the not-found page is returned", func() {
				So(page.Found, ShouldBeFalse)
				So(page.Message, ShouldEqual, "Patient not found")
				So(svc.GetStats()["notFound"], ShouldEqual, int64(1))
			})
		})

		Convey("When fetching views directly", func() {
			diag, err := svc.DiagnosisHistory(ctx, "2")
			So(err, ShouldBeNil)
			progress, err := svc.TreatmentProgress(ctx, "2")
			So(err, ShouldBeNil)
			_, missingErr := svc.DiagnosisHistory(ctx, "missing")

			Convey("Then views are returned and missing patients fail", func() {
				So(diag.Diagnoses, ShouldHaveLength, 2)
				So(progress.Entries[1].Category, ShouldEqual, types.CategoryPositive)
				So(errors.Is(missingErr, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service whose store is failing", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithStore(brokenStore{}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When rendering a patient", func() {
			page := svc.PatientPage(ctx, "1", types.TabDiagnoses)

			Convey("Then the failure degrades to the not-found page", func() {
				So(page.Found, ShouldBeFalse)
				So(page.BackLink, ShouldEqual, "/patients")
				So(svc.GetStats()["failures"], ShouldEqual, int64(1))
			})
		})

		Convey("When listing patients", func() {
			_, err := svc.Patients(ctx, 10)

			Convey("Then the error is returned", func() {
				So(errors.Is(err, errBackendDown), ShouldBeTrue)
			})
		})
	})
}

func TestService_Patients(t *testing.T) {
	Convey("Given a service with a small list cap", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithMaxPatientList(2))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When listing without a limit", func() {
			cards, err := svc.Patients(ctx, 0)

			Convey("Then the cap applies", func() {
				So(err, ShouldBeNil)
				So(cards, ShouldHaveLength, 2)
				So(cards[0].ID, ShouldEqual, "1")
				So(cards[1].WorstRisk, ShouldEqual, types.CategoryDanger)
			})
		})

		Convey("When listing with a smaller limit", func() {
			cards, err := svc.Patients(ctx, 1)

			Convey("Then the limit applies", func() {
				So(err, ShouldBeNil)
				So(cards, ShouldHaveLength, 1)
			})
		})
	})
}
