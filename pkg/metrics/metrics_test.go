package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered under the default namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.RecordPatientLookup("found")
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "skinalyze_dashboard_patient_lookups_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordRiskCategory("danger")

			Convey("Then names and constant labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() != "test_unit_risk_categories_total" {
						continue
					}
					found = true
					labels := f.GetMetric()[0].GetLabel()
					pairs := map[string]string{}
					for _, l := range labels {
						pairs[l.GetName()] = l.GetValue()
					}
					So(pairs["env"], ShouldEqual, "test")
					So(pairs["category"], ShouldEqual, "danger")
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When recording presentation metrics", func() {
			manager.RecordPatientLookup("found")
			manager.RecordPatientLookup("found")
			manager.RecordPatientLookup("not_found")
			manager.RecordProgressCategory("caution")
			manager.RecordDateFallback()

			Convey("Then the counters reflect the calls", func() {
				So(testutil.ToFloat64(manager.patientLookups.WithLabelValues("found")), ShouldEqual, 2.0)
				So(testutil.ToFloat64(manager.patientLookups.WithLabelValues("not_found")), ShouldEqual, 1.0)
				So(testutil.ToFloat64(manager.progressCategories.WithLabelValues("caution")), ShouldEqual, 1.0)
				So(testutil.ToFloat64(manager.dateFallbacks), ShouldEqual, 1.0)
			})
		})

		Convey("When recording gauges", func() {
			manager.UpdateRepositoryRecordsTotal(3)
			manager.UpdateSystemGoroutineCount(12)

			Convey("Then the latest value wins", func() {
				So(testutil.ToFloat64(manager.repositoryRecordsTotal), ShouldEqual, 3.0)
				So(testutil.ToFloat64(manager.systemGoroutineCount), ShouldEqual, 12.0)
			})
		})

		Convey("When recording histograms and error metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					manager.RecordRenderLatency(1.5)
					manager.RecordRepositoryQueryLatency(0.2)
					manager.RecordHTTPRequest("patient", "GET", "200")
					manager.RecordHTTPRequestDuration("patient", "GET", "200", 3)
					manager.RecordErrorByComponent("repository", "not_found")
					manager.RecordErrorByType("not_found", "medium")
					manager.RecordErrorByEndpoint("patient", "GET", "not_found")
					manager.RecordErrorLatency("http", "not_found", 2)
					manager.UpdateSystemMemoryUsage(1 << 20)
					manager.RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		manager := NewManager(
			WithPrometheusRegistry(prometheus.NewRegistry()),
			WithMetricsEnabled(false),
		)

		Convey("When recording", func() {
			manager.RecordPatientLookup("found")

			Convey("Then nothing is counted", func() {
				So(testutil.ToFloat64(manager.patientLookups.WithLabelValues("found")), ShouldEqual, 0.0)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then package helpers record without panicking", func() {
			So(func() {
				RecordPatientLookup("found")
				RecordRiskCategory("positive")
				RecordProgressCategory("warning")
				RecordRenderLatency(1)
				RecordDateFallback()
				UpdateRepositoryRecordsTotal(1)
				RecordRepositoryQueryLatency(1)
				RecordHTTPRequest("patients", "GET", "200")
				RecordHTTPRequestDuration("patients", "GET", "200", 1)
				RecordErrorByComponent("api", "bad_request")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("patients", "GET", "client_error")
				RecordErrorLatency("http", "client_error", 1)
				UpdateSystemMemoryUsage(1)
				UpdateSystemGoroutineCount(1)
				RecordSystemGCPauseTime(1)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Reset(func() { Configure() })

		Convey("When it is configured with a namespace and labels", func() {
			Configure(
				WithNamespace("derm"),
				WithSubsystem("web"),
				WithCustomLabels(map[string]string{"env": "staging"}),
			)
			RecordPatientLookup("found")

			Convey("Then the new registry exposes the renamed collectors", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "derm_web_patient_lookups_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "staging")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When recording is disabled", func() {
			Configure(WithMetricsEnabled(false))
			RecordDateFallback()

			Convey("Then nothing is counted", func() {
				So(testutil.ToFloat64(global().dateFallbacks), ShouldEqual, 0.0)
			})
		})

		Convey("When reconfigured", func() {
			before := GetRegistry()
			Configure()

			Convey("Then a fresh registry is used", func() {
				So(GetRegistry(), ShouldNotPointTo, before)
			})
		})
	})
}
