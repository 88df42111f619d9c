package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			registryOpt := WithPrometheusRegistry(prometheus.NewRegistry())

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(registryOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given manager creation", t, func() {
		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)

				Convey("And the registry should carry the collector metrics", func() {
					families, err := registry.Gather()
					So(err, ShouldBeNil)

					names := make(map[string]bool, len(families))
					for _, f := range families {
						names[f.GetName()] = true
					}
					So(names["spindle_collector_spins_ingested_total"], ShouldBeTrue)
					So(names["spindle_collector_ledger_size"], ShouldBeTrue)
					So(names["spindle_collector_snapshot_saves_total"], ShouldBeTrue)
					So(names["spindle_collector_ws_clients"], ShouldBeTrue)
				})
			})
		})

		Convey("When creating with custom namespace and subsystem", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("custom"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the metric names follow them", func() {
				So(manager, ShouldNotBeNil)

				families, err := registry.Gather()
				So(err, ShouldBeNil)

				found := false
				for _, f := range families {
					if f.GetName() == "custom_unit_spins_ingested_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})
	})
}

func TestGlobalRecording(t *testing.T) {
	Convey("Given the global metrics helpers", t, func() {
		Convey("When recording ingestion metrics", func() {
			So(func() {
				RecordSpinIngested()
				RecordSpinDuplicate()
				RecordFetchError()
				RecordParseError()
				RecordFetchLatency(12.5)
			}, ShouldNotPanic)
		})

		Convey("When recording store metrics", func() {
			So(func() {
				UpdateLedgerSize(10)
				UpdatePatternStoreSize(3)
				RecordPatternInserted()
				RecordPatternMerged()
			}, ShouldNotPanic)
		})

		Convey("When recording persistence metrics", func() {
			So(func() {
				RecordSnapshotSave()
				RecordSnapshotSaveError()
				RecordSnapshotSaveLatency(4.2)
			}, ShouldNotPanic)
		})

		Convey("When recording broadcast metrics", func() {
			So(func() {
				UpdateWSClients(2)
				RecordWSMessageSent()
				RecordWSSendFailure()
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP and error metrics", func() {
			So(func() {
				RecordHTTPRequest("spins", "GET", "200")
				RecordHTTPRequestDuration("spins", "GET", "200", 1.5)
				RecordErrorByComponent("feed", "fetch_failed")
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(42)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("Then the shared registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
