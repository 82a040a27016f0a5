package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test-prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics helpers", t, func() {
		Convey("When recording annotation activity", func() {
			So(RecordAnnotationUpserted, ShouldNotPanic)
			So(RecordAnnotationDeleted, ShouldNotPanic)
			So(RecordAnnotationRestored, ShouldNotPanic)
		})

		Convey("When recording store activity", func() {
			So(func() { RecordStoreSave(12.5) }, ShouldNotPanic)
			So(RecordStoreBackup, ShouldNotPanic)
			So(RecordStoreSaveError, ShouldNotPanic)
			So(func() { RecordStoreLoadLatency(3.2) }, ShouldNotPanic)
		})

		Convey("When recording event store activity", func() {
			So(func() { RecordEventsLoaded(42) }, ShouldNotPanic)
		})

		Convey("When updating inventory gauges", func() {
			So(func() { UpdateKnownVideos(3) }, ShouldNotPanic)
			So(func() { UpdateTotalAnnotations(120) }, ShouldNotPanic)
			So(func() { UpdateMatchGroups(2) }, ShouldNotPanic)
			So(func() { UpdateAnnotators(4) }, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() { RecordHTTPRequest("videos", "GET", "200") }, ShouldNotPanic)
			So(func() { RecordHTTPRequestDuration("videos", "GET", "200", 5.0) }, ShouldNotPanic)
		})

		Convey("When recording error metrics", func() {
			So(func() { RecordErrorByType("client_error", "medium") }, ShouldNotPanic)
			So(func() { RecordErrorByEndpoint("annotations", "POST", "client_error") }, ShouldNotPanic)
			So(func() { RecordErrorLatency("store", "write_failed", 8.0) }, ShouldNotPanic)
		})
	})
}

func TestMetricsRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		reg := GetRegistry()

		Convey("Then it should be non-nil and gatherable", func() {
			So(reg, ShouldNotBeNil)
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeNil)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent metric recording", t, func() {
		Convey("When many goroutines record at once", func() {
			done := make(chan struct{})
			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordAnnotationUpserted()
						RecordStoreSave(1.0)
						RecordHTTPRequest("stats", "GET", "200")
					}
					done <- struct{}{}
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then the registry should still gather cleanly", func() {
				_, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
			})
		})
	})
}
