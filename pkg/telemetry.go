package optsim

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("github.com/next-exp/opticalsim_go")

const (
	// sensorFamily labels photon counts with the sensitive detector name.
	sensorFamily = "detector"
	// eventStatus labels processed events as "ok" or "error".
	eventStatus = "status"
)

var (
	// photonsArrived counts optical photons reaching a sensor.
	photonsArrived metric.Int64Counter
	// photonsDetected counts the arrivals that passed the detection draw.
	photonsDetected metric.Int64Counter
	// eventsProcessed counts digitized events.
	eventsProcessed metric.Int64Counter
	// eventDuration measures the digitization of one event.
	eventDuration metric.Float64Histogram
)

func init() {
	var err error
	photonsArrived, err = meter.Int64Counter(
		"optsim.photons.arrived",
		metric.WithDescription("The number of optical photons reaching a sensor."),
	)
	if err != nil {
		panic("optsim: failed to init 'optsim.photons.arrived' instrument")
	}

	photonsDetected, err = meter.Int64Counter(
		"optsim.photons.detected",
		metric.WithDescription("The number of optical photons passing the detection draw."),
	)
	if err != nil {
		panic("optsim: failed to init 'optsim.photons.detected' instrument")
	}

	eventsProcessed, err = meter.Int64Counter(
		"optsim.events.processed",
		metric.WithDescription("The number of digitized events."),
	)
	if err != nil {
		panic("optsim: failed to init 'optsim.events.processed' instrument")
	}

	eventDuration, err = meter.Float64Histogram(
		"optsim.event.duration",
		metric.WithDescription("The time spent digitizing a single event."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic("optsim: failed to init 'optsim.event.duration' instrument")
	}
}

// measureEvent records the photon counts of one event and its duration.
// attribute.Set is used with WithAttributeSet to avoid rebuilding the set for
// every instrument.
func measureEvent(ctx context.Context, record *EventRecord, d time.Duration) {
	for _, detector := range []string{DetectorPMT, DetectorMPPC} {
		hits := record.Hits(detector)
		if len(hits) == 0 {
			continue
		}
		detected := 0
		for _, h := range hits {
			if h.Detected {
				detected++
			}
		}
		attrs := metric.WithAttributeSet(attribute.NewSet(attribute.String(sensorFamily, detector)))
		photonsArrived.Add(ctx, int64(len(hits)), attrs)
		photonsDetected.Add(ctx, int64(detected), attrs)
	}

	status := "ok"
	if record.Error {
		status = "error"
	}
	eventsProcessed.Add(ctx, 1, metric.WithAttributeSet(attribute.NewSet(attribute.String(eventStatus, status))))
	eventDuration.Record(ctx, float64(d)/float64(time.Millisecond))
}
