package spotted

import (
	"time"

	"go.opentelemetry.io/otel/api/key"
	"go.opentelemetry.io/otel/api/metric"
)

const (
	messageEventKind    = "message"
	fileSharedEventKind = "fileShared"
)

// instrumenter holds data for core instrumentation
type instrumenter struct {
	coreMetrics coreMetrics
}

// coreMetrics holds the scoring pipeline metrics
type coreMetrics struct {
	eventsSeen             map[string]metric.BoundInt64Counter
	spotsScored            metric.BoundInt64Counter
	duplicatesDropped      metric.BoundInt64Counter
	mutationFailures       metric.BoundInt64Counter
	reconcileLatencyMillis metric.BoundInt64Measure
	slackLatencyMillis     metric.BoundInt64Gauge
}

// newInstrumenter creates a new core instrumenter
func newInstrumenter(appName string, meter metric.Meter) (ins *instrumenter) {
	ins = new(instrumenter)

	defaultLabels := meter.Labels(key.New("name").String(appName))

	spotsScored := meter.NewInt64Counter("spotsScored", metric.WithKeys(key.New("name")))
	duplicatesDropped := meter.NewInt64Counter("duplicatesDropped", metric.WithKeys(key.New("name")))
	mutationFailures := meter.NewInt64Counter("scoreMutationFailures", metric.WithKeys(key.New("name")))
	reconcileLatency := meter.NewInt64Measure("reconcileLatencyMillis", metric.WithKeys(key.New("name")))
	slackLatency := meter.NewInt64Gauge("slackLatencyMillis", metric.WithKeys(key.New("name")))

	ins.coreMetrics = coreMetrics{
		eventsSeen:             newBoundCounterByEventKind("eventsSeen", appName, meter),
		spotsScored:            spotsScored.Bind(defaultLabels),
		duplicatesDropped:      duplicatesDropped.Bind(defaultLabels),
		mutationFailures:       mutationFailures.Bind(defaultLabels),
		reconcileLatencyMillis: reconcileLatency.Bind(defaultLabels),
		slackLatencyMillis:     slackLatency.Bind(defaultLabels)}

	return ins
}

// newBoundCounterByEventKind creates a set of BoundInt64Counter by event kind
func newBoundCounterByEventKind(counterName string, appName string, meter metric.Meter) (boundCounter map[string]metric.BoundInt64Counter) {
	boundCounter = make(map[string]metric.BoundInt64Counter)

	c := meter.NewInt64Counter(counterName, metric.WithKeys(key.New("name"), key.New("eventKind")))
	boundCounter[messageEventKind] = c.Bind(meter.Labels(key.New("name").String(appName), key.New("eventKind").String(messageEventKind)))
	boundCounter[fileSharedEventKind] = c.Bind(meter.Labels(key.New("name").String(appName), key.New("eventKind").String(fileSharedEventKind)))

	return boundCounter
}

type timed func()

// measure returns the execution duration of a timed function
func measure(operation timed) (d time.Duration) {
	before := time.Now()

	operation()

	return time.Now().Sub(before)
}
