// Package observabilitytest records logs and metrics in memory for assertions.
package observabilitytest

import (
	"sync"

	"github.com/Zhima-Mochi/pizzeria/internal/observability"
)

type Entry struct {
	Level  string
	Msg    string
	Fields map[string]any
}

// Recorder implements observability.Observability with a no-op tracer.
type Recorder struct {
	mu       sync.Mutex
	entries  []Entry
	counters map[string]float64
	observed map[string]int
}

func New() *Recorder {
	return &Recorder{
		counters: make(map[string]float64),
		observed: make(map[string]int),
	}
}

func (r *Recorder) Tracer() observability.Tracer { return observability.NopTracer() }

func (r *Recorder) Logger() observability.Logger { return &logger{rec: r} }

func (r *Recorder) Metrics() observability.Metrics { return metrics{rec: r} }

// Entries returns every log entry with the given message.
func (r *Recorder) Entries(msg string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.Msg == msg {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the counter value for key with exactly the given labels.
func (r *Recorder) Count(key observability.MetricKey, labels ...observability.Label) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[seriesID(key, labels)]
}

// Observations returns how many samples the histogram series received.
func (r *Recorder) Observations(key observability.MetricKey, labels ...observability.Label) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.observed[seriesID(key, labels)]
}

func seriesID(key observability.MetricKey, labels []observability.Label) string {
	id := string(key)
	for _, l := range labels {
		id += "|" + l.Key + "=" + l.Value
	}
	return id
}

type logger struct {
	rec    *Recorder
	fields []observability.Field
}

func (l *logger) With(fields ...observability.Field) observability.Logger {
	merged := make([]observability.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &logger{rec: l.rec, fields: merged}
}

func (l *logger) Debug(msg string, fields ...observability.Field) { l.log("debug", msg, fields) }
func (l *logger) Info(msg string, fields ...observability.Field)  { l.log("info", msg, fields) }
func (l *logger) Warn(msg string, fields ...observability.Field)  { l.log("warn", msg, fields) }
func (l *logger) Error(msg string, fields ...observability.Field) { l.log("error", msg, fields) }

func (l *logger) log(level, msg string, fields []observability.Field) {
	m := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	l.rec.mu.Lock()
	l.rec.entries = append(l.rec.entries, Entry{Level: level, Msg: msg, Fields: m})
	l.rec.mu.Unlock()
}

type metrics struct{ rec *Recorder }

func (m metrics) Counter(key observability.MetricKey) observability.Counter {
	return counter{rec: m.rec, key: key}
}

func (m metrics) Histogram(key observability.MetricKey) observability.Histogram {
	return histogram{rec: m.rec, key: key}
}

type counter struct {
	rec *Recorder
	key observability.MetricKey
}

func (c counter) Add(delta float64, labels ...observability.Label) {
	c.rec.mu.Lock()
	c.rec.counters[seriesID(c.key, labels)] += delta
	c.rec.mu.Unlock()
}

type histogram struct {
	rec *Recorder
	key observability.MetricKey
}

func (h histogram) Observe(_ float64, labels ...observability.Label) {
	h.rec.mu.Lock()
	h.rec.observed[seriesID(h.key, labels)]++
	h.rec.mu.Unlock()
}
