package prometrics

import (
	"testing"

	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg, "pizzeria", observability.CounterSpecs, observability.HistogramSpecs)
	require.NoError(t, err)

	c := r.Counter(observability.MUsecaseRequests)
	c.Add(1, observability.L("use_case", "order.checkout"), observability.L("outcome", "success"))
	c.Add(2, observability.L("use_case", "order.checkout"), observability.L("outcome", "success"))
	// wrong label set is dropped
	c.Add(5, observability.L("nope", "x"))

	vec := r.counters[observability.MUsecaseRequests]
	assert.Equal(t, 3.0, testutil.ToFloat64(vec.WithLabelValues("order.checkout", "success")))

	r.Histogram(observability.MUsecaseDuration).Observe(0.2, observability.L("use_case", "order.checkout"))
	assert.Equal(t, 1, testutil.CollectAndCount(r.histograms[observability.MUsecaseDuration]))
}

func TestUnknownKeysAreNop(t *testing.T) {
	r, err := New(prometheus.NewRegistry(), "", nil, nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		r.Counter("missing").Add(1)
		r.Histogram("missing").Observe(1)
	})
}

func TestDuplicateRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg, "pizzeria", observability.CounterSpecs, nil)
	require.NoError(t, err)

	_, err = New(reg, "pizzeria", observability.CounterSpecs, nil)
	assert.Error(t, err)
}
