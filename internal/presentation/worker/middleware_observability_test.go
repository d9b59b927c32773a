package workerpresentation

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/pizzeria/internal/observability/logctx"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/observabilitytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithEventContext(t *testing.T) {
	rec := observabilitytest.New()
	ctx := WithEventContext(context.Background(), rec.Logger(), map[string]string{
		"event":  "user.deleted",
		"tenant": "",
	})
	logctx.From(ctx).Info("handled")

	entries := rec.Entries("handled")
	require.Len(t, entries, 1)
	assert.Equal(t, "user.deleted", entries[0].Fields["event"])
	assert.NotEmpty(t, entries[0].Fields["event_id"])
	assert.NotContains(t, entries[0].Fields, "tenant")
	assert.NotContains(t, entries[0].Fields, "trace_id")
}

func TestWithEventContextKeepsEventID(t *testing.T) {
	rec := observabilitytest.New()
	ctx := WithEventContext(context.Background(), rec.Logger(), map[string]string{"event_id": "evt-1"})
	logctx.From(ctx).Info("handled")
	assert.Equal(t, "evt-1", rec.Entries("handled")[0].Fields["event_id"])
}
