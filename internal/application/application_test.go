package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/logctx"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/observabilitytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallRecordsSuccess(t *testing.T) {
	rec := observabilitytest.New()
	in := NewInstruments(rec, "menu-service")

	ctx, call := in.Begin(context.Background(), "menu.get", "GetMenuItem")
	require.NotNil(t, logctx.From(ctx))
	call.Add(observability.F("name", "margherita"))
	call.End(nil)

	assert.Equal(t, 1.0, rec.Count(observability.MUsecaseRequests,
		observability.L("use_case", "menu.get"), observability.L("outcome", "success")))
	assert.Equal(t, 1, rec.Observations(observability.MUsecaseDuration, observability.L("use_case", "menu.get")))

	done := rec.Entries("use_case_done")
	require.Len(t, done, 1)
	assert.Equal(t, "OK", done[0].Fields["status"])
	assert.Equal(t, "menu-service", done[0].Fields["service"])
	assert.Equal(t, "margherita", done[0].Fields["name"])
}

func TestCallRecordsFailure(t *testing.T) {
	rec := observabilitytest.New()
	in := NewInstruments(rec, "menu-service")

	_, call := in.Begin(context.Background(), "menu.get", "GetMenuItem")
	call.Fail("ITEM_NOT_FOUND")
	call.End(errors.New("boom"))

	_, call = in.Begin(context.Background(), "menu.get", "GetMenuItem")
	call.End(errors.New("unclassified"))

	assert.Equal(t, 2.0, rec.Count(observability.MUsecaseRequests,
		observability.L("use_case", "menu.get"), observability.L("outcome", "error")))
	done := rec.Entries("use_case_done")
	require.Len(t, done, 2)
	assert.Equal(t, "ITEM_NOT_FOUND", done[0].Fields["status"])
	assert.Equal(t, "boom", done[0].Fields["error"])
	assert.Equal(t, "ERROR", done[1].Fields["status"])
}

func TestExternal(t *testing.T) {
	rec := observabilitytest.New()
	in := NewInstruments(rec, "order-service")
	in.External("stripe", "payment_intents", "success", time.Now())

	assert.Equal(t, 1.0, rec.Count(observability.MExternalRequests,
		observability.L("peer", "stripe"), observability.L("endpoint", "payment_intents"), observability.L("outcome", "success")))
}

func TestNilObservability(t *testing.T) {
	in := NewInstruments(nil, "svc")
	_, call := in.Begin(context.Background(), "x", "X")
	assert.NotPanics(t, func() { call.End(nil) })
}
