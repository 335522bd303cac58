package tracking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/tracking"
)

func TestAnalyticsEmptyWindowHasZeroRates(t *testing.T) {
	t.Parallel()

	analytics := tracking.NewAnalytics(tracking.NewMemoryStore())

	report, err := analytics.Report(context.Background(), tracking.Range{
		From: time.Now().Add(-time.Hour),
		To:   time.Now(),
	}, "")
	require.NoError(t, err)

	assert.Zero(t, report.Total)
	assert.Equal(t, 0.0, report.DeliveryRate, "zero denominator must yield 0, not NaN")
	assert.Equal(t, 0.0, report.OpenRate)
	assert.Equal(t, 0.0, report.ClickRate)
	assert.Equal(t, 0.0, report.BounceRate)
}

func TestAnalyticsComputesNaturalRates(t *testing.T) {
	t.Parallel()

	store := tracking.NewMemoryStore()
	ingestor := tracking.NewIngestor(store)
	ctx := context.Background()

	// 4 sends: one bounces, two deliver, one of those opens and clicks.
	addrs := []string{"a@example.com", "b@example.com", "c@example.com", "d@example.com"}
	msgs := make([]*tracking.TrackedMessage, len(addrs))
	for i, addr := range addrs {
		msgs[i] = seedSent(t, store, addr)
	}

	now := time.Now()
	require.NoError(t, ingestor.Ingest(ctx, "Bounce", tracking.Event{
		ProviderMessageID: msgs[0].ProviderMessageID, OccurredAt: now, Reason: "bad address",
	}))
	require.NoError(t, ingestor.Ingest(ctx, "Delivery", tracking.Event{
		ProviderMessageID: msgs[1].ProviderMessageID, OccurredAt: now,
	}))
	require.NoError(t, ingestor.Ingest(ctx, "Delivery", tracking.Event{
		ProviderMessageID: msgs[2].ProviderMessageID, OccurredAt: now,
	}))
	require.NoError(t, ingestor.Ingest(ctx, "Open", tracking.Event{
		ProviderMessageID: msgs[2].ProviderMessageID, OccurredAt: now,
	}))
	require.NoError(t, ingestor.Ingest(ctx, "Click", tracking.Event{
		ProviderMessageID: msgs[2].ProviderMessageID, OccurredAt: now,
	}))

	analytics := tracking.NewAnalytics(store)
	report, err := analytics.Report(ctx, tracking.Range{
		From: now.Add(-time.Hour),
		To:   now.Add(time.Hour),
	}, "")
	require.NoError(t, err)

	assert.Equal(t, int64(4), report.Total)
	assert.Equal(t, int64(4), report.Sent)
	assert.Equal(t, int64(2), report.Delivered)
	assert.Equal(t, int64(1), report.Opened)
	assert.Equal(t, int64(1), report.Clicked)
	assert.Equal(t, int64(1), report.Bounced)

	assert.InDelta(t, 0.5, report.DeliveryRate, 1e-9)  // 2 delivered / 4 sent
	assert.InDelta(t, 0.5, report.OpenRate, 1e-9)      // 1 opened / 2 delivered
	assert.InDelta(t, 0.5, report.ClickRate, 1e-9)     // 1 clicked / 2 delivered
	assert.InDelta(t, 0.25, report.BounceRate, 1e-9)   // 1 bounced / 4 sent
	assert.GreaterOrEqual(t, report.DeliveryRate, 0.0) // rates stay in [0,1]
	assert.LessOrEqual(t, report.DeliveryRate, 1.0)
}

func TestAnalyticsRatesStayBoundedWithoutDeliveryCallbacks(t *testing.T) {
	t.Parallel()

	store := tracking.NewMemoryStore()
	ingestor := tracking.NewIngestor(store)
	ctx := context.Background()

	// Two sends, both opened, but the provider only reported delivery for
	// one of them. Opens must still count as deliveries, otherwise the open
	// rate climbs past 1.
	first := seedSent(t, store, "a@example.com")
	second := seedSent(t, store, "b@example.com")

	now := time.Now()
	require.NoError(t, ingestor.Ingest(ctx, "Delivery", tracking.Event{
		ProviderMessageID: first.ProviderMessageID, OccurredAt: now,
	}))
	require.NoError(t, ingestor.Ingest(ctx, "Open", tracking.Event{
		ProviderMessageID: first.ProviderMessageID, OccurredAt: now,
	}))
	require.NoError(t, ingestor.Ingest(ctx, "Open", tracking.Event{
		ProviderMessageID: second.ProviderMessageID, OccurredAt: now,
	}))

	analytics := tracking.NewAnalytics(store)
	report, err := analytics.Report(ctx, tracking.Range{
		From: now.Add(-time.Hour),
		To:   now.Add(time.Hour),
	}, "")
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.Sent)
	assert.Equal(t, int64(2), report.Delivered, "opened messages count as delivered")
	assert.Equal(t, int64(2), report.Opened)
	require.LessOrEqual(t, report.OpenRate, 1.0)
	require.LessOrEqual(t, report.ClickRate, 1.0)
	assert.InDelta(t, 1.0, report.DeliveryRate, 1e-9)
	assert.InDelta(t, 1.0, report.OpenRate, 1e-9)
}

func TestAnalyticsCategoryFilter(t *testing.T) {
	t.Parallel()

	store := tracking.NewMemoryStore()
	sender := tracking.NewSender(store, newStubMailer(), "noreply@example.com")
	ctx := context.Background()

	_, err := sender.Send(ctx, tracking.SendInput{To: "a@example.com", Subject: "Hi", Category: "welcome"})
	require.NoError(t, err)
	_, err = sender.Send(ctx, tracking.SendInput{To: "b@example.com", Subject: "Hi", Category: "payment_due"})
	require.NoError(t, err)

	analytics := tracking.NewAnalytics(store)
	window := tracking.Range{From: time.Now().Add(-time.Hour), To: time.Now().Add(time.Hour)}

	report, err := analytics.Report(ctx, window, "welcome")
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Total)

	all, err := analytics.Report(ctx, window, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
}
