package tracking

import (
	"context"
	"fmt"
	"time"
)

// Report aggregates delivery analytics for a time window. Rates use their
// natural denominators - delivery against sends, engagement against
// deliveries - and are exactly 0 when the denominator is 0, never NaN.
type Report struct {
	Total     int64 `json:"total"`
	Sent      int64 `json:"sent"`
	Delivered int64 `json:"delivered"`
	Opened    int64 `json:"opened"`
	Clicked   int64 `json:"clicked"`
	Bounced   int64 `json:"bounced"`
	Complaint int64 `json:"complaint"`

	DeliveryRate float64 `json:"delivery_rate"` // delivered / sent
	OpenRate     float64 `json:"open_rate"`     // opened / delivered
	ClickRate    float64 `json:"click_rate"`    // clicked / delivered
	BounceRate   float64 `json:"bounce_rate"`   // bounced / sent
}

// Range is a half-open analytics window [From, To).
type Range struct {
	From time.Time
	To   time.Time
}

// Analytics computes delivery reports over the tracked message store.
type Analytics struct {
	store Store
}

// NewAnalytics creates an analytics aggregator.
func NewAnalytics(store Store) *Analytics {
	return &Analytics{store: store}
}

// Report returns aggregate counts and rates for the window, optionally
// filtered by category (empty string matches all).
func (a *Analytics) Report(ctx context.Context, r Range, category string) (*Report, error) {
	stats, err := a.store.Stats(ctx, r.From, r.To, category)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate delivery stats: %w", err)
	}

	return &Report{
		Total:        stats.Total,
		Sent:         stats.Sent,
		Delivered:    stats.Delivered,
		Opened:       stats.Opened,
		Clicked:      stats.Clicked,
		Bounced:      stats.Bounced,
		Complaint:    stats.Complaint,
		DeliveryRate: ratio(stats.Delivered, stats.Sent),
		OpenRate:     ratio(stats.Opened, stats.Delivered),
		ClickRate:    ratio(stats.Clicked, stats.Delivered),
		BounceRate:   ratio(stats.Bounced, stats.Sent),
	}, nil
}

// ratio guards against zero denominators so rates are never NaN or Inf.
func ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
