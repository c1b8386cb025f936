package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "storefront"

type metrics struct {
	cartAdds         metric.Int64Counter
	campaignExpiries metric.Int64Counter
	showcaseAdvances metric.Int64Counter
	ordersPlaced     metric.Int64Counter
	activeSessions   metric.Int64UpDownCounter
}

// newMetrics registers counters on the global meter provider. Until a
// provider is installed the instruments are no-ops.
func newMetrics() (metrics, error) {
	meter := otel.Meter(meterName)
	var m metrics
	var err error

	if m.cartAdds, err = meter.Int64Counter("storefront.cart.adds",
		metric.WithDescription("Items added to shopper carts"),
		metric.WithUnit("{item}"),
	); err != nil {
		return m, err
	}
	if m.campaignExpiries, err = meter.Int64Counter("storefront.campaign.expiries",
		metric.WithDescription("Campaigns retired by the countdown"),
		metric.WithUnit("{campaign}"),
	); err != nil {
		return m, err
	}
	if m.showcaseAdvances, err = meter.Int64Counter("storefront.showcase.advances",
		metric.WithDescription("Showcase item changes"),
		metric.WithUnit("{advance}"),
	); err != nil {
		return m, err
	}
	if m.ordersPlaced, err = meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Orders created at checkout"),
		metric.WithUnit("{order}"),
	); err != nil {
		return m, err
	}
	if m.activeSessions, err = meter.Int64UpDownCounter("storefront.sessions.active",
		metric.WithDescription("Shopper sessions held in memory"),
		metric.WithUnit("{session}"),
	); err != nil {
		return m, err
	}
	return m, nil
}

func (m metrics) showcaseAdvanced(auto bool) {
	m.showcaseAdvances.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("auto", auto)))
}
