// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/domain/shared"
)

// ErrMeterNil is returned when a nil meter is passed to a constructor
var ErrMeterNil = errors.New("NewPlanningMetrics: meter cannot be nil")

// PlanningMetrics tracks purchasing workflow activity. It subscribes to the
// domain event bus, so services emit events without knowing about metrics.
type PlanningMetrics struct {
	logger *zap.Logger

	ordersCreated  metric.Int64Counter
	ordersApproved metric.Int64Counter
	ordersRejected metric.Int64Counter
	orderAmount    metric.Float64Counter
	bulkRunSize    metric.Int64Histogram
}

// NewPlanningMetrics creates the purchasing workflow metrics
func NewPlanningMetrics(meter metric.Meter, logger *zap.Logger) (*PlanningMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PlanningMetrics{logger: logger}

	var err error
	pm.ordersCreated, err = meter.Int64Counter("purchase_order.created.total",
		metric.WithDescription("Total number of purchase orders created"),
		metric.WithUnit("{order}"))
	if err != nil {
		return nil, err
	}
	pm.ordersApproved, err = meter.Int64Counter("purchase_order.approved.total",
		metric.WithDescription("Total number of purchase orders approved"),
		metric.WithUnit("{order}"))
	if err != nil {
		return nil, err
	}
	pm.ordersRejected, err = meter.Int64Counter("purchase_order.rejected.total",
		metric.WithDescription("Total number of purchase orders rejected"),
		metric.WithUnit("{order}"))
	if err != nil {
		return nil, err
	}
	pm.orderAmount, err = meter.Float64Counter("purchase_order.submitted.amount",
		metric.WithDescription("Total monetary value of submitted purchase orders"))
	if err != nil {
		return nil, err
	}
	pm.bulkRunSize, err = meter.Int64Histogram("purchase_order.bulk_run.orders",
		metric.WithDescription("Number of orders created per bulk run"),
		metric.WithUnit("{order}"))
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// EventTypes lists the events this handler consumes
func (pm *PlanningMetrics) EventTypes() []string {
	return []string{
		planning.EventTypePurchaseOrderCreated,
		planning.EventTypePurchaseOrderSubmitted,
		planning.EventTypePurchaseOrderApproved,
		planning.EventTypePurchaseOrderRejected,
		planning.EventTypeBulkOrdersCreated,
	}
}

// Handle records one metric sample per domain event
func (pm *PlanningMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	orgAttr := attribute.String("org_id", event.OrgID().String())

	switch e := event.(type) {
	case *planning.PurchaseOrderCreatedEvent:
		pm.ordersCreated.Add(ctx, 1, metric.WithAttributes(orgAttr,
			attribute.String("source", "manual")))
	case *planning.PurchaseOrderSubmittedEvent:
		amount, _ := e.Total.Float64()
		pm.orderAmount.Add(ctx, amount, metric.WithAttributes(orgAttr,
			attribute.Bool("requires_approval", e.RequiresApproval)))
	case *planning.PurchaseOrderApprovedEvent:
		pm.ordersApproved.Add(ctx, 1, metric.WithAttributes(orgAttr))
	case *planning.PurchaseOrderRejectedEvent:
		pm.ordersRejected.Add(ctx, 1, metric.WithAttributes(orgAttr))
	case *planning.BulkOrdersCreatedEvent:
		pm.ordersCreated.Add(ctx, int64(len(e.POIDs)), metric.WithAttributes(orgAttr,
			attribute.String("source", "bulk")))
		pm.bulkRunSize.Record(ctx, int64(len(e.POIDs)), metric.WithAttributes(orgAttr))
	default:
		pm.logger.Debug("Ignoring event without a metric mapping",
			zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*PlanningMetrics)(nil)
