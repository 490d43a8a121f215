package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/logger"
)

const staleOrdersJobName = "stale_unpaid_orders"

type staleOrderCanceller interface {
	CancelStaleUnpaid(ctx context.Context, olderThan time.Duration) (int, error)
}

// StaleOrdersJobParams configure the unpaid-order sweeper.
type StaleOrdersJobParams struct {
	Logger    *logger.Logger
	Orders    staleOrderCanceller
	OlderThan time.Duration
}

type staleOrdersJob struct {
	logg      *logger.Logger
	orders    staleOrderCanceller
	olderThan time.Duration
}

// NewStaleOrdersJob cancels STRIPE orders whose payment never completed.
func NewStaleOrdersJob(params StaleOrdersJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if params.OlderThan <= 0 {
		return nil, fmt.Errorf("stale window must be positive")
	}
	return &staleOrdersJob{logg: params.Logger, orders: params.Orders, olderThan: params.OlderThan}, nil
}

func (j *staleOrdersJob) Name() string { return staleOrdersJobName }

func (j *staleOrdersJob) Run(ctx context.Context) error {
	n, err := j.orders.CancelStaleUnpaid(ctx, j.olderThan)
	if err != nil {
		return err
	}
	if n > 0 {
		j.logg.Info(j.logg.WithField(ctx, "cancelled", n), "cron.stale_orders_cancelled")
	}
	return nil
}
