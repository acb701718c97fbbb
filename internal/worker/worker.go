package worker

import (
	"context"
	"errors"

	"production-simulator/internal/broker"
	"production-simulator/internal/models"
	"production-simulator/internal/service"
	"production-simulator/internal/sim"
	"production-simulator/internal/util"

	"go.uber.org/zap"
)

// ReplenishmentWorker closes the loop from blocked manufacturing to
// purchasing: it consumes day-advanced events and turns the current
// purchase suggestions into purchase orders, one per suggested material.
type ReplenishmentWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	simulation   *service.SimulationService
	logger       *zap.Logger
}

// NewReplenishmentWorker creates a new replenishment worker
func NewReplenishmentWorker(
	consumer *broker.Consumer,
	simulation *service.SimulationService,
) *ReplenishmentWorker {
	w := &ReplenishmentWorker{
		consumer:   consumer,
		simulation: simulation,
		logger:     util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnDayAdvanced(w.handleDayAdvanced)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *ReplenishmentWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting replenishment worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ReplenishmentWorker) Stop() error {
	w.logger.Info("Stopping replenishment worker")
	return w.consumer.Close()
}

func (w *ReplenishmentWorker) handleDayAdvanced(ctx context.Context, event *models.DayAdvancedEvent) error {
	orders, err := w.simulation.AutoReplenish(ctx)
	if err != nil {
		// The simulation may have been reset between the event being
		// published and consumed.
		if errors.Is(err, sim.ErrSimulationNotStarted) {
			return nil
		}
		return err
	}

	if len(orders) > 0 {
		w.logger.Info("Replenishment orders placed",
			zap.Time("date", event.Date),
			zap.Int("count", len(orders)))
	}
	return nil
}
