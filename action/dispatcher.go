package action

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saiset-co/sai-http-stack/types"
)

const eventSource = "sai-http-stack"

// EventDispatcher fans each published action out to in-process subscribers
// and, when configured, to an external broker transport. Delivery is
// best-effort: individual failures are logged and counted, never propagated
// back to the publisher.
type EventDispatcher struct {
	ctx     context.Context
	logger  types.Logger
	metrics types.MetricsManager
	broker  types.ActionBroker
	subs    map[string][]types.ActionHandler
	subsMu  sync.RWMutex
	running int32
}

func NewEventDispatcher(ctx context.Context, config *Config, logger types.Logger, metrics types.MetricsManager) (types.ActionBroker, error) {
	dispatcher := &EventDispatcher{
		ctx:     ctx,
		logger:  logger,
		metrics: metrics,
		subs:    make(map[string][]types.ActionHandler),
	}

	if config.Type != "" {
		var broker types.ActionBroker
		var err error

		switch config.Type {
		case "websocket":
			broker, err = NewWebSocketBroker(ctx, logger, config.Config)
		case "redis":
			broker, err = NewRedisBroker(ctx, logger, config.Config)
		default:
			creator, exists := customActionCreators[config.Type]
			if !exists {
				return nil, types.Errorf(types.ErrActionTypeUnknown, "type: %s", config.Type)
			}
			broker, err = creator(config.Config)
		}

		if err != nil {
			return nil, types.WrapError(err, "failed to create action broker")
		}

		dispatcher.broker = broker
	}

	return dispatcher, nil
}

func (ed *EventDispatcher) Publish(action string, payload interface{}) error {
	if !ed.IsRunning() {
		return types.ErrActionNotInitialized
	}

	start := time.Now()

	message := &types.ActionMessage{
		Action:    action,
		Payload:   payload,
		Timestamp: start,
		Source:    eventSource,
		MessageID: uuid.NewString(),
	}

	ed.subsMu.RLock()
	handlers := ed.subs[action]
	ed.subsMu.RUnlock()

	g, _ := errgroup.WithContext(ed.ctx)

	for _, handler := range handlers {
		handler := handler
		g.Go(func() error {
			return handler(message)
		})
	}

	if ed.broker != nil {
		g.Go(func() error {
			return ed.broker.Publish(action, payload)
		})
	}

	if err := g.Wait(); err != nil {
		ed.logger.Error("Event delivery partially failed",
			zap.String("action", action),
			zap.Error(err))
		ed.recordPublish(action, "error", time.Since(start))
		return nil
	}

	ed.recordPublish(action, "success", time.Since(start))
	return nil
}

// Subscribe registers an in-process handler. Registration is only allowed
// before Start; the subscriber set is frozen while running.
func (ed *EventDispatcher) Subscribe(action string, handler types.ActionHandler) error {
	if action == "" || handler == nil {
		return types.ErrHandlerIsNil
	}
	if ed.IsRunning() {
		return types.ErrAlreadyRunning
	}

	ed.subsMu.Lock()
	defer ed.subsMu.Unlock()

	ed.subs[action] = append(ed.subs[action], handler)
	return nil
}

func (ed *EventDispatcher) Unsubscribe(action string) error {
	if ed.IsRunning() {
		return types.ErrAlreadyRunning
	}

	ed.subsMu.Lock()
	defer ed.subsMu.Unlock()

	delete(ed.subs, action)
	return nil
}

func (ed *EventDispatcher) Start() error {
	if !atomic.CompareAndSwapInt32(&ed.running, 0, 1) {
		return types.ErrAlreadyRunning
	}

	if ed.broker != nil {
		if err := ed.broker.Start(); err != nil {
			atomic.StoreInt32(&ed.running, 0)
			return types.WrapError(err, "failed to start action broker")
		}
	}

	ed.logger.Info("Event dispatcher started")
	return nil
}

func (ed *EventDispatcher) Stop() error {
	if !atomic.CompareAndSwapInt32(&ed.running, 1, 0) {
		return types.ErrNotRunning
	}

	if ed.broker != nil {
		if err := ed.broker.Stop(); err != nil {
			ed.logger.Error("Failed to stop action broker", zap.Error(err))
		}
	}

	ed.logger.Info("Event dispatcher stopped")
	return nil
}

func (ed *EventDispatcher) IsRunning() bool {
	return atomic.LoadInt32(&ed.running) == 1
}

func (ed *EventDispatcher) recordPublish(action, result string, duration time.Duration) {
	if ed.metrics == nil {
		return
	}

	ed.metrics.Counter("action_operations_total", map[string]string{
		"operation": "publish",
		"result":    result,
		"action":    action,
	}).Inc()

	ed.metrics.Histogram("action_operation_duration_seconds",
		[]float64{0.001, 0.01, 0.1, 1.0, 5.0},
		map[string]string{"operation": "publish", "action": action},
	).Observe(duration.Seconds())
}
