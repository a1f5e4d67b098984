package action

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiset-co/sai-http-stack/logger"
	"github.com/saiset-co/sai-http-stack/types"
)

func newTestDispatcher(t *testing.T, config *Config) types.ActionBroker {
	t.Helper()

	if config == nil {
		config = &Config{Enabled: true}
	}

	broker, err := NewActionBroker(context.Background(), config, logger.NewNop(), nil)
	require.NoError(t, err)
	return broker
}

func TestNewActionBrokerDisabled(t *testing.T) {
	_, err := NewActionBroker(context.Background(), &Config{Enabled: false}, logger.NewNop(), nil)
	assert.ErrorIs(t, err, types.ErrActionIsDisabled)

	_, err = NewActionBroker(context.Background(), nil, logger.NewNop(), nil)
	assert.ErrorIs(t, err, types.ErrActionIsDisabled)
}

func TestNewActionBrokerUnknownType(t *testing.T) {
	_, err := NewActionBroker(context.Background(), &Config{Enabled: true, Type: "carrier-pigeon"}, logger.NewNop(), nil)
	assert.ErrorIs(t, err, types.ErrActionTypeUnknown)
}

func TestDispatcherPublishRequiresStart(t *testing.T) {
	broker := newTestDispatcher(t, nil)

	err := broker.Publish(types.ActionRequestNotFound, types.RequestEvent{Path: "/x"})
	assert.ErrorIs(t, err, types.ErrActionNotInitialized)
}

func TestDispatcherFansOutToSubscribers(t *testing.T) {
	broker := newTestDispatcher(t, nil)

	var mu sync.Mutex
	var received []*types.ActionMessage

	handler := func(message *types.ActionMessage) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, message)
		return nil
	}

	require.NoError(t, broker.Subscribe(types.ActionRequestNotFound, handler))
	require.NoError(t, broker.Subscribe(types.ActionRequestNotFound, handler))
	require.NoError(t, broker.Start())
	defer broker.Stop()

	event := types.RequestEvent{Method: "GET", Path: "/missing"}
	require.NoError(t, broker.Publish(types.ActionRequestNotFound, event))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	for _, message := range received {
		assert.Equal(t, types.ActionRequestNotFound, message.Action)
		assert.Equal(t, event, message.Payload)
		assert.Equal(t, "sai-http-stack", message.Source)
		assert.NotEmpty(t, message.MessageID)
		assert.False(t, message.Timestamp.IsZero())
	}
}

func TestDispatcherIgnoresUnsubscribedActions(t *testing.T) {
	broker := newTestDispatcher(t, nil)

	called := false
	require.NoError(t, broker.Subscribe(types.ActionRequestErrored, func(*types.ActionMessage) error {
		called = true
		return nil
	}))
	require.NoError(t, broker.Start())
	defer broker.Stop()

	require.NoError(t, broker.Publish(types.ActionRequestNotFound, types.RequestEvent{}))
	assert.False(t, called)
}

func TestDispatcherHandlerFailureIsNotPropagated(t *testing.T) {
	broker := newTestDispatcher(t, nil)

	require.NoError(t, broker.Subscribe(types.ActionRequestNotFound, func(*types.ActionMessage) error {
		return errors.New("subscriber broke")
	}))
	require.NoError(t, broker.Start())
	defer broker.Stop()

	assert.NoError(t, broker.Publish(types.ActionRequestNotFound, types.RequestEvent{}))
}

func TestDispatcherSubscriptionFrozenWhileRunning(t *testing.T) {
	broker := newTestDispatcher(t, nil)

	require.NoError(t, broker.Start())
	defer broker.Stop()

	err := broker.Subscribe(types.ActionRequestNotFound, func(*types.ActionMessage) error { return nil })
	assert.ErrorIs(t, err, types.ErrAlreadyRunning)

	assert.ErrorIs(t, broker.Unsubscribe(types.ActionRequestNotFound), types.ErrAlreadyRunning)
}

func TestDispatcherSubscribeValidation(t *testing.T) {
	broker := newTestDispatcher(t, nil)

	assert.ErrorIs(t, broker.Subscribe("", func(*types.ActionMessage) error { return nil }), types.ErrHandlerIsNil)
	assert.ErrorIs(t, broker.Subscribe(types.ActionRequestNotFound, nil), types.ErrHandlerIsNil)
}

func TestDispatcherLifecycle(t *testing.T) {
	broker := newTestDispatcher(t, nil)

	assert.False(t, broker.IsRunning())
	assert.ErrorIs(t, broker.Stop(), types.ErrNotRunning)

	require.NoError(t, broker.Start())
	assert.True(t, broker.IsRunning())
	assert.ErrorIs(t, broker.Start(), types.ErrAlreadyRunning)

	require.NoError(t, broker.Stop())
	assert.False(t, broker.IsRunning())
}

func TestDispatcherCustomBrokerCreator(t *testing.T) {
	created := false
	RegisterActionBroker("test-transport", func(config interface{}) (types.ActionBroker, error) {
		created = true
		return newTestDispatcher(t, nil), nil
	})

	broker, err := NewActionBroker(context.Background(), &Config{Enabled: true, Type: "test-transport"}, logger.NewNop(), nil)
	require.NoError(t, err)
	assert.NotNil(t, broker)
	assert.True(t, created)
}
