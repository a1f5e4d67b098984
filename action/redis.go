package action

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-http-stack/types"
	"github.com/saiset-co/sai-http-stack/utils"
)

type RedisConfig struct {
	Addr          string `json:"addr"`
	Password      string `json:"password"`
	DB            int    `json:"db"`
	ChannelPrefix string `json:"channel_prefix"`
}

// RedisBroker carries action messages over redis pub/sub. Each action maps
// to one channel under the configured prefix.
type RedisBroker struct {
	ctx     context.Context
	cancel  context.CancelFunc
	logger  types.Logger
	config  *RedisConfig
	client  *redis.Client
	pubsub  *redis.PubSub
	subs    map[string][]types.ActionHandler
	subsMu  sync.RWMutex
	wg      sync.WaitGroup
	running int32
}

func NewRedisBroker(ctx context.Context, logger types.Logger, config interface{}) (types.ActionBroker, error) {
	redisConfig := &RedisConfig{
		Addr:          "localhost:6379",
		ChannelPrefix: "sai:actions:",
	}

	if config != nil {
		if err := utils.UnmarshalConfig(config, redisConfig); err != nil {
			return nil, types.WrapError(err, "failed to unmarshal redis config")
		}
	}

	brokerCtx, cancel := context.WithCancel(ctx)

	broker := &RedisBroker{
		ctx:    brokerCtx,
		cancel: cancel,
		logger: logger,
		config: redisConfig,
		client: redis.NewClient(&redis.Options{
			Addr:     redisConfig.Addr,
			Password: redisConfig.Password,
			DB:       redisConfig.DB,
		}),
		subs: make(map[string][]types.ActionHandler),
	}

	logger.Info("Redis broker initialized",
		zap.String("addr", redisConfig.Addr),
		zap.String("channel_prefix", redisConfig.ChannelPrefix))

	return broker, nil
}

func (r *RedisBroker) Publish(action string, payload interface{}) error {
	if !r.IsRunning() {
		return types.ErrActionNotInitialized
	}

	message := &types.ActionMessage{
		Action:    action,
		Payload:   payload,
		Timestamp: time.Now(),
		Source:    eventSource,
		MessageID: uuid.NewString(),
	}

	data, err := utils.Marshal(message)
	if err != nil {
		return types.WrapError(err, "failed to encode action message")
	}

	if err := r.client.Publish(r.ctx, r.channel(action), data).Err(); err != nil {
		return types.Errorf(types.ErrActionConnectionFailed, "publish: %v", err)
	}

	return nil
}

func (r *RedisBroker) Subscribe(action string, handler types.ActionHandler) error {
	if action == "" || handler == nil {
		return types.ErrHandlerIsNil
	}
	if r.IsRunning() {
		return types.ErrAlreadyRunning
	}

	r.subsMu.Lock()
	defer r.subsMu.Unlock()

	r.subs[action] = append(r.subs[action], handler)
	return nil
}

func (r *RedisBroker) Unsubscribe(action string) error {
	if r.IsRunning() {
		return types.ErrAlreadyRunning
	}

	r.subsMu.Lock()
	defer r.subsMu.Unlock()

	delete(r.subs, action)
	return nil
}

func (r *RedisBroker) Start() error {
	if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
		return types.ErrAlreadyRunning
	}

	pingCtx, cancel := context.WithTimeout(r.ctx, 5*time.Second)
	defer cancel()

	if err := r.client.Ping(pingCtx).Err(); err != nil {
		atomic.StoreInt32(&r.running, 0)
		return types.Errorf(types.ErrActionConnectionFailed, "redis ping: %v", err)
	}

	r.subsMu.RLock()
	channels := make([]string, 0, len(r.subs))
	for action := range r.subs {
		channels = append(channels, r.channel(action))
	}
	r.subsMu.RUnlock()

	if len(channels) > 0 {
		r.pubsub = r.client.Subscribe(r.ctx, channels...)
		r.wg.Add(1)
		go r.readLoop()
	}

	r.logger.Info("Redis broker started", zap.Strings("channels", channels))
	return nil
}

func (r *RedisBroker) Stop() error {
	if !atomic.CompareAndSwapInt32(&r.running, 1, 0) {
		return types.ErrNotRunning
	}

	r.cancel()

	if r.pubsub != nil {
		if err := r.pubsub.Close(); err != nil {
			r.logger.Error("Failed to close redis subscription", zap.Error(err))
		}
	}

	r.wg.Wait()

	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close redis client", zap.Error(err))
	}

	r.logger.Info("Redis broker stopped")
	return nil
}

func (r *RedisBroker) IsRunning() bool {
	return atomic.LoadInt32(&r.running) == 1
}

func (r *RedisBroker) channel(action string) string {
	return r.config.ChannelPrefix + action
}

func (r *RedisBroker) readLoop() {
	defer r.wg.Done()

	for msg := range r.pubsub.Channel() {
		var message types.ActionMessage
		if err := utils.Unmarshal([]byte(msg.Payload), &message); err != nil {
			r.logger.Warn("Dropping malformed action message",
				zap.String("channel", msg.Channel),
				zap.Error(err))
			continue
		}

		r.subsMu.RLock()
		handlers := r.subs[message.Action]
		r.subsMu.RUnlock()

		for _, handler := range handlers {
			if err := handler(&message); err != nil {
				r.logger.Error("Action handler failed",
					zap.String("action", message.Action),
					zap.String("message_id", message.MessageID),
					zap.Error(err))
			}
		}
	}
}
