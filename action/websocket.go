package action

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-http-stack/types"
	"github.com/saiset-co/sai-http-stack/utils"
)

type WebSocketConfig struct {
	URL            string        `json:"url"`
	ReconnectDelay time.Duration `json:"reconnect_delay"`
	MaxRetries     int           `json:"max_retries"`
	PingInterval   time.Duration `json:"ping_interval"`
	WriteWait      time.Duration `json:"write_wait"`
}

// WebSocketBroker pushes action messages to a remote collector over a single
// outbound websocket connection, reconnecting with bounded retries when the
// link drops. Incoming frames are dispatched to local subscriptions.
type WebSocketBroker struct {
	ctx     context.Context
	cancel  context.CancelFunc
	logger  types.Logger
	config  *WebSocketConfig
	conn    *websocket.Conn
	connMu  sync.RWMutex
	subs    map[string][]types.ActionHandler
	subsMu  sync.RWMutex
	send    chan *types.ActionMessage
	wg      sync.WaitGroup
	running int32
}

func NewWebSocketBroker(ctx context.Context, logger types.Logger, config interface{}) (types.ActionBroker, error) {
	wsConfig := &WebSocketConfig{
		URL:            "ws://localhost:8081/ws",
		ReconnectDelay: 5 * time.Second,
		MaxRetries:     10,
		PingInterval:   54 * time.Second,
		WriteWait:      10 * time.Second,
	}

	if config != nil {
		if err := utils.UnmarshalConfig(config, wsConfig); err != nil {
			return nil, types.WrapError(err, "failed to unmarshal websocket config")
		}
	}

	brokerCtx, cancel := context.WithCancel(ctx)

	broker := &WebSocketBroker{
		ctx:    brokerCtx,
		cancel: cancel,
		logger: logger,
		config: wsConfig,
		subs:   make(map[string][]types.ActionHandler),
		send:   make(chan *types.ActionMessage, 256),
	}

	logger.Info("WebSocket broker initialized",
		zap.String("url", wsConfig.URL),
		zap.Duration("reconnect_delay", wsConfig.ReconnectDelay))

	return broker, nil
}

func (w *WebSocketBroker) Publish(action string, payload interface{}) error {
	if !w.IsRunning() {
		return types.ErrActionNotInitialized
	}

	message := &types.ActionMessage{
		Action:    action,
		Payload:   payload,
		Timestamp: time.Now(),
		Source:    eventSource,
		MessageID: uuid.NewString(),
	}

	select {
	case w.send <- message:
		return nil
	case <-w.ctx.Done():
		return types.ErrActionNotInitialized
	default:
		w.logger.Error("Send channel is full, dropping message",
			zap.String("action", action),
			zap.String("message_id", message.MessageID))
		return types.ErrActionConnectionFailed
	}
}

func (w *WebSocketBroker) Subscribe(action string, handler types.ActionHandler) error {
	if action == "" || handler == nil {
		return types.ErrHandlerIsNil
	}
	if w.IsRunning() {
		return types.ErrAlreadyRunning
	}

	w.subsMu.Lock()
	defer w.subsMu.Unlock()

	w.subs[action] = append(w.subs[action], handler)
	return nil
}

func (w *WebSocketBroker) Unsubscribe(action string) error {
	if w.IsRunning() {
		return types.ErrAlreadyRunning
	}

	w.subsMu.Lock()
	defer w.subsMu.Unlock()

	delete(w.subs, action)
	return nil
}

func (w *WebSocketBroker) Start() error {
	if !atomic.CompareAndSwapInt32(&w.running, 0, 1) {
		return types.ErrAlreadyRunning
	}

	if err := w.connect(); err != nil {
		atomic.StoreInt32(&w.running, 0)
		return types.WrapError(err, "initial websocket connect failed")
	}

	w.wg.Add(2)
	go w.writePump()
	go w.readPump()

	w.logger.Info("WebSocket broker started", zap.String("url", w.config.URL))
	return nil
}

func (w *WebSocketBroker) Stop() error {
	if !atomic.CompareAndSwapInt32(&w.running, 1, 0) {
		return types.ErrNotRunning
	}

	w.cancel()
	w.closeConn()
	w.wg.Wait()

	w.logger.Info("WebSocket broker stopped")
	return nil
}

func (w *WebSocketBroker) IsRunning() bool {
	return atomic.LoadInt32(&w.running) == 1
}

func (w *WebSocketBroker) connect() error {
	conn, _, err := websocket.DefaultDialer.DialContext(w.ctx, w.config.URL, nil)
	if err != nil {
		return err
	}

	w.connMu.Lock()
	w.conn = conn
	w.connMu.Unlock()

	return nil
}

func (w *WebSocketBroker) closeConn() {
	w.connMu.Lock()
	defer w.connMu.Unlock()

	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
}

func (w *WebSocketBroker) getConn() *websocket.Conn {
	w.connMu.RLock()
	defer w.connMu.RUnlock()
	return w.conn
}

// reconnect retries with a fixed delay up to MaxRetries, then gives up and
// leaves the broker draining messages into the void until Stop.
func (w *WebSocketBroker) reconnect() bool {
	for attempt := 1; attempt <= w.config.MaxRetries; attempt++ {
		select {
		case <-w.ctx.Done():
			return false
		case <-time.After(w.config.ReconnectDelay):
		}

		if err := w.connect(); err != nil {
			w.logger.Warn("WebSocket reconnect failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		w.logger.Info("WebSocket reconnected", zap.Int("attempt", attempt))
		return true
	}

	w.logger.Error("WebSocket reconnect attempts exhausted",
		zap.Int("max_retries", w.config.MaxRetries))
	return false
}

func (w *WebSocketBroker) writePump() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case message := <-w.send:
			data, err := utils.Marshal(message)
			if err != nil {
				w.logger.Error("Failed to encode action message",
					zap.String("action", message.Action),
					zap.Error(err))
				continue
			}

			if !w.writeFrame(websocket.TextMessage, data) {
				return
			}

		case <-ticker.C:
			if !w.writeFrame(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (w *WebSocketBroker) writeFrame(messageType int, data []byte) bool {
	conn := w.getConn()
	if conn == nil {
		return w.reconnect()
	}

	_ = conn.SetWriteDeadline(time.Now().Add(w.config.WriteWait))
	if err := conn.WriteMessage(messageType, data); err != nil {
		w.logger.Warn("WebSocket write failed", zap.Error(err))
		w.closeConn()
		return w.reconnect()
	}

	return true
}

func (w *WebSocketBroker) readPump() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		conn := w.getConn()
		if conn == nil {
			select {
			case <-w.ctx.Done():
				return
			case <-time.After(w.config.ReconnectDelay):
			}
			continue
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-w.ctx.Done():
				return
			default:
			}
			w.closeConn()
			continue
		}

		var message types.ActionMessage
		if err := utils.Unmarshal(data, &message); err != nil {
			w.logger.Warn("Dropping malformed action message", zap.Error(err))
			continue
		}

		w.dispatch(&message)
	}
}

func (w *WebSocketBroker) dispatch(message *types.ActionMessage) {
	w.subsMu.RLock()
	handlers := w.subs[message.Action]
	w.subsMu.RUnlock()

	for _, handler := range handlers {
		if err := handler(message); err != nil {
			w.logger.Error("Action handler failed",
				zap.String("action", message.Action),
				zap.String("message_id", message.MessageID),
				zap.Error(err))
		}
	}
}
