package sse

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"imagestore/adapters/redis"
)

// ErrManagerDone 表示 ConnectionManager 已經停止
var ErrManagerDone = errors.New("connection manager is done")

type managerOptions[T any] struct {
	logger     *slog.Logger
	bufferSize int
	subscriber redis.IConsumer[T]
}

type Option[T any] func(*managerOptions[T])

// WithLogger 設置日誌記錄器
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(o *managerOptions[T]) {
		o.logger = logger
	}
}

// WithBufferSize 設置每條連線的緩衝大小
func WithBufferSize[T any](size int) Option[T] {
	return func(o *managerOptions[T]) {
		o.bufferSize = size
	}
}

// WithSubscriber 設置上游的訊息來源，通常是 Redis Stream 的 Consumer，
// 讓多個服務實例上的連線都能收到同樣的事件
func WithSubscriber[T any](subscriber redis.IConsumer[T]) Option[T] {
	return func(o *managerOptions[T]) {
		o.subscriber = subscriber
	}
}

// connectionManager 管理目前這個實例上所有的 SSE 連線
type connectionManager[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu      sync.RWMutex
	wg      sync.WaitGroup
	active  bool
	started bool

	subscriber redis.IConsumer[T]
	channel    IChannel[T]
}

// NewConnectionManager 建立一個新的連線管理器
func NewConnectionManager[T any](opts ...Option[T]) (IConnectionManager[T], error) {
	options := managerOptions[T]{
		logger:     slog.Default(),
		bufferSize: 16,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &connectionManager[T]{
		ctx:        ctx,
		cancel:     cancel,
		logger:     options.logger.With(slog.String("caller", "ConnectionManager")),
		active:     true,
		subscriber: options.subscriber,
		channel:    NewChannel[T](options.bufferSize),
	}, nil
}

// Start 開始轉發上游訊息，沒有設置上游時不做任何事
func (cm *connectionManager[T]) Start() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if !cm.active || cm.started || cm.subscriber == nil {
		return
	}
	cm.started = true
	upstream := cm.subscriber.Subscribe()

	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		defer cm.logger.Info("forwarding goroutine stopped")
		for {
			select {
			case <-cm.ctx.Done():
				return
			case msg, ok := <-upstream:
				if !ok {
					return
				}
				if dropped := cm.channel.Broadcast(msg); dropped > 0 {
					cm.logger.Warn("drop message for slow connections", slog.Int("dropped", dropped))
				}
			}
		}
	}()
}

// Done 停止連線管理器的運作並關閉所有連線
func (cm *connectionManager[T]) Done() {
	cm.mu.Lock()
	if !cm.active {
		cm.mu.Unlock()
		return
	}
	cm.active = false
	cm.cancel()
	cm.mu.Unlock()

	cm.wg.Wait()
	cm.channel.UnsubscribeAll()
}

func (cm *connectionManager[T]) Subscribe() (<-chan T, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if !cm.active {
		return nil, ErrManagerDone
	}
	return cm.channel.Subscribe(), nil
}

func (cm *connectionManager[T]) Publish(data T) error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if !cm.active {
		return ErrManagerDone
	}
	if dropped := cm.channel.Broadcast(data); dropped > 0 {
		cm.logger.Warn("drop message for slow connections", slog.Int("dropped", dropped))
	}
	return nil
}

func (cm *connectionManager[T]) Unsubscribe(ch <-chan T) {
	cm.channel.Unsubscribe(ch)
}
