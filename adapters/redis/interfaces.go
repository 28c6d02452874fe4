package redis

import (
	"errors"
)

var (
	// ErrProducerClosed 表示 Producer 尚未啟動或已經關閉
	ErrProducerClosed = errors.New("producer is closed")
)

// IProducer 定義了 Producer 的操作介面
type IProducer[T any] interface {
	Start()
	Publish(data T) error
	Close()
}

// IConsumer 定義了 Consumer 的操作介面
type IConsumer[T any] interface {
	Start()
	Subscribe() <-chan T
	Close()
}
