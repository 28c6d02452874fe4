package sse_test

import (
	"io"
	"log/slog"
	"sync"
)

func init() {
	// 測試時不輸出日誌
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// Message 表示一個 SSE 訊息，包含資料字段。
type Message struct {
	Data string `json:"data"`
}

// fakeConsumer 以 channel 模擬上游的 Stream Consumer
type fakeConsumer struct {
	ch      chan Message
	once    sync.Once
	started bool
}

func newFakeConsumer() *fakeConsumer {
	return &fakeConsumer{ch: make(chan Message, 10)}
}

func (f *fakeConsumer) Start() {
	f.started = true
}

func (f *fakeConsumer) Subscribe() <-chan Message {
	return f.ch
}

func (f *fakeConsumer) Close() {
	f.once.Do(func() { close(f.ch) })
}
