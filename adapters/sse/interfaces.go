package sse

// IChannel 定義了 SSE 頻道的介面
type IChannel[T any] interface {
	// Subscribe 建立一個新的訂閱並返回接收訊息的通道
	Subscribe() <-chan T
	// Unsubscribe 取消指定通道的訂閱
	Unsubscribe(ch <-chan T)
	// UnsubscribeAll 取消所有訂閱
	UnsubscribeAll()
	// Broadcast 將訊息廣播給所有訂閱者，回傳因緩衝已滿而略過的訂閱者數量
	Broadcast(message T) int
	// IsIdle 檢查是否沒有訂閱者
	IsIdle() bool
}

// IConnectionManager 定義了 SSE 連線管理員的介面
type IConnectionManager[T any] interface {
	// Start 開始將上游的訊息轉發給所有連線
	Start()
	// Done 停止 ConnectionManager 並關閉所有連線的通道
	Done()
	// Subscribe 建立一條新的連線
	Subscribe() (<-chan T, error)
	// Publish 將訊息直接廣播給目前這個實例上的所有連線
	Publish(data T) error
	// Unsubscribe 關閉指定的連線
	Unsubscribe(ch <-chan T)
}
