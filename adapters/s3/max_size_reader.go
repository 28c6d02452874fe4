package s3

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// ReachLimitError 表示讀取的內容超過大小上限
type ReachLimitError struct {
	MaxBytes int64
}

func (e *ReachLimitError) Error() string {
	return fmt.Sprintf("reach limit of %s", humanize.IBytes(uint64(e.MaxBytes)))
}

// NewMaxSizeReader 建立一個限制讀取長度的 Reader，
// 讀取的內容超過 maxSize 時回傳 ReachLimitError。
func NewMaxSizeReader(r io.Reader, maxSize int64) io.Reader {
	return &maxSizeReader{reader: r, limit: maxSize, remaining: maxSize}
}

type maxSizeReader struct {
	reader    io.Reader
	limit     int64
	remaining int64
}

func (r *maxSizeReader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	// 只需要多讀 1 byte 就能判斷是否超過限制
	if int64(len(p)) > r.remaining+1 {
		p = p[:r.remaining+1]
	}
	n, err = r.reader.Read(p)
	if int64(n) <= r.remaining {
		r.remaining -= int64(n)
		return n, err
	}

	n = int(r.remaining)
	r.remaining = 0
	return n, &ReachLimitError{r.limit}
}
