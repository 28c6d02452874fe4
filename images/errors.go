package images

import (
	"errors"
	"fmt"
)

var (
	// ErrObjectStore 表示物件儲存操作失敗（網路、認證、bucket 不存在等）
	ErrObjectStore = errors.New("object store failure")
	// ErrMetadataStore 表示圖片紀錄的資料庫操作失敗
	ErrMetadataStore = errors.New("metadata store failure")
)

// Stage 表示單一檔案在上傳流程中失敗的階段
type Stage string

const (
	// StageStore 代表寫入物件儲存時失敗，不會有對應的資料庫紀錄
	StageStore Stage = "store"
	// StageRecord 代表檔案已寫入物件儲存，但寫入資料庫紀錄時失敗
	StageRecord Stage = "record"
)

// FileError 描述單一檔案的上傳失敗
type FileError struct {
	Name  string
	Stage Stage
	// Key 是該檔案使用的儲存路徑
	Key string
	// Url 只在 StageRecord 時有值，為已寫入物件儲存的檔案位置
	Url string
	Err error

	// Compensated 表示孤兒檔案已被刪除
	Compensated bool
	// CompensationErr 為刪除孤兒檔案時發生的錯誤
	CompensationErr error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %q failed at %s stage: %v", e.Name, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Orphaned 回報物件儲存中是否留下了沒有資料庫紀錄的檔案
func (e *FileError) Orphaned() bool {
	return e.Stage == StageRecord && !e.Compensated
}
