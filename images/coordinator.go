package images

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"imagestore/models"
)

// DefaultParallelism 是同一個請求中同時處理的檔案數量上限
const DefaultParallelism = 4

// UploadedFile 是從請求中取出的單一檔案
type UploadedFile struct {
	Name        string
	ContentType string
	Content     []byte
}

// Result 是單一檔案的處理結果，Image 與 Err 只會有一個有值
type Result struct {
	Name  string
	Image *models.Image
	Err   *FileError
}

// Coordinator 負責將一個請求中的多個檔案寫入物件儲存並建立紀錄
type Coordinator struct {
	objects     ObjectStore
	metadata    MetadataStore
	keys        *KeyGenerator
	compensator Compensator
	parallelism int
}

type CoordinatorOption func(*Coordinator)

// WithKeyGenerator 設定儲存路徑產生器
func WithKeyGenerator(keys *KeyGenerator) CoordinatorOption {
	return func(c *Coordinator) {
		c.keys = keys
	}
}

// WithCompensator 設定孤兒檔案的清除方式，未設定時不會刪除任何檔案
func WithCompensator(compensator Compensator) CoordinatorOption {
	return func(c *Coordinator) {
		c.compensator = compensator
	}
}

// WithParallelism 設定同時處理的檔案數量上限
func WithParallelism(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

func NewCoordinator(objects ObjectStore, metadata MetadataStore, opts ...CoordinatorOption) (*Coordinator, error) {
	if objects == nil {
		return nil, errors.New("object store cannot be nil")
	}
	if metadata == nil {
		return nil, errors.New("metadata store cannot be nil")
	}
	c := &Coordinator{
		objects:     objects,
		metadata:    metadata,
		keys:        NewKeyGenerator(),
		parallelism: DefaultParallelism,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// UploadAll 平行處理所有檔案，回傳與輸入順序相同的結果。
// 單一檔案失敗不會影響其他檔案，呼叫端需要逐一檢查結果。
func (c *Coordinator) UploadAll(ctx context.Context, files []UploadedFile) []Result {
	results := make([]Result, len(files))
	var g errgroup.Group
	g.SetLimit(c.parallelism)
	for i, file := range files {
		g.Go(func() error {
			results[i] = c.upload(ctx, file)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (c *Coordinator) upload(ctx context.Context, file UploadedFile) Result {
	// 每個檔案在處理當下才產生路徑
	key := c.keys.Next(file.Name)

	url, err := c.objects.Put(ctx, key, file.Content, file.ContentType)
	if err != nil {
		return Result{Name: file.Name, Err: &FileError{
			Name:  file.Name,
			Stage: StageStore,
			Key:   key,
			Err:   err,
		}}
	}

	image, err := c.metadata.Insert(ctx, file.Name, url)
	if err != nil {
		fileErr := &FileError{
			Name:  file.Name,
			Stage: StageRecord,
			Key:   key,
			Url:   url,
			Err:   err,
		}
		if c.compensator != nil {
			if cerr := c.compensator.Delete(ctx, key); cerr != nil {
				fileErr.CompensationErr = cerr
			} else {
				fileErr.Compensated = true
			}
		}
		return Result{Name: file.Name, Err: fileErr}
	}
	return Result{Name: file.Name, Image: &image}
}
