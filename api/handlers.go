package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	redisAdapter "imagestore/adapters/redis"
	internalS3 "imagestore/adapters/s3"
	"imagestore/images"
	"imagestore/models"
)

const defaultHeartbeat = 30 * time.Second

// RegisterHandlers 註冊所有路由
func RegisterHandlers(router gin.IRouter, impl *ServerImpl) {
	router.GET("/health", impl.GetHealth)

	group := router.Group("/api")
	group.POST("/images", impl.PostImages)
	group.GET("/images", impl.GetImages)
	group.GET("/images/events", impl.GetImagesEvents)
}

// Upload one or more images
// (POST /api/images)
func (impl *ServerImpl) PostImages(c *gin.Context) {
	const op = "PostImages"
	// 讀取所有檔案，超過大小上限的請求不會進行任何上傳
	files, err := readUploadedFiles(c.Request, impl.config.Upload.Field, impl.config.Upload.MaxSize)
	var limitErr *internalS3.ReachLimitError
	if errors.As(err, &limitErr) {
		c.JSON(http.StatusRequestEntityTooLarge, newErrorResponse(limitErr.Error()))
		return
	}
	if errors.Is(err, errNoFiles) {
		c.JSON(http.StatusBadRequest, newErrorResponse("No files in field "+impl.config.Upload.Field))
		return
	}
	if err != nil {
		impl.logger.Warn("Fail to read uploaded files", slog.String("op", op), slog.Any("error", err))
		c.JSON(http.StatusBadRequest, newErrorResponse("Invalid multipart body"))
		return
	}
	// 只要有一個檔案不是允許的圖片類型，整個請求都不會上傳
	if impl.config.Upload.ImagesOnly {
		for _, file := range files {
			if detected, ok := checkSecureImage(file.Content); !ok {
				c.JSON(http.StatusUnsupportedMediaType, newErrorResponse(fmt.Sprintf("Invalid image type: %s (%s)", detected, file.Name)))
				return
			}
		}
	}

	results := impl.coordinator.UploadAll(c.Request.Context(), files)

	succeeded := 0
	for _, result := range results {
		if result.Err == nil {
			succeeded++
			impl.publish(*result.Image)
			continue
		}
		impl.logFileError(op, result.Err)
	}
	impl.logger.Info("Upload finished",
		slog.Int("files", len(files)),
		slog.Int("succeeded", succeeded),
		slog.String("size", humanize.IBytes(uint64(lo.SumBy(files, func(file images.UploadedFile) int { return len(file.Content) })))),
	)

	status := http.StatusCreated
	switch {
	case succeeded == 0:
		status = http.StatusBadGateway
	case succeeded < len(results):
		status = http.StatusMultiStatus
	}
	c.JSON(status, UploadResponse{
		Results:   lo.Map(results, toUploadResult),
		Succeeded: succeeded,
		Failed:    len(results) - succeeded,
	})
}

// List all images, newest first
// (GET /api/images)
func (impl *ServerImpl) GetImages(c *gin.Context) {
	const op = "GetImages"
	records, err := impl.lister.ListImages(c.Request.Context())
	if err != nil {
		impl.logger.Error("Fail to list images", slog.String("op", op), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, newErrorResponse("Fail to list images"))
		return
	}
	c.JSON(http.StatusOK, lo.Map(records, func(image models.Image, _ int) ImageResponse {
		return toImageResponse(image)
	}))
}

// Track newly uploaded images
// (GET /api/images/events)
func (impl *ServerImpl) GetImagesEvents(c *gin.Context) {
	const op = "GetImagesEvents"
	if impl.sseManager == nil {
		c.JSON(http.StatusNotFound, newErrorResponse("Image events are not enabled"))
		return
	}
	ch, err := impl.sseManager.Subscribe()
	if err != nil {
		impl.logger.Error("Fail to subscribe image events", slog.String("op", op), slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, newErrorResponse("Image events are not available"))
		return
	}
	defer impl.sseManager.Unsubscribe(ch)

	// SSE請求合法，開始初始化串流
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	heartbeat := impl.config.Redis.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("image", event)
			w.Flush()
		// 沒有事件時定期送出註解行，避免瀏覽器或代理伺服器斷開連線
		case <-ticker.C:
			_, _ = w.WriteString(": keep-alive\n\n")
			w.Flush()
		}
	}
}

// (GET /health)
func (impl *ServerImpl) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// publish 推送圖片事件，失敗時只記錄日誌，不影響上傳結果
func (impl *ServerImpl) publish(image models.Image) {
	if impl.producer == nil {
		return
	}
	if err := impl.producer.Publish(redisAdapter.NewImageEvent(image, impl.now())); err != nil {
		impl.logger.Warn("Fail to publish image event", slog.Int64("id", image.ID), slog.Any("error", err))
	}
}

func (impl *ServerImpl) logFileError(op string, fileErr *images.FileError) {
	attrs := []any{
		slog.String("op", op),
		slog.String("name", fileErr.Name),
		slog.String("stage", string(fileErr.Stage)),
		slog.String("key", fileErr.Key),
		slog.Any("error", fileErr.Err),
	}
	switch {
	case fileErr.Orphaned():
		// 檔案已在物件儲存中但沒有紀錄，需要人工處理
		impl.logger.Warn("Orphaned file in object store", append(attrs, slog.String("url", fileErr.Url), slog.Any("compensationError", fileErr.CompensationErr))...)
	case fileErr.Compensated:
		impl.logger.Warn("Orphaned file removed from object store", attrs...)
	default:
		impl.logger.Error("Fail to upload file", attrs...)
	}
}
