package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"imagestore/adapters/db"
	redisAdapter "imagestore/adapters/redis"
	"imagestore/adapters/sse"
	"imagestore/images"
)

func init() {
	gin.SetMode(gin.TestMode)
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// memoryObjects 是記憶體中的物件儲存，檔名在 failNames 中的檔案會寫入失敗
type memoryObjects struct {
	mu        sync.Mutex
	objects   map[string][]byte
	types     map[string]string
	failNames []string
}

func newMemoryObjects(failNames ...string) *memoryObjects {
	return &memoryObjects{
		objects:   make(map[string][]byte),
		types:     make(map[string]string),
		failNames: failNames,
	}
}

func (m *memoryObjects) Put(_ context.Context, key string, content []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range m.failNames {
		if strings.HasSuffix(key, "-"+name) {
			return "", fmt.Errorf("bucket unreachable: %w", images.ErrObjectStore)
		}
	}
	m.objects[key] = content
	m.types[key] = contentType
	return "https://cdn.example.com/" + key, nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.types, key)
	return nil
}

func (m *memoryObjects) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *memoryObjects) contentTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.types))
	for _, contentType := range m.types {
		types = append(types, contentType)
	}
	return types
}

// loopbackProducer 直接把事件交給 SSE 連線管理器，模擬經過 Redis Stream 的流程
type loopbackProducer struct {
	manager sse.IConnectionManager[redisAdapter.ImageEvent]
}

func (p *loopbackProducer) Start() {}

func (p *loopbackProducer) Close() {}

func (p *loopbackProducer) Publish(event redisAdapter.ImageEvent) error {
	return p.manager.Publish(event)
}

func testConfig() ServerConfig {
	return ServerConfig{
		ObjectStore: ObjectStoreS3,
		S3:          S3Config{Bucket: "photos", Region: "us-east-1"},
		DB:          DBConfig{Config: db.Config{Driver: db.DriverSQLite, Path: "file::memory:"}},
		Upload: UploadConfig{
			Field:       "image",
			Parallelism: 4,
		},
	}
}

type testServer struct {
	impl    *ServerImpl
	router  *gin.Engine
	objects *memoryObjects
	conn    *gorm.DB
}

func setupServer(t *testing.T, config ServerConfig, objects *memoryObjects) *testServer {
	t.Helper()
	conn, err := db.Open(config.DB.Config)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	metadata, err := db.NewImageStore(conn)
	require.NoError(t, err)
	coordinator, err := images.NewCoordinator(objects, metadata, images.WithParallelism(config.Upload.Parallelism))
	require.NoError(t, err)
	lister, err := images.NewLister(metadata)
	require.NoError(t, err)

	impl := newServerImpl(config, coordinator, lister)
	router := gin.New()
	RegisterHandlers(router, impl)
	return &testServer{impl: impl, router: router, objects: objects, conn: conn}
}

// withLoopbackEvents 啟用 SSE，但不經過 Redis
func (s *testServer) withLoopbackEvents(t *testing.T) {
	t.Helper()
	manager, err := sse.NewConnectionManager[redisAdapter.ImageEvent]()
	require.NoError(t, err)
	s.impl.sseManager = manager
	s.impl.producer = &loopbackProducer{manager: manager}
	s.impl.Start()
	t.Cleanup(s.impl.Close)
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type filePart struct {
	field       string
	name        string
	contentType string
	content     []byte
}

func imagePart(name string, content []byte) filePart {
	return filePart{field: "image", name: name, contentType: "image/png", content: content}
}

func newUploadRequest(t *testing.T, parts ...filePart) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, part := range parts {
		header := make(textproto.MIMEHeader)
		if part.name == "" {
			header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q`, part.field))
		} else {
			header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, part.field, part.name))
		}
		if part.contentType != "" {
			header.Set("Content-Type", part.contentType)
		}
		w, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = w.Write(part.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/images", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
