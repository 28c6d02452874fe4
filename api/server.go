package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"imagestore/adapters/db"
	"imagestore/adapters/minio"
	redisAdapter "imagestore/adapters/redis"
	internalS3 "imagestore/adapters/s3"
	"imagestore/adapters/sse"
	"imagestore/images"
)

// objectStore 是上傳與補償共用的物件儲存
type objectStore interface {
	images.ObjectStore
	images.Compensator
}

type ServerImpl struct {
	coordinator *images.Coordinator
	lister      *images.Lister
	producer    redisAdapter.IProducer[redisAdapter.ImageEvent]
	consumer    redisAdapter.IConsumer[redisAdapter.ImageEvent]
	sseManager  sse.IConnectionManager[redisAdapter.ImageEvent]
	closers     []io.Closer
	logger      *slog.Logger
	now         func() time.Time

	config ServerConfig
}

func NewServer(ctx context.Context, config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("[%s] Invalid server config, err=%w", op, err)
	}
	var closers []io.Closer
	fail := func(err error) (*ServerImpl, error) {
		closeAll(closers)
		return nil, err
	}

	// 初始化物件儲存
	objects, err := newObjectStore(ctx, config)
	if err != nil {
		return fail(fmt.Errorf("[%s] Fail to create object store, err=%w", op, err))
	}

	// 初始化資料庫連線
	conn, err := db.Open(config.DB.Config)
	if err != nil {
		return fail(fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err))
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return fail(fmt.Errorf("[%s] Fail to get sql.DB, err=%w", op, err))
	}
	closers = append(closers, sqlDB)
	if config.DB.AutoMigrate {
		if err := db.Migrate(conn); err != nil {
			return fail(fmt.Errorf("[%s] Fail to migrate database, err=%w", op, err))
		}
	}
	metadata, err := db.NewImageStore(conn)
	if err != nil {
		return fail(fmt.Errorf("[%s] Fail to create image store, err=%w", op, err))
	}

	// 初始化上傳流程
	coordinatorOpts := []images.CoordinatorOption{
		images.WithParallelism(config.Upload.Parallelism),
		images.WithKeyGenerator(images.NewKeyGenerator(images.WithKeyPrefix(config.Upload.KeyPrefix))),
	}
	if config.Upload.CompensateOrphans {
		coordinatorOpts = append(coordinatorOpts, images.WithCompensator(objects))
	}
	coordinator, err := images.NewCoordinator(objects, metadata, coordinatorOpts...)
	if err != nil {
		return fail(fmt.Errorf("[%s] Fail to create upload coordinator, err=%w", op, err))
	}
	lister, err := images.NewLister(metadata)
	if err != nil {
		return fail(fmt.Errorf("[%s] Fail to create lister, err=%w", op, err))
	}

	impl := newServerImpl(config, coordinator, lister)
	impl.closers = closers
	if !config.Redis.Enabled() {
		slog.Info("Redis is not configured, image events are disabled")
		return impl, nil
	}

	// 初始化Redis連線
	redisClient, err := redisAdapter.NewClient(ctx, config.Redis.Config)
	if err != nil {
		return fail(fmt.Errorf("[%s] Fail to create redis client, err=%w", op, err))
	}
	closers = append(closers, redisClient)
	impl.closers = closers
	if err := impl.withEvents(redisClient); err != nil {
		return fail(fmt.Errorf("[%s] Fail to initial image events, err=%w", op, err))
	}
	return impl, nil
}

func newObjectStore(ctx context.Context, config ServerConfig) (objectStore, error) {
	switch config.ObjectStore {
	case ObjectStoreMinio:
		return minio.NewOperator(config.Minio)
	case ObjectStoreS3:
		client, err := internalS3.NewClient(ctx, internalS3.ClientConfig{
			Endpoint:        config.S3.Endpoint,
			Region:          config.S3.Region,
			AccessKeyID:     config.S3.AccessKeyID,
			SecretAccessKey: config.S3.SecretAccessKey,
			UsePathStyle:    config.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return internalS3.NewS3Operator(client, config.S3.Bucket, config.S3.Region, config.S3.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unsupported object store %q", config.ObjectStore)
	}
}

func newServerImpl(config ServerConfig, coordinator *images.Coordinator, lister *images.Lister) *ServerImpl {
	return &ServerImpl{
		coordinator: coordinator,
		lister:      lister,
		logger:      slog.Default().With(slog.String("caller", "ServerImpl")),
		now:         time.Now,
		config:      config,
	}
}

// withEvents 建立圖片事件的 Producer、Consumer 與 SSE 連線管理器
func (impl *ServerImpl) withEvents(redisClient *goredis.Client) error {
	producer, err := redisAdapter.NewProducer[redisAdapter.ImageEvent](
		redisClient,
		impl.config.Redis.StreamKey,
		redisAdapter.WithProducerLogger[redisAdapter.ImageEvent](slog.Default()),
		redisAdapter.WithProducerMaxLen[redisAdapter.ImageEvent](impl.config.Redis.StreamMaxLen),
	)
	if err != nil {
		return fmt.Errorf("fail to create producer, err=%w", err)
	}
	consumer, err := redisAdapter.NewConsumer[redisAdapter.ImageEvent](
		redisClient,
		impl.config.Redis.StreamKey,
		redisAdapter.WithConsumerLogger[redisAdapter.ImageEvent](slog.Default()),
	)
	if err != nil {
		return fmt.Errorf("fail to create consumer, err=%w", err)
	}
	sseManager, err := sse.NewConnectionManager[redisAdapter.ImageEvent](
		sse.WithLogger[redisAdapter.ImageEvent](slog.Default()),
		sse.WithSubscriber[redisAdapter.ImageEvent](consumer),
	)
	if err != nil {
		return fmt.Errorf("fail to create sse connection manager, err=%w", err)
	}
	impl.producer = producer
	impl.consumer = consumer
	impl.sseManager = sseManager
	return nil
}

func (impl *ServerImpl) Start() {
	if impl.producer != nil {
		impl.producer.Start()
	}
	if impl.consumer != nil {
		impl.consumer.Start()
	}
	if impl.sseManager != nil {
		impl.sseManager.Start()
	}
}

func (impl *ServerImpl) Close() {
	if impl.producer != nil {
		impl.producer.Close()
	}
	if impl.consumer != nil {
		impl.consumer.Close()
	}
	if impl.sseManager != nil {
		impl.sseManager.Done()
	}
	closeAll(impl.closers)
	impl.closers = nil
}

func closeAll(closers []io.Closer) {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("Fail to close server resources", slog.Any("error", err))
	}
}
