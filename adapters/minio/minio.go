package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"imagestore/images"
)

// Config 描述 MinIO 連線設定
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	// PublicBaseURL 為空時使用 <scheme>://<endpoint>/<bucket> 作為公開 Endpoint
	PublicBaseURL string
}

// Operator 以 MinIO 實作 images.ObjectStore
type Operator struct {
	client         *minio.Client
	bucket         string
	publicEndpoint *url.URL
}

func NewOperator(config Config) (*Operator, error) {
	const op = "minio.NewOperator"
	if config.Endpoint == "" {
		return nil, fmt.Errorf("[%s] Endpoint cannot be empty", op)
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("[%s] Bucket cannot be empty", op)
	}

	// 上傳失敗時交給呼叫端處理，不在客戶端內部重試
	minio.MaxRetry = 1

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
		// 指定 region 可以避免每次上傳前查詢 bucket 位置
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create MinIO client, err=%w", op, err)
	}

	publicBaseURL := config.PublicBaseURL
	if publicBaseURL == "" {
		scheme := "http"
		if config.UseSSL {
			scheme = "https"
		}
		publicBaseURL = fmt.Sprintf("%s://%s/%s/", scheme, config.Endpoint, config.Bucket)
	}
	publicEndpoint, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse public base URL, err=%w", op, err)
	}

	return &Operator{
		client:         client,
		bucket:         config.Bucket,
		publicEndpoint: publicEndpoint,
	}, nil
}

// Location 回傳 key 對應的公開 URL
func (o *Operator) Location(key string) string {
	uri := *o.publicEndpoint
	uri.Path = strings.TrimSuffix(uri.Path, "/") + "/" + key
	uri.RawPath = ""
	return uri.String()
}

// Put 上傳檔案並回傳公開 URL
func (o *Operator) Put(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	const op = "minio.Operator.Put"
	if key == "" {
		return "", fmt.Errorf("[%s] Key cannot be empty, err=%w", op, images.ErrObjectStore)
	}
	_, err := o.client.PutObject(ctx, o.bucket, key, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to upload file to MinIO, err=%w", op, errors.Join(images.ErrObjectStore, err))
	}
	return o.Location(key), nil
}

// Delete 刪除指定的物件
func (o *Operator) Delete(ctx context.Context, key string) error {
	const op = "minio.Operator.Delete"
	if err := o.client.RemoveObject(ctx, o.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("[%s] Fail to delete file from MinIO, err=%w", op, errors.Join(images.ErrObjectStore, err))
	}
	return nil
}
