package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"imagestore/images"
)

type S3Operator struct {
	// client 是 S3 客戶端。
	Client *s3.Client
	// Bucket 是 S3 存儲桶的名稱。
	Bucket string
	// PublicEndpoint 是 S3 存儲桶的公開 Endpoint，物件的 URL 由它與 key 組成。
	PublicEndpoint *url.URL
}

// NewS3Operator 建立 S3Operator。
// publicBaseURL 為空時使用 https://<bucket>.s3.<region>.amazonaws.com 作為公開 Endpoint。
func NewS3Operator(client *s3.Client, bucket, region, publicBaseURL string) (*S3Operator, error) {
	const op = "NewS3Operator"
	if client == nil {
		return nil, fmt.Errorf("[%s] S3 client cannot be nil", op)
	}
	if bucket == "" {
		return nil, fmt.Errorf("[%s] Bucket cannot be empty", op)
	}
	if publicBaseURL == "" {
		if region == "" {
			return nil, fmt.Errorf("[%s] Region is required when public base URL is empty", op)
		}
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", bucket, region)
	}
	publicEndpoint, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse public base URL, err=%w", op, err)
	}
	return &S3Operator{Client: client, Bucket: bucket, PublicEndpoint: publicEndpoint}, nil
}

// Location 回傳 key 對應的公開 URL
func (s *S3Operator) Location(key string) string {
	uri := *s.PublicEndpoint
	uri.Path = strings.TrimSuffix(uri.Path, "/") + "/" + key
	uri.RawPath = ""
	return uri.String()
}

// Put 上傳檔案並回傳公開 URL，失敗時不會重試
func (s *S3Operator) Put(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	const op = "S3Operator.Put"
	if key == "" {
		return "", fmt.Errorf("[%s] Key cannot be empty, err=%w", op, images.ErrObjectStore)
	}
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to upload file to S3, err=%w", op, errors.Join(images.ErrObjectStore, err))
	}
	return s.Location(key), nil
}

// Delete 刪除指定的物件
func (s *S3Operator) Delete(ctx context.Context, key string) error {
	const op = "S3Operator.Delete"
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("[%s] Fail to delete file from S3, err=%w", op, errors.Join(images.ErrObjectStore, err))
	}
	return nil
}
