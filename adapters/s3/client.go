package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ClientConfig 描述建立 S3 客戶端所需的設定
type ClientConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// NewClient 建立 S3 客戶端。
// 上傳失敗是否重試由呼叫端決定，所以這裡關閉 SDK 內建的重試。
func NewClient(ctx context.Context, config ClientConfig) (*s3.Client, error) {
	const op = "NewClient"
	opts := []func(*awsCfg.LoadOptions) error{
		awsCfg.WithRegion(config.Region),
		awsCfg.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if config.Endpoint != "" {
		opts = append(opts, awsCfg.WithBaseEndpoint(config.Endpoint))
	}
	// 沒有提供金鑰時使用預設的 credential chain（環境變數、IAM role 等）
	if config.AccessKeyID != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, "")))
	}
	cfg, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load AWS config, err=%w", op, err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = config.UsePathStyle
	}), nil
}
