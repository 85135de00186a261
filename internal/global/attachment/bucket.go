// Package attachment 为项目与投标附件生成对象存储的预签名地址，文件不经过后端
package attachment

import (
	"context"
	"strings"
	"sync"

	appconfig "freelance-marketplace/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// Bucket 对应配置中的一个 S3 兼容存储桶
type Bucket struct {
	Endpoint     string
	BaseURL      string
	Name         string
	Region       string
	Prefix       string
	UsePathStyle bool

	accessKey string
	secretKey string

	once    sync.Once
	client  *s3.Client
	initErr error
}

func NewBucket(c appconfig.S3) *Bucket {
	return &Bucket{
		Endpoint:     c.Endpoint,
		BaseURL:      c.BaseURL,
		Name:         c.Bucket,
		Region:       c.Region,
		Prefix:       c.Prefix,
		UsePathStyle: c.UsePathStyle,
		accessKey:    c.AccessKey,
		secretKey:    c.SecretAccessKey,
	}
}

// s3Client 首次使用时创建客户端
func (b *Bucket) s3Client(ctx context.Context) (*s3.Client, error) {
	b.once.Do(func() {
		region := b.Region
		if region == "" {
			region = "us-east-1"
		}
		opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
		if b.accessKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(b.accessKey, b.secretKey, "")))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			b.initErr = errors.Wrap(err, "加载 S3 配置失败")
			return
		}
		b.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if b.Endpoint != "" {
				o.BaseEndpoint = aws.String(b.Endpoint)
			}
			o.UsePathStyle = b.UsePathStyle
		})
	})
	return b.client, b.initErr
}

// PublicURL 上传完成后对象的访问地址
func (b *Bucket) PublicURL(key string) string {
	base := strings.TrimRight(b.BaseURL, "/")
	if base == "" {
		base = strings.TrimRight(b.Endpoint, "/")
	}
	if b.UsePathStyle {
		return base + "/" + b.Name + "/" + key
	}
	return base + "/" + key
}
