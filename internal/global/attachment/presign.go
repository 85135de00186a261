package attachment

import (
	"context"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	DefaultExpiry = 15 * time.Minute
	MaxExpiry     = time.Hour
)

// Owner 附件归属，决定对象 key 的目录
type Owner string

const (
	OwnerProject  Owner = "project"
	OwnerProposal Owner = "proposal"
)

var ErrInvalidRequest = errors.New("attachment: invalid request")

type UploadRequest struct {
	Owner       Owner
	UserID      uint
	Filename    string
	ContentType string
	Expiry      time.Duration
}

type Upload struct {
	UploadURL string            `json:"upload_url"`
	FileKey   string            `json:"file_key"`
	FileURL   string            `json:"file_url"`
	ExpiresAt time.Time         `json:"expires_at"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
}

// ObjectKey 形如 prefix/project/12/uuid.pdf
func (b *Bucket) ObjectKey(owner Owner, userID uint, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	key := path.Join(strings.Trim(b.Prefix, "/"), string(owner), strconv.FormatUint(uint64(userID), 10), uuid.NewString()+ext)
	return strings.TrimLeft(key, "/")
}

// PresignUpload 生成 PUT 预签名地址，前端直接上传到存储桶
func (b *Bucket) PresignUpload(ctx context.Context, req UploadRequest) (*Upload, error) {
	if b.Name == "" {
		return nil, errors.New("S3 bucket 未配置")
	}
	if req.Owner != OwnerProject && req.Owner != OwnerProposal {
		return nil, errors.Wrapf(ErrInvalidRequest, "未知的附件归属 %q", req.Owner)
	}
	if strings.TrimSpace(req.Filename) == "" {
		return nil, errors.Wrap(ErrInvalidRequest, "文件名不能为空")
	}
	if req.Expiry <= 0 {
		req.Expiry = DefaultExpiry
	}
	req.Expiry = min(req.Expiry, MaxExpiry)
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	client, err := b.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	key := b.ObjectKey(req.Owner, req.UserID, req.Filename)
	signed, err := s3.NewPresignClient(client).PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.Name),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(req.Expiry))
	if err != nil {
		return nil, errors.Wrap(err, "生成预签名 URL 失败")
	}

	upload := &Upload{
		UploadURL: signed.URL,
		FileKey:   key,
		FileURL:   b.PublicURL(key),
		ExpiresAt: time.Now().Add(req.Expiry),
		Method:    signed.Method,
		Headers:   map[string]string{"Content-Type": contentType},
	}
	for k, v := range signed.SignedHeader {
		if len(v) > 0 {
			upload.Headers[k] = v[0]
		}
	}
	return upload, nil
}
