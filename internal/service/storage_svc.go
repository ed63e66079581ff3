package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"marketsync_v1_202608/internal/config"
)

// ==================== 报表归档存储 ====================

// ArchiveStorage 报表 zip 的对象存储归档
type ArchiveStorage interface {
	// Upload 上传归档文件，返回对象键
	Upload(ctx context.Context, data []byte, filename string) (string, error)
}

// NewArchiveStorage 按配置创建归档存储
// 未配置 provider 时返回 nil，归档功能静默停用
func NewArchiveStorage(cfg config.StorageConfig) (ArchiveStorage, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "s3":
		return newS3Archive(cfg)
	default:
		return nil, fmt.Errorf("provedor de armazenamento desconhecido: %s", cfg.Provider)
	}
}

type s3Archive struct {
	client   *s3.Client
	bucket   string
	basePath string
}

func newS3Archive(cfg config.StorageConfig) (*s3Archive, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("carregamento da configuração AWS falhou: %w", err)
	}

	return &s3Archive{
		client:   s3.NewFromConfig(awsCfg),
		bucket:   cfg.Bucket,
		basePath: cfg.BasePath,
	}, nil
}

func (s *s3Archive) Upload(ctx context.Context, data []byte, filename string) (string, error) {
	key := s.objectKey(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return "", fmt.Errorf("upload para S3 falhou: %w", err)
	}
	return key, nil
}

// objectKey 按日期归档：{base}/2026/08/30/arquivo.zip
func (s *s3Archive) objectKey(filename string) string {
	datePath := time.Now().Format("2006/01/02")
	if s.basePath != "" {
		return fmt.Sprintf("%s/%s/%s", s.basePath, datePath, filename)
	}
	return fmt.Sprintf("%s/%s", datePath, filename)
}
