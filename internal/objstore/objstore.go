// 包 objstore：S3/MinIO 对象存储数据源，远端数据集不落盘直接流式装载。
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"soil-api/internal/logger"
	"soil-api/internal/soildata"
	"soil-api/internal/utils"
)

// Client 对象存储访问入口。
type Client struct {
	mc *minio.Client
}

// 文档注释：从环境变量构建对象存储客户端
// 背景：MINIO_ENDPOINT / MINIO_ACCESS_KEY / MINIO_SECRET_KEY 三者必填，
// MINIO_USE_SSL 控制 TLS；凭证固定 V4 签名。
func NewFromEnv() (*Client, error) {
	endpoint := utils.Env("MINIO_ENDPOINT", "")
	access := utils.Env("MINIO_ACCESS_KEY", "")
	secret := utils.Env("MINIO_SECRET_KEY", "")
	if endpoint == "" || access == "" || secret == "" {
		return nil, errors.New("objstore: MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required")
	}
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: utils.EnvBool("MINIO_USE_SSL"),
	})
	if err != nil {
		return nil, fmt.Errorf("objstore: new client: %w", err)
	}
	logger.L().Debug("objstore_ready", "endpoint", endpoint)
	return &Client{mc: mc}, nil
}

// 文档注释：打开对象读流
// 背景：GetObject 为惰性打开，缺失要到首次读取才暴露；先 Stat 一次，
// 把对象/桶不存在统一归为数据集缺失错误，调用方拿到的语义与本地文件一致。
// 返回：成功时由调用方负责 Close。
func (c *Client) Fetch(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if _, err := c.mc.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "NoSuchKey" || code == "NoSuchBucket" {
			return nil, fmt.Errorf("%w: s3://%s/%s", soildata.ErrDatasetNotFound, bucket, key)
		}
		return nil, fmt.Errorf("objstore: stat s3://%s/%s: %w", bucket, key, err)
	}
	obj, err := c.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("objstore: get s3://%s/%s: %w", bucket, key, err)
	}
	return obj, nil
}

// LoadDataset 拉流并装载数据集，错误定位统一用 s3:// 形式的源名。
func (c *Client) LoadDataset(ctx context.Context, bucket, key string, l soildata.Loader) (*soildata.Dataset, error) {
	rc, err := c.Fetch(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return l.Load(rc, "s3://"+bucket+"/"+key)
}
