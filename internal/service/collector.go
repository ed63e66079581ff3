package service

import (
	"context"
	"errors"

	"marketsync_v1_202608/pkg/net"
)

// PlatformCollector 单平台采集器的统一入口
// 三个平台服务都实现它，控制层与任务层只依赖本接口
type PlatformCollector interface {
	// Collect 对单个卖家执行一次完整采集流水线
	Collect(ctx context.Context, seller string) error
	// Sellers 该平台已配置凭证的卖家
	Sellers() []string
}

// CollectorRegistry 平台标识到采集器的映射
type CollectorRegistry map[string]PlatformCollector

// isFatalAuth 刷新失败属于鉴权级别的致命错误
// 任何抓取路径碰到都要立即终止该卖家的采集
func isFatalAuth(err error) bool {
	var refreshErr *net.RefreshError
	return errors.As(err, &refreshErr)
}
