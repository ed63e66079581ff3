package net

import (
	"context"
	"time"
)

// 分页器族：把异构的列表接口拉平成一个有序切片
// 公共约定：
//   - 每页之间固定休眠 (协作式限流)
//   - 中途请求失败时返回已累计的记录和该错误，调用方记录日志后
//     带着部分数据继续流水线，绝不因单个资源翻页失败而中断全局

// PaginateOffset offset/limit 风格 (Magalu)
// fetch 返回一页记录；页为空或短于 limit 即为数据耗尽
func PaginateOffset[T any](ctx context.Context, limit int, delay time.Duration, fetch func(ctx context.Context, limit, offset int) ([]T, error)) ([]T, error) {
	var all []T
	offset := 0

	for {
		page, err := fetch(ctx, limit, offset)
		if err != nil {
			return all, err
		}
		if len(page) == 0 {
			return all, nil
		}

		all = append(all, page...)

		if len(page) < limit {
			return all, nil
		}
		offset += limit

		if delay > 0 {
			time.Sleep(delay)
		}
	}
}

// PaginateCursor 不透明游标风格 (Amazon nextToken / Mercado Livre scroll_id)
// fetch 返回一页可用记录和下一页游标；游标缺失即结束
// 有游标但整页没有任何可用记录时同样视为数据耗尽，防御上游的噪声尾页
func PaginateCursor[T any](ctx context.Context, delay time.Duration, fetch func(ctx context.Context, cursor string) ([]T, string, error)) ([]T, error) {
	var all []T
	cursor := ""

	for {
		page, next, err := fetch(ctx, cursor)
		if err != nil {
			return all, err
		}
		if len(page) == 0 {
			return all, nil
		}

		all = append(all, page...)

		if next == "" {
			return all, nil
		}
		cursor = next

		if delay > 0 {
			time.Sleep(delay)
		}
	}
}
