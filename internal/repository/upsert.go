package repository

import (
	"context"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 单条语句携带的最大行数，约束每批 payload 体积
const upsertBatchSize = 500

// UpsertSpec 合并式插入的表映射：自然键列 + 可变列
// 各平台同步只提供映射，不写各自的 SQL
type UpsertSpec struct {
	Conflict []string
	Updates  []string
}

func (s UpsertSpec) conflictColumns() []clause.Column {
	cols := make([]clause.Column, len(s.Conflict))
	for i, c := range s.Conflict {
		cols[i] = clause.Column{Name: c}
	}
	return cols
}

// upsertInChunks 分块合并插入
// 单个批次失败仅计数并跳过，后续批次照常提交（部分成功语义）
// 返回失败批次数，调用方将其汇总进运行记录
func upsertInChunks[T any](ctx context.Context, db *gorm.DB, rows []T, spec UpsertSpec) int {
	failed := 0
	for start := 0; start < len(rows); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   spec.conflictColumns(),
			DoUpdates: clause.AssignmentColumns(spec.Updates),
		}).Create(&chunk).Error
		if err != nil {
			log.Printf("[Store] 批次插入失败 (offset %d): %v", start, err)
			failed++
		}
	}
	return failed
}

// dedupeLast 按自然键去重，保留最后一次出现的值
// 先到先得的顺序，后到后胜的内容：同一批内上游重复页不会让旧值压过新值
func dedupeLast[T any](rows []T, key func(T) string) []T {
	if len(rows) == 0 {
		return rows
	}

	index := make(map[string]int, len(rows))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		k := key(row)
		if pos, ok := index[k]; ok {
			out[pos] = row
			continue
		}
		index[k] = len(out)
		out = append(out, row)
	}
	return out
}
