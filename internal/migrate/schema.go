package migrate

import (
	"database/sql"

	"geohash-api/internal/logger"
)

// 背景：首次运行自动创建统计表与种子行，保障后续计数与查询
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _geo_stats_total (
            id INT PRIMARY KEY,
            total_measures BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS _geo_stats_daily (
            day DATE PRIMARY KEY,
            measures BIGINT NOT NULL DEFAULT 0
        )`,
		`INSERT INTO _geo_stats_total(id, total_measures)
         VALUES(1, 0)
         ON CONFLICT (id) DO NOTHING`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
