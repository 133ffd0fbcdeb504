// 包 store: 提供与 PostgreSQL 的数据访问层，仅承载测量用量统计的读写
// 约束：测量结果本身不落库，只累计次数；统计失败不影响主流程（调用方忽略错误）。
package store

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

// Store: 数据库访问入口，持有连接池并提供统计接口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开数据库连接并配置连接池参数
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Totals: 统计汇总，总量与当日量
type Totals struct {
	Total int64
	Today int64
}

// IncrMeasure: 累加一次测量计数（总表 + 当日表）
func (s *Store) IncrMeasure(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE _geo_stats_total SET total_measures = total_measures + 1 WHERE id = 1`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO _geo_stats_daily(day, measures)
        VALUES(CURRENT_DATE, 1)
        ON CONFLICT (day) DO UPDATE SET measures = _geo_stats_daily.measures + 1`)
	return err
}

// GetTotals: 读取统计汇总；当日无记录时按 0 返回
func (s *Store) GetTotals(ctx context.Context) (Totals, error) {
	var t Totals
	if err := s.db.QueryRowContext(ctx, `SELECT total_measures FROM _geo_stats_total WHERE id = 1`).Scan(&t.Total); err != nil {
		return t, err
	}
	err := s.db.QueryRowContext(ctx, `SELECT measures FROM _geo_stats_daily WHERE day = CURRENT_DATE`).Scan(&t.Today)
	if err == sql.ErrNoRows {
		return t, nil
	}
	return t, err
}
