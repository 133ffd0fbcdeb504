// 包 measure：距离测量编排层
// 背景：对同一组起点/终点同时给出真实大圆距离与 geohash 网格中心距离，二者的偏差直观反映编码精度带来的近似误差。
// 约束：核心计算为纯函数；Redis 记忆化为可选旁路，键由输入值唯一决定。
package measure

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"geohash-api/internal/geodist"
	"geohash-api/internal/geohash"
	"geohash-api/internal/logger"
	"geohash-api/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// Coordinate：不可变坐标值
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Result：一次测量的完整输出
// 背景：同时携带两个哈希、两个网格中心与两种距离，供展示层并排呈现近似误差。
type Result struct {
	Precision     int        `json:"precision"`
	OriginHash    string     `json:"origin_hash"`
	TargetHash    string     `json:"target_hash"`
	OriginCenter  Coordinate `json:"origin_center"`
	TargetCenter  Coordinate `json:"target_center"`
	TrueMeters    float64    `json:"true_m"`
	GeohashMeters float64    `json:"geohash_m"`
	ErrorMeters   float64    `json:"error_m"`
}

// Compute：纯函数测量
// 流程：两点各自编码 → 各自解码回网格中心 → 距离引擎分别作用于原始坐标与两个中心。
func Compute(origin, target Coordinate, precision int) (*Result, error) {
	oh, err := geohash.Encode(origin.Lat, origin.Lon, precision)
	if err != nil {
		return nil, fmt.Errorf("encode origin: %w", err)
	}
	th, err := geohash.Encode(target.Lat, target.Lon, precision)
	if err != nil {
		return nil, fmt.Errorf("encode target: %w", err)
	}
	oLat, oLon, err := geohash.Decode(oh)
	if err != nil {
		return nil, fmt.Errorf("decode origin: %w", err)
	}
	tLat, tLon, err := geohash.Decode(th)
	if err != nil {
		return nil, fmt.Errorf("decode target: %w", err)
	}
	trueM := geodist.Meters(origin.Lat, origin.Lon, target.Lat, target.Lon)
	hashM := geodist.Meters(oLat, oLon, tLat, tLon)
	return &Result{
		Precision:     precision,
		OriginHash:    oh,
		TargetHash:    th,
		OriginCenter:  Coordinate{Lat: oLat, Lon: oLon},
		TargetCenter:  Coordinate{Lat: tLat, Lon: tLon},
		TrueMeters:    trueM,
		GeohashMeters: hashM,
		ErrorMeters:   math.Abs(trueM - hashM),
	}, nil
}

// CacheKey：测量结果的记忆化键
// 约束：坐标量化到 1e-6 度（约 0.1 米）保证键稳定；输出是输入的纯函数，缓存无一致性风险。
func CacheKey(origin, target Coordinate, precision int) string {
	return fmt.Sprintf("measure:%.6f:%.6f:%.6f:%.6f:%d",
		origin.Lat, origin.Lon, target.Lat, target.Lon, precision)
}

// ComputeCached：带可选 Redis 记忆化的测量
// 背景：展示层在坐标/目标/精度变化时高频重算，热点输入直接命中缓存；rc 为 nil 时退化为纯计算。
func ComputeCached(ctx context.Context, rc *redis.Client, origin, target Coordinate, precision int, ttlSeconds int) (*Result, error) {
	tBegin := time.Now()
	metrics.MeasureTotal.Inc()
	key := CacheKey(origin, target, precision)
	if rc != nil {
		if s, _ := rc.Get(ctx, key).Result(); s != "" {
			var out Result
			if err := json.Unmarshal([]byte(s), &out); err == nil {
				metrics.RedisHitsTotal.Inc()
				return &out, nil
			}
		}
		metrics.RedisMissesTotal.Inc()
	}
	out, err := Compute(origin, target, precision)
	if err != nil {
		return nil, err
	}
	metrics.MeasureErrorMeters.Observe(out.ErrorMeters)
	logger.L().Debug("measure_computed",
		"precision", precision,
		"origin_hash", out.OriginHash,
		"target_hash", out.TargetHash,
		"true_m", out.TrueMeters,
		"geohash_m", out.GeohashMeters,
		"error_m", out.ErrorMeters,
		"duration_ms", time.Since(tBegin).Milliseconds(),
	)
	if rc != nil {
		b, _ := json.Marshal(out)
		ttl := time.Duration(ttlSeconds) * time.Second
		if ttlSeconds <= 0 {
			ttl = 3600 * time.Second
		}
		_ = rc.Set(ctx, key, string(b), ttl).Err()
	}
	return out, nil
}
