// 包 origin：基于 GeoIP 城市库的来源坐标解析
// 背景：/measure 未显式给出起点时，用访问者 IP 解析出默认起点坐标；定位来自传感器的场景由外部系统负责，这里只做 IP 粒度兜底。
// 约束：库文件缺失时整体降级为不可用而非报错；解析结果为城市级近似，精度参与误差展示即可。
package origin

import (
	"net"
	"os"
	"path/filepath"

	"geohash-api/internal/logger"
	"geohash-api/internal/metrics"

	"github.com/oschwald/geoip2-golang"
)

// Resolver：只读 GeoIP 读取器的薄封装
type Resolver struct {
	db *geoip2.Reader
}

// OpenFromEnv：按 GEOIP_DB_PATH 打开城市库；失败返回 nil 表示功能关闭
func OpenFromEnv() *Resolver {
	path := os.Getenv("GEOIP_DB_PATH")
	if path == "" {
		path = filepath.Join("data", "geoip", "GeoLite2-City.mmdb")
	}
	if _, err := os.Stat(path); err != nil {
		logger.L().Info("geoip_disabled", "path", path)
		return nil
	}
	db, err := geoip2.Open(path)
	if err != nil {
		logger.L().Error("geoip_open_error", "path", path, "err", err)
		return nil
	}
	logger.L().Info("geoip_ready", "path", path)
	return &Resolver{db: db}
}

// Resolve：IP 文本到坐标
// 约束：私有地址或库中无记录时返回 ok=false；(0,0) 视为无效记录
func (r *Resolver) Resolve(ipStr string) (lat, lon float64, ok bool) {
	if r == nil || r.db == nil {
		return 0, 0, false
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		metrics.GeoIPResolveTotal.WithLabelValues("bad_ip").Inc()
		return 0, 0, false
	}
	rec, err := r.db.City(ip)
	if err != nil {
		metrics.GeoIPResolveTotal.WithLabelValues("error").Inc()
		return 0, 0, false
	}
	lat = rec.Location.Latitude
	lon = rec.Location.Longitude
	if lat == 0 && lon == 0 {
		metrics.GeoIPResolveTotal.WithLabelValues("miss").Inc()
		return 0, 0, false
	}
	metrics.GeoIPResolveTotal.WithLabelValues("hit").Inc()
	return lat, lon, true
}

// Close：释放底层 mmdb 句柄
func (r *Resolver) Close() {
	if r != nil && r.db != nil {
		_ = r.db.Close()
	}
}
