package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoapi_requests_total",
		Help: "Total API requests by endpoint",
	}, []string{"endpoint"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geoapi_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"endpoint"})
	InvalidInputTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoapi_invalid_input_total",
		Help: "Total rejected requests by validation failure kind",
	}, []string{"kind"})
	EncodeTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoapi_encode_total",
		Help: "Total geohash encode operations",
	})
	DecodeTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoapi_decode_total",
		Help: "Total geohash decode operations",
	})
	MeasureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoapi_measure_total",
		Help: "Total distance measurements (true + geohash pair)",
	})
	MeasureErrorMeters = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geoapi_measure_error_meters",
		Help:    "Absolute approximation error between true and geohash distance",
		Buckets: []float64{0.1, 1, 10, 100, 1000, 10000, 100000, 1000000},
	})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoapi_redis_hits_total",
		Help: "Total redis cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoapi_redis_misses_total",
		Help: "Total redis cache misses",
	})
	GeoIPResolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoapi_geoip_resolve_total",
		Help: "Total client IP origin resolutions by status",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(InvalidInputTotal)
	prometheus.MustRegister(EncodeTotal)
	prometheus.MustRegister(DecodeTotal)
	prometheus.MustRegister(MeasureTotal)
	prometheus.MustRegister(MeasureErrorMeters)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
	prometheus.MustRegister(GeoIPResolveTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
