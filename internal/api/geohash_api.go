// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"geohash-api/internal/geodist"
	"geohash-api/internal/geohash"
	"geohash-api/internal/logger"
	"geohash-api/internal/measure"
	"geohash-api/internal/metrics"
	"geohash-api/internal/origin"
	"geohash-api/internal/store"

	"github.com/redis/go-redis/v9"
)

// 展示层精度挡位：控件在 5..12 间循环，接口放宽到 1..12；库本身无上限
const (
	minPrecision     = 1
	maxPrecision     = 12
	defaultPrecision = 8
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	_ = json.NewEncoder(w).Encode(v)
}

// writeValidationError：核心错误到 HTTP 400 的映射
// 背景：三类错误均为调用方输入问题，统一 400；非法字符额外携带字符与位置，便于前端高亮。
func writeValidationError(w http.ResponseWriter, err error) {
	var ice *geohash.InvalidCharacterError
	res := errorResult{Error: err.Error()}
	kind := "other"
	switch {
	case errors.As(err, &ice):
		kind = "character"
		res.Char = string(ice.Char)
		pos := ice.Pos
		res.Pos = &pos
	case errors.Is(err, geohash.ErrInvalidCoordinate):
		kind = "coordinate"
	case errors.Is(err, geohash.ErrInvalidPrecision):
		kind = "precision"
	}
	metrics.InvalidInputTotal.WithLabelValues(kind).Inc()
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(res)
}

func badParam(w http.ResponseWriter, name string) {
	metrics.InvalidInputTotal.WithLabelValues("param").Inc()
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(errorResult{Error: "missing or malformed parameter: " + name})
}

func floatParam(r *http.Request, name string) (float64, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// precisionParam：解析精度参数并做展示层挡位校验
func precisionParam(r *http.Request) (int, bool) {
	s := r.URL.Query().Get("precision")
	if s == "" {
		return defaultPrecision, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minPrecision || n > maxPrecision {
		return 0, false
	}
	return n, true
}

func observe(endpoint string, start time.Time) {
	metrics.RequestsTotal.WithLabelValues(endpoint).Inc()
	metrics.RequestDurationMs.WithLabelValues(endpoint).Observe(float64(time.Since(start).Milliseconds()))
}

// BuildRoutes：构建并返回 API 路由
// 背景：独立 ServeMux 便于在主入口挂载到 /api 前缀；store/redis/geoip 均可为 nil，对应能力降级。
func BuildRoutes(st *store.Store, rc *redis.Client, or *origin.Resolver) *http.ServeMux {
	cacheTTL := 3600
	if s := os.Getenv("MEASURE_CACHE_TTL_SECONDS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cacheTTL = n
		}
	}
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("/encode", func(w http.ResponseWriter, r *http.Request) {
		defer observe("encode", time.Now())
		lat, ok1 := floatParam(r, "lat")
		lon, ok2 := floatParam(r, "lon")
		if !ok1 || !ok2 {
			badParam(w, "lat/lon")
			return
		}
		precision, ok := precisionParam(r)
		if !ok {
			badParam(w, "precision")
			return
		}
		hash, err := geohash.Encode(lat, lon, precision)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		metrics.EncodeTotal.Inc()
		writeJSON(w, encodeResult{Hash: hash})
	})

	apiMux.HandleFunc("/decode", func(w http.ResponseWriter, r *http.Request) {
		defer observe("decode", time.Now())
		hash := r.URL.Query().Get("hash")
		if hash == "" {
			badParam(w, "hash")
			return
		}
		box, err := geohash.DecodeBounds(hash)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		metrics.DecodeTotal.Inc()
		lat, lon := box.Center()
		writeJSON(w, decodeResult{
			Lat: lat, Lon: lon,
			LatMin: box.LatMin, LatMax: box.LatMax,
			LonMin: box.LonMin, LonMax: box.LonMax,
		})
	})

	apiMux.HandleFunc("/distance", func(w http.ResponseWriter, r *http.Request) {
		defer observe("distance", time.Now())
		lat1, ok1 := floatParam(r, "lat1")
		lon1, ok2 := floatParam(r, "lon1")
		lat2, ok3 := floatParam(r, "lat2")
		lon2, ok4 := floatParam(r, "lon2")
		if !ok1 || !ok2 || !ok3 || !ok4 {
			badParam(w, "lat1/lon1/lat2/lon2")
			return
		}
		// 距离引擎本身不校验范围，这里复用编码器的范围契约做入口校验
		if !(lat1 >= -90 && lat1 <= 90 && lat2 >= -90 && lat2 <= 90 &&
			lon1 >= -180 && lon1 <= 180 && lon2 >= -180 && lon2 <= 180) {
			writeValidationError(w, geohash.ErrInvalidCoordinate)
			return
		}
		writeJSON(w, distanceResult{Meters: geodist.Meters(lat1, lon1, lat2, lon2)})
	})

	apiMux.HandleFunc("/neighbors", func(w http.ResponseWriter, r *http.Request) {
		defer observe("neighbors", time.Now())
		hash := r.URL.Query().Get("hash")
		if hash == "" {
			badParam(w, "hash")
			return
		}
		ns, err := geohash.Neighbors(hash)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		writeJSON(w, neighborsResult{Neighbors: ns})
	})

	apiMux.HandleFunc("/measure", func(w http.ResponseWriter, r *http.Request) {
		defer observe("measure", time.Now())
		ctx := r.Context()
		tlat, ok1 := floatParam(r, "tlat")
		tlon, ok2 := floatParam(r, "tlon")
		if !ok1 || !ok2 {
			badParam(w, "tlat/tlon")
			return
		}
		precision, ok := precisionParam(r)
		if !ok {
			badParam(w, "precision")
			return
		}
		lat, okLat := floatParam(r, "lat")
		lon, okLon := floatParam(r, "lon")
		if !okLat || !okLon {
			// 背景：起点缺省时回退到访问者 IP 的 GeoIP 城市级定位
			ip := getClientIP(r)
			glat, glon, ok := or.Resolve(ip)
			if !ok {
				logger.L().Debug("measure_origin_unresolved", "ip", ip)
				badParam(w, "lat/lon")
				return
			}
			lat, lon = glat, glon
			logger.L().Debug("measure_origin_geoip", "ip", ip, "lat", lat, "lon", lon)
		}
		res, err := measure.ComputeCached(ctx, rc,
			measure.Coordinate{Lat: lat, Lon: lon},
			measure.Coordinate{Lat: tlat, Lon: tlon},
			precision, cacheTTL)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		if st != nil {
			_ = st.IncrMeasure(ctx)
		}
		writeJSON(w, res)
	})

	apiMux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		defer observe("stats", time.Now())
		if st == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		t, _ := st.GetTotals(r.Context())
		writeJSON(w, map[string]any{"total": t.Total, "today": t.Today})
	})

	return apiMux
}
