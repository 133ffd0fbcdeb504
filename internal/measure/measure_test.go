package measure

import (
	"context"
	"strings"
	"testing"

	"geohash-api/internal/geodist"
	"geohash-api/internal/geohash"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sf     = Coordinate{Lat: 37.785834, Lon: -122.406417}
	sydney = Coordinate{Lat: -33.8688, Lon: 151.2093}
)

func TestComputeFieldsConsistent(t *testing.T) {
	res, err := Compute(sf, sydney, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Precision)
	assert.Len(t, res.OriginHash, 8)
	assert.Len(t, res.TargetHash, 8)
	assert.InDelta(t, res.ErrorMeters, abs(res.TrueMeters-res.GeohashMeters), 1e-9)
	assert.Equal(t, geodist.Meters(sf.Lat, sf.Lon, sydney.Lat, sydney.Lon), res.TrueMeters)
	// 网格中心必须能从哈希复原
	lat, lon, err := geohash.Decode(res.OriginHash)
	require.NoError(t, err)
	assert.Equal(t, Coordinate{Lat: lat, Lon: lon}, res.OriginCenter)
}

func TestComputePrecisionShrinksError(t *testing.T) {
	// 端到端场景：精度从 1 到 8，原始点到网格中心的距离受网格对角线约束，且对角线逐级收窄
	var prevDiag float64
	var firstDist, lastDist float64
	for precision := 1; precision <= 8; precision++ {
		res, err := Compute(sf, sydney, precision)
		require.NoError(t, err)
		box, err := geohash.DecodeBounds(res.OriginHash)
		require.NoError(t, err)
		diag := geodist.Meters(box.LatMin, box.LonMin, box.LatMax, box.LonMax)
		dist := geodist.Meters(sf.Lat, sf.Lon, res.OriginCenter.Lat, res.OriginCenter.Lon)
		assert.LessOrEqual(t, dist, diag, "precision %d", precision)
		if precision > 1 {
			assert.Less(t, diag, prevDiag)
		}
		prevDiag = diag
		if precision == 1 {
			firstDist = dist
		}
		if precision == 8 {
			lastDist = dist
		}
	}
	assert.Less(t, lastDist, firstDist)
}

func TestComputePrefixAcrossPrecisions(t *testing.T) {
	res1, err := Compute(sf, sydney, 1)
	require.NoError(t, err)
	res8, err := Compute(sf, sydney, 8)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res8.OriginHash, res1.OriginHash))
	assert.True(t, strings.HasPrefix(res8.TargetHash, res1.TargetHash))
}

func TestComputeSamePointZero(t *testing.T) {
	res, err := Compute(sf, sf, 8)
	require.NoError(t, err)
	assert.Zero(t, res.TrueMeters)
	assert.Zero(t, res.GeohashMeters)
	assert.Zero(t, res.ErrorMeters)
	assert.Equal(t, res.OriginHash, res.TargetHash)
}

func TestComputeInvalidInput(t *testing.T) {
	_, err := Compute(Coordinate{Lat: 91}, sydney, 8)
	assert.ErrorIs(t, err, geohash.ErrInvalidCoordinate)
	_, err = Compute(sf, Coordinate{Lon: -181}, 8)
	assert.ErrorIs(t, err, geohash.ErrInvalidCoordinate)
	_, err = Compute(sf, sydney, 0)
	assert.ErrorIs(t, err, geohash.ErrInvalidPrecision)
}

func TestCacheKeyStability(t *testing.T) {
	a := CacheKey(sf, sydney, 8)
	b := CacheKey(sf, sydney, 8)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, CacheKey(sf, sydney, 9))
	assert.NotEqual(t, a, CacheKey(sydney, sf, 8))
}

func TestComputeCachedWithoutRedis(t *testing.T) {
	// rc 为 nil 时退化为纯计算，结果与 Compute 一致
	want, err := Compute(sf, sydney, 6)
	require.NoError(t, err)
	got, err := ComputeCached(context.Background(), nil, sf, sydney, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
