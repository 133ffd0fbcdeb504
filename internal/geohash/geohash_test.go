package geohash

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePoints = []struct {
	lat, lon float64
}{
	{37.785834, -122.406417},
	{57.64911, 10.40744},
	{42.605, -5.603},
	{-33.8688, 151.2093},
	{89.9, 179.9},
	{-89.9, -179.9},
	{0.0001, 0.0001},
}

func TestEncodeKnownVectors(t *testing.T) {
	// 经典参考向量：geohash.org 示例
	h, err := Encode(57.64911, 10.40744, 11)
	require.NoError(t, err)
	assert.Equal(t, "u4pruydqqvj", h)

	h, err = Encode(42.605, -5.603, 5)
	require.NoError(t, err)
	assert.Equal(t, "ezs42", h)
}

func TestEncodeDeterministic(t *testing.T) {
	for _, p := range samplePoints {
		a, err := Encode(p.lat, p.lon, 9)
		require.NoError(t, err)
		b, err := Encode(p.lat, p.lon, 9)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestEncodeAlphabetClosureAndLength(t *testing.T) {
	for _, p := range samplePoints {
		for precision := 1; precision <= 12; precision++ {
			h, err := Encode(p.lat, p.lon, precision)
			require.NoError(t, err)
			assert.Len(t, h, precision)
			for _, c := range h {
				assert.Contains(t, alphabet, string(c))
			}
		}
	}
}

func TestEncodePrefixMonotonicity(t *testing.T) {
	for _, p := range samplePoints {
		prev := ""
		for precision := 1; precision <= 12; precision++ {
			h, err := Encode(p.lat, p.lon, precision)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(h, prev), "%q should extend %q", h, prev)
			prev = h
		}
	}
}

func TestEncodeMidpointTakesZeroBranch(t *testing.T) {
	// 契约：恰等于中点时走 0 分支。(0,0) 的前两个比特（经度、纬度中点均为 0）必须为 0，
	// 其后所有比特为 1，首字符固定为 '7'，后续全为 'z'。
	h, err := Encode(0, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, "7zzzzzzz", h)
}

func TestEncodeInvalidInput(t *testing.T) {
	_, err := Encode(90.0001, 0, 5)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	_, err = Encode(-90.0001, 0, 5)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	_, err = Encode(0, 180.0001, 5)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	_, err = Encode(0, -180.0001, 5)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	nan := func() float64 { z := 0.0; return z / z }()
	_, err = Encode(nan, 0, 5)
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
	_, err = Encode(0, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidPrecision)
	_, err = Encode(0, 0, -3)
	assert.ErrorIs(t, err, ErrInvalidPrecision)
}

func TestEncodeBoundaryCoordinatesValid(t *testing.T) {
	for _, p := range []struct{ lat, lon float64 }{
		{90, 180}, {-90, -180}, {90, -180}, {-90, 180},
	} {
		h, err := Encode(p.lat, p.lon, 6)
		require.NoError(t, err)
		assert.Len(t, h, 6)
	}
}

func TestDecodeKnownVector(t *testing.T) {
	lat, lon, err := Decode("ezs42")
	require.NoError(t, err)
	assert.InDelta(t, 42.60498046875, lat, 1e-9)
	assert.InDelta(t, -5.60302734375, lon, 1e-9)
}

func TestDecodeCenterInsideBounds(t *testing.T) {
	for _, p := range samplePoints {
		h, err := Encode(p.lat, p.lon, 7)
		require.NoError(t, err)
		box, err := DecodeBounds(h)
		require.NoError(t, err)
		// 原始点必须落在自己的网格内
		assert.GreaterOrEqual(t, p.lat, box.LatMin)
		assert.LessOrEqual(t, p.lat, box.LatMax)
		assert.GreaterOrEqual(t, p.lon, box.LonMin)
		assert.LessOrEqual(t, p.lon, box.LonMax)
		lat, lon := box.Center()
		assert.Greater(t, lat, box.LatMin)
		assert.Less(t, lat, box.LatMax)
		assert.Greater(t, lon, box.LonMin)
		assert.Less(t, lon, box.LonMax)
	}
}

func TestDecodeInvalidCharacter(t *testing.T) {
	for _, tc := range []struct {
		hash string
		char rune
		pos  int
	}{
		{"a0000", 'a', 0},
		{"0i000", 'i', 1},
		{"00l00", 'l', 2},
		{"000o0", 'o', 3},
		{"ezs4!", '!', 4},
		{"EZS42", 'E', 0},
		{"ez 42", ' ', 2},
		{"ez中42", '中', 2},
	} {
		_, _, err := Decode(tc.hash)
		require.Error(t, err, "hash %q", tc.hash)
		var ice *InvalidCharacterError
		require.True(t, errors.As(err, &ice), "hash %q", tc.hash)
		assert.Equal(t, tc.char, ice.Char)
		assert.Equal(t, tc.pos, ice.Pos)
	}
}

func TestDecodeEmptyIsWholeEarthCenter(t *testing.T) {
	lat, lon, err := Decode("")
	require.NoError(t, err)
	assert.Zero(t, lat)
	assert.Zero(t, lon)
}

func TestCellSizeShrinks(t *testing.T) {
	prevLat, prevLon := 360.0, 720.0
	for precision := 1; precision <= 12; precision++ {
		latDeg, lonDeg := CellSize(precision)
		assert.Less(t, latDeg, prevLat)
		assert.Less(t, lonDeg, prevLon)
		prevLat, prevLon = latDeg, lonDeg
	}
	// 单字符：经度 3 比特、纬度 2 比特
	latDeg, lonDeg := CellSize(1)
	assert.InDelta(t, 45.0, latDeg, 1e-12)
	assert.InDelta(t, 45.0, lonDeg, 1e-12)
}

func TestCellSizeMatchesDecodedBounds(t *testing.T) {
	for precision := 1; precision <= 10; precision++ {
		h, err := Encode(37.785834, -122.406417, precision)
		require.NoError(t, err)
		box, err := DecodeBounds(h)
		require.NoError(t, err)
		latDeg, lonDeg := CellSize(precision)
		assert.InDelta(t, latDeg, box.LatMax-box.LatMin, 1e-9)
		assert.InDelta(t, lonDeg, box.LonMax-box.LonMin, 1e-9)
	}
}

func TestNeighbors(t *testing.T) {
	ns, err := Neighbors("ezs42")
	require.NoError(t, err)
	require.Len(t, ns, 8)
	seen := map[string]bool{}
	for _, n := range ns {
		assert.Len(t, n, 5)
		assert.NotEqual(t, "ezs42", n)
		assert.False(t, seen[n], "duplicate neighbor %s", n)
		seen[n] = true
	}
}

func TestNeighborsAtPole(t *testing.T) {
	// 极点所在行向极侧无邻格，数量少于 8
	h, err := Encode(89.999, 0, 5)
	require.NoError(t, err)
	ns, err := Neighbors(h)
	require.NoError(t, err)
	assert.Len(t, ns, 5)
}

func TestNeighborsInvalidInput(t *testing.T) {
	_, err := Neighbors("")
	assert.ErrorIs(t, err, ErrInvalidPrecision)
	_, err = Neighbors("abc")
	var ice *InvalidCharacterError
	assert.True(t, errors.As(err, &ice))
}

func TestNeighborsWrapAtDateline(t *testing.T) {
	h, err := Encode(0.1, 179.99, 4)
	require.NoError(t, err)
	ns, err := Neighbors(h)
	require.NoError(t, err)
	assert.Len(t, ns, 8)
	// 东侧邻格应环绕到西经侧
	wrapped := false
	for _, n := range ns {
		box, err := DecodeBounds(n)
		require.NoError(t, err)
		_, lon := box.Center()
		if lon < 0 {
			wrapped = true
		}
	}
	assert.True(t, wrapped)
}
