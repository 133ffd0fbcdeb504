// 包 geohash：base32 地理哈希编码/解码核心（纯函数）
// 背景：将经纬度递归二分映射为 base32 字符串，字符数决定网格分辨率；编码与解码共享同一套边界收敛逻辑。
// 约束：中点判定采用严格大于（等于中点走 0 分支），该方向是对外兼容契约，不得更改；
// 精度无硬性上限，但超过约 12 字符后网格窄于浮点分辨率，约 22 字符后尾部比特完全由舍入决定。
package geohash

// base32 字母表：32 个五比特值与字符的双射，排除 a/i/l/o
const alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// bitMasks：单字符内 5 个比特的权重，高位在前
var bitMasks = [5]int{16, 8, 4, 2, 1}

// alphabetIndex：字符到五比特值的逆查表，进程级只读；-1 表示非法字符
var alphabetIndex [128]int8

func init() {
	for i := range alphabetIndex {
		alphabetIndex[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		alphabetIndex[alphabet[i]] = int8(i)
	}
}

// Box：编码/解码期间的工作边界，从全球范围单调向中点收敛
// 背景：按值传递的瞬态状态，经度轴先行、逐比特交替；不跨调用共享，天然可重入。
type Box struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
	lonTurn        bool
}

// wholeEarth：初始全球范围，首比特二分经度
func wholeEarth() Box {
	return Box{LatMin: -90, LatMax: 90, LonMin: -180, LonMax: 180, lonTurn: true}
}

// Center：返回当前边界的几何中心
func (b Box) Center() (lat, lon float64) {
	return (b.LatMin + b.LatMax) / 2, (b.LonMin + b.LonMax) / 2
}

// refineToward：编码单步，向目标点收敛当前轴并返回产出的比特
// 约束：严格大于中点才走 1 分支；等于中点归入 0 分支
func (b *Box) refineToward(lat, lon float64) bool {
	if b.lonTurn {
		b.lonTurn = false
		mid := (b.LonMin + b.LonMax) / 2
		if lon > mid {
			b.LonMin = mid
			return true
		}
		b.LonMax = mid
		return false
	}
	b.lonTurn = true
	mid := (b.LatMin + b.LatMax) / 2
	if lat > mid {
		b.LatMin = mid
		return true
	}
	b.LatMax = mid
	return false
}

// refineByBit：解码单步，按比特收敛当前轴（与编码同极性）
func (b *Box) refineByBit(one bool) {
	if b.lonTurn {
		b.lonTurn = false
		mid := (b.LonMin + b.LonMax) / 2
		if one {
			b.LonMin = mid
		} else {
			b.LonMax = mid
		}
		return
	}
	b.lonTurn = true
	mid := (b.LatMin + b.LatMax) / 2
	if one {
		b.LatMin = mid
	} else {
		b.LatMax = mid
	}
}

// Encode：将坐标编码为指定字符数的 geohash
// 背景：每 5 个二分比特聚合为一个 base32 字符，高位在前；同一坐标下长精度是短精度的前缀扩展。
// 约束：先完成范围校验再开始二分；输出长度恒等于 precision。
func Encode(lat, lon float64, precision int) (string, error) {
	if precision < 1 {
		return "", ErrInvalidPrecision
	}
	// NOTE: 取反写法同时拦截 NaN
	if !(lat >= -90 && lat <= 90) || !(lon >= -180 && lon <= 180) {
		return "", ErrInvalidCoordinate
	}
	box := wholeEarth()
	out := make([]byte, 0, precision)
	ch, bit := 0, 0
	for len(out) < precision {
		if box.refineToward(lat, lon) {
			ch |= bitMasks[bit]
		}
		if bit < 4 {
			bit++
		} else {
			out = append(out, alphabet[ch])
			bit, ch = 0, 0
		}
	}
	return string(out), nil
}

// Decode：将 geohash 解码为所在网格的几何中心
func Decode(hash string) (lat, lon float64, err error) {
	box, err := DecodeBounds(hash)
	if err != nil {
		return 0, 0, err
	}
	lat, lon = box.Center()
	return lat, lon, nil
}

// DecodeBounds：解码出完整网格边界，供中心/尺寸/近邻计算复用
// 约束：遇到首个非法字符立即失败并报告字符与位置；空串退化为全球范围（中心 0,0）。
func DecodeBounds(hash string) (Box, error) {
	box := wholeEarth()
	pos := 0
	for _, r := range hash {
		v := int8(-1)
		if r >= 0 && r < 128 {
			v = alphabetIndex[r]
		}
		if v < 0 {
			return Box{}, &InvalidCharacterError{Char: r, Pos: pos}
		}
		for _, mask := range bitMasks {
			box.refineByBit(int(v)&mask != 0)
		}
		pos++
	}
	return box, nil
}

// CellSize：指定精度下单个网格的角度尺寸（纬度高、经度宽，单位度）
// 背景：5p 个比特中经度占上取整的一半（经度先行），纬度占其余
func CellSize(precision int) (latDeg, lonDeg float64) {
	totalBits := 5 * precision
	lonBits := (totalBits + 1) / 2
	latBits := totalBits / 2
	lonDeg = 360
	for i := 0; i < lonBits; i++ {
		lonDeg /= 2
	}
	latDeg = 180
	for i := 0; i < latBits; i++ {
		latDeg /= 2
	}
	return latDeg, lonDeg
}
