package geohash

// 文档注释：同精度 8 邻域网格枚举
// 背景：用于缓存键近邻探测与网格扫描；通过网格中心平移一个格宽/格高后重编码得到邻格。
// 约束：经度越界按 ±360 环绕；纬度越过极点的方向不存在邻格，结果中省略，故返回数量可能少于 8。
func Neighbors(hash string) ([]string, error) {
	if hash == "" {
		return nil, ErrInvalidPrecision
	}
	box, err := DecodeBounds(hash)
	if err != nil {
		return nil, err
	}
	precision := 0
	for range hash {
		precision++
	}
	latStep := box.LatMax - box.LatMin
	lonStep := box.LonMax - box.LonMin
	lat, lon := box.Center()
	out := make([]string, 0, 8)
	for dy := 1; dy >= -1; dy-- {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nlat := lat + float64(dy)*latStep
			if nlat > 90 || nlat < -90 {
				continue
			}
			nlon := lon + float64(dx)*lonStep
			if nlon > 180 {
				nlon -= 360
			} else if nlon < -180 {
				nlon += 360
			}
			h, err := Encode(nlat, nlon, precision)
			if err != nil {
				return nil, err
			}
			out = append(out, h)
		}
	}
	return out, nil
}
