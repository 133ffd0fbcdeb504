// 包 geodist：半正矢（haversine）大圆距离
// 背景：统一距离口径供真实坐标与网格中心两种输入复用；采用 atan2 形式保证小角与近对跖点的数值稳定。
package geodist

import "math"

// EarthRadiusMeters：平均地球半径，结果上界为 π·R ≈ 20015086 米
const EarthRadiusMeters = 6371000.0

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Meters：两坐标间大圆距离（米）
// 约束：公式逐项固定，不做小角近似；对称、非负，两点重合时严格为 0。
func Meters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degToRad(lat2 - lat1)
	dLon := degToRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}
