package api

// 文档注释：对外返回结构
// 背景：统一对外序列化模型，仅包含必要字段；展示层自行负责四舍五入等格式化。
// 约束：字段稳定；新增字段需评估兼容性与前端依赖。
type encodeResult struct {
	Hash string `json:"hash"`
}

type decodeResult struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LonMin float64 `json:"lon_min"`
	LonMax float64 `json:"lon_max"`
}

type distanceResult struct {
	Meters float64 `json:"meters"`
}

type neighborsResult struct {
	Neighbors []string `json:"neighbors"`
}

// errorResult：校验失败的统一错误体；char/pos 仅在非法字符场景出现
type errorResult struct {
	Error string `json:"error"`
	Char  string `json:"char,omitempty"`
	Pos   *int   `json:"pos,omitempty"`
}
