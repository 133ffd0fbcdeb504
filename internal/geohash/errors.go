package geohash

import (
	"errors"
	"fmt"
)

// 错误分类：全部为调用方输入校验失败，同步抛出且不产生部分结果
var (
	// ErrInvalidCoordinate：纬度超出 [-90,90] 或经度超出 [-180,180]（含 NaN）
	ErrInvalidCoordinate = errors.New("geohash: coordinate out of range")
	// ErrInvalidPrecision：非正的精度请求
	ErrInvalidPrecision = errors.New("geohash: precision must be >= 1")
)

// InvalidCharacterError：解码时遇到字母表之外的字符
// 背景：a/i/l/o 与一切非字母表符号均非法；必须显式拒绝而不是静默映射。
type InvalidCharacterError struct {
	Char rune
	Pos  int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("geohash: invalid character %q at position %d", e.Char, e.Pos)
}
