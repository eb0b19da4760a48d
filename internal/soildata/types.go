// 包 soildata：土壤站点数据集的装载、索引与就近检索。
// 背景：模拟网格单元通常不与采样站点重合，需要在限定半径内取最近站点的
// 土壤属性；数据集装载完成后不可变，查询阶段无锁并发。
package soildata

import (
	"errors"
	"math"
)

// 错误分类：五类均为每次调用可恢复错误，调用方按 errors.Is 分支处理。
var (
	// ErrDatasetNotFound 数据源路径不存在或无法打开。
	ErrDatasetNotFound = errors.New("soil data file not found")
	// ErrMalformedRecord 数据行字段数不符或数值解析失败，整次装载中止。
	ErrMalformedRecord = errors.New("malformed soil record")
	// ErrEmptyDataset 过滤后没有任何站点（含限制集一个都没匹配上的情况）。
	ErrEmptyDataset = errors.New("empty soil dataset")
	// ErrNoData 半径内没有任何站点；包装后的消息携带查询点与半径。
	ErrNoData = errors.New("no available soil data")
	// ErrInvalidRadius 半径必须为正数，属于调用方参数错误而非检索未命中。
	ErrInvalidRadius = errors.New("soil search radius must be positive")
)

// Coord 经纬度坐标（度）。作为 map 键使用 float64 精确相等语义。
type Coord struct {
	Lon float64
	Lat float64
}

// Dist 与 o 的平面欧氏距离（度）。
func (c Coord) Dist(o Coord) float64 {
	return math.Hypot(c.Lon-o.Lon, c.Lat-o.Lat)
}

// CNUnavailable 矿质土壤末列的约定哨兵值，表示碳氮比不可用。原样存储，不做改写。
const CNUnavailable = -1.0

// Record 单个站点的土壤属性。矿质模式填充前 8 个字段，编码模式只填 Code；
// 生效模式由 Dataset 的 Schema 区分，不在记录上重复携带。
type Record struct {
	Sand        float64
	Silt        float64
	Clay        float64
	OrgCarbon   float64
	BulkDensity float64
	PH          float64
	SoilCarbon  float64
	CN          float64
	Code        int
}

// Schema 行模式，由调用方配置指定，绝不从表头推断。
type Schema int

const (
	// SchemaMineral lon lat 后接 8 个数值字段（砂/粉/黏/有机碳/容重/pH/土壤碳/碳氮比）。
	SchemaMineral Schema = iota
	// SchemaCode lon lat 后接 1 个整数土壤分类编码。
	SchemaCode
)

func (s Schema) String() string {
	if s == SchemaCode {
		return "code"
	}
	return "mineral"
}

// fieldCount 坐标之外的数据字段个数。
func (s Schema) fieldCount() int {
	if s == SchemaCode {
		return 1
	}
	return 8
}

// ParseSchema 解析配置/命令行里的模式名。
func ParseSchema(s string) (Schema, error) {
	switch s {
	case "mineral", "":
		return SchemaMineral, nil
	case "code":
		return SchemaCode, nil
	}
	return SchemaMineral, errors.New("unknown soil schema " + s + " (want mineral or code)")
}

// CoordSet 限制集：装载时仅保留集合内的站点。
type CoordSet map[Coord]struct{}

func (s CoordSet) Add(c Coord) { s[c] = struct{}{} }

func (s CoordSet) Has(c Coord) bool {
	_, ok := s[c]
	return ok
}

// RowFilter 装载期行过滤谓词，返回 false 的行直接丢弃、不建索引。
type RowFilter func(Coord) bool

// KeepWithin 把限制集包装成过滤谓词。
func KeepWithin(set CoordSet) RowFilter {
	return func(c Coord) bool { return set.Has(c) }
}
