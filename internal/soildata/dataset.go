package soildata

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"soil-api/pkg/kdtree"
)

// Bounds 站点坐标包络盒，用于 /info 与装载日志。
type Bounds struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Dataset 装载完成后不可变：records、索引、统计均只读，
// 任意多 goroutine 并发调用 FindClosest/Record 无需加锁。
type Dataset struct {
	schema  Schema
	source  string
	records map[Coord]Record
	tree    *kdtree.Tree[float64]
	bounds  Bounds
	builtAt time.Time
}

// 文档注释：从站点表构建数据集
// 背景：文本装载与归档库装载共用的收口；站点坐标先按 lon、lat 排序再建树，
// 同一份输入得到同一棵树，等距并列命中在多次装载间保持一致。
// 异常：零站点返回 ErrEmptyDataset（带数据源名）。
func New(schema Schema, source string, records map[Coord]Record) (*Dataset, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDataset, source)
	}
	coords := make([]Coord, 0, len(records))
	for c := range records {
		coords = append(coords, c)
	}
	slices.SortFunc(coords, func(a, b Coord) int {
		if a.Lon != b.Lon {
			return cmp.Compare(a.Lon, b.Lon)
		}
		return cmp.Compare(a.Lat, b.Lat)
	})
	pts := make([]kdtree.Point[float64], len(coords))
	b := Bounds{MinLon: coords[0].Lon, MinLat: coords[0].Lat, MaxLon: coords[0].Lon, MaxLat: coords[0].Lat}
	for i, c := range coords {
		pts[i] = kdtree.Point[float64]{c.Lon, c.Lat}
		b.MinLon = min(b.MinLon, c.Lon)
		b.MaxLon = max(b.MaxLon, c.Lon)
		b.MinLat = min(b.MinLat, c.Lat)
		b.MaxLat = max(b.MaxLat, c.Lat)
	}
	tree, err := kdtree.Build(pts)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		schema:  schema,
		source:  source,
		records: records,
		tree:    tree,
		bounds:  b,
		builtAt: time.Now(),
	}, nil
}

// 文档注释：限定半径内的最近站点
// 背景：maxRadius 为平面欧氏距离上界（度），严格为正；查询点任意，不要求
// 落在站点网格上。命中返回存储的站点坐标，供 Record 做精确键查询。
// 异常：半径非正或为 NaN 返回 ErrInvalidRadius；最近站点超出半径返回 ErrNoData，
// 消息携带查询点与半径，调用方可增大半径重试或跳过该单元；
// 查询坐标含 NaN 时距离比较不成立，同样返回 ErrNoData。
func (d *Dataset) FindClosest(maxRadius float64, q Coord) (Coord, error) {
	if !(maxRadius > 0) {
		return Coord{}, fmt.Errorf("%w: got %g", ErrInvalidRadius, maxRadius)
	}
	p := d.tree.Nearest(kdtree.Point[float64]{q.Lon, q.Lat})
	site := Coord{Lon: p[0], Lat: p[1]}
	if dist := site.Dist(q); !(dist <= maxRadius) {
		return Coord{}, fmt.Errorf("%w within radius %g of point (%g, %g)", ErrNoData, maxRadius, q.Lon, q.Lat)
	}
	return site, nil
}

// Record 按存储坐标精确查键。配合 FindClosest 返回的坐标使用必然命中。
func (d *Dataset) Record(c Coord) (Record, bool) {
	rec, ok := d.records[c]
	return rec, ok
}

// Len 站点数。
func (d *Dataset) Len() int { return len(d.records) }

// Schema 生效行模式。
func (d *Dataset) Schema() Schema { return d.schema }

// Source 数据源标识（路径、对象键或数据库）。
func (d *Dataset) Source() string { return d.source }

// Bounds 站点坐标范围。
func (d *Dataset) Bounds() Bounds { return d.bounds }

// BuiltAt 索引构建时间。
func (d *Dataset) BuiltAt() time.Time { return d.builtAt }
