// 包 kdtree：通用 KD-Tree 最近邻索引。
// 背景：站点坐标构建一次、只读查询多次的场景（如土壤站点检索）；
// 构建后不可变，任意多 goroutine 并发查询无需加锁。
package kdtree

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyIndex 空点集不构建索引，由调用方先行兜底。
var ErrEmptyIndex = errors.New("kdtree: empty point set")

// Number 支持的坐标标量类型。
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Point 一个 K 维坐标，维度在 Build 时统一校验。
type Point[T Number] []T

// Dist 与 q 的欧氏距离。维度不一致视为调用方编程错误，直接 panic。
func (p Point[T]) Dist(q Point[T]) float64 {
	return math.Sqrt(sqDist(p, q))
}

func sqDist[T Number](a, b Point[T]) float64 {
	if len(a) != len(b) {
		panic("kdtree: dimension mismatch")
	}
	s := 0.0
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		s += d * d
	}
	return s
}

type node[T Number] struct {
	pt Point[T]
	ax int
	l  *node[T]
	r  *node[T]
}

// Tree 不可变最近邻索引。
// 约束：Build 返回后结构与点数据均不再变化；Nearest 可并发调用。
type Tree[T Number] struct {
	root *node[T]
	k    int
	n    int
}

// 文档注释：构建 KD-Tree
// 背景：递归中位数分割，轴按 深度 mod K 轮转；中位数用原地 nth 选择，
// 避免整体排序与外部依赖。重复坐标允许入树。
// 约束：入参被深拷贝，调用方之后修改原切片不影响索引。
// 异常：空点集返回 ErrEmptyIndex；各点维度不一致返回错误。
func Build[T Number](pts []Point[T]) (*Tree[T], error) {
	if len(pts) == 0 {
		return nil, ErrEmptyIndex
	}
	k := len(pts[0])
	if k == 0 {
		return nil, errors.New("kdtree: zero-dimensional point")
	}
	own := make([]Point[T], len(pts))
	for i, p := range pts {
		if len(p) != k {
			return nil, fmt.Errorf("kdtree: point %d has dimension %d, want %d", i, len(p), k)
		}
		cp := make(Point[T], k)
		copy(cp, p)
		own[i] = cp
	}
	return &Tree[T]{root: build(own, 0, k), k: k, n: len(own)}, nil
}

func build[T Number](pts []Point[T], depth, k int) *node[T] {
	if len(pts) == 0 {
		return nil
	}
	ax := depth % k
	mid := len(pts) / 2
	selectNth(pts, mid, ax)
	nd := &node[T]{pt: pts[mid], ax: ax}
	nd.l = build(pts[:mid], depth+1, k)
	nd.r = build(pts[mid+1:], depth+1, k)
	return nd
}

// 原地 nth 元素选择（按第 ax 维比较）
func selectNth[T Number](a []Point[T], n, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition[T Number](a []Point[T], lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if a[j][ax] < pv[ax] {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

// 文档注释：最近邻查询
// 背景：先走查询点所在一侧，仅当分割平面距离平方小于当前最优距离平方时
// 才回溯另一侧；比较使用严格小于，等距点保持首次命中，结果对同一棵树稳定。
// 约束：树非空（Build 已保证）；q 维度必须等于 K，否则 panic。
// 返回：最近点的拷贝，恒为入树点之一（q 含 NaN 亦然），调用方可安全持有或修改。
func (t *Tree[T]) Nearest(q Point[T]) Point[T] {
	if len(q) != t.k {
		panic("kdtree: query dimension mismatch")
	}
	var best Point[T]
	bestD := math.MaxFloat64
	var dfs func(n *node[T])
	dfs = func(n *node[T]) {
		if n == nil {
			return
		}
		// 首个访问点无条件入选，NaN 距离比较恒为假时结果仍是入树点
		if d := sqDist(n.pt, q); best == nil || d < bestD {
			bestD, best = d, n.pt
		}
		key := float64(q[n.ax])
		pv := float64(n.pt[n.ax])
		first, second := n.l, n.r
		if key > pv {
			first, second = n.r, n.l
		}
		dfs(first)
		if diff := key - pv; diff*diff < bestD {
			dfs(second)
		}
	}
	dfs(t.root)
	out := make(Point[T], t.k)
	copy(out, best)
	return out
}

// Len 索引内点数（含重复点）。
func (t *Tree[T]) Len() int { return t.n }

// K 索引维度。
func (t *Tree[T]) K() int { return t.k }
