package soildata

import (
	"sync/atomic"
)

// DynamicDataset 当前生效数据集的持有器。
// 背景：通过 atomic.Value 提供无锁读写切换，热重载（换文件、换对象版本）
// 时服务读路径不阻塞、不中断。
// 约束：Set 只接受 *Dataset；Get 在首次 Set 之前返回 nil，由上层按未就绪处理。
type DynamicDataset struct {
	v atomic.Value
}

// Get 原子读取当前数据集，未就绪时为 nil。
func (d *DynamicDataset) Get() *Dataset {
	x := d.v.Load()
	if x == nil {
		return nil
	}
	return x.(*Dataset)
}

// Set 切换当前数据集，写入后对后续查询立即生效。
// WARNING: ds 为 nil 会使后续 Get 返回非空接口包裹的 nil 指针，上层应保证非空。
func (d *DynamicDataset) Set(ds *Dataset) { d.v.Store(ds) }
