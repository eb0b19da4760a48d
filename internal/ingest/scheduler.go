// 包 ingest：周期刷新调度，运行在服务进程内的后台协程
package ingest

import (
	"database/sql"
	"time"

	"soil-api/internal/logger"
	"soil-api/internal/soildata"
	"soil-api/internal/utils"
)

// nextMondayAt：计算下一次周一指定小时的时间点（不含当前已过时的当周）
// 约束：基于传入时区 loc 与整点 hour；仅前推至未来时间
func nextMondayAt(loc *time.Location, hour int) time.Time {
	now := time.Now().In(loc)
	d := now
	for i := 0; i <= 7; i++ {
		d = now.AddDate(0, 0, i)
		if d.Weekday() == time.Monday {
			t := time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, loc)
			if t.After(now) {
				return t
			}
		}
	}
	d = now.AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, loc)
}

// StartWeeklyRefresh：每周一定点从种子文件重导归档库，成功后通知上层换装数据集
// 背景：上游土壤数据集按周下发更新；错误只记日志，调度继续
// 约束：INGEST_HOUR 可覆盖小时（整数，默认 3，Asia/Shanghai）；onDone 在导入成功后调用
func StartWeeklyRefresh(db *sql.DB, path string, schema soildata.Schema, onDone func()) {
	l := logger.L()
	loc, _ := time.LoadLocation("Asia/Shanghai")
	hour := utils.EnvInt("INGEST_HOUR", 3)
	next := nextMondayAt(loc, hour)
	go func() {
		for {
			time.Sleep(time.Until(next))
			l.Info("refresh_start", "src", path, "at", next)
			if _, err := ImportFile(db, path, schema, 0); err != nil {
				l.Error("refresh_error", "err", err)
			} else if onDone != nil {
				onDone()
			}
			next = next.AddDate(0, 0, 7)
		}
	}()
}
