package dailygame

import (
	"math"
	"time"
)

// gameEpoch 是竞猜纪元日。游戏编号是日期相对它的天数，
// 纯计算、不落库，进程重启后同一天必然得到同一个编号。
var gameEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)

// GameNumberFor 返回给定时刻所属日期的游戏编号（当地时区按日截断）。
func GameNumberFor(t time.Time) int {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	// 用Round吸收夏令时造成的±1小时偏差
	return int(math.Round(midnight.Sub(gameEpoch).Hours() / 24))
}

// CurrentGameNumber 返回今天的游戏编号。
func CurrentGameNumber() int {
	return GameNumberFor(time.Now())
}
