package toplist

import "math"

// --- 人气分算法常量 ---

const (
	// ratioWeight 是好评率在人气分中的权重（主信号）
	ratioWeight = 0.7
	// viewWeight 是浏览量信号在人气分中的权重（次信号）
	viewWeight = 0.3
	// viewDamping 是浏览量的对数阻尼分母，
	// 让纯流量无法压过投票质量信号
	viewDamping = 10.0
)

// CalculatePopularity 计算榜单的人气分。
// 公式: round(好评率*0.7 + ln(浏览量+1)/10*0.3, 4位小数)
// 纯函数，投票或浏览计数每次变化后都会被调用并同步落库。
func CalculatePopularity(likeCount, dislikeCount int, viewCount int64) float64 {
	totalVotes := likeCount + dislikeCount

	var ratio float64
	if totalVotes > 0 {
		ratio = float64(likeCount) / float64(totalVotes)
	}

	damped := math.Log(float64(viewCount)+1) / viewDamping

	return round4(ratio*ratioWeight + damped*viewWeight)
}

// round4 四舍五入到4位小数，保证跨进程重算结果逐位一致。
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
