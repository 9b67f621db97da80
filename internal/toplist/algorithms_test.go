package toplist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePopularity(t *testing.T) {
	t.Run("综合信号", func(t *testing.T) {
		// 7赞3踩、99次浏览: 0.7*0.7 + ln(100)/10*0.3 ≈ 0.62816
		assert.Equal(t, 0.6282, CalculatePopularity(7, 3, 99))
	})

	t.Run("零票时好评率记为0", func(t *testing.T) {
		// 只剩浏览量信号: ln(100)/10*0.3 = 0.1382
		assert.Equal(t, 0.1382, CalculatePopularity(0, 0, 99))
	})

	t.Run("全新榜单得0分", func(t *testing.T) {
		assert.Equal(t, 0.0, CalculatePopularity(0, 0, 0))
	})

	t.Run("全好评无浏览只拿好评率权重", func(t *testing.T) {
		assert.Equal(t, 0.7, CalculatePopularity(5, 0, 0))
	})

	t.Run("浏览量被对数阻尼", func(t *testing.T) {
		// 百万浏览也压不过一半的好评率权重
		assert.Less(t, CalculatePopularity(0, 0, 1_000_000), 0.42)
		assert.Greater(t, CalculatePopularity(1, 0, 0), CalculatePopularity(0, 0, 1_000_000))
	})
}
