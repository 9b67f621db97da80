package dailygame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGameNumberFor(t *testing.T) {
	t.Run("纪元日编号为0", func(t *testing.T) {
		assert.Equal(t, 0, GameNumberFor(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)))
	})

	t.Run("次日编号为1", func(t *testing.T) {
		assert.Equal(t, 1, GameNumberFor(time.Date(2024, time.January, 2, 9, 30, 0, 0, time.Local)))
	})

	t.Run("同一天任意时刻编号一致", func(t *testing.T) {
		morning := GameNumberFor(time.Date(2025, time.June, 15, 0, 0, 1, 0, time.Local))
		noon := GameNumberFor(time.Date(2025, time.June, 15, 12, 0, 0, 0, time.Local))
		night := GameNumberFor(time.Date(2025, time.June, 15, 23, 59, 59, 0, time.Local))
		assert.Equal(t, morning, noon)
		assert.Equal(t, morning, night)
	})

	t.Run("跨日编号严格递增1", func(t *testing.T) {
		day := time.Date(2024, time.February, 28, 15, 0, 0, 0, time.Local)
		for i := 0; i < 5; i++ {
			assert.Equal(t, GameNumberFor(day)+1, GameNumberFor(day.AddDate(0, 0, 1)))
			day = day.AddDate(0, 0, 1)
		}
	})

	t.Run("跨年编号连续", func(t *testing.T) {
		// 2024年共366天，2025-01-01应当是第366号
		assert.Equal(t, 366, GameNumberFor(time.Date(2025, time.January, 1, 8, 0, 0, 0, time.Local)))
	})
}
