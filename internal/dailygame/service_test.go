package dailygame

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"github.com/AniTopia/anitopia-backend/internal/member"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestService 搭建一套基于内存SQLite的竞猜服务，并预置候选池。
func newTestService(t *testing.T, poolSize int) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, member.MigrateDB(db))
	require.NoError(t, catalog.MigrateDB(db))
	require.NoError(t, MigrateDB(db))

	for i := 1; i <= poolSize; i++ {
		require.NoError(t, db.Create(&catalog.Media{
			MediaType:      catalog.MediaTypeAnime,
			Title:          fmt.Sprintf("作品%d", i),
			Category:       "TV",
			Studio:         fmt.Sprintf("工作室%d", i),
			ReleaseYear:    2000 + i,
			Episodes:       12 * i,
			Tags:           "Action",
			PopularityRank: i,
			Published:      true,
		}).Error)
	}

	return NewService(db, catalog.NewRepository(db), catalog.MediaTypeAnime), db
}

func TestDailyTarget(t *testing.T) {
	svc, db := newTestService(t, 5)

	t.Run("同一编号的答案完全确定", func(t *testing.T) {
		first, err := svc.DailyTarget(42)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := svc.DailyTarget(42)
			require.NoError(t, err)
			assert.Equal(t, first.ID, again.ID)
		}
	})

	t.Run("编号对池大小取模", func(t *testing.T) {
		a, err := svc.DailyTarget(2)
		require.NoError(t, err)
		b, err := svc.DailyTarget(7)
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID)
	})

	t.Run("未发布和超出排名窗口的条目不入池", func(t *testing.T) {
		require.NoError(t, db.Create(&catalog.Media{
			MediaType: catalog.MediaTypeAnime, Title: "未发布",
			PopularityRank: 1, Published: false,
		}).Error)
		require.NoError(t, db.Create(&catalog.Media{
			MediaType: catalog.MediaTypeAnime, Title: "排名太靠后",
			PopularityRank: candidateRankCeiling + 1, Published: true,
		}).Error)

		for n := 0; n < 10; n++ {
			target, err := svc.DailyTarget(n)
			require.NoError(t, err)
			assert.NotEqual(t, "未发布", target.Title)
			assert.NotEqual(t, "排名太靠后", target.Title)
		}
	})
}

func TestDailyTargetEmptyPool(t *testing.T) {
	svc, _ := newTestService(t, 0)
	_, err := svc.DailyTarget(0)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestSubmitGuessAnonymous(t *testing.T) {
	svc, db := newTestService(t, 5)

	result, err := svc.SubmitGuess(0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), result.MediaID)

	// 匿名猜测不落库
	var count int64
	require.NoError(t, db.Model(&GameScore{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitGuessUnknownMedia(t *testing.T) {
	svc, _ := newTestService(t, 5)
	_, err := svc.SubmitGuess(0, 9999)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSubmitGuessAccumulates(t *testing.T) {
	svc, db := newTestService(t, 5)
	memberID := uint(7)

	_, err := svc.SubmitGuess(memberID, 1)
	require.NoError(t, err)
	_, err = svc.SubmitGuess(memberID, 2)
	require.NoError(t, err)

	// 两次猜测累积在同一行里
	var scores []GameScore
	require.NoError(t, db.Find(&scores).Error)
	require.Len(t, scores, 1)
	assert.Equal(t, memberID, scores[0].MemberID)
	assert.Equal(t, 2, scores[0].Attempts)

	var guesses []GuessResult
	require.NoError(t, json.Unmarshal([]byte(scores[0].Guesses), &guesses))
	assert.Len(t, guesses, 2)
	assert.Equal(t, uint(1), guesses[0].MediaID)
	assert.Equal(t, uint(2), guesses[1].MediaID)
}

func TestSubmitGuessWinIsSticky(t *testing.T) {
	svc, db := newTestService(t, 5)
	memberID := uint(7)

	target, err := svc.DailyTarget(CurrentGameNumber())
	require.NoError(t, err)

	result, err := svc.SubmitGuess(memberID, target.ID)
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)

	// 获胜后的猜测不再计入成绩
	_, err = svc.SubmitGuess(memberID, 1)
	require.NoError(t, err)

	var score GameScore
	require.NoError(t, db.First(&score).Error)
	assert.True(t, score.IsWon)
	assert.Equal(t, 1, score.Attempts)
}

func TestSubmitGuessAttemptCap(t *testing.T) {
	svc, db := newTestService(t, 5)
	memberID := uint(7)

	target, err := svc.DailyTarget(CurrentGameNumber())
	require.NoError(t, err)

	// 挑一个必然猜错的条目反复提交
	wrongID := uint(1)
	if target.ID == wrongID {
		wrongID = 2
	}
	for i := 0; i < MaxAttempts+3; i++ {
		_, err := svc.SubmitGuess(memberID, wrongID)
		require.NoError(t, err)
	}

	var score GameScore
	require.NoError(t, db.First(&score).Error)
	assert.Equal(t, MaxAttempts, score.Attempts)
	assert.False(t, score.IsWon)
}

func TestGameState(t *testing.T) {
	svc, _ := newTestService(t, 5)
	memberID := uint(7)

	t.Run("匿名访客只拿到游戏编号", func(t *testing.T) {
		state, err := svc.GameState(0)
		require.NoError(t, err)
		assert.Equal(t, CurrentGameNumber(), state.GameNumber)
		assert.Nil(t, state.Score)
		assert.Zero(t, state.Streak)
	})

	t.Run("没有成绩行时状态为空局", func(t *testing.T) {
		state, err := svc.GameState(memberID)
		require.NoError(t, err)
		assert.Nil(t, state.Score)
		assert.Equal(t, Hints{}, state.Hints)
	})

	t.Run("有尝试后状态携带成绩与提示", func(t *testing.T) {
		target, err := svc.DailyTarget(CurrentGameNumber())
		require.NoError(t, err)
		wrongID := uint(1)
		if target.ID == wrongID {
			wrongID = 2
		}
		for i := 0; i < hintFirstLetterAttempts; i++ {
			_, err := svc.SubmitGuess(memberID, wrongID)
			require.NoError(t, err)
		}

		state, err := svc.GameState(memberID)
		require.NoError(t, err)
		require.NotNil(t, state.Score)
		assert.Equal(t, hintFirstLetterAttempts, state.Score.Attempts)
		assert.Len(t, state.Score.Guesses, hintFirstLetterAttempts)
		assert.NotEmpty(t, state.Hints.FirstLetter)
		assert.Empty(t, state.Hints.Answer)
	})
}

func TestStreakFor(t *testing.T) {
	svc, db := newTestService(t, 5)
	memberID := uint(7)
	today := CurrentGameNumber()

	// 昨天和前天都赢了，大前天输了
	require.NoError(t, db.Create(&GameScore{
		MemberID: memberID, GameNumber: today - 1, Attempts: 2, IsWon: true,
	}).Error)
	require.NoError(t, db.Create(&GameScore{
		MemberID: memberID, GameNumber: today - 2, Attempts: 4, IsWon: true,
	}).Error)
	require.NoError(t, db.Create(&GameScore{
		MemberID: memberID, GameNumber: today - 3, Attempts: MaxAttempts, IsWon: false,
	}).Error)

	// 今天还没玩，连胜从昨天起算但断在今天
	streak, err := svc.StreakFor(memberID)
	require.NoError(t, err)
	assert.Zero(t, streak)

	// 今天赢下后连胜接上
	target, err := svc.DailyTarget(today)
	require.NoError(t, err)
	_, err = svc.SubmitGuess(memberID, target.ID)
	require.NoError(t, err)

	streak, err = svc.StreakFor(memberID)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}
