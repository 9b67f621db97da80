package dailygame

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"gorm.io/gorm"
)

// ErrNoCandidates 表示竞猜候选池为空，当日游戏无法开局。
var ErrNoCandidates = errors.New("竞猜候选池为空")

// Service 是每日竞猜模块的业务层。
type Service struct {
	db        *gorm.DB
	catalog   *catalog.Repository
	mediaType catalog.MediaType
}

// NewService 创建每日竞猜服务。
func NewService(db *gorm.DB, catalogRepo *catalog.Repository, mediaType catalog.MediaType) *Service {
	return &Service{db: db, catalog: catalogRepo, mediaType: mediaType}
}

// DailyTarget 确定某个游戏编号对应的答案条目。
// 候选池按id升序排列后取 编号 mod 池大小，因此只要候选池不变，
// 同一天的答案在任何进程、任何时刻都一致；
// 候选池当天发生变化时答案可能漂移，这是接受的一致性取舍。
func (s *Service) DailyTarget(gameNumber int) (*catalog.Media, error) {
	pool, err := s.catalog.CandidatePool(s.mediaType, candidateRankCeiling)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrNoCandidates
	}
	return &pool[gameNumber%len(pool)], nil
}

// SubmitGuess 处理一次猜测。
// 匿名访客只拿到比对结果；已登记成员的结果还会累积到当日成绩行。
func (s *Service) SubmitGuess(memberID, mediaID uint) (*GuessResult, error) {
	gameNumber := CurrentGameNumber()

	target, err := s.DailyTarget(gameNumber)
	if err != nil {
		return nil, err
	}
	guess, err := s.catalog.GetByID(mediaID)
	if err != nil {
		return nil, err
	}

	result := CompareGuess(guess, target)

	if memberID > 0 {
		if err := s.persistGuess(memberID, gameNumber, result); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

// persistGuess 把猜测结果累积到(成员, 游戏编号)的成绩行上。
// 已获胜或已用满尝试的局不再记录后续猜测。
func (s *Service) persistGuess(memberID uint, gameNumber int, result GuessResult) error {
	score, err := s.scoreFor(memberID, gameNumber)
	if err != nil {
		return err
	}
	if score == nil {
		score = &GameScore{MemberID: memberID, GameNumber: gameNumber}
	}
	if score.IsWon || score.Attempts >= MaxAttempts {
		return nil
	}

	var guesses []GuessResult
	if score.Guesses != "" {
		if err := json.Unmarshal([]byte(score.Guesses), &guesses); err != nil {
			return fmt.Errorf("解析已存猜测记录失败: %w", err)
		}
	}
	guesses = append(guesses, result)

	raw, err := json.Marshal(guesses)
	if err != nil {
		return fmt.Errorf("序列化猜测记录失败: %w", err)
	}
	score.Guesses = string(raw)
	score.Attempts = len(guesses)
	score.IsWon = score.IsWon || result.IsCorrect

	if err := s.db.Save(score).Error; err != nil {
		return fmt.Errorf("持久化竞猜成绩失败: %w", err)
	}
	return nil
}

// StreakFor 计算成员截至今天的连胜天数。
func (s *Service) StreakFor(memberID uint) (int, error) {
	var scores []GameScore
	err := s.db.
		Where("member_id = ?", memberID).
		Order("game_number DESC").
		Find(&scores).Error
	if err != nil {
		return 0, fmt.Errorf("加载竞猜成绩失败: %w", err)
	}
	return ComputeStreak(scores, CurrentGameNumber()), nil
}

// --- 游戏状态查询 ---

// ScoreDTO 是成绩行对外的形态。
type ScoreDTO struct {
	GameNumber int           `json:"gameNumber"`
	Attempts   int           `json:"attempts"`
	IsWon      bool          `json:"isWon"`
	Guesses    []GuessResult `json:"guesses"`
}

// GameStateDTO 是游戏状态接口的响应体。
type GameStateDTO struct {
	GameNumber int       `json:"gameNumber"`
	Score      *ScoreDTO `json:"score"`
	Streak     int       `json:"streak"`
	Hints      Hints     `json:"hints"`
}

// GameState 返回成员今天的游戏状态：成绩行（可能缺席）、连胜数和已解锁的提示。
func (s *Service) GameState(memberID uint) (*GameStateDTO, error) {
	gameNumber := CurrentGameNumber()
	state := &GameStateDTO{GameNumber: gameNumber}

	if memberID == 0 {
		return state, nil
	}

	score, err := s.scoreFor(memberID, gameNumber)
	if err != nil {
		return nil, err
	}

	attempts := 0
	if score != nil {
		attempts = score.Attempts

		var guesses []GuessResult
		if score.Guesses != "" {
			if err := json.Unmarshal([]byte(score.Guesses), &guesses); err != nil {
				return nil, fmt.Errorf("解析已存猜测记录失败: %w", err)
			}
		}
		state.Score = &ScoreDTO{
			GameNumber: score.GameNumber,
			Attempts:   score.Attempts,
			IsWon:      score.IsWon,
			Guesses:    guesses,
		}
	}

	streak, err := s.StreakFor(memberID)
	if err != nil {
		return nil, err
	}
	state.Streak = streak

	if attempts > 0 {
		target, err := s.DailyTarget(gameNumber)
		if err == nil {
			state.Hints = HintsFor(attempts, gameNumber, target)
		}
		// 答案查询失败时提示整体缺席，不阻塞状态响应
	}
	return state, nil
}

func (s *Service) scoreFor(memberID uint, gameNumber int) (*GameScore, error) {
	var score GameScore
	err := s.db.Where("member_id = ? AND game_number = ?", memberID, gameNumber).First(&score).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询竞猜成绩失败: %w", err)
	}
	return &score, nil
}
