package dailygame

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
)

// --- 游戏规则常量 ---

const (
	// MaxAttempts 同时是两件事的阈值：尝试满10次仍未命中记为失败，
	// 且第10次尝试起提示中直接给出完整答案。两处共享同一个常量。
	MaxAttempts = 10

	// 数值属性的容差带：差值落在容差内记partial，否则incorrect
	yearTolerance    = 5
	episodeTolerance = 10

	// candidateRankCeiling 圈定竞猜候选池：人气排名前500的已发布条目
	candidateRankCeiling = 500

	// 提示解锁阈值
	hintFirstLetterAttempts = 3
	hintTagsAttempts        = 5
	hintMaskedAttempts      = 8

	// maskPlaceholder 是遮罩标题中替换字母数字的占位符
	maskPlaceholder = '_'
)

// CompareGuess 将一次猜测与当日答案逐属性比对。纯函数。
func CompareGuess(guess, target *catalog.Media) GuessResult {
	return GuessResult{
		MediaID:     guess.ID,
		Title:       guess.Title,
		ImageURL:    guess.ImageURL,
		IsCorrect:   guess.ID == target.ID,
		Category:    compareExact(guess.Category, target.Category),
		Studio:      compareExact(guess.Studio, target.Studio),
		ReleaseYear: compareNumeric(guess.ReleaseYear, target.ReleaseYear, yearTolerance),
		Episodes:    compareNumeric(guess.Episodes, target.Episodes, episodeTolerance),
		Tags:        compareTags(guess.TagList(), target.TagList()),
	}
}

// compareExact 比对精确匹配属性，没有partial状态。
func compareExact(guess, target string) FieldResult {
	verdict := VerdictIncorrect
	if guess == target {
		verdict = VerdictCorrect
	}
	return FieldResult{Value: guess, Verdict: verdict}
}

// compareNumeric 比对带容差的数值属性。
// 方向提示的语义是“猜测要向这个方向移动才能到达答案”。
func compareNumeric(guess, target, tolerance int) NumericResult {
	if guess == target {
		return NumericResult{Value: guess, Verdict: VerdictCorrect}
	}

	direction := DirectionLower
	if target > guess {
		direction = DirectionHigher
	}

	diff := guess - target
	if diff < 0 {
		diff = -diff
	}

	verdict := VerdictIncorrect
	if diff <= tolerance {
		verdict = VerdictPartial
	}
	return NumericResult{Value: guess, Verdict: verdict, Direction: direction}
}

// compareTags 比对标签集合。
// correct要求两个集合完全一致；交集非空但不一致记partial；
// 交集无论如何都随结果返回。比较不区分大小写。
func compareTags(guess, target []string) TagsResult {
	targetSet := make(map[string]bool, len(target))
	for _, t := range target {
		targetSet[strings.ToLower(t)] = true
	}

	var common []string
	seen := make(map[string]bool, len(guess))
	for _, g := range guess {
		key := strings.ToLower(g)
		if targetSet[key] && !seen[key] {
			common = append(common, g)
			seen[key] = true
		}
	}

	verdict := VerdictIncorrect
	switch {
	case len(common) == len(targetSet) && len(seen) == len(guessDistinct(guess)):
		verdict = VerdictCorrect
	case len(common) > 0:
		verdict = VerdictPartial
	}
	return TagsResult{Values: guess, Verdict: verdict, Common: common}
}

func guessDistinct(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = true
	}
	return set
}

// ComputeStreak 计算成员的连胜天数。
// scores必须按游戏编号降序排列。规则：
//   - 今天的未完局（未胜且未用满尝试）跳过且不断档；
//   - 编号断档即停止；
//   - 遇到失败即停止，失败之后（更新）的连续胜场仍然计数；
//   - 编号大于今天的脏数据直接忽略。
func ComputeStreak(scores []GameScore, today int) int {
	expected := today
	streak := 0
	first := true

	for _, sc := range scores {
		if sc.GameNumber > today {
			continue
		}

		if first {
			first = false
			if sc.GameNumber == today && !sc.IsWon && sc.Attempts < MaxAttempts {
				// 今天还在进行中，不计入也不断档
				expected = today - 1
				continue
			}
		}

		if sc.GameNumber != expected {
			break
		}
		if !sc.IsWon {
			break
		}
		streak++
		expected--
	}
	return streak
}

// HintsFor 根据尝试次数生成提示，提示是逐级累积的。
// 遮罩标题对同一天、同一标题保证逐字节稳定（见maskTitle）。
func HintsFor(attempts, gameNumber int, target *catalog.Media) Hints {
	var hints Hints
	if attempts >= hintFirstLetterAttempts {
		runes := []rune(target.Title)
		if len(runes) > 0 {
			hints.FirstLetter = string(runes[0])
		}
	}
	if attempts >= hintTagsAttempts {
		hints.Tags = target.TagList()
	}
	if attempts >= hintMaskedAttempts {
		hints.MaskedTitle = maskTitle(target.Title, gameNumber)
	}
	if attempts >= MaxAttempts {
		hints.Answer = target.Title
	}
	return hints
}

// maskTitle 生成遮罩标题：所有字母数字替换为占位符，
// 只保留字符串首字符和一个额外的字母数字位。
// 额外揭示位由(游戏编号, 标题长度)的稳定哈希决定，
// 同一天内重复请求必然得到逐字节相同的结果；
// 空格和标点原样保留在原位置。
func maskTitle(title string, gameNumber int) string {
	runes := []rune(title)

	var revealable []int
	for i, r := range runes {
		if i == 0 {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			revealable = append(revealable, i)
		}
	}

	reveal := -1
	if len(revealable) > 0 {
		h := fnv.New32a()
		fmt.Fprintf(h, "%d:%d", gameNumber, len(runes))
		reveal = revealable[int(h.Sum32())%len(revealable)]
	}

	for i, r := range runes {
		if i == 0 || i == reveal {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			runes[i] = maskPlaceholder
		}
	}
	return string(runes)
}
