package dailygame

import "gorm.io/gorm"

// GameScore 定义了成员每日竞猜成绩的持久化模型。
// 以(MemberID, GameNumber)为唯一键，同一天的多次猜测累积在同一行里。
type GameScore struct {
	gorm.Model

	// MemberID 是参与竞猜的成员，匿名访客的猜测不落库。
	MemberID uint `gorm:"uniqueIndex:idx_member_game;not null"`

	// GameNumber 是距离纪元日的天数编号（见gamenumber.go）。
	GameNumber int `gorm:"uniqueIndex:idx_member_game;index;not null"`

	// Guesses 是按时间顺序排列的猜测结果JSON数组。
	Guesses string

	// Attempts 恒等于Guesses的长度。
	Attempts int

	// IsWon 在任何一次猜测命中答案后置为true，之后保持不变。
	IsWon bool
}

// --- 猜测比对结果结构 ---

// Verdict 是单个属性比对的三态结论。
type Verdict string

const (
	VerdictCorrect   Verdict = "correct"
	VerdictPartial   Verdict = "partial"
	VerdictIncorrect Verdict = "incorrect"
)

// Direction 提示数值型属性应该向哪个方向修正猜测。
type Direction string

const (
	DirectionHigher Direction = "higher"
	DirectionLower  Direction = "lower"
)

// FieldResult 是精确匹配属性（分类、制作公司）的比对结果。
type FieldResult struct {
	Value   string  `json:"value"`
	Verdict Verdict `json:"verdict"`
}

// NumericResult 是带容差的数值属性（年份、集数）的比对结果。
// Direction表示猜测需要向该方向移动才能接近答案。
type NumericResult struct {
	Value     int       `json:"value"`
	Verdict   Verdict   `json:"verdict"`
	Direction Direction `json:"direction,omitempty"`
}

// TagsResult 是标签集合的比对结果，Common总是携带交集。
type TagsResult struct {
	Values  []string `json:"values"`
	Verdict Verdict  `json:"verdict"`
	Common  []string `json:"common"`
}

// GuessResult 是一次完整猜测的结构化比对结果。
// IsCorrect只看条目身份是否一致，与各属性的部分命中无关。
type GuessResult struct {
	MediaID     uint          `json:"mediaId"`
	Title       string        `json:"title"`
	ImageURL    string        `json:"imageUrl,omitempty"`
	IsCorrect   bool          `json:"isCorrect"`
	Category    FieldResult   `json:"category"`
	Studio      FieldResult   `json:"studio"`
	ReleaseYear NumericResult `json:"releaseYear"`
	Episodes    NumericResult `json:"episodes"`
	Tags        TagsResult    `json:"tags"`
}

// Hints 是按尝试次数逐级解锁的提示集合，后解锁的提示只增不减。
type Hints struct {
	FirstLetter string   `json:"firstLetter,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	MaskedTitle string   `json:"maskedTitle,omitempty"`
	Answer      string   `json:"answer,omitempty"`
}
