package catalog

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrInvalidMediaType 表示请求中携带了未知的媒体类型。
var ErrInvalidMediaType = errors.New("无效的媒体类型")

// MediaType 是目录条目所属的媒体类型。
type MediaType string

const (
	MediaTypeAnime MediaType = "anime"
	MediaTypeManga MediaType = "manga"
	MediaTypeGame  MediaType = "game"
)

// ParseMediaType 校验并归一化媒体类型参数。
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case MediaTypeAnime:
		return MediaTypeAnime, nil
	case MediaTypeManga:
		return MediaTypeManga, nil
	case MediaTypeGame:
		return MediaTypeGame, nil
	default:
		return "", ErrInvalidMediaType
	}
}

// Media 定义了目录条目（番剧/漫画/游戏）在数据库中的数据结构。
// 外部元数据源（Jikan等）的数据先映射到这个结构，再写库。
type Media struct {
	gorm.Model

	// ExternalID 是条目在外部元数据源中的ID（例如MAL ID）
	ExternalID int `gorm:"index" json:"externalId"`

	// MediaType 标记条目属于番剧、漫画还是游戏
	MediaType MediaType `gorm:"index;not null" json:"mediaType"`

	// Title 是条目的标题
	Title string `json:"title"`

	// ImageURL 是封面图的完整URL
	ImageURL string `json:"imageUrl"`

	// Category 是条目的分类标签，例如 "TV" / "Movie" / "ONA"
	Category string `json:"category"`

	// Studio 是制作公司
	Studio string `json:"studio"`

	// ReleaseYear 是首播/发行年份
	ReleaseYear int `json:"releaseYear"`

	// Episodes 是集数（漫画为卷数，游戏为0）
	Episodes int `json:"episodes"`

	// Tags 是逗号分隔的标签名列表，例如 "Action,Comedy"
	Tags string `json:"tags"`

	// PopularityRank 是预先算好的人气排名，竞猜候选池按它圈定
	PopularityRank int `gorm:"index" json:"popularityRank"`

	// Published 标记条目是否对外可见
	Published bool `gorm:"index" json:"published"`
}

// TagList 将存储层的CSV标签串拆成名字列表，空白片段被丢弃。
func (m *Media) TagList() []string {
	if m.Tags == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(m.Tags, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
