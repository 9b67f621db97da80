package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AniTopia/anitopia-backend/internal/catalog"
	"github.com/AniTopia/anitopia-backend/internal/platform/config"
	"github.com/AniTopia/anitopia-backend/internal/platform/database"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const (
	jikanBaseURL = "https://api.jikan.moe/v4"

	// Jikan的匿名限速约为每秒3次请求，并发度不能开太高
	maxConcurrentFetches = 2
	requestTimeout       = 15 * time.Second
)

// jikanPage 对应Jikan排行榜接口的一页响应。
type jikanPage struct {
	Data       []jikanEntry `json:"data"`
	Pagination struct {
		HasNextPage bool `json:"has_next_page"`
	} `json:"pagination"`
}

// jikanEntry 只映射我们需要的字段。
type jikanEntry struct {
	MalID  int    `json:"mal_id"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Year   int    `json:"year"`
	Rank   int    `json:"rank"`
	Images struct {
		JPG struct {
			ImageURL string `json:"image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Episodes int `json:"episodes"`
	Volumes  int `json:"volumes"`
	Genres   []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Studios []struct {
		Name string `json:"name"`
	} `json:"studios"`
	Published struct {
		Prop struct {
			From struct {
				Year int `json:"year"`
			} `json:"from"`
		} `json:"prop"`
	} `json:"published"`
}

func main() {
	mediaTypeFlag := flag.String("type", "anime", "要导入的媒体类型: anime 或 manga")
	pagesFlag := flag.Int("pages", 20, "要抓取的排行榜页数（每页25条）")
	flag.Parse()

	_ = godotenv.Load()

	mediaType, err := catalog.ParseMediaType(*mediaTypeFlag)
	if err != nil {
		log.Fatalf("不支持的媒体类型: %s", *mediaTypeFlag)
	}
	if mediaType == catalog.MediaTypeGame {
		log.Fatal("Jikan不提供游戏数据，game类型需要手工导入")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	database.InitDB(cfg.Database)

	client := &http.Client{Timeout: requestTimeout}

	// 并发抓取排行榜的各页，错误会取消整组任务
	results := make([][]jikanEntry, *pagesFlag)
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(maxConcurrentFetches)

	for page := 1; page <= *pagesFlag; page++ {
		page := page
		g.Go(func() error {
			entries, err := fetchTopPage(ctx, client, mediaType, page)
			if err != nil {
				return fmt.Errorf("抓取第%d页失败: %w", page, err)
			}
			results[page-1] = entries
			fmt.Printf("第%d页抓取完成，共%d条\n", page, len(entries))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}

	// 逐条写库，按(媒体类型, 外部ID)去重
	imported, skipped := 0, 0
	for _, entries := range results {
		for _, e := range entries {
			media := toMedia(mediaType, e)
			if media.Title == "" || media.ExternalID == 0 {
				skipped++
				continue
			}

			var existing catalog.Media
			err := database.DB.
				Where("media_type = ? AND external_id = ?", mediaType, media.ExternalID).
				First(&existing).Error
			if err == nil {
				media.ID = existing.ID
				media.CreatedAt = existing.CreatedAt
			}
			if err := database.DB.Save(&media).Error; err != nil {
				log.Fatalf("写入条目 %q 失败: %v", media.Title, err)
			}
			imported++
		}
	}

	fmt.Printf("目录构建完成！导入%d条，跳过%d条\n", imported, skipped)
}

// fetchTopPage 抓取排行榜的一页。
func fetchTopPage(ctx context.Context, client *http.Client, mediaType catalog.MediaType, page int) ([]jikanEntry, error) {
	url := fmt.Sprintf("%s/top/%s?page=%d", jikanBaseURL, mediaType, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("意外的状态码: %d", resp.StatusCode)
	}

	var body jikanPage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Data, nil
}

// toMedia 把Jikan条目映射到本地的目录结构。
func toMedia(mediaType catalog.MediaType, e jikanEntry) catalog.Media {
	var genres []string
	for _, g := range e.Genres {
		genres = append(genres, g.Name)
	}

	studio := ""
	if len(e.Studios) > 0 {
		studio = e.Studios[0].Name
	}

	year := e.Year
	if year == 0 {
		// 漫画条目的年份藏在published.prop里
		year = e.Published.Prop.From.Year
	}

	episodes := e.Episodes
	if mediaType == catalog.MediaTypeManga {
		episodes = e.Volumes
	}

	return catalog.Media{
		ExternalID:     e.MalID,
		MediaType:      mediaType,
		Title:          e.Title,
		ImageURL:       e.Images.JPG.ImageURL,
		Category:       e.Type,
		Studio:         studio,
		ReleaseYear:    year,
		Episodes:       episodes,
		Tags:           strings.Join(genres, ","),
		PopularityRank: e.Rank,
		Published:      true,
	}
}
