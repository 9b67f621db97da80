package health

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/AniTopia/anitopia-backend/internal/platform/database"
	"github.com/AniTopia/anitopia-backend/internal/platform/startup"
	"github.com/AniTopia/anitopia-backend/pkg/lifecycle"
	log "github.com/sirupsen/logrus"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// getRedisRunID 从Redis服务器信息中提取run_id。
// run_id在Redis每次重启后都会变化，是检测重启的可靠信号。
func getRedisRunID() (string, error) {
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()
	info, err := database.RDB.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	matches := runIDPattern.FindStringSubmatch(info)
	if len(matches) < 2 {
		return "", fmt.Errorf("无法在Redis INFO中找到run_id")
	}
	return matches[1], nil
}

// InitializeRunID 在应用启动时执行一次，记录初始的run_id。
func InitializeRunID() {
	runID, err := getRedisRunID()
	if err != nil {
		panic(fmt.Sprintf("无法在启动时获取Redis Run ID，请检查Redis服务: %v", err))
	}
	database.SetInitialRunID(runID)
	log.WithField("runId", runID).Info("获取初始Redis Run ID成功")
}

// triggerAtomicRebuild 执行一次自校验的缓存重建：
// 只有重建期间Redis没有再次重启，重建才算成功。
func triggerAtomicRebuild(idBeforeRebuild string) bool {
	log.Info("健康检查: 正在触发缓存重建...")
	if err := startup.RebuildCache(); err != nil {
		log.WithError(err).Error("健康检查: 缓存重建失败")
		return false
	}

	idAfterRebuild, err := getRedisRunID()
	if err != nil {
		log.Error("健康检查: 缓存重建后无法连接到Redis，重建无效")
		return false
	}
	if idBeforeRebuild != idAfterRebuild {
		log.WithFields(log.Fields{"before": idBeforeRebuild, "after": idAfterRebuild}).
			Error("健康检查: 缓存重建期间Redis再次重启，重建无效")
		return false
	}

	log.Info("健康检查: 缓存重建成功并通过原子性校验")
	return true
}

// PerformCheck 执行一次完整的健康检查和可能的修复操作。
func PerformCheck() {
	currentRunID, err := getRedisRunID()
	if err != nil {
		database.UpdateStatus(false, "")
		return
	}

	lastKnownRunID := database.GetLastKnownRunID()
	if currentRunID != lastKnownRunID {
		// 检测到Redis重启，重建缓存命名空间后才恢复可用状态
		if triggerAtomicRebuild(currentRunID) {
			database.UpdateStatus(true, currentRunID)
		} else {
			database.UpdateStatus(false, "")
		}
		return
	}

	database.UpdateStatus(true, currentRunID)
}

// StartRedisHealthCheck 在生命周期句柄上运行周期性的健康检查。
func StartRedisHealthCheck(handle *lifecycle.Handle) {
	defer handle.Close()
	log.Info("Redis健康检查器已启动")

	for {
		if err := handle.Sleep(checkInterval); err != nil {
			log.Info("Redis健康检查器收到停机信号，退出")
			return
		}
		PerformCheck()
	}
}
