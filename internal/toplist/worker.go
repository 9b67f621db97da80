package toplist

import (
	"time"

	"github.com/AniTopia/anitopia-backend/pkg/lifecycle"
	log "github.com/sirupsen/logrus"
)

// recomputeInterval 是后台人气分重算的周期。
// 投票和浏览已经同步重算人气分，这里只兜底修正
// 算法调整或手工改库后遗留的陈旧分数。
const recomputeInterval = 6 * time.Hour

// StartRecomputeWorker 启动后台人气分重算任务。
// 任务通过生命周期句柄接受停机信号，永远不会游离于Manager之外。
func StartRecomputeWorker(handle *lifecycle.Handle) {
	defer handle.Close()
	log.Info("人气分重算worker已启动")

	for {
		if err := handle.Sleep(recomputeInterval); err != nil {
			log.Info("人气分重算worker收到停机信号，退出")
			return
		}

		updated, err := svc.RecomputeAllPublic(handle.Ctx())
		if err != nil {
			log.WithError(err).Error("后台人气分重算失败")
			continue
		}
		if updated > 0 {
			log.WithField("updated", updated).Info("后台人气分重算完成")
		}
	}
}
