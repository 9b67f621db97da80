package shutdown

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AniTopia/anitopia-backend/pkg/lifecycle"
	log "github.com/sirupsen/logrus"
)

const (
	httpShutdownTimeout = 15 * time.Second
	gracefulTimeout     = 30 * time.Second
	forcefulTimeout     = 1 * time.Second
)

// Coordinator 编排应用的两阶段优雅停机：
// 先给后台任务一个完整的宽限期，超时后再广播强制退出信号。
type Coordinator struct {
	GracefulManager *lifecycle.Manager
	ForcefulManager *lifecycle.Manager
}

// NewCoordinator 创建停机协调器。
func NewCoordinator(gracefulMgr, forcefulMgr *lifecycle.Manager) *Coordinator {
	return &Coordinator{
		GracefulManager: gracefulMgr,
		ForcefulManager: forcefulMgr,
	}
}

// ListenForSignalsAndShutdown 阻塞等待停机信号并执行停机流程。
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("收到关闭信号，开始优雅停机...")

	// 先停HTTP服务器，让在途请求跑完
	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP服务器关闭出错")
	} else {
		log.Info("HTTP服务器已关闭")
	}

	// 阶段一: 优雅停机
	log.WithField("timeout", gracefulTimeout).Info("第一阶段停机: 等待后台任务退出")
	c.GracefulManager.Shutdown()

	remaining := c.GracefulManager.WaitWithTimeout(gracefulTimeout)
	if len(remaining) == 0 {
		log.Info("所有后台任务已在第一阶段退出")
	} else {
		// 阶段二: 强制停机
		log.WithField("remaining", remaining).Warn("第一阶段超时，广播强制退出信号")
		c.ForcefulManager.Shutdown()
		c.ForcefulManager.WaitWithTimeout(forcefulTimeout)
	}

	log.Info("优雅停机完成")
}
