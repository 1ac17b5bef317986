package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/onething/internal/config"
	"github.com/onething/internal/db"
	"github.com/onething/internal/router"
	"github.com/onething/internal/service"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}

	// 跨天重置必须在任何选择派生逻辑之前完成，
	// 否则刚被重置的任务可能带着旧状态被重新选中并写入账本
	rollover := service.NewRolloverService(db.DB, log)
	if err := rollover.Run(time.Now()); err != nil {
		log.WithError(err).Fatal("failed to run daily rollover")
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(db.DB, cfg)
	log.WithField("addr", cfg.ListenAddr).Info("starting server")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.WithError(err).Fatal("failed to run server")
	}
}
