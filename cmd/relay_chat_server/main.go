package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"relay_chat_server/internal/config"
	dao "relay_chat_server/internal/dao/mysql"
	myredis "relay_chat_server/internal/dao/redis"
	"relay_chat_server/internal/handler"
	"relay_chat_server/internal/https_server"
	"relay_chat_server/internal/infrastructure/logger"
	"relay_chat_server/internal/infrastructure/mq"
	"relay_chat_server/internal/service"
	"relay_chat_server/pkg/util/jwt"
	"relay_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化数据库
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 4. 初始化 Redis
	myredis.Init()
	cache := myredis.GetCacheService()
	zap.L().Info("Redis 初始化成功")

	// 5. 初始化 JWT 和雪花节点
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)
	zap.L().Info("JWT / Snowflake 初始化成功")

	// 6. 初始化事件归档（enabled=false 时为空实现）
	journal := mq.NewJournal(conf.KafkaConfig)

	// 7. 初始化 Service 层（依赖注入，内部创建 Hub）
	service.InitServices(repos, cache, journal)
	zap.L().Info("Service 层初始化成功")

	// 8. 初始化参数校验翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("翻译器初始化失败", zap.Error(err))
	}

	// 9. 初始化 HTTP 服务器
	handlers := handler.NewHandlers(service.Svc)
	engine := https_server.Init(handlers)
	zap.L().Info("HTTP 服务器初始化成功")

	// 10. 启动服务
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port
	go func() {
		if err := engine.Run(fmt.Sprintf("%s:%d", host, port)); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("服务已启动", zap.String("host", host), zap.Int("port", port))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	if err := journal.Close(); err != nil {
		zap.L().Warn("事件归档关闭失败", zap.Error(err))
	}
	zap.L().Info("服务器已关闭")
}
