package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"undercover-be/internal/api/http"
	"undercover-be/internal/config"
	"undercover-be/internal/logger"
	"undercover-be/internal/service"
	"undercover-be/internal/service/auth"
	"undercover-be/internal/service/voice"
	"undercover-be/internal/state"
	"undercover-be/internal/words"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel, cfg.LogEncoding)
	defer logger.Sync()

	// 加载词库
	deck, err := words.LoadDeck(cfg.WordsFile)
	if err != nil {
		zap.L().Fatal("加载词库失败", zap.String("words_file", cfg.WordsFile), zap.Error(err))
	}

	zap.L().Info("词库已加载", zap.Int("pairs", deck.Len()))

	voiceStore, err := voice.NewStore(cfg.UploadDir, cfg.MaxVoiceBytes, "/api/v1/voice")
	if err != nil {
		zap.L().Fatal("初始化语音存储失败", zap.Error(err))
	}

	// 启动事件循环
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coordinator := service.NewCoordinator(
		service.CoordinatorConfig{
			PrepWindow:          cfg.PrepWindow(),
			GuessWindow:         cfg.GuessWindow(),
			DisconnectGrace:     cfg.DisconnectGrace(),
			GameDisconnectGrace: cfg.GameDisconnectGrace(),
		},
		service.NewRoomRegistry(deck),
		service.NewScheduler(),
	)

	go coordinator.Run(ctx)

	if cfg.Password == "" {
		zap.L().Warn("未设置访问密码，所有人都可以访问")
	}

	// 组装应用状态
	appState := state.NewAppState(
		cfg,
		coordinator,
		auth.NewGate(cfg.Password),
		voiceStore,
	)

	// 启动服务器
	if err := http.RunServer(appState); err != nil {
		zap.L().Error("服务器异常退出", zap.Error(err))
	}
}
