package state

import (
	"undercover-be/internal/config"
	"undercover-be/internal/service"
	"undercover-be/internal/service/auth"
	"undercover-be/internal/service/voice"
)

type AppState struct {
	Cfg         *config.AppConfig
	Coordinator *service.Coordinator
	Gate        *auth.Gate
	Voice       *voice.Store
}

func NewAppState(
	cfg *config.AppConfig,
	coordinator *service.Coordinator,
	gate *auth.Gate,
	voiceStore *voice.Store,
) *AppState {
	return &AppState{
		Cfg:         cfg,
		Coordinator: coordinator,
		Gate:        gate,
		Voice:       voiceStore,
	}
}
