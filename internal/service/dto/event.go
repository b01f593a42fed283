package dto

import "undercover-be/internal/service/game"

type PhaseChangeEvent struct {
	Phase game.Phase `json:"phase"`
}

type GameAbortedEvent struct {
	PlayerID string `json:"playerId"`
	Reason   string `json:"reason"`
}

// PlayerDisconnectCountdownEvent 游戏中玩家掉线后的倒计时提示，由客户端自行倒数
type PlayerDisconnectCountdownEvent struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Seconds    int    `json:"seconds"`
}
