package dto

import "undercover-be/internal/service/game"

type CreateRoomRequest struct {
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	PlayerAvatar string `json:"playerAvatar"`
}

type JoinRoomRequest struct {
	RoomID       string `json:"roomId"`
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	PlayerAvatar string `json:"playerAvatar"`
}

// JoinRoomResponse 重连时带上自己的词，游戏结束后带上身份
type JoinRoomResponse struct {
	RoomID   string    `json:"roomId"`
	PlayerID string    `json:"playerId"`
	Word     string    `json:"word,omitempty"`
	Role     game.Role `json:"role,omitempty"`
}

type PlayerReadyRequest struct {
	Ready bool `json:"ready"`
}

type SetUndercoverCountRequest struct {
	Count int `json:"count"`
}

type SetUndercoverCountResponse struct {
	Count int `json:"count"`
}

type SubmitSpeechRequest struct {
	Speech game.Speech `json:"speech"`
}

type SubmitVoteRequest struct {
	TargetID string `json:"targetId"`
}

type SubmitGuessRequest struct {
	Guess string `json:"guess"`
}
