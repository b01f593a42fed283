package game

import (
	"errors"
	"fmt"
)

// 以下错误都是可预期的玩家操作被拒绝，不会修改房间状态
var (
	ErrRoomFull         = errors.New("房间已满")
	ErrAlreadyJoined    = errors.New("已在房间中")
	ErrGameInProgress   = errors.New("游戏已开始，无法加入")
	ErrNotEnoughPlayers = errors.New("至少需要4名玩家")
	ErrPlayersNotReady  = errors.New("还有玩家未准备")
	ErrSelfVote         = errors.New("不能投自己")
	ErrInvalidTarget    = errors.New("目标无效")
	ErrInvalidPlayer    = errors.New("无效操作")
	ErrWrongPhase       = errors.New("当前阶段不能进行该操作")
	ErrAlreadyChanged   = errors.New("本局已换过词")
	ErrNotAuthorized    = errors.New("没有权限")

	ErrNotYourTurn = fmt.Errorf("还没轮到你发言: %w", ErrNotAuthorized)
)
