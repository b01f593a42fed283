package service

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"undercover-be/internal/service/game"

	"go.uber.org/zap"
)

// RoomRegistry 保存所有存活的房间。房间不会自动过期，
// 调用方需要在房间变空时显式删除。RoomRegistry 不是并发安全的，
// 只能在 Coordinator 的事件循环中使用。
type RoomRegistry struct {
	rooms    map[string]*game.Room
	words    game.WordPairProvider
	newID    func() string
	roomOpts []game.RoomOption
}

func NewRoomRegistry(words game.WordPairProvider, roomOpts ...game.RoomOption) *RoomRegistry {
	return &RoomRegistry{
		rooms:    make(map[string]*game.Room),
		words:    words,
		newID:    randomRoomID,
		roomOpts: roomOpts,
	}
}

// randomRoomID 生成 6 位数字房间号
func randomRoomID() string {
	return fmt.Sprintf("%d", 100000+rand.IntN(900000))
}

// Create 生成一个未被占用的房间号，创建房间并让 host 作为第一个玩家加入
func (rr *RoomRegistry) Create(hostID, hostName, hostAvatar string) (*game.Room, error) {
	var roomID string
	for {
		roomID = rr.newID()
		if _, exists := rr.rooms[roomID]; !exists {
			break
		}
	}

	room := game.NewRoom(roomID, rr.words, rr.roomOpts...)
	if _, err := room.AddPlayer(hostID, hostName, hostAvatar); err != nil {
		return nil, err
	}

	rr.rooms[roomID] = room

	zap.L().Info(
		"房间已创建",
		zap.String("room_id", roomID),
		zap.String("host_id", hostID),
		zap.String("host_name", hostName),
	)

	return room, nil
}

func (rr *RoomRegistry) Get(roomID string) *game.Room {
	return rr.rooms[roomID]
}

func (rr *RoomRegistry) Delete(roomID string) {
	if _, exists := rr.rooms[roomID]; !exists {
		return
	}

	delete(rr.rooms, roomID)

	zap.L().Info("房间已删除", zap.String("room_id", roomID))
}

func (rr *RoomRegistry) Len() int {
	return len(rr.rooms)
}

// Waiting 返回所有等待中且有玩家的房间，按房间号排序
func (rr *RoomRegistry) Waiting() []game.Summary {
	summaries := make([]game.Summary, 0, len(rr.rooms))

	for _, room := range rr.rooms {
		if room.Phase() == game.PHASE_WAITING && room.PlayerCount() > 0 {
			summaries = append(summaries, room.Summary())
		}
	}

	slices.SortFunc(summaries, func(a, b game.Summary) int {
		return strings.Compare(a.ID, b.ID)
	})

	return summaries
}
