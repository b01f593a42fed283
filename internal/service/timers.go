package service

import "time"

// 房间级计时器的键，玩家级计时器的键带上玩家 ID
const (
	TIMER_PREP  = "prep"
	TIMER_GUESS = "guess"
)

func disconnectTimerKey(playerID string) string {
	return "disconnect:" + playerID
}

func abandonTimerKey(playerID string) string {
	return "abandon:" + playerID
}

type Timer interface {
	Stop() bool
}

// Scheduler 延迟执行回调，生产环境下就是 time.AfterFunc
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func NewScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type timerEntry struct {
	handle Timer
}

// timerTable 按房间和键管理可取消的计时器。到期的回调不会直接执行，
// 而是通过 post 投递回事件循环，执行前再确认自己没有被取消或替换，
// 因此在事件循环中先发出的取消一定生效。
type timerTable struct {
	sched Scheduler
	post  func(func())
	rooms map[string]map[string]*timerEntry
}

func newTimerTable(sched Scheduler, post func(func())) *timerTable {
	return &timerTable{
		sched: sched,
		post:  post,
		rooms: make(map[string]map[string]*timerEntry),
	}
}

// Schedule 设置计时器，同键的旧计时器会先被取消
func (tt *timerTable) Schedule(roomID, key string, d time.Duration, fn func()) {
	tt.Cancel(roomID, key)

	entry := &timerEntry{}
	entry.handle = tt.sched.AfterFunc(d, func() {
		tt.post(func() {
			tt.fire(roomID, key, entry, fn)
		})
	})

	timers, ok := tt.rooms[roomID]
	if !ok {
		timers = make(map[string]*timerEntry)
		tt.rooms[roomID] = timers
	}

	timers[key] = entry
}

func (tt *timerTable) fire(roomID, key string, entry *timerEntry, fn func()) {
	timers := tt.rooms[roomID]
	if timers == nil || timers[key] != entry {
		return
	}

	tt.remove(roomID, key)
	fn()
}

func (tt *timerTable) remove(roomID, key string) {
	timers := tt.rooms[roomID]
	delete(timers, key)

	if len(timers) == 0 {
		delete(tt.rooms, roomID)
	}
}

// Cancel 取消计时器，返回是否确实存在
func (tt *timerTable) Cancel(roomID, key string) bool {
	entry, ok := tt.rooms[roomID][key]
	if !ok {
		return false
	}

	entry.handle.Stop()
	tt.remove(roomID, key)

	return true
}

func (tt *timerTable) CancelAll(roomID string) {
	for _, entry := range tt.rooms[roomID] {
		entry.handle.Stop()
	}

	delete(tt.rooms, roomID)
}

func (tt *timerTable) Active(roomID, key string) bool {
	_, ok := tt.rooms[roomID][key]
	return ok
}

func (tt *timerTable) Len() int {
	n := 0
	for _, timers := range tt.rooms {
		n += len(timers)
	}

	return n
}
