package service

import (
	"cmp"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (ft *fakeTimer) Stop() bool {
	if ft.stopped || ft.fired {
		return false
	}

	ft.stopped = true
	return true
}

// fakeScheduler 手动推进的时钟，只在测试协程中使用
type fakeScheduler struct {
	now    time.Duration
	timers []*fakeTimer
}

func (fs *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	ft := &fakeTimer{at: fs.now + d, fn: f}
	fs.timers = append(fs.timers, ft)
	return ft
}

// Advance 推进时间，按到期先后触发计时器
func (fs *fakeScheduler) Advance(d time.Duration) {
	fs.now += d

	due := make([]*fakeTimer, 0)
	for _, ft := range fs.timers {
		if !ft.stopped && !ft.fired && ft.at <= fs.now {
			due = append(due, ft)
		}
	}

	slices.SortStableFunc(due, func(a, b *fakeTimer) int {
		return cmp.Compare(a.at, b.at)
	})

	for _, ft := range due {
		ft.fired = true
		ft.fn()
	}
}

func (fs *fakeScheduler) Pending() int {
	n := 0
	for _, ft := range fs.timers {
		if !ft.stopped && !ft.fired {
			n++
		}
	}

	return n
}

type queuedTable struct {
	*timerTable
	sched *fakeScheduler
	queue []func()
}

func newQueuedTable() *queuedTable {
	qt := &queuedTable{sched: &fakeScheduler{}}
	qt.timerTable = newTimerTable(qt.sched, func(fn func()) {
		qt.queue = append(qt.queue, fn)
	})

	return qt
}

func (qt *queuedTable) runQueue() {
	for len(qt.queue) > 0 {
		fn := qt.queue[0]
		qt.queue = qt.queue[1:]
		fn()
	}
}

func TestTimerTable_FiresOnce(t *testing.T) {
	qt := newQueuedTable()

	calls := 0
	qt.Schedule("r1", TIMER_PREP, time.Second, func() { calls++ })
	assert.True(t, qt.Active("r1", TIMER_PREP))

	qt.sched.Advance(time.Second)
	qt.runQueue()

	assert.Equal(t, 1, calls)
	assert.False(t, qt.Active("r1", TIMER_PREP))
	assert.Equal(t, 0, qt.Len())

	qt.sched.Advance(time.Minute)
	qt.runQueue()
	assert.Equal(t, 1, calls)
}

func TestTimerTable_ScheduleReplaces(t *testing.T) {
	qt := newQueuedTable()

	var fired []string
	qt.Schedule("r1", "disconnect:p1", 8*time.Second, func() { fired = append(fired, "old") })
	qt.sched.Advance(4 * time.Second)
	qt.Schedule("r1", "disconnect:p1", 8*time.Second, func() { fired = append(fired, "new") })

	assert.Equal(t, 1, qt.Len())
	assert.Equal(t, 1, qt.sched.Pending())

	qt.sched.Advance(4 * time.Second)
	qt.runQueue()
	assert.Empty(t, fired)

	qt.sched.Advance(4 * time.Second)
	qt.runQueue()
	assert.Equal(t, []string{"new"}, fired)
}

func TestTimerTable_CancelWinsOverQueuedFire(t *testing.T) {
	qt := newQueuedTable()

	calls := 0
	qt.Schedule("r1", TIMER_GUESS, time.Second, func() { calls++ })

	// 计时器已到期并投递，但事件循环先处理了取消
	qt.sched.Advance(time.Second)
	require.Len(t, qt.queue, 1)

	assert.True(t, qt.Cancel("r1", TIMER_GUESS))
	qt.runQueue()

	assert.Equal(t, 0, calls)
	assert.False(t, qt.Cancel("r1", TIMER_GUESS))
}

func TestTimerTable_ReplacedEntryIgnoresStaleFire(t *testing.T) {
	qt := newQueuedTable()

	var fired []string
	qt.Schedule("r1", TIMER_PREP, time.Second, func() { fired = append(fired, "old") })
	qt.sched.Advance(time.Second)
	require.Len(t, qt.queue, 1)

	qt.Schedule("r1", TIMER_PREP, time.Second, func() { fired = append(fired, "new") })
	qt.runQueue()
	assert.Empty(t, fired)

	qt.sched.Advance(time.Second)
	qt.runQueue()
	assert.Equal(t, []string{"new"}, fired)
}

func TestTimerTable_CancelAll(t *testing.T) {
	qt := newQueuedTable()

	calls := 0
	qt.Schedule("r1", TIMER_PREP, time.Second, func() { calls++ })
	qt.Schedule("r1", disconnectTimerKey("p1"), time.Second, func() { calls++ })
	qt.Schedule("r2", TIMER_PREP, time.Second, func() { calls++ })
	require.Equal(t, 3, qt.Len())

	qt.CancelAll("r1")

	assert.Equal(t, 1, qt.Len())
	assert.False(t, qt.Active("r1", TIMER_PREP))
	assert.True(t, qt.Active("r2", TIMER_PREP))
	assert.Equal(t, 1, qt.sched.Pending())

	qt.sched.Advance(time.Second)
	qt.runQueue()
	assert.Equal(t, 1, calls)
}
