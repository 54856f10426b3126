package eventloop

import (
	"container/heap"
	"time"

	"github.com/dep2p/go-quic/pkg/interfaces"
)

// timer 已调度的定时器
//
// 取消采用惰性删除：条目标记后留在堆中，出堆时跳过。
type timer struct {
	deadline time.Time
	cb       interfaces.TimerCallback
	canceled bool
	fired    bool
}

var _ interfaces.Timer = (*timer)(nil)

// Cancel 取消定时器，O(1) 且幂等
//
// 已触发或已取消时为空操作；否则通知回调已取消。
func (t *timer) Cancel() {
	if t.fired || t.canceled {
		return
	}
	t.canceled = true
	t.cb.CallbackCanceled()
}

// IsScheduled 返回定时器是否仍在等待触发
func (t *timer) IsScheduled() bool {
	return !t.fired && !t.canceled
}

// timerHeap 按到期时间排序的最小堆
type timerHeap []*timer

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x interface{}) { *h = append(*h, x.(*timer)) }
func (h *timerHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// nextDeadline 返回最近的有效到期时间
func (h *timerHeap) nextDeadline() (time.Time, bool) {
	for len(*h) > 0 {
		if (*h)[0].canceled {
			heap.Pop(h)
			continue
		}
		return (*h)[0].deadline, true
	}
	return time.Time{}, false
}

// ScheduleTimeout 调度毫秒级定时器
func (l *EventLoop) ScheduleTimeout(cb interfaces.TimerCallback, timeout time.Duration) interfaces.Timer {
	t := &timer{
		deadline: l.clk.Now().Add(timeout),
		cb:       cb,
	}
	heap.Push(&l.timers, t)
	l.wake()
	return t
}

// ScheduleTimeoutHighRes 调度微秒级定时器
//
// 尽力而为：精度随时钟降级，最坏落到 1ms 滴答。
func (l *EventLoop) ScheduleTimeoutHighRes(cb interfaces.TimerCallback, timeout time.Duration) (interfaces.Timer, bool) {
	return l.ScheduleTimeout(cb, timeout), true
}

// fireDueTimers 触发所有到期的定时器
func (l *EventLoop) fireDueTimers() {
	now := l.clk.Now()
	for len(l.timers) > 0 {
		head := l.timers[0]
		if head.canceled {
			heap.Pop(&l.timers)
			continue
		}
		if head.deadline.After(now) {
			return
		}
		heap.Pop(&l.timers)
		head.fired = true
		head.cb.TimeoutExpired()
	}
}
