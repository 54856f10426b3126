package eventloop

import (
	"container/list"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-quic/pkg/interfaces"
	"github.com/dep2p/go-quic/pkg/lib/log"
)

var logger = log.Logger("core/eventloop")

// timerTickInterval 定时器滴答间隔
const timerTickInterval = time.Millisecond

// funcCallback 把函数适配为 LoopCallback
type funcCallback struct {
	fn func()
}

func (f *funcCallback) RunLoopCallback() {
	f.fn()
}

// loopHandle 已挂入循环的回调句柄
type loopHandle struct {
	cb   interfaces.LoopCallback
	elem *list.Element
	// owner 回调所在的链表，取消时据此摘除
	owner *list.List
}

var _ interfaces.LoopHandle = (*loopHandle)(nil)

// Cancel 取消回调，O(1) 且幂等
func (h *loopHandle) Cancel() {
	if h.elem == nil {
		return
	}
	h.owner.Remove(h.elem)
	h.elem = nil
}

// IsScheduled 返回回调是否仍在等待执行
func (h *loopHandle) IsScheduled() bool {
	return h.elem != nil
}

// EventLoop 最小事件循环
//
// 零值不可用，必须通过 New 构造。所有方法只能在循环线程调用；
// Stop 例外，可从任意线程调用。
type EventLoop struct {
	clk clock.Clock

	// nextIter 下一迭代开始执行的回调
	nextIter *list.List

	// thisIter 当前迭代末尾执行的回调
	thisIter *list.List

	timers timerHeap

	stopped atomic.Bool
	wakeCh  chan struct{}
	loopGID atomic.Uint64
}

var _ interfaces.EventLoop = (*EventLoop)(nil)

// New 创建事件循环
func New(clk clock.Clock) *EventLoop {
	if clk == nil {
		clk = clock.New()
	}
	return &EventLoop{
		clk:      clk,
		nextIter: list.New(),
		thisIter: list.New(),
		wakeCh:   make(chan struct{}, 1),
	}
}

// RunInLoop 调度回调在循环中执行
//
// thisIteration 为 true 时在当前迭代末尾执行，否则在下一迭代开始执行。
func (l *EventLoop) RunInLoop(cb interfaces.LoopCallback, thisIteration bool) interfaces.LoopHandle {
	owner := l.nextIter
	if thisIteration {
		owner = l.thisIter
	}
	h := &loopHandle{cb: cb, owner: owner}
	h.elem = owner.PushBack(h)
	return h
}

// RunInLoopFunc 函数形式的 RunInLoop
func (l *EventLoop) RunInLoopFunc(fn func(), thisIteration bool) interfaces.LoopHandle {
	return l.RunInLoop(&funcCallback{fn: fn}, thisIteration)
}

// RunInEventBaseThreadAndWait 在循环线程中同步执行
//
// 最小适配器假定调用方已在循环线程，直接执行。
func (l *EventLoop) RunInEventBaseThreadAndWait(fn func()) {
	fn()
}

// RunInEventBaseThread 最小适配器不支持
func (l *EventLoop) RunInEventBaseThread(func()) {
	panic("eventloop: RunInEventBaseThread not supported")
}

// RunAfterDelay 最小适配器不支持
func (l *EventLoop) RunAfterDelay(func(), uint32) {
	panic("eventloop: RunAfterDelay not supported")
}

// LoopForever 最小适配器不支持
func (l *EventLoop) LoopForever() {
	panic("eventloop: LoopForever not supported")
}

// IsInEventBaseThread 返回当前是否在循环线程
//
// 循环启动前总是返回 true，供构造期使用。
func (l *EventLoop) IsInEventBaseThread() bool {
	gid := l.loopGID.Load()
	return gid == 0 || gid == curGoroutineID()
}

// TimerTickInterval 返回定时器滴答间隔
func (l *EventLoop) TimerTickInterval() time.Duration {
	return timerTickInterval
}

// Loop 运行事件循环直到 Stop
//
// 返回 true 表示正常停止。
func (l *EventLoop) Loop() bool {
	l.loopGID.Store(curGoroutineID())
	defer l.loopGID.Store(0)
	for !l.stopped.Load() {
		l.runIteration()
		l.waitNext()
	}
	return true
}

// Stop 请求循环停止，可从任意线程调用
func (l *EventLoop) Stop() {
	l.stopped.Store(true)
	l.wake()
	logger.Debug("event loop stop requested")
}

func (l *EventLoop) wake() {
	select {
	case l.wakeCh <- struct{}{}:
	default:
	}
}

// runIteration 执行一个完整迭代
func (l *EventLoop) runIteration() {
	l.drain(&l.nextIter)
	l.fireDueTimers()
	l.drain(&l.thisIter)
}

// drain 执行并清空一个回调链表
//
// 回调执行中可能再次挂入回调；先换出快照，保证本迭代只执行
// 进入时已挂入的部分。
func (l *EventLoop) drain(q **list.List) {
	snap := *q
	*q = list.New()
	for front := snap.Front(); front != nil; front = snap.Front() {
		h := front.Value.(*loopHandle)
		snap.Remove(front)
		h.elem = nil
		h.cb.RunLoopCallback()
	}
}

// waitNext 睡眠到下一个定时器到期或被唤醒
func (l *EventLoop) waitNext() {
	if l.stopped.Load() {
		return
	}
	if l.nextIter.Len() > 0 || l.thisIter.Len() > 0 {
		return
	}
	deadline, ok := l.timers.nextDeadline()
	if !ok {
		<-l.wakeCh
		return
	}
	d := deadline.Sub(l.clk.Now())
	if d <= 0 {
		return
	}
	t := l.clk.Timer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-l.wakeCh:
	}
}
