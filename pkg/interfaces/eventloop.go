package interfaces

import "time"

// LoopCallback 定义事件循环回调
//
// 回调对象由调用方持有，通过 EventLoop.RunInLoop 挂入循环。
type LoopCallback interface {
	// RunLoopCallback 在事件循环线程中被调用
	RunLoopCallback()
}

// TimerCallback 定义定时器回调
type TimerCallback interface {
	// TimeoutExpired 定时器到期时在循环线程中被调用
	TimeoutExpired()

	// CallbackCanceled 定时器被取消时被调用
	CallbackCanceled()
}

// LoopHandle 定义已挂入循环的回调句柄
//
// Cancel 为 O(1) 且幂等；取消后的回调保证不再被执行。
type LoopHandle interface {
	// Cancel 取消回调
	Cancel()

	// IsScheduled 返回回调是否仍在等待执行
	IsScheduled() bool
}

// Timer 定义已调度的定时器句柄
//
// Cancel 为 O(1) 且幂等。IsScheduled 在定时器已挂起或待触发时为 true。
// 注意：本契约不提供剩余时间查询。
type Timer interface {
	// Cancel 取消定时器
	Cancel()

	// IsScheduled 返回定时器是否仍在等待触发
	IsScheduled() bool
}

// EventLoop 定义事件循环适配器
//
// 核心消费的能力集。所有方法只能在循环线程调用；
// IsInEventBaseThread 供调试断言使用。
// 最小实现不支持的操作以 panic 终止（编译期以文档形式声明）。
type EventLoop interface {
	// RunInLoop 调度回调在循环中执行
	//
	// thisIteration 为 true 时在当前迭代末尾执行，否则在下一迭代开始执行。
	RunInLoop(cb LoopCallback, thisIteration bool) LoopHandle

	// RunInLoopFunc 函数形式的 RunInLoop
	RunInLoopFunc(fn func(), thisIteration bool) LoopHandle

	// ScheduleTimeout 调度毫秒级定时器
	ScheduleTimeout(cb TimerCallback, timeout time.Duration) Timer

	// ScheduleTimeoutHighRes 调度微秒级定时器（尽力而为，可能被降级）
	ScheduleTimeoutHighRes(cb TimerCallback, timeout time.Duration) (Timer, bool)

	// IsInEventBaseThread 返回当前是否在循环线程
	IsInEventBaseThread() bool

	// TimerTickInterval 返回定时器滴答间隔
	TimerTickInterval() time.Duration
}
