// Package eventloop 实现最小事件循环适配器
//
// EventLoop 满足 interfaces.EventLoop 契约：回调调度与定时器，
// 单线程协作式。回调挂入链表，取消为 O(1) 且幂等，
// 被取消的回调保证不再执行。
//
// # 迭代结构
//
// 每个迭代按序执行：
//  1. 上一迭代挂入的 next-iteration 回调
//  2. 到期的定时器回调
//  3. 本迭代内挂入的 this-iteration 回调（迭代末尾）
//
// # 定时器
//
// 定时器基于可注入的时钟（benbjohnson/clock），测试中以 Mock
// 时钟驱动。取消采用惰性删除：堆中的条目标记后在出堆时跳过。
// 滴答间隔为 1ms；微秒级调度尽力而为，随时钟精度降级。
//
// # 不支持的操作
//
// 最小适配器不支持跨线程投递（RunAfterDelay、LoopForever、
// RunInEventBaseThread），调用即 panic。
package eventloop
