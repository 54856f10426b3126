// Package priority 实现可写流的优先级写队列
//
// Queue 满足 interfaces.WriteScheduler 契约：级别小者先出，
// 同级别内轮转，每条流连续获得至多 maxNextsPerStream 次调度机会。
// 同级别的流保存在环形序列中，轮转游标配合配额计数推进。
//
// 控制流不进入本队列，由流管理器单独维护按流 ID 升序的有序队列。
package priority
