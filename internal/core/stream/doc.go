// Package stream 实现单条流的状态记录与收发状态机
//
// State 是流管理器持有的每流记录：标识、控制流标记、收发状态机、
// 当前优先级、指向收发字节缓冲的非拥有视图计数，以及丢失缓冲记账。
// 字节缓冲本体由外部管理，本包只保留判定派生集合所需的偏移与计数。
//
// # 状态机
//
// 发送方向：
//
//	Ready → Send → DataSent → DataRecvd
//	          └→ ResetSent → ResetRecvd
//
// 接收方向：
//
//	Recv → SizeKnown → DataRecvd → DataRead
//	  └→ ResetRecvd → ResetRead
//
// 两个方向都到达终态后，流才可被回收。
package stream
