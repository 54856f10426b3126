// Package streamid 实现流 ID 集合的紧凑表示
//
// Set 以合并区间的方式存储单一类别的流 ID：内部记录 (id − base) / 4，
// 连续的 ID 序列（常见情形：0, 4, 8, …, N）坍缩为一个区间。
// 稳态下内存为 O(1)，最坏情况为 O(空洞数)。
//
// # 约束
//
// 所有操作要求 (id − base) mod 4 == 0。违反属于程序错误，直接 panic。
package streamid
