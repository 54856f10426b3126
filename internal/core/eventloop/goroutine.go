package eventloop

import (
	"bytes"
	"runtime"
	"strconv"
)

// curGoroutineID 返回当前 goroutine 编号
//
// 解析 runtime.Stack 首行，仅用于循环线程的调试断言，
// 不在热路径上调用。
func curGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// 首行形如 "goroutine 123 [running]:"
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
