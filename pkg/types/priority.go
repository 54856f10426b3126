package types

// PriorityLevels 优先级级别数
//
// 级别 0 最高，级别 7 最低。
const PriorityLevels = 8

// DefaultPriorityLevel 默认优先级级别
const DefaultPriorityLevel uint8 = 3

// Priority 流调度优先级
//
// Level 越小优先级越高；Incremental 随优先级保存并参与 Equals 比较，
// 写队列在同级别内一律轮转调度，不按该标志区分。
type Priority struct {
	Level       uint8
	Incremental bool
}

// DefaultPriority 返回默认优先级
func DefaultPriority() Priority {
	return Priority{Level: DefaultPriorityLevel, Incremental: true}
}

// Equals 比较两个优先级是否相同
func (p Priority) Equals(other Priority) bool {
	return p.Level == other.Level && p.Incremental == other.Incremental
}
