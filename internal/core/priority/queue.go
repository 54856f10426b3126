package priority

import (
	"github.com/dep2p/go-quic/pkg/interfaces"
	"github.com/dep2p/go-quic/pkg/types"
)

// level 单个优先级级别的环形序列
type level struct {
	ids    []types.StreamID
	cursor int
	// nexts 当前游标所指流已连续获得的调度次数
	nexts uint64
}

// Queue 优先级写队列
//
// 零值不可用，必须通过 NewQueue 构造。
type Queue struct {
	levels            [types.PriorityLevels]level
	index             map[types.StreamID]types.Priority
	maxNextsPerStream uint64
}

var _ interfaces.WriteScheduler = (*Queue)(nil)

// NewQueue 创建写队列
func NewQueue() *Queue {
	return &Queue{
		index:             make(map[types.StreamID]types.Priority),
		maxNextsPerStream: 1,
	}
}

// SetMaxNextsPerStream 设置每条流的连续调度配额
func (q *Queue) SetMaxNextsPerStream(n uint64) {
	if n == 0 {
		n = 1
	}
	q.maxNextsPerStream = n
}

// Insert 以给定优先级插入流
func (q *Queue) Insert(id types.StreamID, pri types.Priority) {
	if pri.Level >= types.PriorityLevels {
		pri.Level = types.PriorityLevels - 1
	}
	if cur, ok := q.index[id]; ok {
		if cur.Equals(pri) {
			return
		}
		q.eraseFromLevel(id, cur.Level)
	}
	q.index[id] = pri
	lv := &q.levels[pri.Level]
	lv.ids = append(lv.ids, id)
}

// Erase 移除流
func (q *Queue) Erase(id types.StreamID) {
	pri, ok := q.index[id]
	if !ok {
		return
	}
	delete(q.index, id)
	q.eraseFromLevel(id, pri.Level)
}

func (q *Queue) eraseFromLevel(id types.StreamID, levelIdx uint8) {
	lv := &q.levels[levelIdx]
	for i, cur := range lv.ids {
		if cur != id {
			continue
		}
		lv.ids = append(lv.ids[:i], lv.ids[i+1:]...)
		if i < lv.cursor {
			lv.cursor--
		} else if i == lv.cursor {
			// 被移除的是当前流，轮转状态归零
			lv.nexts = 0
		}
		if len(lv.ids) == 0 {
			lv.cursor = 0
		} else if lv.cursor >= len(lv.ids) {
			lv.cursor = 0
		}
		return
	}
}

// UpdatePriority 更新已入队流的优先级
//
// 未变化时不重新排队；返回是否发生变化。
func (q *Queue) UpdatePriority(id types.StreamID, pri types.Priority) bool {
	cur, ok := q.index[id]
	if !ok {
		return false
	}
	if cur.Equals(pri) {
		return false
	}
	q.Insert(id, pri)
	return true
}

// topLevel 返回最高的非空级别
func (q *Queue) topLevel() (*level, bool) {
	for i := range q.levels {
		if len(q.levels[i].ids) > 0 {
			return &q.levels[i], true
		}
	}
	return nil, false
}

// Peek 返回下一条应被调度的流，不推进轮转状态
func (q *Queue) Peek() (types.StreamID, bool) {
	lv, ok := q.topLevel()
	if !ok {
		return 0, false
	}
	return lv.ids[lv.cursor], true
}

// Next 返回下一条应被调度的流并推进轮转状态
func (q *Queue) Next() (types.StreamID, bool) {
	lv, ok := q.topLevel()
	if !ok {
		return 0, false
	}
	id := lv.ids[lv.cursor]
	lv.nexts++
	if lv.nexts >= q.maxNextsPerStream {
		lv.nexts = 0
		lv.cursor = (lv.cursor + 1) % len(lv.ids)
	}
	return id, true
}

// Contains 返回流是否在队列中
func (q *Queue) Contains(id types.StreamID) bool {
	_, ok := q.index[id]
	return ok
}

// Empty 返回队列是否为空
func (q *Queue) Empty() bool {
	return len(q.index) == 0
}

// Len 返回队列中的流数
func (q *Queue) Len() int {
	return len(q.index)
}

// Clear 清空队列
func (q *Queue) Clear() {
	for i := range q.levels {
		q.levels[i] = level{}
	}
	q.index = make(map[types.StreamID]types.Priority)
}
