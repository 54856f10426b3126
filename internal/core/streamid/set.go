package streamid

import (
	"fmt"
	"sort"

	"github.com/dep2p/go-quic/pkg/types"
)

// interval 闭区间 [first, last]，单位为归一化序号
type interval struct {
	first uint64
	last  uint64
}

// Set 单一类别流 ID 的合并区间集合
//
// 零值不可用，必须通过 New 构造。
type Set struct {
	base      uint64
	intervals []interval
}

// New 创建以 base 为类别基准的集合
//
// base 是该类别最小的合法 ID（0x00/0x01/0x02/0x03）。
func New(base types.StreamID) *Set {
	return &Set{base: uint64(base)}
}

// norm 将流 ID 归一化为序号，类别不对齐时 panic
func (s *Set) norm(id types.StreamID) uint64 {
	delta := uint64(id) - s.base
	if delta%types.StreamIncrement != 0 {
		panic(fmt.Sprintf("streamid: id %d not aligned to base %d", id, s.base))
	}
	return delta / types.StreamIncrement
}

// Add 插入单个流 ID
func (s *Set) Add(id types.StreamID) {
	s.AddRange(id, id)
}

// AddRange 插入闭区间 [first, last] 内按步长对齐的所有流 ID
//
// 与相邻或重叠的已有区间合并。
func (s *Set) AddRange(first, last types.StreamID) {
	lo := s.norm(first)
	hi := s.norm(last)
	if lo > hi {
		panic(fmt.Sprintf("streamid: invalid range [%d, %d]", first, last))
	}

	// 定位第一个可能与 [lo, hi] 合并的区间（last >= lo-1）
	i := sort.Search(len(s.intervals), func(i int) bool {
		return s.intervals[i].last+1 >= lo
	})

	merged := interval{first: lo, last: hi}
	j := i
	for ; j < len(s.intervals); j++ {
		iv := s.intervals[j]
		if iv.first > hi+1 {
			break
		}
		if iv.first < merged.first {
			merged.first = iv.first
		}
		if iv.last > merged.last {
			merged.last = iv.last
		}
	}

	out := make([]interval, 0, len(s.intervals)-(j-i)+1)
	out = append(out, s.intervals[:i]...)
	out = append(out, merged)
	out = append(out, s.intervals[j:]...)
	s.intervals = out
}

// Remove 移除单个流 ID
//
// ID 不在集合中时为空操作；命中区间内部时分裂该区间。
func (s *Set) Remove(id types.StreamID) {
	v := s.norm(id)

	i := sort.Search(len(s.intervals), func(i int) bool {
		return s.intervals[i].last >= v
	})
	if i == len(s.intervals) || s.intervals[i].first > v {
		return
	}

	iv := s.intervals[i]
	switch {
	case iv.first == v && iv.last == v:
		s.intervals = append(s.intervals[:i], s.intervals[i+1:]...)
	case iv.first == v:
		s.intervals[i].first = v + 1
	case iv.last == v:
		s.intervals[i].last = v - 1
	default:
		out := make([]interval, 0, len(s.intervals)+1)
		out = append(out, s.intervals[:i]...)
		out = append(out, interval{first: iv.first, last: v - 1})
		out = append(out, interval{first: v + 1, last: iv.last})
		out = append(out, s.intervals[i+1:]...)
		s.intervals = out
	}
}

// Contains 返回流 ID 是否在集合中
func (s *Set) Contains(id types.StreamID) bool {
	v := s.norm(id)
	i := sort.Search(len(s.intervals), func(i int) bool {
		return s.intervals[i].last >= v
	})
	return i < len(s.intervals) && s.intervals[i].first <= v
}

// Size 返回集合表示的流 ID 总数
func (s *Set) Size() uint64 {
	var n uint64
	for _, iv := range s.intervals {
		n += iv.last - iv.first + 1
	}
	return n
}

// Clear 清空集合
func (s *Set) Clear() {
	s.intervals = s.intervals[:0]
}

// Base 返回类别基准 ID
func (s *Set) Base() types.StreamID {
	return types.StreamID(s.base)
}
