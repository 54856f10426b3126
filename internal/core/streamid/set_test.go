package streamid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-quic/pkg/types"
)

func TestSet_AddContains(t *testing.T) {
	s := New(0x00)

	s.Add(0)
	s.Add(4)
	s.Add(8)

	assert.True(t, s.Contains(0))
	assert.True(t, s.Contains(4))
	assert.True(t, s.Contains(8))
	assert.False(t, s.Contains(12))
	assert.Equal(t, uint64(3), s.Size())
}

func TestSet_ContiguousCoalesce(t *testing.T) {
	s := New(0x00)

	// 连续插入应坍缩为一个区间
	for id := types.StreamID(0); id <= 400; id += types.StreamIncrement {
		s.Add(id)
	}
	assert.Equal(t, 1, len(s.intervals))
	assert.Equal(t, uint64(101), s.Size())
}

func TestSet_OutOfOrderCoalesce(t *testing.T) {
	s := New(0x00)

	s.Add(8)
	s.Add(0)
	s.Add(4)

	assert.Equal(t, 1, len(s.intervals))
	assert.Equal(t, uint64(3), s.Size())
}

func TestSet_AddRange(t *testing.T) {
	s := New(0x02)

	s.AddRange(2, 42)
	assert.Equal(t, uint64(11), s.Size())
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(42))
	assert.False(t, s.Contains(46))
}

func TestSet_RemoveSplitsInterval(t *testing.T) {
	s := New(0x00)
	s.AddRange(0, 16)

	s.Remove(8)

	assert.False(t, s.Contains(8))
	assert.True(t, s.Contains(4))
	assert.True(t, s.Contains(12))
	assert.Equal(t, uint64(4), s.Size())
	assert.Equal(t, 2, len(s.intervals))
}

func TestSet_RemoveEdges(t *testing.T) {
	s := New(0x00)
	s.AddRange(0, 8)

	s.Remove(0)
	assert.False(t, s.Contains(0))
	assert.True(t, s.Contains(4))

	s.Remove(8)
	assert.False(t, s.Contains(8))
	assert.Equal(t, uint64(1), s.Size())

	s.Remove(4)
	assert.Equal(t, uint64(0), s.Size())

	// 不存在的 ID 移除为空操作
	s.Remove(4)
	assert.Equal(t, uint64(0), s.Size())
}

func TestSet_Clear(t *testing.T) {
	s := New(0x01)
	s.AddRange(1, 401)
	require.NotZero(t, s.Size())

	s.Clear()
	assert.Equal(t, uint64(0), s.Size())
	assert.False(t, s.Contains(1))
}

func TestSet_MisalignedPanics(t *testing.T) {
	s := New(0x00)
	assert.Panics(t, func() { s.Add(2) })
	assert.Panics(t, func() { s.Remove(3) })
	assert.Panics(t, func() { s.Contains(1) })

	odd := New(0x01)
	assert.NotPanics(t, func() { odd.Add(5) })
	assert.Panics(t, func() { odd.Add(4) })
}

// TestSet_RandomizedAgainstMap 以哈希集合为参照验证任意插入序列
func TestSet_RandomizedAgainstMap(t *testing.T) {
	s := New(0x02)
	ref := make(map[types.StreamID]struct{})

	// 固定的伪随机插入与删除序列
	seq := []struct {
		id  types.StreamID
		add bool
	}{
		{2, true}, {42, true}, {6, true}, {42, true}, {10, true},
		{6, false}, {14, true}, {22, true}, {2, false}, {18, true},
		{6, true}, {26, true}, {22, false}, {30, true}, {2, true},
	}
	for _, op := range seq {
		if op.add {
			s.Add(op.id)
			ref[op.id] = struct{}{}
		} else {
			s.Remove(op.id)
			delete(ref, op.id)
		}
	}

	assert.Equal(t, uint64(len(ref)), s.Size())
	for id := types.StreamID(2); id <= 50; id += types.StreamIncrement {
		_, want := ref[id]
		assert.Equal(t, want, s.Contains(id), "id %d", id)
	}
}
