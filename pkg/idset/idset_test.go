package idset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Run("空串得到空集合", func(t *testing.T) {
		s := Parse("")
		assert.Zero(t, s.Len())
		assert.Equal(t, "", s.String())
	})

	t.Run("常规CSV", func(t *testing.T) {
		s := Parse("3,1,2")
		assert.Equal(t, 3, s.Len())
		assert.True(t, s.Contains(1))
		assert.True(t, s.Contains(2))
		assert.True(t, s.Contains(3))
	})

	t.Run("非法片段被静默丢弃", func(t *testing.T) {
		s := Parse("1, ,abc,-5,2,,3.5")
		assert.Equal(t, []uint{1, 2}, s.IDs())
	})

	t.Run("重复片段只保留一份", func(t *testing.T) {
		s := Parse("7,7,7")
		assert.Equal(t, 1, s.Len())
	})
}

func TestStringIsSortedAndStable(t *testing.T) {
	s := Parse("30,4,100,2")
	assert.Equal(t, "2,4,30,100", s.String())

	// 往返一次结果不变
	assert.Equal(t, s.String(), Parse(s.String()).String())
}

func TestMutations(t *testing.T) {
	s := New()

	s.Add(5)
	s.Add(5)
	assert.Equal(t, 1, s.Len())

	assert.False(t, s.Toggle(5))
	assert.False(t, s.Contains(5))
	assert.True(t, s.Toggle(5))
	assert.True(t, s.Contains(5))

	s.Remove(5)
	s.Remove(5)
	assert.Zero(t, s.Len())
}
