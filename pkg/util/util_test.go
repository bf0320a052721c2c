package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap_PassesIndex(t *testing.T) {
	out := Map([]string{"a", "b", "c"}, func(s string, i uint64) string {
		return s + string(rune('0'+i))
	})
	assert.Equal(t, []string{"a0", "b1", "c2"}, out)
	assert.Empty(t, Map([]int(nil), func(v int, _ uint64) int { return v }))
}

func TestAny(t *testing.T) {
	even := func(v int) bool { return v%2 == 0 }
	assert.True(t, Any([]int{1, 3, 4}, even))
	assert.False(t, Any([]int{1, 3, 5}, even))
	assert.False(t, Any(nil, even))
}

func TestRepeat(t *testing.T) {
	assert.Equal(t, [][]byte{{1}, {1}}, Repeat([]byte{1}, 2))
	assert.Empty(t, Repeat(0, 0))
}
