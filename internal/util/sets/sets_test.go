package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetBasics(t *testing.T) {
	s := New("b", "a")
	s.Add("c", "a")

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("z"))
	assert.Equal(t, []string{"a", "b", "c"}, Sorted(s))
}

func TestSortedEmpty(t *testing.T) {
	assert.Empty(t, Sorted(New[string]()))
}
