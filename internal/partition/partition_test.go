package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompositionsBasic(t *testing.T) {
	got := Collect(2, 4)
	assert.ElementsMatch(t, [][]int{{1, 3}, {2, 2}, {3, 1}}, got)
}

func TestCompositionsSinglePart(t *testing.T) {
	got := Collect(1, 5)
	assert.Equal(t, [][]int{{5}}, got)
}

func TestCompositionsKGreaterThanN(t *testing.T) {
	assert.Empty(t, Collect(5, 2))
}

func TestCompositionsEarlyStop(t *testing.T) {
	count := 0
	Compositions(2, 5, func(parts []int) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestCompositionsSumInvariant(t *testing.T) {
	for _, c := range Collect(3, 7) {
		sum := 0
		for _, v := range c {
			assert.Greater(t, v, 0)
			sum += v
		}
		assert.Equal(t, 7, sum)
		assert.Len(t, c, 3)
	}
}
