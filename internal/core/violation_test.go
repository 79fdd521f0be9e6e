package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_AssignsSequentialIDs(t *testing.T) {
	c := NewCollector()
	c.Append(Violation{Table: "a"}, Violation{Table: "a"})
	c.Append()
	c.Append(Violation{Table: "b", ID: 99})

	vs := c.Violations()
	require.Len(t, vs, 3)
	assert.Equal(t, 3, c.Len())
	for i, v := range vs {
		assert.Equal(t, i+1, v.ID, "violation %d", i)
	}
	assert.Equal(t, "b", vs[2].Table)
}

func TestCollector_ZeroValue(t *testing.T) {
	var c Collector
	c.Append(Violation{})
	assert.Equal(t, 1, c.Violations()[0].ID)
}

func TestCollector_ViolationsIsCopy(t *testing.T) {
	c := NewCollector()
	c.Append(Violation{Table: "a"})
	vs := c.Violations()
	vs[0].Table = "changed"
	assert.Equal(t, "a", c.Violations()[0].Table)
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Append(Violation{}, Violation{})
		}()
	}
	wg.Wait()

	seen := make(map[int]bool)
	for _, v := range c.Violations() {
		require.False(t, seen[v.ID], "duplicate ID %d", v.ID)
		seen[v.ID] = true
	}
	assert.Len(t, seen, 40)
}
