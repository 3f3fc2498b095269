package sequence

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCounter struct {
	mu     sync.Mutex
	values map[string]uint64
	err    error
}

func (c *memCounter) Increment(ctx context.Context, name string, initial uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	if c.values == nil {
		c.values = map[string]uint64{}
	}
	v, ok := c.values[name]
	if ok {
		v++
	} else {
		v = initial
	}
	c.values[name] = v
	return v, nil
}

func TestGeneratorStartsAt1001(t *testing.T) {
	g := NewGenerator(&memCounter{})

	first, err := g.Next(context.Background(), PatientCounter)
	require.NoError(t, err)
	assert.Equal(t, int64(1001), first)

	second, err := g.Next(context.Background(), PatientCounter)
	require.NoError(t, err)
	assert.Equal(t, int64(1002), second)
}

func TestGeneratorCountersAreIndependent(t *testing.T) {
	g := NewGenerator(&memCounter{})

	_, err := g.Next(context.Background(), "a")
	require.NoError(t, err)
	v, err := g.Next(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), v)
}

func TestGeneratorConcurrentValuesAreUnique(t *testing.T) {
	g := NewGenerator(&memCounter{})

	const n = 50
	values := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := g.Next(context.Background(), PatientCounter)
			assert.NoError(t, err)
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := map[int64]bool{}
	for v := range values {
		assert.False(t, seen[v], "duplicate value %d", v)
		seen[v] = true
	}
	for v := int64(1001); v < 1001+n; v++ {
		assert.True(t, seen[v], "missing value %d", v)
	}
}

func TestGeneratorStorageFailure(t *testing.T) {
	cause := errors.New("connection refused")
	g := NewGenerator(&memCounter{err: cause})

	_, err := g.Next(context.Background(), PatientCounter)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
}
