package numerator

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transdoc/internal/core/id"
	corenumerator "transdoc/internal/core/numerator"
)

func TestMemory_Sequential(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	key := corenumerator.Key{Kind: corenumerator.KindPrimary, CarrierID: id.New()}

	prev, err := m.IncrementBy(ctx, key, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), prev)

	prev, err = m.IncrementBy(ctx, key, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), prev)

	// other kind, same carrier: independent counter
	other := corenumerator.Key{Kind: corenumerator.KindManifest, CarrierID: key.CarrierID}
	prev, err = m.IncrementBy(ctx, other, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(9), prev)
}

func TestMemory_Concurrent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	key := corenumerator.Key{Kind: corenumerator.KindPrimary, CarrierID: id.New()}

	const workers, batch = 32, 7
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen []int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev, err := m.IncrementBy(ctx, key, 100, batch)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			for v := prev + 1; v <= prev+batch; v++ {
				seen = append(seen, v)
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*batch)
	sort.Slice(seen, func(i, j int) bool { return seen[i] < seen[j] })
	for i, v := range seen {
		assert.Equal(t, int64(100+i), v)
	}
}

func TestMemory_CurrentAndRebase(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	key := corenumerator.Key{Kind: corenumerator.KindPrimary, CarrierID: id.New()}

	_, ok, err := m.Current(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	v, err := m.Rebase(ctx, key, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(40), v)

	v, err = m.Rebase(ctx, key, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(40), v)

	prev, err := m.IncrementBy(ctx, key, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(40), prev)
}

func TestMemory_CancelledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	key := corenumerator.Key{Kind: corenumerator.KindPrimary, CarrierID: id.New()}

	_, err := m.IncrementBy(ctx, key, 1, 1)
	require.Error(t, err)

	_, ok, _ := m.Current(context.Background(), key)
	assert.False(t, ok)
}
