package dispatcher

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diffsec/codesearchd/internal/projectindexer"
)

func TestGetOrCreate_ConcurrentCallsCreateExactlyOne(t *testing.T) {
	dir := t.TempDir()
	var creations int32

	d := New(func(root string) (*projectindexer.Indexer, error) {
		atomic.AddInt32(&creations, 1)
		return &projectindexer.Indexer{}, nil
	})

	const callers = 10
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := d.GetOrCreate(dir)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, creations)
	require.Len(t, d.Roots(), 1)
}

func TestGetOrCreate_PathCanonicalization(t *testing.T) {
	dir := t.TempDir()
	var creations int32

	d := New(func(root string) (*projectindexer.Indexer, error) {
		atomic.AddInt32(&creations, 1)
		return &projectindexer.Indexer{}, nil
	})

	h1, err := d.GetOrCreate(dir)
	require.NoError(t, err)
	h2, err := d.GetOrCreate(dir + "/.")
	require.NoError(t, err)

	require.Same(t, h1, h2)
	require.EqualValues(t, 1, creations)
}

func TestGetOrCreate_FailedCreationIsNotCached(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	d := New(func(root string) (*projectindexer.Indexer, error) {
		calls++
		if calls == 1 {
			return nil, assertError{}
		}
		return &projectindexer.Indexer{}, nil
	})

	_, err := d.GetOrCreate(dir)
	require.Error(t, err)

	idx, err := d.GetOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, idx)
	require.Equal(t, 2, calls)
}

type assertError struct{}

func (assertError) Error() string { return "factory failed" }
