package mempool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/flightmem/es/alloc"
)

func TestPool_GetPutRoundTrip(t *testing.T) {
	p, err := New(make([]byte, 4096), nil)
	require.NoError(t, err)
	require.True(t, p.Locked())

	b, err := p.GetBuf(100)
	require.NoError(t, err)
	require.False(t, b.IsZero())

	data, err := p.Bytes(b)
	require.NoError(t, err)
	require.Len(t, data, 100)
	require.Equal(t, 100, cap(data), "view cannot be resliced past the request")
	copy(data, "payload")

	size, err := p.BufInfo(b)
	require.NoError(t, err)
	require.Equal(t, 100, size)
	require.Equal(t, 1, p.Stats().Outstanding)

	size, err = p.PutBuf(b)
	require.NoError(t, err)
	require.Equal(t, 100, size)
	require.Zero(t, p.Stats().Outstanding)

	again, err := p.GetBuf(120)
	require.NoError(t, err)
	require.Equal(t, b.off, again.off, "same bucket recycles the block")
}

func TestPool_CustomBlockSizes(t *testing.T) {
	p, err := New(make([]byte, 1024), &Options{BlockSizes: []uint32{32, 64}})
	require.NoError(t, err)
	require.False(t, p.Locked())

	_, err = p.GetBuf(65)
	require.ErrorIs(t, err, alloc.ErrInvalidSize)
	_, err = p.GetBuf(0)
	require.ErrorIs(t, err, alloc.ErrInvalidSize)
	_, err = p.GetBuf(-4)
	require.ErrorIs(t, err, alloc.ErrInvalidSize)

	s := p.Stats()
	require.Len(t, s.Buckets, 2)
	require.Equal(t, uint32(1024), s.PoolSize)
}

func TestPool_RejectsForeignAndStaleBuffers(t *testing.T) {
	p1, _ := New(make([]byte, 1024), nil)
	p2, _ := New(make([]byte, 1024), nil)

	b, err := p1.GetBuf(8)
	require.NoError(t, err)

	_, err = p2.PutBuf(b)
	require.ErrorIs(t, err, ErrInvalidHandle)
	_, err = p2.Bytes(b)
	require.ErrorIs(t, err, ErrInvalidHandle)
	_, err = p1.PutBuf(Buffer{})
	require.ErrorIs(t, err, ErrInvalidHandle)

	_, err = p1.PutBuf(b)
	require.NoError(t, err)
	_, err = p1.PutBuf(b)
	require.ErrorIs(t, err, alloc.ErrBlockInvalid)
	_, err = p1.Bytes(b)
	require.ErrorIs(t, err, alloc.ErrBlockInvalid)
	require.Zero(t, p1.Stats().Outstanding)
}

func TestPool_Exhaustion(t *testing.T) {
	p, err := New(make([]byte, 256), &Options{BlockSizes: []uint32{48}})
	require.NoError(t, err)

	var got []Buffer
	for {
		b, err := p.GetBuf(48)
		if err != nil {
			require.ErrorIs(t, err, alloc.ErrNoSpace)
			break
		}
		got = append(got, b)
	}
	require.Len(t, got, 256/(alloc.DescriptorSize+48))
	require.NoError(t, p.Validate())
}

func TestPool_ConcurrentUse(t *testing.T) {
	p, err := New(make([]byte, 64*1024), nil)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				b, err := p.GetBuf(1 + (w*37+i)%500)
				if err != nil {
					errs <- err
					return
				}
				data, err := p.Bytes(b)
				if err != nil {
					errs <- err
					return
				}
				data[0] = byte(w)
				if _, err := p.PutBuf(b); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	s := p.Stats()
	require.Zero(t, s.Outstanding)
	require.Zero(t, s.ValidationErrors)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(make([]byte, 1024), &Options{Alignment: 3})
	require.ErrorIs(t, err, alloc.ErrInvalidArgument)

	_, err = New(make([]byte, 8), nil)
	require.ErrorIs(t, err, alloc.ErrInvalidArgument)

	var nilPool *Pool
	require.ErrorIs(t, nilPool.Validate(), ErrInvalidHandle)
}
