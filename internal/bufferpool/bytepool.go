package bufferpool

import (
	"sync"
	"sync/atomic"
)

// bytePool is the allocator backing BufferPool's no-producer-configured
// mode: when no surface producer is wired in, each fetch returns a plain
// heap allocation instead of a producer-brokered graphic slot. Buffers
// are pooled with sync.Pool to keep decode's steady-state allocation
// rate near zero.
type bytePool struct {
	pool sync.Pool

	defaultCap int

	gets    atomic.Int64
	puts    atomic.Int64
	allocs  atomic.Int64
	resizes atomic.Int64
}

// newBytePool creates a pool whose freshly-allocated buffers default to
// defaultCapacity bytes (tuned to the negotiated coded size).
func newBytePool(defaultCapacity int) *bytePool {
	bp := &bytePool{defaultCap: defaultCapacity}
	bp.pool.New = func() any {
		buf := make([]byte, 0, bp.defaultCap)
		bp.allocs.Add(1)
		return &buf
	}
	return bp
}

// get returns a buffer of exactly size bytes, reused from the pool when
// possible.
func (bp *bytePool) get(size int) []byte {
	bp.gets.Add(1)

	bufPtr := bp.pool.Get().(*[]byte)
	if cap(*bufPtr) < size {
		bp.resizes.Add(1)
		newCap := size * 2
		if newCap < bp.defaultCap {
			newCap = bp.defaultCap
		}
		*bufPtr = make([]byte, size, newCap)
	} else {
		*bufPtr = (*bufPtr)[:size]
	}
	return *bufPtr
}

// put returns buf to the pool for reuse.
func (bp *bytePool) put(buf []byte) {
	if buf == nil || cap(buf) == 0 {
		return
	}
	bp.puts.Add(1)
	buf = buf[:0]
	bp.pool.Put(&buf)
}

// byteStats mirrors the pool's cumulative counters for diagnostics.
type byteStats struct {
	Gets, Puts, Allocs, Resizes, Outstanding int64
	HitRate                                  float64
}

func (bp *bytePool) stats() byteStats {
	gets := bp.gets.Load()
	puts := bp.puts.Load()
	allocs := bp.allocs.Load()
	resizes := bp.resizes.Load()

	var hitRate float64
	if gets > 0 {
		hits := gets - allocs
		if hits < 0 {
			hits = 0
		}
		hitRate = float64(hits) / float64(gets)
	}
	return byteStats{
		Gets: gets, Puts: puts, Allocs: allocs, Resizes: resizes,
		Outstanding: gets - puts, HitRate: hitRate,
	}
}
