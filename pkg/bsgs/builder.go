package bsgs

import (
	"math/big"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/keyhunter/bsgs/pkg/ecc"
)

// workerBufferRecords is how many records a builder worker accumulates
// locally before taking the shard lock. Large enough that lock contention is
// amortized away, small enough to keep per-worker memory near a megabyte.
const workerBufferRecords = 100_000

// Builder enumerates the baby points i·G for i ∈ [0, m) and streams their
// (fingerprint, index) records into compressed shard files.
type Builder struct {
	dir     string
	workers int

	steps uint64 // atomic: baby steps emitted so far
}

// NewBuilder returns a builder writing shards into dir. If workers is 0 it
// defaults to the number of CPU cores.
func NewBuilder(dir string, workers int) *Builder {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Builder{dir: dir, workers: workers}
}

// Steps returns the number of baby steps emitted so far. Safe to call while
// Build is running.
func (b *Builder) Steps() uint64 {
	return atomic.LoadUint64(&b.steps)
}

// Build writes the baby table for m steps and returns the number of shard
// parts produced and records written. Any pre-existing shard files are
// deleted first. On error the build aborts; no raw uncompressed shard is
// left behind by a successful run.
func (b *Builder) Build(m uint64) (parts int, entries uint64, err error) {
	if m == 0 {
		return 0, 0, errors.New("baby step count must be positive")
	}
	if m > 1<<32 {
		// The shard record stores the index in 32 bits.
		return 0, 0, errors.Newf("baby step count %d exceeds the shard index width", m)
	}

	if err := DeleteShards(b.dir); err != nil {
		return 0, 0, err
	}
	atomic.StoreUint64(&b.steps, 0)

	writer, err := newShardWriter(b.dir, rotateThreshold)
	if err != nil {
		return 0, 0, err
	}

	workers := b.workers
	if uint64(workers) > m {
		workers = int(m)
	}

	// Contiguous lanes: worker w owns [lo, hi) and walks it with one point
	// addition per step instead of a fresh scalar multiplication.
	chunk := m / uint64(workers)
	rem := m % uint64(workers)

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
		aborted  atomic.Bool
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
		aborted.Store(true)
	}

	lo := uint64(0)
	for w := 0; w < workers; w++ {
		hi := lo + chunk
		if uint64(w) < rem {
			hi++
		}
		wg.Add(1)
		go func(lo, hi uint64) {
			defer wg.Done()
			if err := b.lane(writer, &aborted, lo, hi); err != nil {
				fail(err)
			}
		}(lo, hi)
		lo = hi
	}
	wg.Wait()

	if firstErr != nil {
		writer.discard()
		return 0, 0, firstErr
	}
	if err := writer.finish(); err != nil {
		return 0, 0, err
	}
	parts, entries = writer.totals()
	return parts, entries, nil
}

// lane emits the records for baby indices [lo, hi). The first point is
// computed by scalar multiplication, every following one by adding G.
func (b *Builder) lane(writer *shardWriter, aborted *atomic.Bool, lo, hi uint64) error {
	g := ecc.G()
	p := ecc.ScalarBaseMult(new(big.Int).SetUint64(lo))

	buf := make([]byte, 0, workerBufferRecords*recordSize)
	var rec [recordSize]byte

	for i := lo; i < hi; i++ {
		if aborted.Load() {
			return nil
		}

		fp := FingerprintOf(ecc.CompressHex(p))
		encodeRecord(rec[:], fp, i)
		buf = append(buf, rec[:]...)
		atomic.AddUint64(&b.steps, 1)

		if len(buf) == cap(buf) {
			if err := writer.append(buf); err != nil {
				return err
			}
			buf = buf[:0]
		}

		p = ecc.Add(p, g)
	}

	if len(buf) > 0 {
		return writer.append(buf)
	}
	return nil
}
