package bsgs

import (
	"context"
	"encoding/hex"
	"math/big"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/cockroachdb/errors"

	"github.com/keyhunter/bsgs/pkg/ecc"
)

// ErrNotFound reports that the search exhausted the key range without a
// verified match. This can be a true negative, or the target key simply does
// not lie in the requested range.
var ErrNotFound = errors.New("private key not found in range")

// Stats holds real-time progress counters: baby steps emitted while the
// table builds, giant steps probed while the search runs. StepRate and
// ElapsedSecs are measured for the search only and are zero during the build.
type Stats struct {
	Steps       uint64  // Steps completed across all workers
	StepRate    float64 // Steps per second
	ElapsedSecs float64 // Time elapsed since the search started
}

// Search walks the giant steps S_j = P − (start + j·m)·G and probes each
// point's fingerprint against the baby table. Workers are strided: worker w
// starts at giant step w and advances by the worker count, so coverage is
// disjoint without any shared counter.
type Search struct {
	table   *Table
	target  string // 66-hex compressed target key
	start   *big.Int
	span    *big.Int // end − start
	m       uint64
	workers int

	steps     uint64 // atomic
	startTime time.Time
}

// NewSearch prepares a search of [start, end] for the key behind target,
// probing the given baby table built with m baby steps. If workers is 0 it
// defaults to the number of CPU cores.
func NewSearch(table *Table, target string, start, end *big.Int, m uint64, workers int) *Search {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Search{
		table:   table,
		target:  strings.ToLower(target),
		start:   new(big.Int).Set(start),
		span:    new(big.Int).Sub(end, start),
		m:       m,
		workers: workers,
	}
}

// Stats returns the current search statistics. Safe to call concurrently
// with Run.
func (s *Search) Stats() Stats {
	steps := atomic.LoadUint64(&s.steps)
	elapsed := time.Since(s.startTime).Seconds()

	var rate float64
	if elapsed > 0 {
		rate = float64(steps) / elapsed
	}
	return Stats{Steps: steps, StepRate: rate, ElapsedSecs: elapsed}
}

// Run executes the search and returns the recovered private key. It returns
// ErrNotFound once every worker has walked past the end of the range, or the
// context error if cancelled before a match.
func (s *Search) Run(ctx context.Context) (*big.Int, error) {
	target, err := ecc.ParsePubKey(s.target)
	if err != nil {
		return nil, err
	}

	s.startTime = time.Now()
	atomic.StoreUint64(&s.steps, 0)

	// S₀ = P − start·G shifts the unknown scalar into [0, span].
	s0 := ecc.Sub(target, ecc.ScalarBaseMult(s.start))

	mBig := new(big.Int).SetUint64(s.m)
	stride := new(big.Int).Mul(mBig, big.NewInt(int64(s.workers)))
	// Every worker subtracts W·m·G per iteration.
	strideG := ecc.ScalarBaseMult(stride)

	resultChan := make(chan *big.Int, 1)
	done := make(chan struct{})
	var closeOnce sync.Once
	var found atomic.Bool

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, w, s0, strideG, stride, &found, done, &closeOnce, resultChan)
		}()
	}
	wg.Wait()

	select {
	case k := <-resultChan:
		return k, nil
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

// worker walks the giant steps w·m, (w+W)·m, (w+2W)·m, … until it finds a
// verified key, steps past the end of the range, or observes cancellation.
func (s *Search) worker(ctx context.Context, w int, s0 ecc.Point, strideG ecc.Point, stride *big.Int,
	found *atomic.Bool, done chan struct{}, closeOnce *sync.Once, resultChan chan<- *big.Int) {

	step := new(big.Int).Mul(new(big.Int).SetUint64(s.m), big.NewInt(int64(w)))
	point := ecc.Sub(s0, ecc.ScalarBaseMult(step))

	// step may equal span exactly when the key sits at the very end of the
	// range with baby index 0, so the bound is inclusive.
	for step.Cmp(s.span) <= 0 {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		default:
		}
		if found.Load() {
			return
		}

		fp := FingerprintOf(ecc.CompressHex(point))
		for _, b := range s.table.Lookup(fp) {
			// k = start + step + b; the fingerprint is lossy, so every
			// candidate is re-verified against the full target key.
			k := new(big.Int).SetUint64(b)
			k.Add(k, step)
			k.Add(k, s.start)
			if !s.verify(k) {
				continue
			}
			found.Store(true)
			select {
			case resultChan <- k:
				closeOnce.Do(func() { close(done) })
			default:
			}
			return
		}
		atomic.AddUint64(&s.steps, 1)

		point = ecc.Sub(point, strideG)
		step.Add(step, stride)
	}
}

// verify recomputes the compressed public key for k with an independent
// secp256k1 implementation and compares it to the full target. This is the
// collision check that makes the lossy fingerprint safe.
func (s *Search) verify(k *big.Int) bool {
	if k.Sign() <= 0 || k.Cmp(ecc.N) >= 0 {
		return false
	}
	var kb [32]byte
	k.FillBytes(kb[:])
	_, pub := btcec.PrivKeyFromBytes(kb[:])
	return hex.EncodeToString(pub.SerializeCompressed()) == s.target
}
