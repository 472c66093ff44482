package bsgs

import (
	"context"
	"math/big"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/keyhunter/bsgs/pkg/bitcoin"
	"github.com/keyhunter/bsgs/pkg/ecc"
)

// ErrInvalidRange reports a puzzle number outside [1, 256].
var ErrInvalidRange = errors.New("puzzle number must be between 1 and 256")

// Config carries the process-wide inputs, set once at startup and read-only
// afterwards.
type Config struct {
	Puzzle    int    // Puzzle number n; the key lies in [2^(n−1), 2^n − 1]
	PubKey    string // Target compressed public key, 66 lowercase hex chars
	Workers   int    // Worker count for build and search; 0 means all cores
	Verbose   bool
	TableDir  string // Directory holding the shard files; "" means cwd
	KeepTable bool   // Leave the shard files behind after the run
}

// Validate checks the configuration and normalizes defaults.
func (c *Config) Validate() error {
	if c.Puzzle < 1 || c.Puzzle > 256 {
		return errors.Wrapf(ErrInvalidRange, "got %d", c.Puzzle)
	}
	if _, err := ecc.ParsePubKey(c.PubKey); err != nil {
		return err
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.TableDir == "" {
		c.TableDir = "."
	}
	return nil
}

// Range returns the key interval [2^(n−1), 2^n − 1] for puzzle n.
func Range(puzzle int) (start, end *big.Int) {
	start = new(big.Int).Lsh(big.NewInt(1), uint(puzzle-1))
	end = new(big.Int).Lsh(big.NewInt(1), uint(puzzle))
	end.Sub(end, big.NewInt(1))
	return start, end
}

// StepCount returns the baby step count m = ⌊√(end − start)⌋ · 4, at least 1.
// The factor 4 over-provisions baby steps so the expected giant-step walk
// shrinks to about √(range)/4. Returns an error when m does not fit the
// 32-bit shard index, which also bounds the in-memory table.
func StepCount(start, end *big.Int) (uint64, error) {
	span := new(big.Int).Sub(end, start)
	m := new(big.Int).Sqrt(span)
	m.Lsh(m, 2)
	if m.Sign() == 0 {
		return 1, nil
	}
	if m.BitLen() > 32 {
		return 0, errors.Newf("puzzle range needs %s baby steps, beyond the 2^32 table limit", m)
	}
	return m.Uint64(), nil
}

// Phase identifies what the solver is currently doing.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseBuilding
	PhaseLoading
	PhaseSearching
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseBuilding:
		return "building"
	case PhaseLoading:
		return "loading"
	case PhaseSearching:
		return "searching"
	default:
		return "idle"
	}
}

// Result holds a recovered private key and derived material.
type Result struct {
	Key        *big.Int      // The private key scalar
	WIF        string        // Compressed-key wallet import format
	Address    string        // P2PKH address of the compressed public key
	GiantSteps uint64        // Giant steps probed before the hit
	Elapsed    time.Duration // Wall time for the whole run
}

// Solver orchestrates the full BSGS pipeline: shard cleanup, baby-table
// build, table load, and the giant-step search.
type Solver struct {
	cfg   Config
	start *big.Int
	end   *big.Int
	m     uint64

	phase   atomic.Int32
	builder *Builder
	search  atomic.Pointer[Search]
}

// New validates cfg and prepares a solver.
func New(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start, end := Range(cfg.Puzzle)
	m, err := StepCount(start, end)
	if err != nil {
		return nil, err
	}
	return &Solver{
		cfg:     cfg,
		start:   start,
		end:     end,
		m:       m,
		builder: NewBuilder(cfg.TableDir, cfg.Workers),
	}, nil
}

// StepCount returns the baby step count chosen for this run.
func (s *Solver) StepCount() uint64 { return s.m }

// Phase returns what the solver is doing right now. Safe to call from the
// progress goroutine while Run executes.
func (s *Solver) Phase() Phase {
	return Phase(s.phase.Load())
}

// Progress reports phase-appropriate progress: baby steps emitted during the
// build, giant steps probed during the search.
func (s *Solver) Progress() (Phase, Stats) {
	phase := s.Phase()
	if phase == PhaseBuilding {
		return phase, Stats{Steps: s.builder.Steps()}
	}
	// Loading, searching, or already finished: the search stats are the
	// interesting ones once a search exists.
	if sr := s.search.Load(); sr != nil {
		return phase, sr.Stats()
	}
	return phase, Stats{}
}

// Run executes the pipeline and returns the recovered key, or ErrNotFound if
// the range is exhausted. Shard files are removed afterwards unless the
// configuration keeps them.
func (s *Solver) Run(ctx context.Context, onEvent func(format string, args ...any)) (*Result, error) {
	if onEvent == nil {
		onEvent = func(string, ...any) {}
	}
	started := time.Now()

	s.phase.Store(int32(PhaseBuilding))
	onEvent("generating %d baby steps", s.m)
	parts, entries, err := s.builder.Build(s.m)
	if err != nil {
		return nil, err
	}
	onEvent("generated %d compressed parts (%d entries)", parts, entries)

	s.phase.Store(int32(PhaseLoading))
	var onPart func(int, int)
	if s.cfg.Verbose {
		onPart = func(part, entries int) {
			onEvent("loaded part %d with %d entries", part, entries)
		}
	}
	table, err := LoadTable(s.cfg.TableDir, onPart)
	if err != nil {
		return nil, err
	}
	onEvent("loaded baby table with %d total entries", table.Len())

	if !s.cfg.KeepTable {
		defer func() {
			if err := DeleteShards(s.cfg.TableDir); err != nil {
				onEvent("shard cleanup failed: %v", err)
			}
		}()
	}

	s.phase.Store(int32(PhaseSearching))
	search := NewSearch(table, s.cfg.PubKey, s.start, s.end, s.m, s.cfg.Workers)
	s.search.Store(search)
	onEvent("starting giant-step search")

	key, err := search.Run(ctx)
	s.phase.Store(int32(PhaseIdle))
	if err != nil {
		return nil, err
	}

	priv, pub, err := bitcoin.KeyPairFromScalar(key)
	if err != nil {
		return nil, err
	}
	return &Result{
		Key:        key,
		WIF:        bitcoin.PrivateKeyToWIF(priv),
		Address:    bitcoin.P2PKHAddress(pub),
		GiantSteps: search.Stats().Steps,
		Elapsed:    time.Since(started),
	}, nil
}
