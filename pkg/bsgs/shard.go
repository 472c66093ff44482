package bsgs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/pgzip"
)

// On-disk shard format. Each shard is a concatenation of fixed-width records:
// 8 bytes of fingerprint (ASCII hex) followed by the baby index as a
// little-endian unsigned 32-bit integer. Shards are rotated before their
// uncompressed size reaches 200 MiB and persisted gzip-compressed.
const (
	recordSize = FingerprintLen + 4

	maxShardBytes = 200 * 1024 * 1024

	// Rotation fires at 99% of the cap so the shard that triggered it still
	// fits under maxShardBytes after the final buffer lands.
	rotateThreshold = int64(float64(maxShardBytes) * 0.99)

	shardBaseName = "baby_table_part_"

	// gzip block size matching the original pigz invocation (-b 128).
	gzipBlockSize = 128 * 1024
)

func shardPath(dir string, part int) string {
	return filepath.Join(dir, fmt.Sprintf("%s%d", shardBaseName, part))
}

func shardGzPath(dir string, part int) string {
	return shardPath(dir, part) + ".gz"
}

// DeleteShards removes every shard file, compressed or raw, from dir.
// Builds call this first so a run never loads another puzzle's table.
func DeleteShards(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, shardBaseName+"*"))
	if err != nil {
		return errors.Wrap(err, "listing shard files")
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			return errors.Wrapf(err, "deleting shard %s", path)
		}
	}
	return nil
}

func encodeRecord(dst []byte, fp Fingerprint, idx uint64) {
	copy(dst, fp[:])
	binary.LittleEndian.PutUint32(dst[FingerprintLen:], uint32(idx))
}

func decodeRecord(src []byte) (Fingerprint, uint64) {
	var fp Fingerprint
	copy(fp[:], src)
	return fp, uint64(binary.LittleEndian.Uint32(src[FingerprintLen:]))
}

// shardWriter appends records to the single active shard and rotates it once
// the size threshold is crossed. All appends go through one mutex, and
// rotation only ever happens between whole-buffer appends, so records from
// different workers never straddle a shard boundary.
type shardWriter struct {
	dir       string
	threshold int64

	mu      sync.Mutex
	part    int
	file    *os.File
	written int64
	entries uint64
	parts   int
}

func newShardWriter(dir string, threshold int64) (*shardWriter, error) {
	w := &shardWriter{dir: dir, threshold: threshold, part: 1}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *shardWriter) open() error {
	f, err := os.OpenFile(shardPath(w.dir, w.part), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "opening shard %d", w.part)
	}
	w.file = f
	w.written = 0
	return nil
}

// append writes an entire buffer of encoded records to the active shard.
// len(buf) must be a multiple of recordSize.
func (w *shardWriter) append(buf []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Write(buf); err != nil {
		return errors.Wrapf(err, "writing shard %d", w.part)
	}
	w.written += int64(len(buf))
	w.entries += uint64(len(buf) / recordSize)

	if w.written >= w.threshold {
		return w.rotate()
	}
	return nil
}

// rotate closes and compresses the active shard and opens the next one.
// Caller holds w.mu.
func (w *shardWriter) rotate() error {
	if err := w.seal(); err != nil {
		return err
	}
	w.part++
	return w.open()
}

// seal closes the active shard, compresses it, and removes the raw file.
func (w *shardWriter) seal() error {
	if err := w.file.Close(); err != nil {
		return errors.Wrapf(err, "closing shard %d", w.part)
	}
	if err := compressShard(shardPath(w.dir, w.part)); err != nil {
		return err
	}
	w.parts++
	return nil
}

// finish flushes the partially filled final shard. An empty final shard is
// discarded rather than compressed.
func (w *shardWriter) finish() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written == 0 {
		path := shardPath(w.dir, w.part)
		if err := w.file.Close(); err != nil {
			return errors.Wrapf(err, "closing shard %d", w.part)
		}
		return errors.Wrapf(os.Remove(path), "removing empty shard %d", w.part)
	}
	return w.seal()
}

// discard abandons an aborted build: the active raw shard is closed and
// removed so no uncompressed shard outlives the builder.
func (w *shardWriter) discard() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.file.Close()
	os.Remove(shardPath(w.dir, w.part))
}

// totals returns the number of sealed shards and records written.
func (w *shardWriter) totals() (parts int, entries uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.parts, w.entries
}

// compressShard gzips path to path.gz with a parallel deflate writer tuned
// like the original pigz invocation (level 9, 128 KiB blocks), then removes
// the raw file.
func compressShard(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s for compression", path)
	}
	defer in.Close()

	out, err := os.OpenFile(path+".gz", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "creating %s.gz", path)
	}
	defer out.Close()

	gz, err := pgzip.NewWriterLevel(out, pgzip.BestCompression)
	if err != nil {
		return errors.Wrap(err, "compressor init")
	}
	if err := gz.SetConcurrency(gzipBlockSize, runtime.GOMAXPROCS(0)); err != nil {
		return errors.Wrap(err, "compressor concurrency")
	}
	if _, err := io.Copy(gz, in); err != nil {
		return errors.Wrapf(err, "compressing %s", path)
	}
	if err := gz.Close(); err != nil {
		return errors.Wrapf(err, "finalizing %s.gz", path)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, "closing %s.gz", path)
	}
	return errors.Wrapf(os.Remove(path), "removing raw shard %s", path)
}
