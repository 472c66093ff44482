package bsgs

import (
	"bufio"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/pgzip"
)

// ErrNoShards reports that no baby-table shard exists in the table directory.
var ErrNoShards = errors.New("no baby table shards found")

// LoadTable reads shard parts 1, 2, … from dir until a part is missing and
// assembles the in-memory fingerprint table. Compressed parts are preferred;
// a raw uncompressed part is accepted so interrupted test fixtures still
// load. A truncated trailing record is ignored.
//
// onPart, if non-nil, is called with the part number and its record count as
// each part finishes loading.
func LoadTable(dir string, onPart func(part int, entries int)) (*Table, error) {
	table := NewTable(0)

	for part := 1; ; part++ {
		path := shardGzPath(dir, part)
		compressed := true
		if _, err := os.Stat(path); err != nil {
			path = shardPath(dir, part)
			compressed = false
			if _, err := os.Stat(path); err != nil {
				if part == 1 {
					return nil, errors.Wrapf(ErrNoShards, "in %s", dir)
				}
				break
			}
		}

		n, err := loadPart(table, path, compressed)
		if err != nil {
			return nil, err
		}
		if onPart != nil {
			onPart(part, n)
		}
	}

	return table, nil
}

func loadPart(table *Table, path string, compressed bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "opening shard %s", path)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReaderSize(f, 1<<20)
	if compressed {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return 0, errors.Wrapf(err, "decompressing shard %s", path)
		}
		defer gz.Close()
		r = gz
	}

	var rec [recordSize]byte
	entries := 0
	for {
		_, err := io.ReadFull(r, rec[:])
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			// A short trailing record is dropped, matching the on-disk
			// contract for interrupted writes.
			break
		}
		if err != nil {
			return entries, errors.Wrapf(err, "reading shard %s", path)
		}
		fp, idx := decodeRecord(rec[:])
		table.Add(fp, idx)
		entries++
	}
	return entries, nil
}
