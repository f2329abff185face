// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pebbledb provides a kv.Engine backed by cockroachdb/pebble.
package pebbledb

import (
	"io"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"

	"github.com/encountr/enctr/kv"
)

var _ kv.Engine = (*PebbleDB)(nil)

// Options options for creating pebble instance.
type Options struct {
	CacheSize    int // MiB
	MemTableSize int // MiB
}

// PebbleDB wraps a pebble db.
type PebbleDB struct {
	db *pebble.DB
}

// New opens or creates a persistent pebble db at path.
func New(path string, opts Options) (*PebbleDB, error) {
	return open(path, opts, nil)
}

// NewMem creates a pebble db in memory.
func NewMem() (*PebbleDB, error) {
	return open("", Options{}, vfs.NewMem())
}

func open(path string, opts Options, fs vfs.FS) (*PebbleDB, error) {
	if opts.CacheSize < 16 {
		opts.CacheSize = 16
	}
	if opts.MemTableSize < 4 {
		opts.MemTableSize = 4
	}
	cache := pebble.NewCache(int64(opts.CacheSize) * 1024 * 1024)
	defer cache.Unref()

	options := &pebble.Options{
		Cache:        cache,
		MemTableSize: uint64(opts.MemTableSize) * 1024 * 1024,
	}
	if fs != nil {
		options.FS = fs
	}
	db, err := pebble.Open(path, options)
	if err != nil {
		return nil, errors.Wrap(err, "open pebble db")
	}
	return &PebbleDB{db: db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (p *PebbleDB) IsNotFound(err error) bool {
	return err == pebble.ErrNotFound
}

// Get retrieve value for given key.
func (p *PebbleDB) Get(key []byte) ([]byte, error) {
	return get(p.db, key)
}

// Has returns whether a key exists.
func (p *PebbleDB) Has(key []byte) (bool, error) {
	return has(p.db, key)
}

// Put save value for given key.
func (p *PebbleDB) Put(key, value []byte) error {
	return p.db.Set(key, value, pebble.NoSync)
}

// Delete deletes the given key and its value.
func (p *PebbleDB) Delete(key []byte) error {
	return p.db.Delete(key, pebble.NoSync)
}

// Close closes the db.
func (p *PebbleDB) Close() error {
	return p.db.Close()
}

// Snapshot returns a read-only view of the current db state.
func (p *PebbleDB) Snapshot() kv.Snapshot {
	return &snapshot{p.db.NewSnapshot()}
}

// Bulk creates a bulk putter, which commits all ops atomically on Write.
func (p *PebbleDB) Bulk() kv.Bulk {
	return &batch{p.db.NewBatch()}
}

// Iterate create a iterator by range.
func (p *PebbleDB) Iterate(r kv.Range) kv.Iterator {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: r.Start,
		UpperBound: r.Limit,
	})
	return &iterator{iter: iter, err: err}
}

// getter is implemented by both *pebble.DB and *pebble.Snapshot.
type getter interface {
	Get(key []byte) ([]byte, io.Closer, error)
}

func get(g getter, key []byte) ([]byte, error) {
	value, closer, err := g.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func has(g getter, key []byte) (bool, error) {
	_, closer, err := g.Get(key)
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	closer.Close()
	return true, nil
}

type snapshot struct {
	snap *pebble.Snapshot
}

func (s *snapshot) Get(key []byte) ([]byte, error) { return get(s.snap, key) }
func (s *snapshot) Has(key []byte) (bool, error)   { return has(s.snap, key) }
func (s *snapshot) IsNotFound(err error) bool      { return err == pebble.ErrNotFound }
func (s *snapshot) Release()                       { s.snap.Close() }

type batch struct {
	b *pebble.Batch
}

func (b *batch) Put(key, value []byte) error { return b.b.Set(key, value, nil) }
func (b *batch) Delete(key []byte) error     { return b.b.Delete(key, nil) }

func (b *batch) Write() error {
	defer b.b.Close()
	return b.b.Commit(pebble.Sync)
}

// iterator adapts pebble's positioned iterator to the Next-first kv.Iterator.
type iterator struct {
	iter    *pebble.Iterator
	started bool
	err     error
}

func (i *iterator) Next() bool {
	if i.err != nil {
		return false
	}
	if !i.started {
		i.started = true
		return i.iter.First()
	}
	return i.iter.Next()
}

func (i *iterator) Key() []byte   { return i.iter.Key() }
func (i *iterator) Value() []byte { return i.iter.Value() }

func (i *iterator) Release() {
	if i.iter != nil {
		i.iter.Close()
	}
}

func (i *iterator) Error() error {
	if i.err != nil {
		return i.err
	}
	return i.iter.Error()
}
