package export

import (
	"context"
	"errors"
	"sync"

	"redis_backup/src/model"
)

var errNetwork = errors.New("connection reset by peer")

// fakeStore is an in-memory Store. Keys are returned by ScanKeys in insertion order.
type fakeStore struct {
	mu      sync.Mutex
	order   []string
	types   map[string]model.KeyType
	strings map[string]string
	hashes  map[string]map[string]string
	lists   map[string][]string
	sets    map[string][]string
	zsets   map[string][]model.ScoredMember

	// failures[key] read errors are returned before the real value
	failures map[string][]error
	// deleteOnType removes the key right after it was scanned
	deleteOnType map[string]bool
	scanErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		types:        map[string]model.KeyType{},
		strings:      map[string]string{},
		hashes:       map[string]map[string]string{},
		lists:        map[string][]string{},
		sets:         map[string][]string{},
		zsets:        map[string][]model.ScoredMember{},
		failures:     map[string][]error{},
		deleteOnType: map[string]bool{},
	}
}

func (f *fakeStore) add(key string, t model.KeyType) {
	if _, ok := f.types[key]; !ok {
		f.order = append(f.order, key)
	}
	f.types[key] = t
}

func (f *fakeStore) setString(key, v string) { f.add(key, model.TypeString); f.strings[key] = v }
func (f *fakeStore) setHash(key string, v map[string]string) {
	f.add(key, model.TypeHash)
	f.hashes[key] = v
}
func (f *fakeStore) setList(key string, v ...string) { f.add(key, model.TypeList); f.lists[key] = v }
func (f *fakeStore) setSet(key string, v ...string)  { f.add(key, model.TypeSet); f.sets[key] = v }
func (f *fakeStore) setZSet(key string, v ...model.ScoredMember) {
	f.add(key, model.TypeSortedSet)
	f.zsets[key] = v
}

func (f *fakeStore) fail(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	errs := f.failures[key]
	if len(errs) == 0 {
		return nil
	}
	f.failures[key] = errs[1:]
	return errs[0]
}

type sliceIterator struct {
	keys []string
	pos  int
	err  error
}

func (it *sliceIterator) Next(ctx context.Context) bool {
	if ctx.Err() != nil {
		it.err = ctx.Err()
		return false
	}
	if it.pos >= len(it.keys) {
		return false
	}
	it.pos++
	return true
}

func (it *sliceIterator) Val() string { return it.keys[it.pos-1] }
func (it *sliceIterator) Err() error  { return it.err }

func (f *fakeStore) ScanKeys(ctx context.Context, match string, count int64) model.KeyIterator {
	keys := append([]string(nil), f.order...)
	if f.scanErr != nil {
		return &sliceIterator{err: f.scanErr}
	}
	return &sliceIterator{keys: keys}
}

func (f *fakeStore) Type(ctx context.Context, key string) (model.KeyType, error) {
	if err := f.fail(key); err != nil {
		return "", err
	}
	if f.deleteOnType[key] {
		return model.TypeNone, nil
	}
	t, ok := f.types[key]
	if !ok {
		return model.TypeNone, nil
	}
	return t, nil
}

func (f *fakeStore) GetString(ctx context.Context, key string) (string, error) {
	v, ok := f.strings[key]
	if !ok {
		return "", model.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeStore) GetHash(ctx context.Context, key string) (map[string]string, error) {
	return f.hashes[key], nil
}

func (f *fakeStore) GetList(ctx context.Context, key string) ([]string, error) {
	return f.lists[key], nil
}

func (f *fakeStore) GetSet(ctx context.Context, key string) ([]string, error) {
	return f.sets[key], nil
}

func (f *fakeStore) GetSortedSet(ctx context.Context, key string) ([]model.ScoredMember, error) {
	return f.zsets[key], nil
}
