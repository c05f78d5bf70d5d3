package export

import (
	"redis_backup/src/model"

	"github.com/bytedance/sonic"
)

// SkipReason explains why a scanned key is missing from the snapshot
type SkipReason string

const (
	// SkipVanished counts keys deleted between the scan and their read
	SkipVanished SkipReason = "vanished"
	// SkipUnsupported counts keys of a type outside string, hash, list, set and zset
	SkipUnsupported SkipReason = "unsupported"
	// SkipBinary counts keys whose name or content is not valid UTF-8 and cannot be written as JSON text
	SkipBinary SkipReason = "binary"
)

// Snapshot is the in-memory export mapping, key to value.
// It encodes to JSON as a single object with keys in sorted order.
type Snapshot struct {
	entries map[string]model.Value
	skipped map[SkipReason]int
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		entries: make(map[string]model.Value),
		skipped: make(map[SkipReason]int),
	}
}

// Put stores the value for key. A key seen twice keeps the last value.
func (s *Snapshot) Put(key string, value model.Value) {
	s.entries[key] = value
}

func (s *Snapshot) Get(key string) (model.Value, bool) {
	v, ok := s.entries[key]
	return v, ok
}

func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Skip records a key left out of the snapshot
func (s *Snapshot) Skip(reason SkipReason) {
	s.skipped[reason]++
}

// Skipped returns how many keys were left out for reason
func (s *Snapshot) Skipped(reason SkipReason) int {
	return s.skipped[reason]
}

func (s *Snapshot) MarshalJSON() ([]byte, error) {
	return sonic.ConfigStd.Marshal(s.entries)
}
