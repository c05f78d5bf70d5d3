package model

import (
	"fmt"
	"math"

	"github.com/bytedance/sonic"
)

// KeyType is the type tag the store reports for a key (the TYPE reply)
type KeyType string

const (
	TypeString    KeyType = "string"
	TypeHash      KeyType = "hash"
	TypeList      KeyType = "list"
	TypeSet       KeyType = "set"
	TypeSortedSet KeyType = "zset"
	// TypeNone is reported for a key that no longer exists
	TypeNone KeyType = "none"
)

// Supported reports whether values of this type can be exported
func (t KeyType) Supported() bool {
	switch t {
	case TypeString, TypeHash, TypeList, TypeSet, TypeSortedSet:
		return true
	}
	return false
}

// ----------------------------------------------------
// ================ Values ================

// Value is one exported key's content. The set of implementations is closed:
// StringValue, HashValue, ListValue, SetValue and SortedSetValue.
type Value interface {
	Kind() KeyType
	isValue()
}

// StringValue is the content of a string key
type StringValue string

// HashValue maps field names to field values
type HashValue map[string]string

// ListValue keeps the list elements in store order
type ListValue []string

// SetValue holds the members of a set, order undefined
type SetValue []string

// ScoredMember is one sorted set entry, encoded as a [member, score] pair
type ScoredMember struct {
	Member string
	Score  float64
}

// SortedSetValue holds sorted set entries in ascending score order
type SortedSetValue []ScoredMember

func (StringValue) Kind() KeyType    { return TypeString }
func (HashValue) Kind() KeyType      { return TypeHash }
func (ListValue) Kind() KeyType      { return TypeList }
func (SetValue) Kind() KeyType       { return TypeSet }
func (SortedSetValue) Kind() KeyType { return TypeSortedSet }

func (StringValue) isValue()    {}
func (HashValue) isValue()      {}
func (ListValue) isValue()      {}
func (SetValue) isValue()       {}
func (SortedSetValue) isValue() {}

// MarshalJSON encodes the entry as a two element array.
// JSON has no infinities, so ±inf scores are written as the strings "inf" and "-inf".
func (m ScoredMember) MarshalJSON() ([]byte, error) {
	return sonic.ConfigStd.Marshal([]any{m.Member, scoreJSON(m.Score)})
}

// UnmarshalJSON accepts the [member, score] form produced by MarshalJSON
func (m *ScoredMember) UnmarshalJSON(data []byte) error {
	var pair [2]any
	if err := sonic.ConfigStd.Unmarshal(data, &pair); err != nil {
		return err
	}
	member, ok := pair[0].(string)
	if !ok {
		return &PairError{Field: "member", Got: pair[0]}
	}
	score, ok := parseScore(pair[1])
	if !ok {
		return &PairError{Field: "score", Got: pair[1]}
	}
	m.Member, m.Score = member, score
	return nil
}

func scoreJSON(score float64) any {
	switch {
	case math.IsInf(score, 1):
		return "inf"
	case math.IsInf(score, -1):
		return "-inf"
	case math.IsNaN(score):
		return "nan"
	}
	return score
}

func parseScore(v any) (float64, bool) {
	switch s := v.(type) {
	case float64:
		return s, true
	case string:
		switch s {
		case "inf", "+inf":
			return math.Inf(1), true
		case "-inf":
			return math.Inf(-1), true
		case "nan":
			return math.NaN(), true
		}
	}
	return 0, false
}

// PairError reports a malformed [member, score] pair
type PairError struct {
	Field string
	Got   any
}

func (e *PairError) Error() string {
	return fmt.Sprintf("invalid sorted set %s in pair: %v", e.Field, e.Got)
}
