package record

import (
	"sort"
	"strings"
)

// Key is the tuple of scalars a row projects to for partitioning.
type Key []Value

func (k Key) id() string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = v.key()
	}
	return strings.Join(parts, "\x1f")
}

// Equal compares keys by value, not identity.
func (k Key) Equal(o Key) bool {
	if len(k) != len(o) {
		return false
	}
	for i := range k {
		if !k[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = v.String()
	}
	return strings.Join(parts, " | ")
}

// KeyFunc projects a row onto its partition key.
type KeyFunc func(Row) (Key, error)

// ByFields partitions on the named fields. A field that is absent or Null on a row
// is a SchemaError.
func ByFields(names ...string) KeyFunc {
	return func(r Row) (Key, error) {
		k := make(Key, len(names))
		for i, n := range names {
			v, ok := r.Get(n)
			if !ok || v.IsNull() {
				return nil, &SchemaError{Field: n, Row: -1}
			}
			k[i] = v
		}
		return k, nil
	}
}

// Group is one partition: the rows sharing Key, in input order.
type Group struct {
	Key Key
	Set *RecordSet
}

// Partition splits rs by key. Groups appear in first-occurrence order of their key.
func Partition(rs *RecordSet, key KeyFunc) ([]Group, error) {
	index := map[string]int{}
	var keys []Key
	var members [][]Row
	for ri, r := range rs.rows {
		k, err := key(r)
		if err != nil {
			if se, ok := err.(*SchemaError); ok && se.Row < 0 {
				return nil, &SchemaError{Report: se.Report, Field: se.Field, Row: ri, Reason: se.Reason}
			}
			return nil, err
		}
		id := k.id()
		gi, ok := index[id]
		if !ok {
			gi = len(keys)
			index[id] = gi
			keys = append(keys, k)
			members = append(members, nil)
		}
		members[gi] = append(members[gi], r)
	}
	out := make([]Group, len(keys))
	for i := range keys {
		out[i] = Group{Key: keys[i], Set: rs.subset(members[i])}
	}
	return out, nil
}

// SortGroups orders groups lexicographically by key, for reports that must follow
// a stable order such as states alphabetically.
func SortGroups(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Key, groups[j].Key
		for x := 0; x < len(a) && x < len(b); x++ {
			if c := Compare(a[x], b[x]); c != 0 {
				return c < 0
			}
		}
		return len(a) < len(b)
	})
}
