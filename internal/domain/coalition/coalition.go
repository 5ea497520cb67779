// Package coalition provides canonical coalition keys, coalition-value
// mappings, and exhaustive subset/superset enumeration.
//
// A coalition is an unordered, duplicate-free set of contributor
// identifiers. Coalitions are canonicalized on construction (sorted,
// deduplicated) so that two coalitions with the same members compare equal
// regardless of input order.
package coalition

import (
	"sort"
	"strings"
)

// keySeparator joins members into a canonical Key. The unit separator is
// not expected to appear in contributor identifiers.
const keySeparator = "\x1f"

// Coalition is an immutable, canonical set of contributor identifiers.
// The zero value is the empty coalition.
type Coalition struct {
	members []string // sorted, unique
}

// Key is the canonical, comparable encoding of a Coalition. It is usable
// as a map key. The empty coalition encodes to the empty Key.
type Key string

// New builds a canonical Coalition from members. Duplicates are collapsed
// and ordering is normalized.
func New(members ...string) Coalition {
	if len(members) == 0 {
		return Coalition{}
	}
	uniq := make(map[string]struct{}, len(members))
	for _, m := range members {
		uniq[m] = struct{}{}
	}
	out := make([]string, 0, len(uniq))
	for m := range uniq {
		out = append(out, m)
	}
	sort.Strings(out)
	return Coalition{members: out}
}

// fromSorted wraps an already sorted, duplicate-free slice without copying.
// Callers must not retain the slice.
func fromSorted(members []string) Coalition {
	return Coalition{members: members}
}

// FromKey decodes a canonical Key back into a Coalition.
func FromKey(k Key) Coalition {
	if k == "" {
		return Coalition{}
	}
	return fromSorted(strings.Split(string(k), keySeparator))
}

// Members returns a copy of the coalition's members in canonical order.
func (c Coalition) Members() []string {
	out := make([]string, len(c.members))
	copy(out, c.members)
	return out
}

// Size returns the number of members.
func (c Coalition) Size() int {
	return len(c.members)
}

// IsEmpty reports whether the coalition has no members.
func (c Coalition) IsEmpty() bool {
	return len(c.members) == 0
}

// Contains reports whether id is a member of the coalition.
func (c Coalition) Contains(id string) bool {
	i := sort.SearchStrings(c.members, id)
	return i < len(c.members) && c.members[i] == id
}

// ContainsAll reports whether every member of other is also a member of c.
func (c Coalition) ContainsAll(other Coalition) bool {
	for _, m := range other.members {
		if !c.Contains(m) {
			return false
		}
	}
	return true
}

// Union returns the coalition containing the members of both c and other.
func (c Coalition) Union(other Coalition) Coalition {
	if other.IsEmpty() {
		return c
	}
	if c.IsEmpty() {
		return other
	}
	merged := make([]string, 0, len(c.members)+len(other.members))
	i, j := 0, 0
	for i < len(c.members) && j < len(other.members) {
		switch {
		case c.members[i] < other.members[j]:
			merged = append(merged, c.members[i])
			i++
		case c.members[i] > other.members[j]:
			merged = append(merged, other.members[j])
			j++
		default:
			merged = append(merged, c.members[i])
			i++
			j++
		}
	}
	merged = append(merged, c.members[i:]...)
	merged = append(merged, other.members[j:]...)
	return fromSorted(merged)
}

// With returns the coalition with id added. Returns c unchanged when id is
// already a member.
func (c Coalition) With(id string) Coalition {
	i := sort.SearchStrings(c.members, id)
	if i < len(c.members) && c.members[i] == id {
		return c
	}
	out := make([]string, 0, len(c.members)+1)
	out = append(out, c.members[:i]...)
	out = append(out, id)
	out = append(out, c.members[i:]...)
	return fromSorted(out)
}

// Without returns the coalition with id removed. Returns c unchanged when
// id is not a member.
func (c Coalition) Without(id string) Coalition {
	i := sort.SearchStrings(c.members, id)
	if i >= len(c.members) || c.members[i] != id {
		return c
	}
	out := make([]string, 0, len(c.members)-1)
	out = append(out, c.members[:i]...)
	out = append(out, c.members[i+1:]...)
	return fromSorted(out)
}

// Equal reports whether c and other have exactly the same members.
func (c Coalition) Equal(other Coalition) bool {
	if len(c.members) != len(other.members) {
		return false
	}
	for i := range c.members {
		if c.members[i] != other.members[i] {
			return false
		}
	}
	return true
}

// Key returns the canonical encoding of the coalition.
func (c Coalition) Key() Key {
	return Key(strings.Join(c.members, keySeparator))
}

// String renders the coalition for logs and error messages.
func (c Coalition) String() string {
	return "{" + strings.Join(c.members, ",") + "}"
}

// ValueMap maps canonical coalition keys to the numeric value that
// coalition can jointly achieve (a sampled characteristic function).
// The mapping need not be total over all subsets of the universe.
type ValueMap map[Key]float64

// Set records the value for a coalition under its canonical key.
func (v ValueMap) Set(c Coalition, value float64) {
	v[c.Key()] = value
}

// Lookup returns the value recorded for a coalition and whether one exists.
func (v ValueMap) Lookup(c Coalition) (float64, bool) {
	value, ok := v[c.Key()]
	return value, ok
}

// Universe returns the union of all contributors appearing in any key.
// A contributor never mentioned in any key cannot be discovered here.
func (v ValueMap) Universe() Coalition {
	uniq := make(map[string]struct{})
	for k := range v {
		for _, m := range FromKey(k).members {
			uniq[m] = struct{}{}
		}
	}
	members := make([]string, 0, len(uniq))
	for m := range uniq {
		members = append(members, m)
	}
	sort.Strings(members)
	return fromSorted(members)
}
