// Copyright 2024 The Minidis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package set implements the adaptive set value. Small all-integer sets are
// stored as a packed intset and upgrade to a hash table when a non-integer
// member arrives or the cardinality limit is crossed. The upgrade is
// one-way.
package set

import (
	"sort"
	"strconv"

	"github.com/jbreiding/minidis/internal/datastruct/dict"
	"github.com/jbreiding/minidis/internal/datastruct/intset"
)

// Encoding represents the encoding type of a set
type Encoding byte

const (
	// EncodingIntset packs integer-only members into a sorted array.
	EncodingIntset Encoding = iota
	// EncodingHashtable stores members as dict keys with null values.
	EncodingHashtable
)

// MaxIntsetEntries is the cardinality above which an intset-encoded set
// upgrades to a hash table. Configurable via set-max-intset-entries and the
// SET_MAX_ZIPLIST_ENTRIES environment variable.
var MaxIntsetEntries = 256

// Set represents a set value. Exactly one of the two representations is
// active at any time.
type Set struct {
	is *intset.IntSet
	ht *dict.Dict
}

// New creates a new empty set with intset encoding.
func New() *Set {
	return &Set{is: intset.New()}
}

// NewFromSlice creates a set holding the given members.
func NewFromSlice(members []string) *Set {
	s := New()
	for _, m := range members {
		s.Add(m)
	}
	return s
}

// Encoding returns the current encoding.
func (s *Set) Encoding() Encoding {
	if s.is != nil {
		return EncodingIntset
	}
	return EncodingHashtable
}

// parseMember accepts only the canonical decimal form, so every intset
// element formats back to the exact member string it was added as.
func parseMember(member string) (int64, bool) {
	v, err := strconv.ParseInt(member, 10, 64)
	if err != nil || strconv.FormatInt(v, 10) != member {
		return 0, false
	}
	return v, true
}

// upgrade converts the intset representation to a hash table, re-inserting
// every element as its decimal string.
func (s *Set) upgrade() {
	ht := dict.New()
	s.is.Each(func(v int64) bool {
		ht.Set(strconv.FormatInt(v, 10), nil)
		return true
	})
	s.is = nil
	s.ht = ht
}

// Add adds a member to the set. Returns the number of new members added.
func (s *Set) Add(member string) int {
	if s.is != nil {
		v, isInt := parseMember(member)
		if !isInt {
			s.upgrade()
			return s.Add(member)
		}
		if !s.is.Add(v) {
			return 0
		}
		if s.is.Len() > MaxIntsetEntries {
			s.upgrade()
		}
		return 1
	}

	if s.ht.SetNX(member, nil) {
		return 1
	}
	return 0
}

// AddMultiple adds multiple members. Returns the number of new members.
func (s *Set) AddMultiple(members []string) int {
	added := 0
	for _, m := range members {
		added += s.Add(m)
	}
	return added
}

// Remove removes a member from the set. Returns true if it was present.
func (s *Set) Remove(member string) bool {
	if s.is != nil {
		v, isInt := parseMember(member)
		if !isInt {
			return false
		}
		return s.is.Remove(v)
	}
	_, removed := s.ht.Delete(member)
	return removed
}

// RemoveMultiple removes multiple members. Returns the number removed.
func (s *Set) RemoveMultiple(members []string) int {
	removed := 0
	for _, m := range members {
		if s.Remove(m) {
			removed++
		}
	}
	return removed
}

// Contains checks if a member exists in the set
func (s *Set) Contains(member string) bool {
	if s.is != nil {
		v, isInt := parseMember(member)
		if !isInt {
			return false
		}
		return s.is.Contains(v)
	}
	return s.ht.Exists(member)
}

// Len returns the number of members in the set
func (s *Set) Len() int {
	if s.is != nil {
		return s.is.Len()
	}
	return s.ht.Len()
}

// Members returns all members of the set.
func (s *Set) Members() []string {
	members := make([]string, 0, s.Len())
	s.Each(func(m string) bool {
		members = append(members, m)
		return true
	})
	return members
}

// Each visits every member until f returns false.
func (s *Set) Each(f func(member string) bool) {
	if s.is != nil {
		s.is.Each(func(v int64) bool {
			return f(strconv.FormatInt(v, 10))
		})
		return
	}
	s.ht.Each(func(key string, _ interface{}) bool {
		return f(key)
	})
}

// RandomMember returns a random member without removing it.
func (s *Set) RandomMember() (string, bool) {
	if s.is != nil {
		v, ok := s.is.Random()
		if !ok {
			return "", false
		}
		return strconv.FormatInt(v, 10), true
	}
	key, _, ok := s.ht.RandomEntry()
	return key, ok
}

// Pop removes and returns a random member.
func (s *Set) Pop() (string, bool) {
	if s.is != nil {
		v, ok := s.is.Pop()
		if !ok {
			return "", false
		}
		return strconv.FormatInt(v, 10), true
	}
	key, _, ok := s.ht.RandomEntry()
	if !ok {
		return "", false
	}
	s.ht.Delete(key)
	return key, true
}

// newLike returns an empty set sharing s's encoding, so a structure swap
// never downgrades a hashtable-encoded set.
func (s *Set) newLike() *Set {
	if s.is != nil {
		return New()
	}
	return &Set{ht: dict.New()}
}

// PopCount removes and returns min(count, cardinality) random members.
func (s *Set) PopCount(count int) []string {
	card := s.Len()
	if count <= 0 {
		return nil
	}

	// Whole set requested: hand everything over and clear.
	if count >= card {
		members := s.Members()
		fresh := s.newLike()
		s.is, s.ht = fresh.is, fresh.ht
		return members
	}

	remaining := card - count
	if remaining*5 > count {
		// Few members leave relative to the set size; pop one by one.
		result := make([]string, 0, count)
		for i := 0; i < count; i++ {
			m, ok := s.Pop()
			if !ok {
				break
			}
			result = append(result, m)
		}
		return result
	}

	// Most members leave: cheaper to move the survivors to a new set and
	// return what stayed behind.
	survivors := s.newLike()
	for i := 0; i < remaining; i++ {
		m, ok := s.Pop()
		if !ok {
			break
		}
		survivors.Add(m)
	}
	result := s.Members()
	s.is, s.ht = survivors.is, survivors.ht
	return result
}

// RandomMembers returns count random members without removing them. A
// negative count samples |count| members with replacement; a count at or
// above the cardinality returns every member.
func (s *Set) RandomMembers(count int) []string {
	card := s.Len()

	switch {
	case count == 0:
		return nil

	case count < 0:
		result := make([]string, 0, -count)
		for i := 0; i < -count; i++ {
			m, ok := s.RandomMember()
			if !ok {
				break
			}
			result = append(result, m)
		}
		return result

	case count >= card:
		return s.Members()

	case count*3 > card:
		// Close to the full set: copy everything and evict random members
		// until only count survive.
		work := dict.New()
		s.Each(func(m string) bool {
			work.Set(m, nil)
			return true
		})
		for work.Len() > count {
			key, _, _ := work.RandomEntry()
			work.Delete(key)
		}
		return work.Keys()

	default:
		// Sample distinct members one at a time.
		seen := dict.New()
		for seen.Len() < count {
			m, ok := s.RandomMember()
			if !ok {
				break
			}
			seen.SetNX(m, nil)
		}
		return seen.Keys()
	}
}

// Copy returns a member-wise copy of the set.
func (s *Set) Copy() *Set {
	c := s.newLike()
	s.Each(func(m string) bool {
		c.Add(m)
		return true
	})
	return c
}

// Intersect returns the members common to all sets. Inputs are probed
// smallest-first so a miss in any other set stops work on a member early.
func Intersect(sets []*Set) []string {
	if len(sets) == 0 {
		return nil
	}

	sorted := make([]*Set, len(sets))
	copy(sorted, sets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Len() < sorted[j].Len()
	})

	result := []string{}
	sorted[0].Each(func(m string) bool {
		for _, other := range sorted[1:] {
			if !other.Contains(m) {
				return true
			}
		}
		result = append(result, m)
		return true
	})
	return result
}

// Union returns a fresh set holding every member of every input.
func Union(sets []*Set) *Set {
	result := New()
	for _, s := range sets {
		s.Each(func(m string) bool {
			result.Add(m)
			return true
		})
	}
	return result
}

// Diff returns the members of the first set present in none of the others.
// Two algorithms are available; the cheaper one by estimated work wins,
// with a constant-factor edge for the probing variant since it performs
// fewer per-element operations.
func Diff(sets []*Set) *Set {
	if len(sets) == 0 {
		return New()
	}

	first, others := sets[0], sets[1:]
	if len(others) == 0 {
		return first.Copy()
	}

	work1 := int64(first.Len()) * int64(len(others))
	var work2 int64
	for _, o := range others {
		work2 += int64(o.Len())
	}

	if work1/2 <= work2 {
		// Probe each member of the first set against the others, largest
		// first so common members are disqualified as early as possible.
		sorted := make([]*Set, len(others))
		copy(sorted, others)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Len() > sorted[j].Len()
		})

		result := New()
		first.Each(func(m string) bool {
			for _, o := range sorted {
				if o.Contains(m) {
					return true
				}
			}
			result.Add(m)
			return true
		})
		return result
	}

	// Copy the first set and strike out everything found elsewhere.
	result := first.Copy()
	for _, o := range others {
		o.Each(func(m string) bool {
			result.Remove(m)
			return true
		})
	}
	return result
}
