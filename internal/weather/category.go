package weather

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category identifies one of the independently-aged data groups the station
// tracks. Each category is fetched, persisted and invalidated on its own;
// fetching one never implicitly refreshes another.
type Category uint8

const (
	CategoryCurrent Category = 1 << iota
	CategoryDaily
	CategoryHourlyForecast
	CategoryHistory
)

// Categories lists every category in a fixed order. Classification and merge
// code ranges over this slice so that adding a fifth category fails loudly in
// tests rather than silently skipping a branch.
var Categories = []Category{
	CategoryCurrent,
	CategoryDaily,
	CategoryHourlyForecast,
	CategoryHistory,
}

func (c Category) String() string {
	switch c {
	case CategoryCurrent:
		return "current"
	case CategoryDaily:
		return "daily"
	case CategoryHourlyForecast:
		return "hourly-forecast"
	case CategoryHistory:
		return "history"
	}
	return "unknown"
}

// CategorySet is a small set of categories backed by a bitmask. The zero
// value is the empty set.
type CategorySet uint8

// AllCategories returns the set containing every known category.
func AllCategories() CategorySet {
	var s CategorySet
	for _, c := range Categories {
		s.Add(c)
	}
	return s
}

func (s CategorySet) Has(c Category) bool { return uint8(s)&uint8(c) != 0 }

func (s *CategorySet) Add(cs ...Category) {
	for _, c := range cs {
		*s |= CategorySet(c)
	}
}

func (s *CategorySet) Remove(cs ...Category) {
	for _, c := range cs {
		*s &^= CategorySet(c)
	}
}

// Intersect returns the categories present in both sets.
func (s CategorySet) Intersect(other CategorySet) CategorySet { return s & other }

func (s CategorySet) Empty() bool { return s == 0 }

// Slice returns the members of the set in the canonical Categories order.
func (s CategorySet) Slice() []Category {
	var out []Category
	for _, c := range Categories {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s CategorySet) String() string {
	if s.Empty() {
		return "none"
	}
	names := make([]string, 0, len(Categories))
	for _, c := range s.Slice() {
		names = append(names, c.String())
	}
	return strings.Join(names, "|")
}

// MarshalJSON renders the set as an array of category names, which is what
// the status API exposes and the file store persists.
func (s CategorySet) MarshalJSON() ([]byte, error) {
	names := []string{}
	for _, c := range s.Slice() {
		names = append(names, `"`+c.String()+`"`)
	}
	return []byte("[" + strings.Join(names, ",") + "]"), nil
}

func (s *CategorySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var out CategorySet
	for _, name := range names {
		c, ok := CategoryFromString(name)
		if !ok {
			return fmt.Errorf("unknown category %q", name)
		}
		out.Add(c)
	}
	*s = out
	return nil
}

// CategoryFromString is the inverse of Category.String.
func CategoryFromString(name string) (Category, bool) {
	for _, c := range Categories {
		if c.String() == name {
			return c, true
		}
	}
	return 0, false
}
