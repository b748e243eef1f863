package correction

import "sort"

// Dictionary is the set of canonical names candidates are matched against,
// longest first. The zero value is an empty dictionary.
type Dictionary struct {
	entries []string
	index   map[string]struct{}
}

// NewDictionary builds a dictionary from already canonical names. Duplicates
// and empty names are dropped; ties in length keep their input order.
func NewDictionary(names []string) Dictionary {
	d := Dictionary{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := d.index[n]; ok {
			continue
		}
		d.index[n] = struct{}{}
		d.entries = append(d.entries, n)
	}
	sort.SliceStable(d.entries, func(i, j int) bool {
		return len(d.entries[i]) > len(d.entries[j])
	})
	return d
}

// BuildDictionary keeps the normalized names occurring at least minFrequency
// times and adds the extra variants regardless of their frequency.
func BuildDictionary(normalized []string, minFrequency int, extra []string) Dictionary {
	counts := make(map[string]int, len(normalized))
	var order []string
	for _, n := range normalized {
		if n == "" {
			continue
		}
		if counts[n] == 0 {
			order = append(order, n)
		}
		counts[n]++
	}

	names := make([]string, 0, len(order)+len(extra))
	for _, n := range order {
		if counts[n] >= minFrequency {
			names = append(names, n)
		}
	}
	for _, v := range extra {
		names = append(names, Normalize(v))
	}
	return NewDictionary(names)
}

// Entries returns a copy of the names, longest first.
func (d Dictionary) Entries() []string {
	return append([]string(nil), d.entries...)
}

func (d Dictionary) Len() int { return len(d.entries) }

func (d Dictionary) Contains(name string) bool {
	_, ok := d.index[name]
	return ok
}
