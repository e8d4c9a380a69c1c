package store

import "bytes"

// mergeIterators combines the already sorted contents of a parent store
// with the cached entries layered above it. Cached entries win on equal
// keys and deleted entries hide the parent value.
func mergeIterators(parent []Model, local []entry, reverse bool) *SliceIterator {
	before := func(a, b []byte) bool {
		c := bytes.Compare(a, b)
		if reverse {
			return c > 0
		}
		return c < 0
	}

	res := make([]Model, 0, len(parent)+len(local))
	i, j := 0, 0
	for i < len(parent) || j < len(local) {
		switch {
		case j >= len(local):
			res = append(res, parent[i])
			i++
		case i >= len(parent):
			if !local[j].deleted {
				res = append(res, Pair(local[j].key, local[j].value))
			}
			j++
		case bytes.Equal(parent[i].Key, local[j].key):
			if !local[j].deleted {
				res = append(res, Pair(local[j].key, local[j].value))
			}
			i++
			j++
		case before(parent[i].Key, local[j].key):
			res = append(res, parent[i])
			i++
		default:
			if !local[j].deleted {
				res = append(res, Pair(local[j].key, local[j].value))
			}
			j++
		}
	}
	return NewSliceIterator(res)
}
