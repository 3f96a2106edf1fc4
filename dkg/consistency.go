package dkg

import (
	"errors"
	"sort"
)

func sortIndices(s []uint32) {
	sort.Slice(s, func(a, b int) bool { return s[a] < s[b] })
}

// CheckGroupKeys compares the group keys reported by several participants.
// Every participant whose key differs from the most common one, or who
// reported none, gets a [*SelfConsistencyError]; the errors are joined in
// index order. Ties are broken in favour of the key held by the lowest
// index.
func CheckGroupKeys(keys map[uint32]*GroupKey) error {
	indices := make([]uint32, 0, len(keys))
	for i := range keys {
		indices = append(indices, i)
	}
	sortIndices(indices)

	counts := make(map[string]int)
	best := 0
	for _, i := range indices {
		k := keys[i]
		if k == nil {
			continue
		}
		enc := string(k.Bytes())
		counts[enc]++
		if counts[enc] > best {
			best = counts[enc]
		}
	}
	var majority string
	for _, i := range indices {
		if k := keys[i]; k != nil && counts[string(k.Bytes())] == best {
			majority = string(k.Bytes())
			break
		}
	}

	var errs []error
	for _, i := range indices {
		k := keys[i]
		switch {
		case k == nil:
			errs = append(errs, &SelfConsistencyError{Index: i, Reason: "no group key"})
		case string(k.Bytes()) != majority:
			errs = append(errs, &SelfConsistencyError{Index: i, Reason: "group key differs from majority"})
		}
	}
	return errors.Join(errs...)
}
