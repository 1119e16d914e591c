package overlay

import "context"

// Item is anything identified by a stable upstream id.
type Item interface {
	ItemID() string
}

// Filter returns items whose id is not in ids, preserving order.
func Filter[T Item](items []T, ids []string) []T {
	if len(ids) == 0 {
		return items
	}
	excluded := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		excluded[id] = struct{}{}
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, skip := excluded[item.ItemID()]; !skip {
			out = append(out, item)
		}
	}
	return out
}

// CandidateWindow is the fetch size used to resolve n excluded ids.
//
// Sets never exceed [MaxHidden], so the provider maximum always covers them.
func CandidateWindow(n int) int {
	if n <= 0 {
		return 0
	}
	return MaxWindow
}

// Materialized is the outcome of [MaterializeHidden].
type Materialized[T Item] struct {
	// Hidden holds the resolved items in exclusion order.
	Hidden []T
	// Missing holds ids absent from the candidate window.
	Missing []string
	// Err is the swallowed fetch error, if any.
	Err error
}

// MaterializeHidden resolves ids into items from a single candidate window.
//
// An empty ids list performs no fetch. A failed fetch yields empty results with Err set.
func MaterializeHidden[T Item](ctx context.Context, ids []string, fetchWindow func(ctx context.Context, size int) ([]T, error)) Materialized[T] {
	res := Materialized[T]{Hidden: []T{}, Missing: []string{}}
	if len(ids) == 0 {
		return res
	}

	window, err := fetchWindow(ctx, CandidateWindow(len(ids)))
	if err != nil {
		res.Err = err
		return res
	}

	index := make(map[string]T, len(window))
	for _, item := range window {
		index[item.ItemID()] = item
	}

	for _, id := range ids {
		if item, ok := index[id]; ok {
			res.Hidden = append(res.Hidden, item)
		} else {
			res.Missing = append(res.Missing, id)
		}
	}
	return res
}
