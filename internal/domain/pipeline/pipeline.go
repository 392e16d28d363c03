// Package pipeline provides engine-agnostic aggregation stages. Stages are
// stateless functions over iter.Seq or slices and compose into the report
// pipelines of the analytics package.
package pipeline

import (
	"context"
	"errors"
	"iter"
	"slices"
)

var errStopScan = errors.New("scan stopped by consumer")

// ScanFunc streams records into fn until fn returns an error.
type ScanFunc[T any] func(ctx context.Context, fn func(T) error) error

// Source is a single-use sequence backed by a store scan.
type Source[T any] struct {
	ctx  context.Context
	scan ScanFunc[T]
	err  error
}

// FromScan adapts a callback scan into a Source. The scan runs when the
// sequence is ranged over; its error is available from Err afterwards.
func FromScan[T any](ctx context.Context, scan ScanFunc[T]) *Source[T] {
	return &Source[T]{ctx: ctx, scan: scan}
}

// Seq returns the sequence view of the scan.
func (s *Source[T]) Seq() iter.Seq[T] {
	return func(yield func(T) bool) {
		err := s.scan(s.ctx, func(v T) error {
			if !yield(v) {
				return errStopScan
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStopScan) {
			s.err = err
		}
	}
}

// Err reports the scan failure, if any.
func (s *Source[T]) Err() error {
	return s.err
}

// Index builds a lookup map keyed by key. Later duplicates win.
func Index[K comparable, V any](seq iter.Seq[V], key func(V) K) map[K]V {
	out := make(map[K]V)
	for v := range seq {
		out[key(v)] = v
	}
	return out
}

// Join is an inner hash join of seq against index. Records whose key is
// missing from index are dropped.
func Join[L any, K comparable, R any, O any](seq iter.Seq[L], index map[K]R, key func(L) K, merge func(L, R) O) iter.Seq[O] {
	return func(yield func(O) bool) {
		for l := range seq {
			r, ok := index[key(l)]
			if !ok {
				continue
			}
			if !yield(merge(l, r)) {
				return
			}
		}
	}
}

// RoleFlatten emits one record per role projection of every input record,
// i.e. the union of the role-projected record sets.
func RoleFlatten[T any, P any](seq iter.Seq[T], roles ...func(T) P) iter.Seq[P] {
	return func(yield func(P) bool) {
		for v := range seq {
			for _, role := range roles {
				if !yield(role(v)) {
					return
				}
			}
		}
	}
}

// Group is one output group of GroupAggregate.
type Group[K comparable, A any] struct {
	Key K
	Acc A
}

// GroupAggregate folds seq into per-key accumulators. Groups come back in
// first-seen order.
func GroupAggregate[T any, K comparable, A any](seq iter.Seq[T], key func(T) K, fold func(A, T) A) []Group[K, A] {
	pos := make(map[K]int)
	var groups []Group[K, A]
	for v := range seq {
		k := key(v)
		i, ok := pos[k]
		if !ok {
			i = len(groups)
			pos[k] = i
			var zero A
			groups = append(groups, Group[K, A]{Key: k, Acc: zero})
		}
		groups[i].Acc = fold(groups[i].Acc, v)
	}
	return groups
}

// Filter keeps the records for which keep returns true.
func Filter[T any](seq iter.Seq[T], keep func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if keep(v) && !yield(v) {
				return
			}
		}
	}
}

// Map projects every record.
func Map[T any, O any](seq iter.Seq[T], fn func(T) O) iter.Seq[O] {
	return func(yield func(O) bool) {
		for v := range seq {
			if !yield(fn(v)) {
				return
			}
		}
	}
}

// SortBy sorts items in place with a stable sort and returns them.
func SortBy[T any](items []T, cmp func(a, b T) int) []T {
	slices.SortStableFunc(items, cmp)
	return items
}

// Limit truncates items to n. n <= 0 yields an empty, non-nil slice.
func Limit[T any](items []T, n int) []T {
	if n <= 0 {
		return []T{}
	}
	if n >= len(items) {
		return items
	}
	return items[:n]
}
