// Package reconcile computes and applies minimal diffs between a persisted
// link set and the link set a caller wants.
//
// Diffs are pure functions of (current, desired) so they can be tested without
// a database. Apply replays a Plan against a Links writer, which callers bind
// to an open transaction.
package reconcile

import (
	"context"
	"errors"
	"fmt"
)

// ErrDuplicateTarget is returned by Ordered when desired names a target twice.
var ErrDuplicateTarget = errors.New("duplicate link target")

// Entry is a link target together with its position. Position is always 0 for
// unordered link sets.
type Entry[K comparable] struct {
	Target   K
	Position int
}

// Plan is the minimal set of changes turning current into desired. Targets
// present in both with the right position appear nowhere in the plan.
type Plan[K comparable] struct {
	Deletes []K
	Inserts []Entry[K]
	Moves   []Entry[K]
}

// Len returns the number of changes in the plan.
func (p Plan[K]) Len() int {
	return len(p.Deletes) + len(p.Inserts) + len(p.Moves)
}

// Empty reports whether applying the plan would change nothing.
func (p Plan[K]) Empty() bool {
	return p.Len() == 0
}

// Ordered diffs a position-sensitive link set. Desired positions are the
// 0-based index of each target in desired.
func Ordered[K comparable](current []Entry[K], desired []K) (Plan[K], error) {
	want := make(map[K]int, len(desired))
	for i, target := range desired {
		if _, dup := want[target]; dup {
			return Plan[K]{}, fmt.Errorf("%w: %v", ErrDuplicateTarget, target)
		}
		want[target] = i
	}

	var plan Plan[K]
	have := make(map[K]int, len(current))
	for _, e := range current {
		have[e.Target] = e.Position
		pos, keep := want[e.Target]
		switch {
		case !keep:
			plan.Deletes = append(plan.Deletes, e.Target)
		case pos != e.Position:
			plan.Moves = append(plan.Moves, Entry[K]{Target: e.Target, Position: pos})
		}
	}

	for i, target := range desired {
		if _, exists := have[target]; !exists {
			plan.Inserts = append(plan.Inserts, Entry[K]{Target: target, Position: i})
		}
	}

	return plan, nil
}

// Unordered diffs a link set where order carries no meaning. Duplicates in
// desired collapse into a single link.
func Unordered[K comparable](current []K, desired []K) Plan[K] {
	want := make(map[K]struct{}, len(desired))
	for _, target := range desired {
		want[target] = struct{}{}
	}

	var plan Plan[K]
	have := make(map[K]struct{}, len(current))
	for _, target := range current {
		have[target] = struct{}{}
		if _, keep := want[target]; !keep {
			plan.Deletes = append(plan.Deletes, target)
		}
	}

	for _, target := range desired {
		if _, exists := have[target]; exists {
			continue
		}
		have[target] = struct{}{}
		plan.Inserts = append(plan.Inserts, Entry[K]{Target: target})
	}

	return plan
}

// Links writes link rows for a single owner.
type Links[K comparable] interface {
	Delete(ctx context.Context, target K) error
	Insert(ctx context.Context, target K, position int) error
	Move(ctx context.Context, target K, position int) error
}

// Apply executes plan against links: deletes first, then moves, then inserts.
// It stops at the first error; the caller's transaction is expected to roll
// back whatever was already written.
func Apply[K comparable](ctx context.Context, plan Plan[K], links Links[K]) (int, error) {
	applied := 0

	for _, target := range plan.Deletes {
		if err := links.Delete(ctx, target); err != nil {
			return applied, fmt.Errorf("failed to delete link %v: %w", target, err)
		}
		applied++
	}

	for _, e := range plan.Moves {
		if err := links.Move(ctx, e.Target, e.Position); err != nil {
			return applied, fmt.Errorf("failed to move link %v to %d: %w", e.Target, e.Position, err)
		}
		applied++
	}

	for _, e := range plan.Inserts {
		if err := links.Insert(ctx, e.Target, e.Position); err != nil {
			return applied, fmt.Errorf("failed to insert link %v: %w", e.Target, err)
		}
		applied++
	}

	return applied, nil
}
