// Tracks the classes under construction on the current call chain
package factory

import (
	"context"
	"slices"
)

type inProgressKey struct{}

// enterClass returns a context recording that class is being built, or a
// cycle error when it already is.
func enterClass(ctx context.Context, class string) (context.Context, error) {
	path, _ := ctx.Value(inProgressKey{}).([]string)
	if slices.Contains(path, class) {
		return ctx, cycleError(path, class)
	}
	next := make([]string, len(path), len(path)+1)
	copy(next, path)
	next = append(next, class)
	return context.WithValue(ctx, inProgressKey{}, next), nil
}

// InProgress returns the classes being built on ctx's call chain, outermost
// first.
func InProgress(ctx context.Context) []string {
	path, _ := ctx.Value(inProgressKey{}).([]string)
	return slices.Clone(path)
}
