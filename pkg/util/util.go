package util

import (
	"context"
	"time"
)

// NewTimeoutContext detaches from the parent's cancellation while keeping
// its values, so post-commit work survives the request that spawned it.
func NewTimeoutContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), d)
}

func ConvertList[A any, B any](listA []A, convert func(A) B) []B {
	listB := make([]B, len(listA))
	for i, a := range listA {
		listB[i] = convert(a)
	}

	return listB
}
