package concurrent

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/verdant-games/gecko/pkg/sequence"
)

// Concurrent runs the action function for each element of the iterator in a
// separate goroutine and waits for all of them. The first error encountered
// is returned.
func Concurrent[T any](i *sequence.Iterator[T], action func(T) error) error {
	group := errgroup.Group{}
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		group.Go(func() error {
			return action(value)
		})
	}

	return group.Wait()
}

// ConcurrentLimit is Concurrent with at most limit goroutines in flight.
func ConcurrentLimit[T any](i *sequence.Iterator[T], limit int, action func(T) error) error {
	group := errgroup.Group{}
	group.SetLimit(limit)
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		group.Go(func() error {
			return action(value)
		})
	}

	return group.Wait()
}

// ParallelMute runs action for each element in its own goroutine, waiting for
// all of them and discarding errors.
func ParallelMute[T any](i *sequence.Iterator[T], action func(T) error) {
	wg := sync.WaitGroup{}
	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}

		wg.Add(1)
		go func(value T) {
			defer wg.Done()
			_ = action(value)
		}(value)
	}

	wg.Wait()
}
