// Package observe holds the latest value of a piece of state and notifies
// subscribers synchronously whenever it is published.
package observe

import "slices"

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Feed publishes every value it is given. New subscribers immediately receive
// the latest value.
//
// Feed is not safe for concurrent use.
type Feed[T any] struct {
	latest T
	nextId int
	subs   []subscriber[T]
}

func NewFeed[T any](initial T) *Feed[T] {
	return &Feed[T]{latest: initial}
}

func (f *Feed[T]) Get() T {
	return f.latest
}

// Publish stores v and calls every subscriber in subscription order.
func (f *Feed[T]) Publish(v T) {
	f.latest = v
	// a subscriber may cancel itself (or others) while being notified
	for _, s := range slices.Clone(f.subs) {
		s.fn(v)
	}
}

// Subscribe registers fn and calls it with the latest value before returning.
// The returned function removes the subscription; calling it twice is a no-op.
func (f *Feed[T]) Subscribe(fn func(T)) (cancel func()) {
	id := f.nextId
	f.nextId++
	f.subs = append(f.subs, subscriber[T]{id, fn})
	fn(f.latest)
	return func() {
		f.subs = slices.DeleteFunc(f.subs, func(s subscriber[T]) bool {
			return s.id == id
		})
	}
}

func (f *Feed[T]) Subscribers() int {
	return len(f.subs)
}

// Observable is the read-only side of a [Feed] or a [Value].
type Observable[T any] interface {
	Get() T
	Subscribe(fn func(T)) (cancel func())
}
