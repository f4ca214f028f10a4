package observe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedReplaysLatest(t *testing.T) {
	f := NewFeed(1)
	f.Publish(2)

	var got []int
	f.Subscribe(func(v int) { got = append(got, v) })
	f.Publish(3)
	f.Publish(3)

	assert.Equal(t, []int{2, 3, 3}, got)
	assert.Equal(t, 3, f.Get())
}

func TestFeedNotifiesInOrder(t *testing.T) {
	f := NewFeed("")
	var order []string
	f.Subscribe(func(v string) { order = append(order, "a:"+v) })
	f.Subscribe(func(v string) { order = append(order, "b:"+v) })
	order = nil

	f.Publish("x")

	assert.Equal(t, []string{"a:x", "b:x"}, order)
}

func TestFeedCancel(t *testing.T) {
	f := NewFeed(0)
	calls := 0
	cancel := f.Subscribe(func(int) { calls++ })
	cancel()
	cancel()
	f.Publish(1)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, f.Subscribers())
}

func TestFeedCancelDuringPublish(t *testing.T) {
	f := NewFeed(0)
	calls := 0
	var cancel func()
	cancel = f.Subscribe(func(v int) {
		calls++
		if v == 1 {
			cancel()
		}
	})
	f.Subscribe(func(int) { calls++ })
	calls = 0

	f.Publish(1)
	f.Publish(2)

	assert.Equal(t, 3, calls)
}

func TestValueDedup(t *testing.T) {
	v := NewValue(5)
	var got []int
	v.Subscribe(func(n int) { got = append(got, n) })

	assert.False(t, v.Set(5))
	assert.True(t, v.Set(4))
	assert.False(t, v.Set(4))
	assert.True(t, v.Set(0))

	assert.Equal(t, []int{5, 4, 0}, got)
	assert.Equal(t, 0, v.Get())
}
