package observe

// Value is a [Feed] that only notifies subscribers when the value changes.
type Value[T comparable] struct {
	Feed[T]
}

func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{Feed[T]{latest: initial}}
}

// Set publishes v if it differs from the current value and reports whether it
// did.
func (v *Value[T]) Set(value T) bool {
	if v.latest == value {
		return false
	}
	v.Publish(value)
	return true
}
