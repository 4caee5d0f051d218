package report

// Optional holds a value that may be absent from a report.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it was present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Present reports whether the value exists.
func (o Optional[T]) Present() bool {
	return o.ok
}

// OrDefault collapses the option to its value or def.
func (o Optional[T]) OrDefault(def T) T {
	if !o.ok {
		return def
	}
	return o.value
}

// Nth returns the element at index i, or None when out of range.
func Nth[T any](items []T, i int) Optional[T] {
	if i < 0 || i >= len(items) {
		return None[T]()
	}
	return Some(items[i])
}

// First returns the first element of items.
func First[T any](items []T) Optional[T] {
	return Nth(items, 0)
}

// Map applies f to a present value.
func Map[T, U any](o Optional[T], f func(T) U) Optional[U] {
	v, ok := o.Get()
	if !ok {
		return None[U]()
	}
	return Some(f(v))
}

// FlatMap applies f to a present value, keeping f's absence.
func FlatMap[T, U any](o Optional[T], f func(T) Optional[U]) Optional[U] {
	v, ok := o.Get()
	if !ok {
		return None[U]()
	}
	return f(v)
}

// NonEmpty drops empty strings.
func NonEmpty(o Optional[string]) Optional[string] {
	return FlatMap(o, func(s string) Optional[string] {
		if s == "" {
			return None[string]()
		}
		return Some(s)
	})
}
