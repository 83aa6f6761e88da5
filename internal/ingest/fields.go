package ingest

// Accessor extracts one candidate value for a financial concept from a source
// record, returning nil when the record does not carry it.
type Accessor[T any] func(T) *float64

// Candidates is an ordered list of accessors for one concept. Upstream schemas
// vary by filing style, so a concept is looked up under several names.
type Candidates[T any] []Accessor[T]

// Lookup evaluates the accessors in order and returns the first non-nil value.
func (c Candidates[T]) Lookup(src T) *float64 {
	for _, get := range c {
		if v := get(src); v != nil {
			return v
		}
	}
	return nil
}

// Difference builds an accessor computing a - b from two concepts; nil if either is missing.
func Difference[T any](a, b Candidates[T]) Accessor[T] {
	return func(src T) *float64 {
		x, y := a.Lookup(src), b.Lookup(src)
		if x == nil || y == nil {
			return nil
		}
		v := *x - *y
		return &v
	}
}

// Sum builds an accessor computing a + b; nil if either is missing.
func Sum[T any](a, b Candidates[T]) Accessor[T] {
	return func(src T) *float64 {
		x, y := a.Lookup(src), b.Lookup(src)
		if x == nil || y == nil {
			return nil
		}
		v := *x + *y
		return &v
	}
}

// Quotient builds an accessor computing a / b; nil if either is missing or b is zero.
func Quotient[T any](a, b Candidates[T]) Accessor[T] {
	return func(src T) *float64 {
		x, y := a.Lookup(src), b.Lookup(src)
		if x == nil || y == nil || *y == 0 {
			return nil
		}
		v := *x / *y
		return &v
	}
}
