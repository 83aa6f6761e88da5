package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type record map[string]*float64

func key(name string) Accessor[record] {
	return func(r record) *float64 { return r[name] }
}

func TestCandidatesFirstPresentWins(t *testing.T) {
	revenue := Candidates[record]{key("revenues"), key("total_revenue"), key("revenue")}

	assert.Equal(t, 10.0, *revenue.Lookup(record{"revenues": ptr(10), "revenue": ptr(30)}))
	assert.Equal(t, 20.0, *revenue.Lookup(record{"revenues": nil, "total_revenue": ptr(20)}))
	assert.Equal(t, 30.0, *revenue.Lookup(record{"revenue": ptr(30)}))
	assert.Nil(t, revenue.Lookup(record{"sales": ptr(1)}))
}

func TestDerivedAccessors(t *testing.T) {
	a := Candidates[record]{key("a")}
	b := Candidates[record]{key("b")}

	r := record{"a": ptr(9), "b": ptr(3)}
	assert.Equal(t, 6.0, *Difference(a, b)(r))
	assert.Equal(t, 12.0, *Sum(a, b)(r))
	assert.Equal(t, 3.0, *Quotient(a, b)(r))

	assert.Nil(t, Difference(a, b)(record{"a": ptr(1)}))
	assert.Nil(t, Quotient(a, b)(record{"a": ptr(1), "b": ptr(0)}))
}

func TestKindDefaultsToUpstream(t *testing.T) {
	assert.Equal(t, ErrUpstream, Kind(assert.AnError))
	assert.Equal(t, ErrNotConfigured, Kind(ErrNotConfigured))
}
