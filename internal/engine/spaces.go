package engine

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Discrete is the integer range [0, N).
type Discrete struct {
	N int
}

func (d Discrete) Contains(v int) bool {
	return v >= 0 && v < d.N
}

func (d Discrete) Sample(rng *rand.Rand) int {
	return rng.Intn(d.N)
}

// Tuple is the product of a row range and a column range.
type Tuple struct {
	Rows Discrete
	Cols Discrete
}

func (t Tuple) Contains(p Position) bool {
	return t.Rows.Contains(p.Row) && t.Cols.Contains(p.Col)
}

// OneHot encodes p as a row one-hot followed by a column one-hot, so the
// vector has length Rows.N+Cols.N with exactly two ones.
func (t Tuple) OneHot(p Position) (*mat.VecDense, error) {
	if !t.Contains(p) {
		return nil, fmt.Errorf("%w: %s outside %dx%d grid", ErrInvalidPosition, p, t.Rows.N, t.Cols.N)
	}
	v := mat.NewVecDense(t.Rows.N+t.Cols.N, nil)
	v.SetVec(p.Row, 1)
	v.SetVec(t.Rows.N+p.Col, 1)
	return v, nil
}
