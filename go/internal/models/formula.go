package models

import "strconv"

// HiddenPosition identifies which value of a formula the player must find.
type HiddenPosition string

const (
	HiddenFactorA HiddenPosition = "A"
	HiddenFactorB HiddenPosition = "B"
	HiddenProduct HiddenPosition = "C"
)

// HiddenPositions lists every position in display order.
var HiddenPositions = [...]HiddenPosition{HiddenFactorA, HiddenFactorB, HiddenProduct}

// Formula is one multiplication fact with exactly one value hidden.
// It is generated once per round and never mutated.
type Formula struct {
	FactorA        int            `json:"factor_a"`
	FactorB        int            `json:"factor_b"`
	Product        int            `json:"product"`
	HiddenPosition HiddenPosition `json:"hidden_position"`
}

// NewFormula builds a self-consistent formula.
func NewFormula(a, b int, hidden HiddenPosition) Formula {
	return Formula{FactorA: a, FactorB: b, Product: a * b, HiddenPosition: hidden}
}

// Value returns the generated value at pos.
func (f Formula) Value(pos HiddenPosition) int {
	switch pos {
	case HiddenFactorA:
		return f.FactorA
	case HiddenFactorB:
		return f.FactorB
	default:
		return f.Product
	}
}

// HiddenValue is the answer the player is expected to give.
func (f Formula) HiddenValue() int {
	return f.Value(f.HiddenPosition)
}

// IsHidden reports whether pos is the hidden slot.
func (f Formula) IsHidden(pos HiddenPosition) bool {
	return f.HiddenPosition == pos
}

// Valid reports whether the product matches the factors and the hidden slot is known.
func (f Formula) Valid() bool {
	if f.FactorA*f.FactorB != f.Product {
		return false
	}
	switch f.HiddenPosition {
	case HiddenFactorA, HiddenFactorB, HiddenProduct:
		return true
	default:
		return false
	}
}

// String renders the formula with the hidden slot as "?".
func (f Formula) String() string {
	slot := func(pos HiddenPosition) string {
		if f.IsHidden(pos) {
			return "?"
		}
		return strconv.Itoa(f.Value(pos))
	}
	return slot(HiddenFactorA) + " × " + slot(HiddenFactorB) + " = " + slot(HiddenProduct)
}
