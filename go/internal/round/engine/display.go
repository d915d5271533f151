package engine

import (
	"strconv"

	"github.com/mcdev12/multis/go/internal/models"
)

// Placeholder is shown in the hidden slot before anything is typed.
const Placeholder = "?"

// DisplayKind tags which source fills the hidden slot.
type DisplayKind string

const (
	DisplayPlaceholder DisplayKind = "placeholder"
	DisplayTyped       DisplayKind = "typed"
	DisplayAnswer      DisplayKind = "answer"
)

// DisplaySource is exactly one of Answer(int), Typed(string) or Placeholder.
type DisplaySource struct {
	Kind   DisplayKind `json:"kind"`
	Answer int         `json:"answer,omitempty"`
	Typed  string      `json:"typed,omitempty"`
}

// ResolveDisplay picks the hidden slot content: a submitted answer wins over
// typed digits, which win over the placeholder.
func ResolveDisplay(playerAnswer *int, typed string) DisplaySource {
	switch {
	case playerAnswer != nil:
		return DisplaySource{Kind: DisplayAnswer, Answer: *playerAnswer}
	case typed != "":
		return DisplaySource{Kind: DisplayTyped, Typed: typed}
	default:
		return DisplaySource{Kind: DisplayPlaceholder}
	}
}

// Text renders the source for the hidden slot.
func (d DisplaySource) Text() string {
	switch d.Kind {
	case DisplayAnswer:
		return strconv.Itoa(d.Answer)
	case DisplayTyped:
		return d.Typed
	default:
		return Placeholder
	}
}

// FormulaView is a formula as rendered, with the hidden slot resolved.
type FormulaView struct {
	A      string                `json:"a"`
	B      string                `json:"b"`
	C      string                `json:"c"`
	Hidden models.HiddenPosition `json:"hidden"`
	Source DisplaySource         `json:"source"`
}

// NewFormulaView renders f with src in the hidden slot.
func NewFormulaView(f models.Formula, src DisplaySource) FormulaView {
	slot := func(pos models.HiddenPosition) string {
		if f.IsHidden(pos) {
			return src.Text()
		}
		return strconv.Itoa(f.Value(pos))
	}
	return FormulaView{
		A:      slot(models.HiddenFactorA),
		B:      slot(models.HiddenFactorB),
		C:      slot(models.HiddenProduct),
		Hidden: f.HiddenPosition,
		Source: src,
	}
}
