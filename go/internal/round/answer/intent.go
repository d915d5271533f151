package answer

import "fmt"

// IntentKind is the kind of input delivered by an input surface.
type IntentKind int

const (
	IntentDigit IntentKind = iota + 1
	IntentBackspace
	IntentSubmit
)

func (k IntentKind) String() string {
	switch k {
	case IntentDigit:
		return "digit"
	case IntentBackspace:
		return "backspace"
	case IntentSubmit:
		return "submit"
	default:
		return fmt.Sprintf("intent(%d)", int(k))
	}
}

// Intent is one device-agnostic input event.
type Intent struct {
	Kind  IntentKind
	Digit byte
}

// Digit builds a digit intent.
func Digit(d byte) Intent { return Intent{Kind: IntentDigit, Digit: d} }

// Backspace builds a backspace intent.
func Backspace() Intent { return Intent{Kind: IntentBackspace} }

// Submit builds a submit intent.
func Submit() Intent { return Intent{Kind: IntentSubmit} }

// KeyIntent maps a key name as reported by a keyboard or numpad to an intent.
// Keys other than 0-9, Backspace and Enter are ignored.
func KeyIntent(key string) (Intent, bool) {
	switch key {
	case "Backspace":
		return Backspace(), true
	case "Enter":
		return Submit(), true
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return Digit(key[0]), true
	}
	return Intent{}, false
}

// Apply feeds a digit or backspace intent into the buffer. Submit intents are
// left to the caller, which owns what an answer means.
func (b *Buffer) Apply(in Intent) bool {
	switch in.Kind {
	case IntentDigit:
		return b.AppendDigit(in.Digit)
	case IntentBackspace:
		return b.Backspace()
	default:
		return false
	}
}
