// Package answer accumulates digit input for the round currently accepting
// answers. It does not care whether digits come from a numpad tap or a
// physical key: identical intent sequences give identical state.
package answer

import "strconv"

// DefaultMaxDigits bounds the buffer when no explicit limit is configured.
const DefaultMaxDigits = 3

// Buffer is a bounded string of decimal digits with no leading zero.
type Buffer struct {
	digits    []byte
	maxDigits int
}

// NewBuffer creates an empty buffer. maxDigits <= 0 selects DefaultMaxDigits.
func NewBuffer(maxDigits int) *Buffer {
	if maxDigits <= 0 {
		maxDigits = DefaultMaxDigits
	}
	return &Buffer{digits: make([]byte, 0, maxDigits), maxDigits: maxDigits}
}

// AppendDigit adds d and reports whether it was accepted. Non-digits, digits
// beyond the limit and a leading zero are rejected without changing state.
func (b *Buffer) AppendDigit(d byte) bool {
	if d < '0' || d > '9' {
		return false
	}
	if len(b.digits) >= b.maxDigits {
		return false
	}
	if len(b.digits) == 0 && d == '0' {
		return false
	}
	b.digits = append(b.digits, d)
	return true
}

// Backspace drops the last digit, if any.
func (b *Buffer) Backspace() bool {
	if len(b.digits) == 0 {
		return false
	}
	b.digits = b.digits[:len(b.digits)-1]
	return true
}

// Submit returns the buffered value and clears the buffer. ok is false when
// the buffer is empty; callers must not treat that as an answer.
func (b *Buffer) Submit() (value int, ok bool) {
	if len(b.digits) == 0 {
		return 0, false
	}
	// digits are validated on append and bounded, Atoi cannot fail here
	value, _ = strconv.Atoi(string(b.digits))
	b.digits = b.digits[:0]
	return value, true
}

// Reset clears the buffer unconditionally.
func (b *Buffer) Reset() {
	b.digits = b.digits[:0]
}

// String returns the typed digits.
func (b *Buffer) String() string { return string(b.digits) }

// Len is the number of typed digits.
func (b *Buffer) Len() int { return len(b.digits) }

// Empty reports whether nothing is typed.
func (b *Buffer) Empty() bool { return len(b.digits) == 0 }

// MaxDigits is the configured limit.
func (b *Buffer) MaxDigits() int { return b.maxDigits }
