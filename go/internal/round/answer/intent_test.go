package answer

import "testing"

func TestKeyIntent(t *testing.T) {
	tests := []struct {
		key    string
		want   Intent
		wantOK bool
	}{
		{key: "0", want: Digit('0'), wantOK: true},
		{key: "9", want: Digit('9'), wantOK: true},
		{key: "Backspace", want: Backspace(), wantOK: true},
		{key: "Enter", want: Submit(), wantOK: true},
		{key: "a"},
		{key: "12"},
		{key: "Escape"},
		{key: ""},
	}

	for _, tt := range tests {
		got, ok := KeyIntent(tt.key)
		if ok != tt.wantOK || got != tt.want {
			t.Fatalf("KeyIntent(%q) = %+v, %v; want %+v, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}

// A keypad tap stream and a keyboard key stream with the same sequence must
// leave the buffer in the same state.
func TestSurfacesProduceIdenticalState(t *testing.T) {
	keys := []string{"0", "4", "5", "Backspace", "2", "7", "3", "Escape"}

	keyboard := NewBuffer(3)
	for _, k := range keys {
		if in, ok := KeyIntent(k); ok {
			keyboard.Apply(in)
		}
	}

	taps := []Intent{Digit('0'), Digit('4'), Digit('5'), Backspace(), Digit('2'), Digit('7'), Digit('3')}
	keypad := NewBuffer(3)
	for _, in := range taps {
		keypad.Apply(in)
	}

	if keyboard.String() != keypad.String() {
		t.Fatalf("keyboard %q != keypad %q", keyboard.String(), keypad.String())
	}
	if keyboard.String() != "427" {
		t.Fatalf("buffer = %q, want 427", keyboard.String())
	}
}

func TestApplyIgnoresSubmit(t *testing.T) {
	b := NewBuffer(3)
	b.AppendDigit('5')
	if b.Apply(Submit()) {
		t.Fatal("apply consumed a submit intent")
	}
	if b.String() != "5" {
		t.Fatalf("buffer = %q, want 5", b.String())
	}
}
