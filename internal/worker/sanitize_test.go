package worker

import (
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Clean", "Pokemon Trainer", "Pokemon Trainer"},
		{"Surrounding space", "  Fox ", "Fox"},
		{"Tab inside", "Mr.\tGame & Watch", "Mr. Game & Watch"},
		{"Newline", "Pyra\nMythra", "Pyra Mythra"},
		{"Null byte", "Sheik\x00", "Sheik"},
		{"Bell and DEL", "Lu\x07ca\x7fs", "Lucas"},
		{"Unicode kept", "Pokémon Trainer", "Pokémon Trainer"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeName(tt.input)
			if got != tt.expected {
				t.Errorf("sanitizeName(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func BenchmarkSanitizeName(b *testing.B) {
	input := "Mr.\tGame & Watch\x00"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sanitizeName(input)
	}
}
