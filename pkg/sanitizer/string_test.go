package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  Small Locker A  ", want: "Small Locker A"},
		{name: "multiple spaces between words", input: "Small    Locker", want: "Small Locker"},
		{name: "tabs and newlines", input: "Small\t\nLocker", want: "Small Locker"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "preserve special characters", input: " Café & Storage™ ", want: "Café & Storage™"},
		{name: "control characters dropped", input: "Unit\x00 B", want: "Unit B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeName(got); again != got {
				t.Errorf("NormalizeName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeSize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "5x10", want: "5x10"},
		{input: " 5 X 10 ", want: "5x10"},
		{input: "10 × 10", want: "10x10"},
		{input: "10x10 ft", want: "10x10 ft"},
		{input: "Locker", want: "Locker"},
	}

	for _, tt := range tests {
		if got := NormalizeSize(tt.input); got != tt.want {
			t.Errorf("NormalizeSize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeNotes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "  gate code 1234  ", want: "gate code 1234"},
		{input: "line one\r\nline two", want: "line one\nline two"},
		{input: "bell\a ring", want: "bell ring"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		if got := NormalizeNotes(tt.input); got != tt.want {
			t.Errorf("NormalizeNotes(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeZip(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "10001", want: "10001"},
		{input: " 10001 ", want: "10001"},
		{input: "10001-1234", want: "10001"},
		{input: "100011234", want: "10001"},
		{input: "ABCDE", want: "ABCDE"},
	}

	for _, tt := range tests {
		if got := NormalizeZip(tt.input); got != tt.want {
			t.Errorf("NormalizeZip(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
