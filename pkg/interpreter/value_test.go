package interpreter

import "testing"

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		value Value
		want  bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{0.0, true},
		{1.0, true},
		{"", true},
		{"x", true},
	}

	for _, tt := range tests {
		if got := IsTruthy(tt.value); got != tt.want {
			t.Errorf("IsTruthy(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestIsEqual(t *testing.T) {
	tests := []struct {
		a, b Value
		want bool
	}{
		{nil, nil, true},
		{nil, 0.0, false},
		{nil, false, false},
		{1.0, 1.0, true},
		{1.0, 2.0, false},
		{"a", "a", true},
		{"a", "b", false},
		{true, true, true},
		{true, false, false},
		// Mismatched variants are never equal
		{1.0, "1", false},
		{0.0, false, false},
		{"true", true, false},
	}

	for _, tt := range tests {
		if got := IsEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("IsEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		// Symmetric
		if got := IsEqual(tt.b, tt.a); got != tt.want {
			t.Errorf("IsEqual(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{nil, "nil"},
		{true, "true"},
		{false, "false"},
		{7.0, "7"},
		{0.0, "0"},
		{-2.0, "-2"},
		{3.14, "3.14"},
		{0.5, "0.5"},
		{"hello", "hello"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Stringify(tt.value); got != tt.want {
			t.Errorf("Stringify(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
