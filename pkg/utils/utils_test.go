package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input    string
		length   int
		expected string
	}{
		{"hello world", 5, "he..."},
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"", 5, ""},
		{"abc", 2, "ab"},
		{"abc", 3, "abc"},
	}

	for _, tt := range tests {
		result := TruncateString(tt.input, tt.length)
		if result != tt.expected {
			t.Errorf("TruncateString(%q, %d) = %q; want %q", tt.input, tt.length, result, tt.expected)
		}
	}
}

func TestShortAddress(t *testing.T) {
	if got := ShortAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"); got != "0xAb58...eC9B" {
		t.Errorf("ShortAddress = %q", got)
	}
	if got := ShortAddress("0xf42e"); got != "0xf42e" {
		t.Errorf("ShortAddress kept short input as %q", got)
	}
}

func TestAddCommas(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123", "123"},
		{"1234", "1,234"},
		{"123456", "123,456"},
		{"1234567", "1,234,567"},
		{"1234.56", "1,234.56"},
		{"-1234", "-1,234"},
		{"", ""},
	}

	for _, tt := range tests {
		result := AddCommas(tt.input)
		if result != tt.expected {
			t.Errorf("AddCommas(%q) = %q; want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		input    string
		places   int
		expected string
	}{
		{"1234.5678", 2, "1,234.57"},
		{"1234.5", 2, "1,234.50"},
		{"0", 2, "0.00"},
		{"2401.76400654", 4, "2,401.7640"},
	}

	for _, tt := range tests {
		result := FormatDecimal(decimal.RequireFromString(tt.input), tt.places)
		if result != tt.expected {
			t.Errorf("FormatDecimal(%s, %d) = %q; want %q", tt.input, tt.places, result, tt.expected)
		}
	}
}

func TestFormatHexUnits(t *testing.T) {
	tests := []struct {
		input    string
		decimals int
		places   int
		expected string
	}{
		{"0xde0b6b3a7640000", 18, 2, "1.00"},
		{"0x1dcd6500", 6, 2, "500.00"},
		{"0x3e8", 0, 0, "1,000"},
		{"", 18, 2, "0.00"},
		{"0xzz", 18, 2, "?"},
	}

	for _, tt := range tests {
		result := FormatHexUnits(tt.input, tt.decimals, tt.places)
		if result != tt.expected {
			t.Errorf("FormatHexUnits(%q, %d, %d) = %q; want %q", tt.input, tt.decimals, tt.places, result, tt.expected)
		}
	}
}
