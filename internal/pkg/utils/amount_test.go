package utils

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"move_portfolio/internal/domain/entity"
)

func TestFormatRawAmount(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		decimals uint8
		want     string
	}{
		{"whole number", "100000000", 8, "1"},
		{"fraction trimmed", "1234500000000000000", 18, "1.2345"},
		{"sub one", "12345", 8, "0.00012345"},
		{"zero", "0", 8, "0"},
		{"zero decimals", "42", 0, "42"},
		{"no trailing zeros", "1500000000", 8, "15"},
		{"single base unit", "1", 8, "0.00000001"},
		{"huge value stays exact", "123456789012345678901234567890", 8, "1234567890123456789012.3456789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatRawAmount(tt.raw, tt.decimals)
			if err != nil {
				t.Fatalf("FormatRawAmount(%q, %d) error: %v", tt.raw, tt.decimals, err)
			}
			if got != tt.want {
				t.Errorf("FormatRawAmount(%q, %d) = %q, want %q", tt.raw, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatRawAmountMalformed(t *testing.T) {
	for _, raw := range []string{"", "abc", "1.5", "-10", "0x10"} {
		got, err := FormatRawAmount(raw, 8)
		if !errors.Is(err, entity.ErrMalformedAmount) {
			t.Errorf("FormatRawAmount(%q) err = %v, want ErrMalformedAmount", raw, err)
		}
		if got != "0" {
			t.Errorf("FormatRawAmount(%q) = %q, want fallback \"0\"", raw, got)
		}
	}
}

// Formatting must round-trip: integerPart*10^d + fractionalPart == raw.
func TestFormatRawAmountRoundTrip(t *testing.T) {
	cases := []struct {
		raw      string
		decimals uint8
	}{
		{"0", 0},
		{"1", 8},
		{"999999999", 8},
		{"1000000000000000001", 18},
		{"98765432109876543210987654321", 12},
	}

	for _, tc := range cases {
		formatted, err := FormatRawAmount(tc.raw, tc.decimals)
		if err != nil {
			t.Fatalf("FormatRawAmount(%q): %v", tc.raw, err)
		}

		intPart := formatted
		fracPart := ""
		if i := strings.IndexByte(formatted, '.'); i >= 0 {
			intPart, fracPart = formatted[:i], formatted[i+1:]
		}
		for len(fracPart) < int(tc.decimals) {
			fracPart += "0"
		}

		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(tc.decimals)), nil)
		reconstructed, _ := new(big.Int).SetString(intPart, 10)
		reconstructed.Mul(reconstructed, scale)
		if fracPart != "" {
			frac, _ := new(big.Int).SetString(fracPart, 10)
			reconstructed.Add(reconstructed, frac)
		}

		want, _ := new(big.Int).SetString(tc.raw, 10)
		if reconstructed.Cmp(want) != 0 {
			t.Errorf("round trip of %q (d=%d) via %q gave %s", tc.raw, tc.decimals, formatted, reconstructed)
		}
	}
}

func TestRawToDecimal(t *testing.T) {
	d, err := RawToDecimal("150000000", 8)
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "1.5" {
		t.Errorf("RawToDecimal = %s, want 1.5", d)
	}

	if _, err := RawToDecimal("nope", 8); !errors.Is(err, entity.ErrMalformedAmount) {
		t.Errorf("expected ErrMalformedAmount, got %v", err)
	}
}

func TestDisplayToDecimal(t *testing.T) {
	if got := DisplayToDecimal("1,234.5"); got.String() != "1234.5" {
		t.Errorf("DisplayToDecimal = %s, want 1234.5", got)
	}
	if got := DisplayToDecimal("garbage"); !got.IsZero() {
		t.Errorf("DisplayToDecimal(garbage) = %s, want 0", got)
	}
}
