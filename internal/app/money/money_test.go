package money

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"walletledger/internal/app/apperr"
)

func TestParseMinorUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "100", want: 10000},
		{in: "100.5", want: 10050},
		{in: "100.05", want: 10005},
		{in: "007.10", want: 710},
		{in: " 1.99 ", want: 199},
		{in: "92233720368547758.07", want: math.MaxInt64},
		{in: "92233720368547758.08", wantErr: true},
		{in: "1.999", wantErr: true},
		{in: "-1.00", wantErr: true},
		{in: "1e3", wantErr: true},
		{in: "1.", wantErr: true},
		{in: ".5", wantErr: true},
		{in: "12a", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMinorUnits(tt.in)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrInvalidAmountFormat) {
					t.Fatalf("ParseMinorUnits(%q) error = %v, want invalid format", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMinorUnits(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMinorUnits(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatMinorUnits(t *testing.T) {
	tests := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		10050:  "100.50",
		-70000: "-700.00",
		-1:     "-0.01",
	}

	for in, want := range tests {
		if got := FormatMinorUnits(in); got != want {
			t.Errorf("FormatMinorUnits(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("100")
	if err != nil {
		t.Fatal(err)
	}
	if got != "100.00" {
		t.Errorf("Normalize() = %q", got)
	}

	if _, err := Normalize("1.234"); err == nil {
		t.Error("expected error for three decimals")
	}
}

func TestInputUnmarshal(t *testing.T) {
	var in struct {
		A Input `json:"a"`
		B Input `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"12.30","b":45.6}`), &in); err != nil {
		t.Fatal(err)
	}

	a, err := in.A.MinorUnits()
	if err != nil || a != 1230 {
		t.Errorf("a = %d, %v", a, err)
	}
	b, err := in.B.MinorUnits()
	if err != nil || b != 4560 {
		t.Errorf("b = %d, %v", b, err)
	}

	if err := json.Unmarshal([]byte(`{"a":true}`), &in); err == nil {
		t.Error("expected error for boolean amount")
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name           string
		balance, delta int64
		want           int64
		wantErr        bool
	}{
		{name: "credit", balance: 100, delta: 50, want: 150},
		{name: "debit", balance: 100, delta: -100, want: 0},
		{name: "up to max", balance: math.MaxInt64 - 7, delta: 7, want: math.MaxInt64},
		{name: "past max", balance: math.MaxInt64 - 7, delta: 8, wantErr: true},
		{name: "past min", balance: math.MinInt64 + 1, delta: -2, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.balance, tt.delta)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrInvalidAmount) {
					t.Fatalf("Apply(%d, %d) error = %v, want invalid amount", tt.balance, tt.delta, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("Apply(%d, %d) = %d, %v, want %d", tt.balance, tt.delta, got, err, tt.want)
			}
		})
	}
}
