package common

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		input   string
		want    Cents
		wantErr bool
	}{
		{name: "whole dollars", input: "25", want: 2500},
		{name: "two decimals", input: "25.50", want: 2550},
		{name: "one decimal", input: "25.5", want: 2550},
		{name: "dollar prefix", input: "$12.34", want: 1234},
		{name: "surrounding spaces", input: " 7.00 ", want: 700},
		{name: "small fraction", input: "0.05", want: 5},
		{name: "zero", input: "0", wantErr: true},
		{name: "zero with decimals", input: "0.00", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "three decimals", input: "1.005", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "signed fraction minus", input: "1.-5", wantErr: true},
		{name: "signed fraction plus", input: "1.+5", wantErr: true},
		{name: "signed whole plus", input: "+1.50", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "trailing dot", input: "5.", wantErr: true},
		{name: "bare dot", input: ".", wantErr: true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAmount(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("expected ErrInvalidAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %d cents, got %d", tc.want, got)
			}
		})
	}
}

func TestFormatMoney(t *testing.T) {
	t.Parallel()
	if got := FormatMoney(2550); got != "$25.50" {
		t.Fatalf("expected $25.50, got %q", got)
	}
	if got := FormatMoney(5); got != "$0.05" {
		t.Fatalf("expected $0.05, got %q", got)
	}
	if got := FormatMoney(-1000); got != "-$10.00" {
		t.Fatalf("expected -$10.00, got %q", got)
	}
	if got := FormatSignedMoney(2550); got != "+$25.50" {
		t.Fatalf("expected +$25.50, got %q", got)
	}
	if got := FormatSignedMoney(-1000); got != "-$10.00" {
		t.Fatalf("expected -$10.00, got %q", got)
	}
}

func TestValidTxidShape(t *testing.T) {
	t.Parallel()
	valid := []string{
		"AAAA1111BBBB2222CCCC",
		"a1b2c3d4e5f6g7h8i9j0k1l2",
		"abc-def_ghi=jkl+mno/pqr1",
	}
	for _, txid := range valid {
		if !ValidTxidShape(txid) {
			t.Fatalf("expected %q to be accepted", txid)
		}
	}
	invalid := []string{
		"short",
		"has spaces in it but long enough",
		"почти-хеш-но-кириллица-1234",
		"",
	}
	for _, txid := range invalid {
		if ValidTxidShape(txid) {
			t.Fatalf("expected %q to be rejected", txid)
		}
	}
}
