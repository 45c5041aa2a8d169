package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyUnmarshalAcceptsStringAndNumber(t *testing.T) {
	var fromString, fromNumber Money
	if err := json.Unmarshal([]byte(`"130.005"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if err := json.Unmarshal([]byte(`130.005`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	want := decimal.RequireFromString("130.01")
	if !fromString.Equal(want) || !fromNumber.Equal(want) {
		t.Fatalf("expected 130.01, got %s / %s", fromString, fromNumber)
	}
}

func TestMoneyUnmarshalKeepsLargeNumberPrecision(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`12345678901234567.89`), &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if m.String() != "12345678901234567.89" {
		t.Fatalf("precision lost: %s", m)
	}
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Fatalf("expected error for non-numeric string")
	}
}

func TestMoneyMarshalFixedTwoDecimals(t *testing.T) {
	raw, err := json.Marshal(NewMoneyFromFloat(100))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(raw) != `"100.00"` {
		t.Fatalf("unexpected json: %s", raw)
	}
}

func TestMoneyRoundsHalfAwayFromZero(t *testing.T) {
	cases := map[string]string{
		"1.005":  "1.01",
		"2.675":  "2.68",
		"-1.005": "-1.01",
		"0.004":  "0.00",
	}
	for in, want := range cases {
		got := NewMoneyFromDecimal(decimal.RequireFromString(in)).String()
		if got != want {
			t.Fatalf("round(%s): expected %s, got %s", in, want, got)
		}
	}
}
