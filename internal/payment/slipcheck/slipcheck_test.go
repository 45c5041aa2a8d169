package slipcheck

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const sampleResponse = `{
  "status": 200,
  "data": {
    "transRef": "015123456789ABC",
    "amount": {"amount": 130, "local": {"amount": 0, "currency": ""}},
    "sender": {"account": {"name": {"th": "นาย สมชาย ใจดี", "en": "SOMCHAI J"}, "bank": {"type": "BANKAC", "account": "xxx-x-x1234-x"}}},
    "receiver": {"account": {"name": {"th": "", "en": "ICMM EVENT"}, "bank": {"type": "BANKAC", "account": "xxx-x-x9999-x"}, "proxy": {"type": "BILLERID", "account": "099904909401"}}}
  }
}`

func TestVerifySendsMultipartWithBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/verify" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Fatalf("unexpected authorization header: %s", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("expected multipart file: %v", err)
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		if header.Filename != "slip.jpg" || string(content) != "image-bytes" {
			t.Fatalf("unexpected upload %s %q", header.Filename, content)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/", Token: "secret-token", Timeout: time.Second})
	result, err := client.Verify(context.Background(), "/tmp/upload/slip.jpg", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !result.Amount.Equal(decimal.NewFromInt(130)) {
		t.Fatalf("unexpected amount: %s", result.Amount)
	}
	if result.SenderName != "นาย สมชาย ใจดี" || result.SenderAccount != "xxx-x-x1234-x" {
		t.Fatalf("unexpected sender: %+v", result)
	}
	if result.ReceiverName != "ICMM EVENT" || result.ReceiverAccount != "099904909401" {
		t.Fatalf("unexpected receiver: %+v", result)
	}
}

func TestVerifyNon2xxIsRequestFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":400,"message":"invalid_image"}`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "t"})
	if _, err := client.Verify(context.Background(), "slip.jpg", []byte("x")); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
}

func TestVerifyRequiresConfig(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Verify(context.Background(), "slip.jpg", []byte("x")); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestParseResponseVariants(t *testing.T) {
	flat, err := parseResponse([]byte(`{"data":{"amount":99.5,"sender":{"account":{"name":"A","bank":{"account":"111"}}},"receiver":{"account":{"name":"B","proxy":{"account":"0812345678"}}}}}`))
	if err != nil {
		t.Fatalf("parse flat failed: %v", err)
	}
	if !flat.Amount.Equal(decimal.RequireFromString("99.5")) || flat.SenderName != "A" || flat.ReceiverAccount != "0812345678" {
		t.Fatalf("unexpected flat result: %+v", flat)
	}

	for name, body := range map[string]string{
		"not json":       `<html>`,
		"missing data":   `{"status":200}`,
		"missing amount": `{"data":{"sender":{},"receiver":{}}}`,
		"string amount":  `{"data":{"amount":"abc"}}`,
	} {
		if _, err := parseResponse([]byte(body)); !errors.Is(err, ErrResponseInvalid) {
			t.Fatalf("%s: expected ErrResponseInvalid, got %v", name, err)
		}
	}
}

func TestNormalizeAccount(t *testing.T) {
	if got := NormalizeAccount(" XXX-x-x1234-X "); got != "xxxxx1234x" {
		t.Fatalf("unexpected normalized account: %s", got)
	}
}

func TestMaskedAccountMatches(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{a: "xxxxx6789x", b: "1234567890", want: true},
		{a: "1234567890", b: "xxxxx6789x", want: true},
		{a: "1234567890", b: "1234567890", want: true},
		{a: "xxxxx1111x", b: "1234567890", want: false},
		{a: "xxxxxxxxxx", b: "1234567890", want: false},
		{a: "xxx6789x", b: "1234567890", want: false},
		{a: "", b: "", want: false},
	}
	for _, tc := range cases {
		if got := MaskedAccountMatches(tc.a, tc.b); got != tc.want {
			t.Fatalf("MaskedAccountMatches(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
