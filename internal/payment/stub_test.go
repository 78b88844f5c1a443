package payment

import (
	"context"
	"errors"
	"testing"
)

func TestStubCreateCapture(t *testing.T) {
	s := NewStub()
	ctx := context.Background()

	tx, err := s.CreateTransaction(ctx, CreateRequest{AmountCents: 5000, Currency: "EUR"})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.Ref == "" || tx.Status != "CREATED" {
		t.Fatalf("transaction = %+v", tx)
	}

	rec, err := s.CaptureTransaction(ctx, tx.Ref)
	if err != nil {
		t.Fatalf("CaptureTransaction: %v", err)
	}
	if rec.Ref != tx.Ref {
		t.Fatalf("receipt ref = %q, want %q", rec.Ref, tx.Ref)
	}

	// Double capture is declined, like a real processor.
	if _, err := s.CaptureTransaction(ctx, tx.Ref); !errors.Is(err, ErrDeclined) {
		t.Fatalf("double capture: got %v, want ErrDeclined", err)
	}
}

func TestStubRejectsBadInput(t *testing.T) {
	s := NewStub()
	ctx := context.Background()

	if _, err := s.CreateTransaction(ctx, CreateRequest{AmountCents: 0, Currency: "EUR"}); err == nil {
		t.Fatal("zero amount accepted")
	}
	if _, err := s.CaptureTransaction(ctx, "unknown"); !errors.Is(err, ErrDeclined) {
		t.Fatalf("unknown ref: got %v, want ErrDeclined", err)
	}
}

func TestStubFailureKnobs(t *testing.T) {
	s := NewStub()
	ctx := context.Background()
	s.FailCreate = true
	if _, err := s.CreateTransaction(ctx, CreateRequest{AmountCents: 100, Currency: "EUR"}); !errors.Is(err, ErrDeclined) {
		t.Fatalf("FailCreate: got %v, want ErrDeclined", err)
	}

	s.FailCreate = false
	tx, err := s.CreateTransaction(ctx, CreateRequest{AmountCents: 100, Currency: "EUR"})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	s.FailCapture = true
	if _, err := s.CaptureTransaction(ctx, tx.Ref); !errors.Is(err, ErrDeclined) {
		t.Fatalf("FailCapture: got %v, want ErrDeclined", err)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[int64]string{
		0:    "0.00",
		5:    "0.05",
		100:  "1.00",
		8550: "85.50",
	}
	for cents, want := range cases {
		if got := formatAmount(cents); got != want {
			t.Errorf("formatAmount(%d) = %q, want %q", cents, got, want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]int64{
		"85.50": 8550,
		"85.5":  8550,
		"85":    8500,
		"0.05":  5,
	}
	for in, want := range cases {
		if got := parseAmount(in); got != want {
			t.Errorf("parseAmount(%q) = %d, want %d", in, got, want)
		}
	}
}
