package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stub is an in-process Provider for development and tests.  It keeps
// created transactions in memory and captures them on request.  The
// FailCreate/FailCapture knobs let tests drive the orchestrator down
// its failure paths without a network.
type Stub struct {
	mu   sync.Mutex
	txns map[string]*Transaction

	FailCreate  bool
	FailCapture bool
}

// NewStub returns an empty stub provider.
func NewStub() *Stub {
	return &Stub{txns: make(map[string]*Transaction)}
}

func (s *Stub) Name() string { return "stub" }

// CreateTransaction registers a transaction under a fresh UUID ref.
func (s *Stub) CreateTransaction(ctx context.Context, req CreateRequest) (*Transaction, error) {
	if s.FailCreate {
		return nil, fmt.Errorf("stub: create refused: %w", ErrDeclined)
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("stub: non-positive amount %d", req.AmountCents)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &Transaction{Ref: uuid.NewString(), Status: "CREATED"}
	s.txns[t.Ref] = t
	return &Transaction{Ref: t.Ref, Status: t.Status}, nil
}

// CaptureTransaction captures a previously created transaction.  An
// unknown ref or a second capture is declined, mirroring how real
// processors reject double captures.
func (s *Stub) CaptureTransaction(ctx context.Context, ref string) (*Receipt, error) {
	if s.FailCapture {
		return nil, fmt.Errorf("stub: capture refused: %w", ErrDeclined)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txns[ref]
	if !ok {
		return nil, fmt.Errorf("stub: unknown transaction %q: %w", ref, ErrDeclined)
	}
	if t.Status == "CAPTURED" {
		return nil, fmt.Errorf("stub: transaction %q already captured: %w", ref, ErrDeclined)
	}
	t.Status = "CAPTURED"
	return &Receipt{Ref: ref, CapturedAt: time.Now().UTC()}, nil
}
