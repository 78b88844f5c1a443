package marketplace

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/beswib/beswib/internal/model"
	"github.com/beswib/beswib/internal/repository"
)

// In-memory fakes for the store interfaces. Knobs like failMarkSold
// let individual tests drive error paths without touching a database.

type fakeBibStore struct {
	mu     sync.Mutex
	nextID uint64
	bibs   map[uint64]*model.Bib

	markSoldCalls int
	failMarkSold  int // return a transient error for this many calls
}

func newFakeBibStore() *fakeBibStore {
	return &fakeBibStore{nextID: 1, bibs: map[uint64]*model.Bib{}}
}

func (s *fakeBibStore) put(b *model.Bib) *model.Bib {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.nextID
		s.nextID++
	}
	cp := *b
	s.bibs[b.ID] = &cp
	return b
}

func (s *fakeBibStore) Create(ctx context.Context, b *model.Bib) error {
	s.put(b)
	return nil
}

func (s *fakeBibStore) GetByID(ctx context.Context, id uint64) (*model.Bib, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bibs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeBibStore) Update(ctx context.Context, b *model.Bib) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bibs[b.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *b
	s.bibs[b.ID] = &cp
	return nil
}

// MarkSold mirrors the conditional-update semantics of the SQL store:
// it succeeds only while the bib is available with no buyer.
func (s *fakeBibStore) MarkSold(ctx context.Context, bibID, buyerID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markSoldCalls++
	if s.failMarkSold > 0 {
		s.failMarkSold--
		return errors.New("store briefly unavailable")
	}
	b, ok := s.bibs[bibID]
	if !ok {
		return repository.ErrNotFound
	}
	if b.Status != model.StatusAvailable || b.BuyerID != nil {
		return repository.ErrConflict
	}
	b.Status = model.StatusSold
	b.BuyerID = &buyerID
	return nil
}

func (s *fakeBibStore) ListBySeller(ctx context.Context, sellerID uint64) ([]model.Bib, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Bib
	for _, b := range s.bibs {
		if b.SellerID == sellerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *fakeBibStore) ListPurchasedBy(ctx context.Context, buyerID uint64) ([]model.Bib, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Bib
	for _, b := range s.bibs {
		if b.BuyerID != nil && *b.BuyerID == buyerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeEventStore struct {
	mu     sync.Mutex
	nextID uint64
	events map[uint64]*model.Event
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{nextID: 1, events: map[uint64]*model.Event{}}
}

func (s *fakeEventStore) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *fakeEventStore) Create(ctx context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextID
	s.nextID++
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

type fakeUserStore struct {
	users map[uint64]model.User
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeTxnStore struct {
	mu     sync.Mutex
	nextID uint64
	txns   map[uint64]*model.Transaction

	setStatusCalls []model.TransactionStatus
}

func newFakeTxnStore() *fakeTxnStore {
	return &fakeTxnStore{nextID: 1, txns: map[uint64]*model.Transaction{}}
}

func (s *fakeTxnStore) Create(ctx context.Context, t *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	cp := *t
	s.txns[t.ID] = &cp
	return nil
}

func (s *fakeTxnStore) GetByProviderRef(ctx context.Context, ref string) (*model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txns {
		if t.ProviderRef == ref {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeTxnStore) SetStatus(ctx context.Context, id uint64, status model.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setStatusCalls = append(s.setStatusCalls, status)
	t, ok := s.txns[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Status = status
	return nil
}

func (s *fakeTxnStore) statusOf(ref string) model.TransactionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txns {
		if t.ProviderRef == ref {
			return t.Status
		}
	}
	return ""
}

type fakeNotifier struct {
	mu              sync.Mutex
	sold            []SoldNotice
	reconciliations []ReconciliationNotice
}

func (n *fakeNotifier) BibSold(s SoldNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sold = append(n.sold, s)
}

func (n *fakeNotifier) ReconciliationRequired(r ReconciliationNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reconciliations = append(n.reconciliations, r)
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// seedBib inserts a bib directly into the fake store, bypassing the
// service guards, so tests can start from any state.
func seedBib(s *fakeBibStore, b model.Bib) *model.Bib {
	return s.put(&b)
}

// completeUser returns a user whose profile passes the purchase gate.
func completeUser(id uint64) model.User {
	birth := mustDate("1990-04-02")
	return model.User{
		ID:                    id,
		Email:                 "runner@example.com",
		Role:                  model.RoleRunner,
		FirstName:             "Ada",
		LastName:              "Runner",
		BirthDate:             &birth,
		Phone:                 "+33600000000",
		EmergencyContactName:  "Bob Runner",
		EmergencyContactPhone: "+33611111111",
		Address:               "1 rue de la Course",
		PostalCode:            "75001",
		City:                  "Paris",
		Country:               "FR",
	}
}
