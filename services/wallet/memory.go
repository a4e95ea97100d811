package wallet

import (
	"context"
	"fmt"
	"sync"
)

// MemoryService is an in-process wallet with the same semantics as the
// postgres implementation. It backs tests and DEV_WALLET runs where no
// database is available.
type MemoryService struct {
	mu       sync.Mutex
	balances map[string]int64
	ledger   []LedgerEntry
}

type LedgerEntry struct {
	Type      string
	UserUID   string
	Amount    int64
	Reference string
}

func NewMemoryService() *MemoryService {
	return &MemoryService{balances: make(map[string]int64)}
}

var _ Service = (*MemoryService)(nil)

// Seed creates or overwrites an account balance.
func (s *MemoryService) Seed(uid string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[uid] = balance
}

func (s *MemoryService) GetBalance(_ context.Context, uid string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[uid]
	if !ok {
		return 0, ErrUserNotFound
	}
	return b, nil
}

func (s *MemoryService) Debit(_ context.Context, uid string, amount int64, reason, reference string) error {
	if amount < 0 {
		return fmt.Errorf("wallet: negative debit %d", amount)
	}
	if amount == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[uid]
	if !ok {
		return ErrUserNotFound
	}
	if b < amount {
		return &InsufficientBalanceError{Required: amount, Available: b}
	}
	s.balances[uid] = b - amount
	s.ledger = append(s.ledger, LedgerEntry{Type: reason, UserUID: uid, Amount: amount, Reference: reference})
	return nil
}

func (s *MemoryService) Credit(_ context.Context, uid string, amount int64, reason, reference string) error {
	if amount < 0 {
		return fmt.Errorf("wallet: negative credit %d", amount)
	}
	if amount == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.balances[uid]; !ok {
		if uid != HouseAccountID {
			return ErrUserNotFound
		}
		s.balances[HouseAccountID] = 0
	}
	s.balances[uid] += amount
	s.ledger = append(s.ledger, LedgerEntry{Type: reason, UserUID: uid, Amount: amount, Reference: reference})
	return nil
}

func (s *MemoryService) EnsureAccount(_ context.Context, uid, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.balances[uid]; !ok {
		s.balances[uid] = 0
	}
	return nil
}

// Ledger returns a copy of the recorded mutations, oldest first.
func (s *MemoryService) Ledger() []LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LedgerEntry(nil), s.ledger...)
}
