// Package memstore keeps slots, token balances and bookings in memory behind the same repository
// interfaces the services use against Postgres. Transactions are serialized and roll back to a
// snapshot on error, which is enough to exercise the booking engine end to end in tests.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/jmoiron/sqlx"

	bookingModel "wellness/internal/domains/booking/model"
	bookingRepo "wellness/internal/domains/booking/repository"
	slotModel "wellness/internal/domains/slot/model"
	slotRepo "wellness/internal/domains/slot/repository"
	tokenModel "wellness/internal/domains/token/model"
	tokenRepo "wellness/internal/domains/token/repository"
)

type state struct {
	slots       map[string]slotModel.TimeSlot
	balances    map[string]tokenModel.TokenBalance
	allocations []tokenModel.TokenAllocation
	bookings    map[string]bookingModel.Booking
}

func (s state) clone() state {
	return state{
		slots:       maps.Clone(s.slots),
		balances:    maps.Clone(s.balances),
		allocations: slices.Clone(s.allocations),
		bookings:    maps.Clone(s.bookings),
	}
}

type Store struct {
	txMu   sync.Mutex
	mu     sync.RWMutex
	data   state
	faults map[string]error
}

func New() *Store {
	return &Store{
		data: state{
			slots:    map[string]slotModel.TimeSlot{},
			balances: map[string]tokenModel.TokenBalance{},
			bookings: map[string]bookingModel.Booking{},
		},
		faults: map[string]error{},
	}
}

// WithTransaction implements postgres.Transactor. Callers are serialized and fn sees a nil
// transaction; every write fn made is undone when it returns an error or panics.
func (s *Store) WithTransaction(_ context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}

		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(nil)
}

func (s *Store) restore(snapshot state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

// FailNext makes the next call of operation, e.g. "slot.AdjustOccupancyTx", return err.
func (s *Store) FailNext(operation string, err error) {
	s.mu.Lock()
	s.faults[operation] = err
	s.mu.Unlock()
}

// fault must be called with mu held for writing.
func (s *Store) fault(operation string) error {
	err, ok := s.faults[operation]
	if !ok {
		return nil
	}

	delete(s.faults, operation)

	return fmt.Errorf("%s: %w", operation, err)
}

func (s *Store) Slots() slotRepo.Slot {
	return &slotStore{s}
}

func (s *Store) Tokens() tokenRepo.Token {
	return &tokenStore{s}
}

func (s *Store) Bookings() bookingRepo.Booking {
	return &bookingStore{s}
}

// Slot returns a copy of the stored slot, if any.
func (s *Store) Slot(id string) (slotModel.TimeSlot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.data.slots[id]

	return slot, ok
}

func (s *Store) Booking(id string) (bookingModel.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.data.bookings[id]

	return booking, ok
}

func (s *Store) AllSlots() []slotModel.TimeSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Collect(maps.Values(s.data.slots))
}

func (s *Store) AllBookings() []bookingModel.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Collect(maps.Values(s.data.bookings))
}

func (s *Store) Allocations(bookingID string) []tokenModel.TokenAllocation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var res []tokenModel.TokenAllocation

	for _, a := range s.data.allocations {
		if a.BookingID == bookingID {
			res = append(res, a)
		}
	}

	return res
}

// TokensHeld sums the remaining tokens across every balance of the customer, expired or not.
func (s *Store) TokensHeld(email string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0

	for _, b := range s.data.balances {
		if b.CustomerEmail == tokenModel.NormalizeEmail(email) {
			total += b.TokensRemaining
		}
	}

	return total
}

// PutBalance seeds a token balance directly.
func (s *Store) PutBalance(balance tokenModel.TokenBalance) {
	s.mu.Lock()
	s.data.balances[balance.ID] = balance
	s.mu.Unlock()
}

func (s *Store) PutBooking(booking bookingModel.Booking) {
	s.mu.Lock()
	s.data.bookings[booking.ID] = booking
	s.mu.Unlock()
}

func (s *Store) PutSlot(slot slotModel.TimeSlot) {
	s.mu.Lock()
	s.data.slots[slot.ID] = slot
	s.mu.Unlock()
}
