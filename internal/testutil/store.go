package testutil

import (
	"listify/internal/listify"
)

// Fixture bundles a Store and Scheduler with the doubles behind them.
type Fixture struct {
	Records   *FaultyRecordStore
	Notifier  *FakeNotifier
	Clock     *StubClock
	Store     *listify.Store
	Scheduler *listify.Scheduler
}

// NewFixture creates a Store and Scheduler over in-memory storage, a fake
// notifier, FixedClock and sequential IDs. It needs no *testing.T so it can
// be used from property tests.
func NewFixture() *Fixture {
	recs := NewFaultyRecordStore(NewTestRecordStore())
	notifier := NewFakeNotifier()
	clock := FixedClock()
	logger := listify.NewNopLogger()

	store := listify.NewStore(recs, notifier, logger, clock, NewStubIDGenerator())
	return &Fixture{
		Records:   recs,
		Notifier:  notifier,
		Clock:     clock,
		Store:     store,
		Scheduler: listify.NewScheduler(store, notifier, logger, clock),
	}
}
