package parking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"officehub/internal/store"
)

type recordingSink struct {
	events []string
	attrs  []map[string]any
}

func (r *recordingSink) ProcessEvent(ctx context.Context, eventType string, attributes map[string]any) int {
	r.events = append(r.events, eventType)
	r.attrs = append(r.attrs, attributes)
	return 0
}

func TestReserveCheckinFlow(t *testing.T) {
	st := store.NewMemoryBare(5)
	sink := &recordingSink{}
	svc := NewService(st, sink)
	ctx := context.Background()

	res, err := svc.Reserve(ctx, 3, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, res.SpotID)

	// Check-in without a reservation is refused.
	_, err = svc.Checkin(ctx, 3, "bob")
	assert.ErrorIs(t, err, store.ErrNoReservation)

	checkin, err := svc.Checkin(ctx, 3, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", checkin.Holder)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "parking_checkin", sink.events[0])
	assert.Equal(t, 3, sink.attrs[0]["spot_id"])
	assert.Equal(t, "alice", sink.attrs[0]["username"])

	// Second check-in on the same spot loses.
	st.PutReservation(3, "bob")
	_, err = svc.Checkin(ctx, 3, "bob")
	assert.ErrorIs(t, err, store.ErrSpotOccupied)
}

func TestUnreserveReleasesOnlyWhenUnclaimed(t *testing.T) {
	st := store.NewMemoryBare(5)
	svc := NewService(st, nil)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, 1, "alice")
	require.NoError(t, err)
	require.NoError(t, svc.Unreserve(ctx, 1, "alice"))

	available, err := svc.Available(ctx)
	require.NoError(t, err)
	assert.Contains(t, available, 1)

	// A checked-in spot stays unavailable after the reservation is dropped.
	_, err = svc.Reserve(ctx, 2, "alice")
	require.NoError(t, err)
	_, err = svc.Checkin(ctx, 2, "alice")
	require.NoError(t, err)
	require.NoError(t, svc.Unreserve(ctx, 2, "alice"))

	available, err = svc.Available(ctx)
	require.NoError(t, err)
	assert.NotContains(t, available, 2)
}

func TestGuestPass(t *testing.T) {
	st := store.NewMemoryBare(5)
	svc := NewService(st, nil)
	ctx := context.Background()

	res, err := svc.GuestPass(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "guest", res.Holder)

	// Guests can hold several spots, one pass each.
	res2, err := svc.GuestPass(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "guest", res2.Holder)

	spots, err := svc.MyReservations(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, spots)
}

func TestAllSpotsStatuses(t *testing.T) {
	st := store.NewMemoryBare(3)
	svc := NewService(st, nil)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, 1, "alice")
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, 2, "bob")
	require.NoError(t, err)
	_, err = svc.Checkin(ctx, 2, "bob")
	require.NoError(t, err)

	statuses, err := svc.AllSpots(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.Equal(t, "reserved", statuses[0].Status)
	assert.Equal(t, "alice", statuses[0].Holder)
	assert.Equal(t, "occupied", statuses[1].Status)
	assert.Equal(t, "bob", statuses[1].Holder)
	assert.Equal(t, "available", statuses[2].Status)
	assert.Empty(t, statuses[2].Holder)
}

func TestClearFreesSpot(t *testing.T) {
	st := store.NewMemoryBare(3)
	svc := NewService(st, nil)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, 1, "alice")
	require.NoError(t, err)
	_, err = svc.Checkin(ctx, 1, "alice")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, 1))

	available, err := svc.Available(ctx)
	require.NoError(t, err)
	assert.Contains(t, available, 1)

	// Clearing again is a no-op, not an error.
	require.NoError(t, svc.Clear(ctx, 1))
}

func TestViolationsAudit(t *testing.T) {
	st := store.NewMemoryBare(5)
	svc := NewService(st, nil)
	ctx := context.Background()

	// Normal state: no violations.
	_, err := svc.Reserve(ctx, 1, "alice")
	require.NoError(t, err)
	violations, err := svc.Violations(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)

	// Inject rows the API would never produce.
	st.PutReservation(2, "bob")
	st.PutReservation(2, "carol")
	st.PutReservation(2, "carol") // same holder twice is not a violation pair

	violations, err = svc.Violations(ctx)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].SpotID)
	assert.ElementsMatch(t, []string{"bob", "carol"}, violations[0].Holders)
}
