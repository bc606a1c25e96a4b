package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"officehub/internal/models"
)

func TestConcurrentReservationsSingleWinner(t *testing.T) {
	st := NewMemoryBare(10)
	ctx := context.Background()

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- st.ReserveSpot(ctx, 5, "user"+string(rune('a'+n%26)))
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, ErrSpotUnavailable)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestReserveUnknownSpot(t *testing.T) {
	st := NewMemoryBare(3)
	err := st.ReserveSpot(context.Background(), 99, "alice")
	assert.ErrorIs(t, err, ErrSpotNotFound)
}

func TestCheckinFirstWins(t *testing.T) {
	st := NewMemoryBare(3)
	ctx := context.Background()

	require.NoError(t, st.CreateCheckin(ctx, 1, "alice"))
	err := st.CreateCheckin(ctx, 1, "bob")
	assert.ErrorIs(t, err, ErrSpotOccupied)

	checkin, err := st.GetCheckin(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", checkin.Holder)
}

func TestReleaseSpotIfUnclaimed(t *testing.T) {
	st := NewMemoryBare(3)
	ctx := context.Background()

	require.NoError(t, st.ReserveSpot(ctx, 2, "alice"))

	// Still reserved, nothing to release.
	released, err := st.ReleaseSpotIfUnclaimed(ctx, 2)
	require.NoError(t, err)
	assert.False(t, released)

	require.NoError(t, st.DeleteReservation(ctx, 2, "alice"))
	released, err = st.ReleaseSpotIfUnclaimed(ctx, 2)
	require.NoError(t, err)
	assert.True(t, released)

	available, err := st.AvailableSpots(ctx)
	require.NoError(t, err)
	assert.Contains(t, available, 2)
}

func TestClearSpotIsIdempotent(t *testing.T) {
	st := NewMemoryBare(3)
	ctx := context.Background()

	require.NoError(t, st.ReserveSpot(ctx, 1, "alice"))
	require.NoError(t, st.CreateCheckin(ctx, 1, "alice"))

	require.NoError(t, st.ClearSpot(ctx, 1))
	require.NoError(t, st.ClearSpot(ctx, 1))

	available, err := st.AvailableSpots(ctx)
	require.NoError(t, err)
	assert.Contains(t, available, 1)
	_, err = st.GetCheckin(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRuleIDsNeverReused(t *testing.T) {
	st := NewMemoryBare(3)
	ctx := context.Background()

	trigger := models.Trigger{Type: "motion"}
	action := models.Action{Type: "lights_on"}

	r1, err := st.CreateRule(ctx, trigger, action, "first")
	require.NoError(t, err)
	r2, err := st.CreateRule(ctx, trigger, action, "second")
	require.NoError(t, err)
	assert.Equal(t, r1.ID+1, r2.ID)

	// Deleting the first rule must not free its id while a later one
	// exists: the next id is max+1.
	require.NoError(t, st.DeleteRule(ctx, r1.ID))
	r3, err := st.CreateRule(ctx, trigger, action, "third")
	require.NoError(t, err)
	assert.Equal(t, r2.ID+1, r3.ID)
}

func TestBookingConflictDetection(t *testing.T) {
	st := NewMemoryBare(3)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	first := &models.Booking{
		BookingID: "b1", RoomID: 1, Holder: "alice",
		StartTime: base, EndTime: base.Add(time.Hour),
	}
	require.NoError(t, st.CreateBooking(ctx, first))

	// Overlapping interval on the same room.
	overlap := &models.Booking{
		BookingID: "b2", RoomID: 1, Holder: "bob",
		StartTime: base.Add(30 * time.Minute), EndTime: base.Add(90 * time.Minute),
	}
	assert.ErrorIs(t, st.CreateBooking(ctx, overlap), ErrBookingConflict)

	// Back-to-back is fine: intervals are half-open.
	adjacent := &models.Booking{
		BookingID: "b3", RoomID: 1, Holder: "bob",
		StartTime: base.Add(time.Hour), EndTime: base.Add(2 * time.Hour),
	}
	assert.NoError(t, st.CreateBooking(ctx, adjacent))

	// Same interval on another room is independent.
	otherRoom := &models.Booking{
		BookingID: "b4", RoomID: 2, Holder: "bob",
		StartTime: base, EndTime: base.Add(time.Hour),
	}
	assert.NoError(t, st.CreateBooking(ctx, otherRoom))

	unknownRoom := &models.Booking{
		BookingID: "b5", RoomID: 42, Holder: "bob",
		StartTime: base, EndTime: base.Add(time.Hour),
	}
	assert.ErrorIs(t, st.CreateBooking(ctx, unknownRoom), ErrRoomNotFound)
}

func TestDeleteExpiredBookings(t *testing.T) {
	st := NewMemoryBare(3)
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	past := &models.Booking{
		BookingID: "old", RoomID: 1, Holder: "alice",
		StartTime: base.Add(-2 * time.Hour), EndTime: base.Add(-time.Hour),
	}
	current := &models.Booking{
		BookingID: "now", RoomID: 1, Holder: "alice",
		StartTime: base.Add(-30 * time.Minute), EndTime: base.Add(30 * time.Minute),
	}
	require.NoError(t, st.CreateBooking(ctx, past))
	require.NoError(t, st.CreateBooking(ctx, current))

	removed, err := st.DeleteExpiredBookings(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = st.GetBooking(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	booking, err := st.CurrentBooking(ctx, 1, base)
	require.NoError(t, err)
	assert.Equal(t, "now", booking.BookingID)
}

func TestUserLookupIsCaseInsensitive(t *testing.T) {
	st := NewMemoryBare(3)
	ctx := context.Background()

	require.NoError(t, st.CreateUser(ctx, &models.User{Username: "Alice", Password: "hash", Role: "user"}))

	user, err := st.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Username)

	err = st.CreateUser(ctx, &models.User{Username: "ALICE", Password: "hash", Role: "user"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestSeededDefaults(t *testing.T) {
	st := NewMemory(20)
	ctx := context.Background()

	rules, err := st.ListRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 3)

	rooms, err := st.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 3)

	available, err := st.AvailableSpots(ctx)
	require.NoError(t, err)
	assert.Len(t, available, 20)

	admins, err := st.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, admins)
}
