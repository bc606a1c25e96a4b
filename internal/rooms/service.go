package rooms

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"officehub/internal/models"
	"officehub/internal/store"
)

var (
	// ErrInvalidInterval rejects bookings with a non-positive duration.
	ErrInvalidInterval = errors.New("booking duration must be positive")
	// ErrForbidden means the requester may not cancel this booking.
	ErrForbidden = errors.New("not allowed to cancel this booking")
)

// Service implements meeting room bookings over half-open time intervals
// [start, end): a booking ending at 10:00 never conflicts with one starting
// at 10:00.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// Rooms returns the room catalog.
func (s *Service) Rooms(ctx context.Context) ([]models.MeetingRoom, error) {
	return s.store.ListRooms(ctx)
}

// Book reserves a room for holder from start for durationMinutes. The
// conflict check and insert run atomically, so two overlapping requests for
// the same room cannot both succeed.
func (s *Service) Book(ctx context.Context, roomID int, start time.Time, durationMinutes int, holder string) (*models.Booking, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidInterval
	}
	booking := models.Booking{
		BookingID: uuid.NewString(),
		RoomID:    roomID,
		Holder:    holder,
		StartTime: start,
		EndTime:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}
	if err := s.store.CreateBooking(ctx, &booking); err != nil {
		return nil, err
	}
	log.Printf("ROOMS: Room %d booked by %s (%s - %s)", roomID, holder,
		booking.StartTime.Format(time.RFC3339), booking.EndTime.Format(time.RFC3339))
	return &booking, nil
}

// Cancel removes a booking. Only the holder or an admin may cancel.
func (s *Service) Cancel(ctx context.Context, bookingID, requester, role string) error {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Holder != requester && role != "admin" {
		return ErrForbidden
	}
	if err := s.store.DeleteBooking(ctx, bookingID); err != nil {
		return err
	}
	log.Printf("ROOMS: Booking %s cancelled by %s", bookingID, requester)
	return nil
}

// MyBookings lists the requester's current and upcoming bookings.
func (s *Service) MyBookings(ctx context.Context, username string, now time.Time) ([]models.Booking, error) {
	return s.store.BookingsForHolder(ctx, username, now)
}

// WeekBookings lists every booking overlapping the seven days from start.
func (s *Service) WeekBookings(ctx context.Context, start time.Time) ([]models.Booking, error) {
	return s.store.BookingsOverlapping(ctx, start, start.Add(7*24*time.Hour))
}

// Status reports each room as free or occupied at the given instant, with
// the current booking when occupied.
func (s *Service) Status(ctx context.Context, now time.Time) ([]models.RoomStatus, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make([]models.RoomStatus, 0, len(rooms))
	for _, room := range rooms {
		status := models.RoomStatus{Room: room, Status: "available"}
		booking, err := s.store.CurrentBooking(ctx, room.ID, now)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if booking != nil {
			status.Status = "booked"
			status.Booking = booking
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// CleanupExpired drops bookings whose end time has passed. Run periodically
// by the scheduler.
func (s *Service) CleanupExpired(ctx context.Context, now time.Time) (int, error) {
	removed, err := s.store.DeleteExpiredBookings(ctx, now)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Printf("ROOMS: Cleaned up %d expired booking(s)", removed)
	}
	return removed, nil
}
