package store

import (
	"context"
	"errors"
	"time"

	"officehub/internal/models"
)

// Sentinel errors surfaced by Store implementations. Callers distinguish
// them with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrSpotNotFound    = errors.New("parking spot does not exist")
	ErrSpotUnavailable = errors.New("parking spot is not available")
	ErrSpotOccupied    = errors.New("parking spot is already occupied")
	ErrNoReservation   = errors.New("no reservation found for this spot")
	ErrRoomNotFound    = errors.New("meeting room does not exist")
	ErrBookingConflict = errors.New("room is already booked for the requested time slot")
	ErrUserExists      = errors.New("username already exists")
	ErrSceneExists     = errors.New("scene already exists")
)

// Store is the shared document store every component reads and writes
// through. Concurrent writers exist, so implementations must make the
// reserve/check-in/book/rule-id paths atomic rather than check-then-write.
type Store interface {
	// Init creates missing collections and seeds initial documents. Safe to
	// call on every startup.
	Init(ctx context.Context) error
	Close()

	// Automation rules.
	CreateRule(ctx context.Context, trigger models.Trigger, action models.Action, description string) (*models.AutomationRule, error)
	ListRules(ctx context.Context) ([]models.AutomationRule, error)
	GetRule(ctx context.Context, id int) (*models.AutomationRule, error)
	SetRuleActive(ctx context.Context, id int, active bool) error
	DeleteRule(ctx context.Context, id int) error
	FindActiveRules(ctx context.Context, triggerType string) ([]models.AutomationRule, error)

	// Office state singleton.
	OfficeState(ctx context.Context) (*models.OfficeState, error)
	SetLights(ctx context.Context, on bool) error
	SetHVACMode(ctx context.Context, mode string) error
	SetTemperature(ctx context.Context, temperature int) error

	// Parking spots, reservations and check-ins.
	ListSpots(ctx context.Context) ([]models.ParkingSpot, error)
	AvailableSpots(ctx context.Context) ([]int, error)
	ReserveSpot(ctx context.Context, spotID int, holder string) error
	HasReservation(ctx context.Context, spotID int, holder string) (bool, error)
	DeleteReservation(ctx context.Context, spotID int, holder string) error
	ReservationsForHolder(ctx context.Context, holder string) ([]int, error)
	AllReservations(ctx context.Context) ([]models.Reservation, error)
	GetCheckin(ctx context.Context, spotID int) (*models.Checkin, error)
	AllCheckins(ctx context.Context) ([]models.Checkin, error)
	CreateCheckin(ctx context.Context, spotID int, holder string) error
	ReleaseSpotIfUnclaimed(ctx context.Context, spotID int) (bool, error)
	ClearSpot(ctx context.Context, spotID int) error

	// Meeting rooms and bookings.
	ListRooms(ctx context.Context) ([]models.MeetingRoom, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	DeleteBooking(ctx context.Context, bookingID string) error
	BookingsForHolder(ctx context.Context, holder string, now time.Time) ([]models.Booking, error)
	BookingsOverlapping(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	CurrentBooking(ctx context.Context, roomID int, now time.Time) (*models.Booking, error)
	DeleteExpiredBookings(ctx context.Context, now time.Time) (int, error)

	// Users.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	SetUserRole(ctx context.Context, username, role string) error
	SetUserPassword(ctx context.Context, username, passwordHash string) error
	DeleteUser(ctx context.Context, username string) error
	CountAdmins(ctx context.Context) (int, error)

	// Scenes and energy savings.
	CreateScene(ctx context.Context, scene *models.Scene) error
	EnergySavings(ctx context.Context) (*models.EnergySavings, error)
}
