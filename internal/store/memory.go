package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"officehub/internal/models"
)

// Memory is a mutex-guarded in-process Store. It backs tests and the
// STORE_DRIVER=memory mode, with the same atomicity guarantees as the
// Postgres implementation (a single lock serializes every mutation).
type Memory struct {
	mu sync.Mutex

	rules        []models.AutomationRule
	office       models.OfficeState
	spots        map[int]bool // spot id -> is_available
	reservations []models.Reservation
	checkins     map[int]string // spot id -> holder
	rooms        []models.MeetingRoom
	bookings     map[string]models.Booking
	users        map[string]models.User
	scenes       map[string]models.Scene
	savings      models.EnergySavings
}

// NewMemory builds a store seeded like a fresh database: office state,
// spotCount parking spots, the room catalog, default rules and users.
func NewMemory(spotCount int) *Memory {
	m := &Memory{
		office:   models.OfficeState{Temperature: 21, HVACMode: "off", LightsOn: false},
		spots:    make(map[int]bool, spotCount),
		checkins: make(map[int]string),
		bookings: make(map[string]models.Booking),
		users:    make(map[string]models.User),
		scenes:   make(map[string]models.Scene),
		rooms:    DefaultRooms(),
		rules:    DefaultRules(),
	}
	for i := 1; i <= spotCount; i++ {
		m.spots[i] = true
	}
	for _, u := range defaultUserSeeds() {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.plainPassword), bcrypt.DefaultCost)
		if err != nil {
			continue
		}
		m.users[u.username] = models.User{Username: u.username, Password: string(hash), Role: u.role}
	}
	return m
}

// NewMemoryBare builds an empty store with spotCount spots and the room
// catalog but no seeded rules or users. Test helper.
func NewMemoryBare(spotCount int) *Memory {
	m := NewMemory(spotCount)
	m.rules = nil
	m.users = make(map[string]models.User)
	return m
}

func (m *Memory) Init(ctx context.Context) error { return nil }
func (m *Memory) Close()                         {}

// --- Automation rules ---

func (m *Memory) CreateRule(ctx context.Context, trigger models.Trigger, action models.Action, description string) (*models.AutomationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	maxID := 0
	for _, r := range m.rules {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	rule := models.AutomationRule{
		ID:          maxID + 1,
		Trigger:     trigger,
		Action:      action,
		Active:      true,
		Description: description,
	}
	m.rules = append(m.rules, rule)
	return &rule, nil
}

func (m *Memory) ListRules(ctx context.Context) ([]models.AutomationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.AutomationRule, len(m.rules))
	copy(out, m.rules)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetRule(ctx context.Context, id int) (*models.AutomationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rules {
		if r.ID == id {
			rule := r
			return &rule, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) SetRuleActive(ctx context.Context, id int, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].ID == id {
			m.rules[i].Active = active
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) DeleteRule(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rules {
		if m.rules[i].ID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) FindActiveRules(ctx context.Context, triggerType string) ([]models.AutomationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AutomationRule{}
	for _, r := range m.rules {
		if r.Active && r.Trigger.Type == triggerType {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- Office state ---

func (m *Memory) OfficeState(ctx context.Context) (*models.OfficeState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.office
	return &s, nil
}

func (m *Memory) SetLights(ctx context.Context, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.office.LightsOn = on
	return nil
}

func (m *Memory) SetHVACMode(ctx context.Context, mode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.office.HVACMode = mode
	return nil
}

func (m *Memory) SetTemperature(ctx context.Context, temperature int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.office.Temperature = temperature
	return nil
}

// --- Parking ---

func (m *Memory) ListSpots(ctx context.Context) ([]models.ParkingSpot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ParkingSpot, 0, len(m.spots))
	for id, avail := range m.spots {
		out = append(out, models.ParkingSpot{ID: id, IsAvailable: avail})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) AvailableSpots(ctx context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []int{}
	for id, avail := range m.spots {
		if avail {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (m *Memory) ReserveSpot(ctx context.Context, spotID int, holder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	avail, ok := m.spots[spotID]
	if !ok {
		return ErrSpotNotFound
	}
	if !avail {
		return ErrSpotUnavailable
	}
	m.spots[spotID] = false
	m.reservations = append(m.reservations, models.Reservation{SpotID: spotID, Holder: holder})
	return nil
}

// PutReservation inserts a reservation row bypassing the availability check.
// Exists so the violation audit can be exercised against inconsistent data.
func (m *Memory) PutReservation(spotID int, holder string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations = append(m.reservations, models.Reservation{SpotID: spotID, Holder: holder})
}

func (m *Memory) HasReservation(ctx context.Context, spotID int, holder string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.SpotID == spotID && r.Holder == holder {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) DeleteReservation(ctx context.Context, spotID int, holder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.reservations {
		if r.SpotID == spotID && r.Holder == holder {
			m.reservations = append(m.reservations[:i], m.reservations[i+1:]...)
			return nil
		}
	}
	return ErrNoReservation
}

func (m *Memory) ReservationsForHolder(ctx context.Context, holder string) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []int{}
	for _, r := range m.reservations {
		if r.Holder == holder {
			out = append(out, r.SpotID)
		}
	}
	sort.Ints(out)
	return out, nil
}

func (m *Memory) AllReservations(ctx context.Context) ([]models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Reservation, len(m.reservations))
	copy(out, m.reservations)
	return out, nil
}

func (m *Memory) GetCheckin(ctx context.Context, spotID int) (*models.Checkin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	holder, ok := m.checkins[spotID]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.Checkin{SpotID: spotID, Holder: holder}, nil
}

func (m *Memory) AllCheckins(ctx context.Context) ([]models.Checkin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Checkin{}
	for id, holder := range m.checkins {
		out = append(out, models.Checkin{SpotID: id, Holder: holder})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SpotID < out[j].SpotID })
	return out, nil
}

func (m *Memory) CreateCheckin(ctx context.Context, spotID int, holder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.checkins[spotID]; taken {
		return ErrSpotOccupied
	}
	m.checkins[spotID] = holder
	return nil
}

func (m *Memory) ReleaseSpotIfUnclaimed(ctx context.Context, spotID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.spots[spotID]; !ok {
		return false, nil
	}
	if _, taken := m.checkins[spotID]; taken {
		return false, nil
	}
	for _, r := range m.reservations {
		if r.SpotID == spotID {
			return false, nil
		}
	}
	m.spots[spotID] = true
	return true, nil
}

func (m *Memory) ClearSpot(ctx context.Context, spotID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.checkins, spotID)
	kept := m.reservations[:0]
	for _, r := range m.reservations {
		if r.SpotID != spotID {
			kept = append(kept, r)
		}
	}
	m.reservations = kept
	if _, ok := m.spots[spotID]; ok {
		m.spots[spotID] = true
	}
	return nil
}

// --- Meeting rooms ---

func (m *Memory) ListRooms(ctx context.Context) ([]models.MeetingRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.MeetingRoom, len(m.rooms))
	copy(out, m.rooms)
	return out, nil
}

func (m *Memory) CreateBooking(ctx context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, r := range m.rooms {
		if r.ID == booking.RoomID {
			found = true
			break
		}
	}
	if !found {
		return ErrRoomNotFound
	}

	for _, b := range m.bookings {
		if b.RoomID == booking.RoomID &&
			b.StartTime.Before(booking.EndTime) && b.EndTime.After(booking.StartTime) {
			return ErrBookingConflict
		}
	}
	m.bookings[booking.BookingID] = *booking
	return nil
}

func (m *Memory) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *Memory) DeleteBooking(ctx context.Context, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[bookingID]; !ok {
		return ErrNotFound
	}
	delete(m.bookings, bookingID)
	return nil
}

func sortBookings(bs []models.Booking) {
	sort.Slice(bs, func(i, j int) bool { return bs[i].StartTime.Before(bs[j].StartTime) })
}

func (m *Memory) BookingsForHolder(ctx context.Context, holder string, now time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.bookings {
		if b.Holder == holder && b.EndTime.After(now) {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (m *Memory) BookingsOverlapping(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.bookings {
		if b.StartTime.Before(to) && b.EndTime.After(from) {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (m *Memory) CurrentBooking(ctx context.Context, roomID int, now time.Time) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.RoomID == roomID && !b.StartTime.After(now) && b.EndTime.After(now) {
			booking := b
			return &booking, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) DeleteExpiredBookings(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for id, b := range m.bookings {
		if b.EndTime.Before(now) {
			delete(m.bookings, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- Users ---

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, u := range m.users {
		if strings.EqualFold(name, username) {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name := range m.users {
		if strings.EqualFold(name, user.Username) {
			return ErrUserExists
		}
	}
	m.users[user.Username] = *user
	return nil
}

func (m *Memory) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *Memory) SetUserRole(ctx context.Context, username, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	m.users[username] = u
	return nil
}

func (m *Memory) SetUserPassword(ctx context.Context, username, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return ErrNotFound
	}
	u.Password = passwordHash
	m.users[username] = u
	return nil
}

func (m *Memory) DeleteUser(ctx context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; !ok {
		return ErrNotFound
	}
	delete(m.users, username)
	return nil
}

func (m *Memory) CountAdmins(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.users {
		if u.Role == "admin" {
			n++
		}
	}
	return n, nil
}

// --- Scenes and energy savings ---

func (m *Memory) CreateScene(ctx context.Context, scene *models.Scene) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.scenes[scene.Name]; exists {
		return ErrSceneExists
	}
	m.scenes[scene.Name] = *scene
	return nil
}

func (m *Memory) EnergySavings(ctx context.Context) (*models.EnergySavings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.savings
	return &s, nil
}
