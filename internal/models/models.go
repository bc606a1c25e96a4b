package models

import "time"

// Trigger pairs an event type with the attribute constraints a rule watches for.
type Trigger struct {
	Type      string            `json:"type"`      // "motion", "time", "user_login", "parking_checkin", custom
	Condition map[string]string `json:"condition"` // attribute key -> expected value
}

// Action identifies a registered handler and its parameters.
type Action struct {
	Type       string            `json:"type"` // e.g. "lights_on", "reserve_parking"
	Parameters map[string]string `json:"parameters"`
}

// AutomationRule is an admin-defined "when X happens, do Y" rule.
type AutomationRule struct {
	ID          int     `json:"id"`
	Trigger     Trigger `json:"trigger"`
	Action      Action  `json:"action"`
	Active      bool    `json:"active"`
	Description string  `json:"description"`
}

// OfficeState is the singleton office document, keyed by "office".
type OfficeState struct {
	Temperature int    `json:"temperature"`
	HVACMode    string `json:"hvac_mode"` // "off", "heat", "cool"
	LightsOn    bool   `json:"lights_on"`
}

// ParkingSpot is one spot of the fixed 1..N set.
type ParkingSpot struct {
	ID          int  `json:"id"`
	IsAvailable bool `json:"is_available"`
}

// Reservation is a claim on a parking spot that has not been checked into yet.
type Reservation struct {
	SpotID int    `json:"spot_id"`
	Holder string `json:"holder"`
}

// Checkin marks a spot as physically occupied. At most one per spot.
type Checkin struct {
	SpotID int    `json:"spot_id"`
	Holder string `json:"holder"`
}

// SpotStatus is the detailed per-spot view returned by the all-spots query.
type SpotStatus struct {
	ID          int    `json:"id"`
	IsAvailable bool   `json:"is_available"`
	Status      string `json:"status"` // "occupied", "reserved", "available"
	Holder      string `json:"user,omitempty"`
}

// Violation reports a spot reserved by more than one distinct holder.
type Violation struct {
	SpotID    int      `json:"spot_id"`
	Violation string   `json:"violation"`
	Holders   []string `json:"users"`
}

// MeetingRoom is a static catalog entry.
type MeetingRoom struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Equipment []string `json:"equipment"`
}

// Booking claims a room for the half-open interval [StartTime, EndTime).
type Booking struct {
	BookingID string    `json:"booking_id"`
	RoomID    int       `json:"room_id"`
	Holder    string    `json:"username"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// RoomStatus is the per-room view at a point in time.
type RoomStatus struct {
	Room    MeetingRoom `json:"room"`
	Status  string      `json:"status"` // "booked" or "available"
	Booking *Booking    `json:"booking,omitempty"`
}

// User is an identity record. Password holds the bcrypt hash.
type User struct {
	Username string `json:"username"`
	Password string `json:"-"`
	Role     string `json:"role"` // "admin" or "user"
}

// Scene is a named bundle of environmental settings.
type Scene struct {
	Name     string            `json:"name"`
	Settings map[string]string `json:"settings"`
}

// EnergySavings is the office energy-savings placeholder document.
type EnergySavings struct {
	HVACRuntimeReducedHours int `json:"hvac_runtime_reduced_hours"`
	LightsOffHours          int `json:"lights_off_hours"`
}
