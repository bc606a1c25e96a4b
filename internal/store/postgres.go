package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"officehub/internal/models"
)

// ruleIDLock serializes rule id assignment across connections.
const ruleIDLock = 0x0ff1ce01

const officeKey = "office"

// Postgres implements Store on top of a pgx connection pool.
type Postgres struct {
	pool      *pgxpool.Pool
	spotCount int
}

// NewPostgres opens a connection pool. spotCount is the size of the fixed
// parking lot seeded on first startup.
func NewPostgres(ctx context.Context, url string, spotCount int) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{pool: pool, spotCount: spotCount}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// Pool returns the underlying pgxpool.Pool.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS automation_rules (
		id INT PRIMARY KEY,
		trigger_type TEXT NOT NULL,
		trigger_condition JSONB NOT NULL DEFAULT '{}',
		action_type TEXT NOT NULL,
		action_parameters JSONB NOT NULL DEFAULT '{}',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		description TEXT NOT NULL DEFAULT 'Custom rule'
	)`,
	`CREATE TABLE IF NOT EXISTS office_state (
		id TEXT PRIMARY KEY,
		temperature INT NOT NULL,
		hvac_mode TEXT NOT NULL,
		lights_on BOOLEAN NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS parking_spots (
		id INT PRIMARY KEY,
		is_available BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS parking_reservations (
		spot_id INT NOT NULL,
		holder TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS parking_checkins (
		spot_id INT PRIMARY KEY,
		holder TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS meeting_rooms (
		id INT PRIMARY KEY,
		name TEXT NOT NULL,
		capacity INT NOT NULL,
		equipment TEXT[] NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS meeting_bookings (
		booking_id UUID PRIMARY KEY,
		room_id INT NOT NULL REFERENCES meeting_rooms(id),
		holder TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS meeting_bookings_room_time
		ON meeting_bookings (room_id, start_time, end_time)`,
	`CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password TEXT NOT NULL,
		role TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_lower
		ON users (LOWER(username))`,
	`CREATE TABLE IF NOT EXISTS scenes (
		name TEXT PRIMARY KEY,
		settings JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS energy_savings (
		id TEXT PRIMARY KEY,
		hvac_runtime_reduced_hours INT NOT NULL DEFAULT 0,
		lights_off_hours INT NOT NULL DEFAULT 0
	)`,
}

// Init creates the schema and seeds the office state, the parking lot, the
// room catalog, default rules and default users when the tables are empty.
func (p *Postgres) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if _, err := p.pool.Exec(ctx,
		`INSERT INTO office_state (id, temperature, hvac_mode, lights_on)
		 VALUES ($1, 21, 'off', FALSE) ON CONFLICT (id) DO NOTHING`, officeKey); err != nil {
		return fmt.Errorf("seed office state: %w", err)
	}

	var spots int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM parking_spots`).Scan(&spots); err != nil {
		return err
	}
	if spots == 0 {
		log.Printf("STORE: Initializing %d parking spots", p.spotCount)
		for i := 1; i <= p.spotCount; i++ {
			if _, err := p.pool.Exec(ctx,
				`INSERT INTO parking_spots (id, is_available) VALUES ($1, TRUE)`, i); err != nil {
				return fmt.Errorf("seed parking spots: %w", err)
			}
		}
	}

	var rooms int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM meeting_rooms`).Scan(&rooms); err != nil {
		return err
	}
	if rooms == 0 {
		log.Println("STORE: Initializing meeting room catalog")
		for _, r := range DefaultRooms() {
			if _, err := p.pool.Exec(ctx,
				`INSERT INTO meeting_rooms (id, name, capacity, equipment) VALUES ($1, $2, $3, $4)`,
				r.ID, r.Name, r.Capacity, r.Equipment); err != nil {
				return fmt.Errorf("seed meeting rooms: %w", err)
			}
		}
	}

	var rules int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM automation_rules`).Scan(&rules); err != nil {
		return err
	}
	if rules == 0 {
		log.Println("STORE: Initializing default automation rules")
		for _, r := range DefaultRules() {
			if _, err := p.pool.Exec(ctx,
				`INSERT INTO automation_rules (id, trigger_type, trigger_condition, action_type, action_parameters, active, description)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				r.ID, r.Trigger.Type, r.Trigger.Condition, r.Action.Type, r.Action.Parameters, r.Active, r.Description); err != nil {
				return fmt.Errorf("seed automation rules: %w", err)
			}
		}
	}

	var users int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		return err
	}
	if users == 0 {
		log.Println("STORE: Initializing default users")
		for _, u := range defaultUserSeeds() {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.plainPassword), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			if _, err := p.pool.Exec(ctx,
				`INSERT INTO users (username, password, role) VALUES ($1, $2, $3)`,
				u.username, string(hash), u.role); err != nil {
				return fmt.Errorf("seed users: %w", err)
			}
		}
	}

	return nil
}

// --- Automation rules ---

// CreateRule assigns the next sequential id (max existing + 1) and persists
// the rule as active. Id assignment takes an advisory lock so two concurrent
// creations never pick the same id.
func (p *Postgres) CreateRule(ctx context.Context, trigger models.Trigger, action models.Action, description string) (*models.AutomationRule, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ruleIDLock); err != nil {
		return nil, err
	}

	var id int
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM automation_rules`).Scan(&id); err != nil {
		return nil, err
	}

	rule := &models.AutomationRule{
		ID:          id,
		Trigger:     trigger,
		Action:      action,
		Active:      true,
		Description: description,
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO automation_rules (id, trigger_type, trigger_condition, action_type, action_parameters, active, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rule.ID, rule.Trigger.Type, rule.Trigger.Condition, rule.Action.Type, rule.Action.Parameters, rule.Active, rule.Description); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rule, nil
}

const ruleColumns = `id, trigger_type, trigger_condition, action_type, action_parameters, active, description`

func scanRule(row pgx.Row) (*models.AutomationRule, error) {
	var r models.AutomationRule
	err := row.Scan(&r.ID, &r.Trigger.Type, &r.Trigger.Condition, &r.Action.Type, &r.Action.Parameters, &r.Active, &r.Description)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Postgres) queryRules(ctx context.Context, query string, args ...any) ([]models.AutomationRule, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []models.AutomationRule{}
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

func (p *Postgres) ListRules(ctx context.Context) ([]models.AutomationRule, error) {
	return p.queryRules(ctx, `SELECT `+ruleColumns+` FROM automation_rules ORDER BY id`)
}

func (p *Postgres) FindActiveRules(ctx context.Context, triggerType string) ([]models.AutomationRule, error) {
	return p.queryRules(ctx,
		`SELECT `+ruleColumns+` FROM automation_rules WHERE trigger_type = $1 AND active ORDER BY id`, triggerType)
}

func (p *Postgres) GetRule(ctx context.Context, id int) (*models.AutomationRule, error) {
	rule, err := scanRule(p.pool.QueryRow(ctx,
		`SELECT `+ruleColumns+` FROM automation_rules WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rule, err
}

func (p *Postgres) SetRuleActive(ctx context.Context, id int, active bool) error {
	tag, err := p.pool.Exec(ctx, `UPDATE automation_rules SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteRule(ctx context.Context, id int) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM automation_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Office state ---

func (p *Postgres) OfficeState(ctx context.Context) (*models.OfficeState, error) {
	var s models.OfficeState
	err := p.pool.QueryRow(ctx,
		`SELECT temperature, hvac_mode, lights_on FROM office_state WHERE id = $1`, officeKey).
		Scan(&s.Temperature, &s.HVACMode, &s.LightsOn)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *Postgres) SetLights(ctx context.Context, on bool) error {
	_, err := p.pool.Exec(ctx, `UPDATE office_state SET lights_on = $2 WHERE id = $1`, officeKey, on)
	return err
}

func (p *Postgres) SetHVACMode(ctx context.Context, mode string) error {
	_, err := p.pool.Exec(ctx, `UPDATE office_state SET hvac_mode = $2 WHERE id = $1`, officeKey, mode)
	return err
}

func (p *Postgres) SetTemperature(ctx context.Context, temperature int) error {
	_, err := p.pool.Exec(ctx, `UPDATE office_state SET temperature = $2 WHERE id = $1`, officeKey, temperature)
	return err
}

// --- Parking ---

func (p *Postgres) ListSpots(ctx context.Context) ([]models.ParkingSpot, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, is_available FROM parking_spots ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	spots := []models.ParkingSpot{}
	for rows.Next() {
		var s models.ParkingSpot
		if err := rows.Scan(&s.ID, &s.IsAvailable); err != nil {
			return nil, err
		}
		spots = append(spots, s)
	}
	return spots, rows.Err()
}

func (p *Postgres) AvailableSpots(ctx context.Context) ([]int, error) {
	rows, err := p.pool.Query(ctx, `SELECT id FROM parking_spots WHERE is_available ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReserveSpot flips availability and inserts the reservation in one
// transaction. The conditional UPDATE is the compare-and-swap: of two
// concurrent reservations for the same spot exactly one sees a row change.
func (p *Postgres) ReserveSpot(ctx context.Context, spotID int, holder string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE parking_spots SET is_available = FALSE WHERE id = $1 AND is_available`, spotID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM parking_spots WHERE id = $1)`, spotID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrSpotNotFound
		}
		return ErrSpotUnavailable
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO parking_reservations (spot_id, holder) VALUES ($1, $2)`, spotID, holder); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (p *Postgres) HasReservation(ctx context.Context, spotID int, holder string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM parking_reservations WHERE spot_id = $1 AND holder = $2)`,
		spotID, holder).Scan(&exists)
	return exists, err
}

// DeleteReservation removes exactly one matching reservation row.
func (p *Postgres) DeleteReservation(ctx context.Context, spotID int, holder string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM parking_reservations WHERE ctid IN (
			SELECT ctid FROM parking_reservations WHERE spot_id = $1 AND holder = $2 LIMIT 1
		)`, spotID, holder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoReservation
	}
	return nil
}

func (p *Postgres) ReservationsForHolder(ctx context.Context, holder string) ([]int, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT spot_id FROM parking_reservations WHERE holder = $1 ORDER BY spot_id`, holder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *Postgres) AllReservations(ctx context.Context) ([]models.Reservation, error) {
	rows, err := p.pool.Query(ctx, `SELECT spot_id, holder FROM parking_reservations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := []models.Reservation{}
	for rows.Next() {
		var r models.Reservation
		if err := rows.Scan(&r.SpotID, &r.Holder); err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

func (p *Postgres) GetCheckin(ctx context.Context, spotID int) (*models.Checkin, error) {
	var c models.Checkin
	err := p.pool.QueryRow(ctx,
		`SELECT spot_id, holder FROM parking_checkins WHERE spot_id = $1`, spotID).
		Scan(&c.SpotID, &c.Holder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (p *Postgres) AllCheckins(ctx context.Context) ([]models.Checkin, error) {
	rows, err := p.pool.Query(ctx, `SELECT spot_id, holder FROM parking_checkins`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checkins := []models.Checkin{}
	for rows.Next() {
		var c models.Checkin
		if err := rows.Scan(&c.SpotID, &c.Holder); err != nil {
			return nil, err
		}
		checkins = append(checkins, c)
	}
	return checkins, rows.Err()
}

// CreateCheckin relies on the primary key over spot_id: the first check-in
// wins, later ones see zero rows inserted.
func (p *Postgres) CreateCheckin(ctx context.Context, spotID int, holder string) error {
	tag, err := p.pool.Exec(ctx,
		`INSERT INTO parking_checkins (spot_id, holder) VALUES ($1, $2)
		 ON CONFLICT (spot_id) DO NOTHING`, spotID, holder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSpotOccupied
	}
	return nil
}

// ReleaseSpotIfUnclaimed marks the spot available only when no check-in and
// no reservation remain, all in one statement.
func (p *Postgres) ReleaseSpotIfUnclaimed(ctx context.Context, spotID int) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE parking_spots SET is_available = TRUE
		 WHERE id = $1
		   AND NOT EXISTS (SELECT 1 FROM parking_checkins WHERE spot_id = $1)
		   AND NOT EXISTS (SELECT 1 FROM parking_reservations WHERE spot_id = $1)`, spotID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (p *Postgres) ClearSpot(ctx context.Context, spotID int) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM parking_checkins WHERE spot_id = $1`, spotID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM parking_reservations WHERE spot_id = $1`, spotID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE parking_spots SET is_available = TRUE WHERE id = $1`, spotID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// --- Meeting rooms ---

func (p *Postgres) ListRooms(ctx context.Context) ([]models.MeetingRoom, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, capacity, equipment FROM meeting_rooms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := []models.MeetingRoom{}
	for rows.Next() {
		var r models.MeetingRoom
		if err := rows.Scan(&r.ID, &r.Name, &r.Capacity, &r.Equipment); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// CreateBooking locks the room row, runs the half-open overlap check and
// inserts, all in one transaction. Concurrent bookings for the same room
// serialize on the row lock.
func (p *Postgres) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var roomID int
	err = tx.QueryRow(ctx, `SELECT id FROM meeting_rooms WHERE id = $1 FOR UPDATE`, booking.RoomID).Scan(&roomID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrRoomNotFound
	}
	if err != nil {
		return err
	}

	var conflict bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM meeting_bookings
		 WHERE room_id = $1 AND start_time < $3 AND end_time > $2)`,
		booking.RoomID, booking.StartTime, booking.EndTime).Scan(&conflict); err != nil {
		return err
	}
	if conflict {
		return ErrBookingConflict
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO meeting_bookings (booking_id, room_id, holder, start_time, end_time)
		 VALUES ($1, $2, $3, $4, $5)`,
		booking.BookingID, booking.RoomID, booking.Holder, booking.StartTime, booking.EndTime); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.BookingID, &b.RoomID, &b.Holder, &b.StartTime, &b.EndTime)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const bookingColumns = `booking_id, room_id, holder, start_time, end_time`

func (p *Postgres) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := scanBooking(p.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM meeting_bookings WHERE booking_id = $1`, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func (p *Postgres) DeleteBooking(ctx context.Context, bookingID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM meeting_bookings WHERE booking_id = $1`, bookingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (p *Postgres) BookingsForHolder(ctx context.Context, holder string, now time.Time) ([]models.Booking, error) {
	return p.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM meeting_bookings
		 WHERE holder = $1 AND end_time > $2 ORDER BY start_time`, holder, now)
}

func (p *Postgres) BookingsOverlapping(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	return p.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM meeting_bookings
		 WHERE start_time < $2 AND end_time > $1 ORDER BY start_time`, from, to)
}

func (p *Postgres) CurrentBooking(ctx context.Context, roomID int, now time.Time) (*models.Booking, error) {
	b, err := scanBooking(p.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM meeting_bookings
		 WHERE room_id = $1 AND start_time <= $2 AND end_time > $2
		 ORDER BY start_time LIMIT 1`, roomID, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, err
}

func (p *Postgres) DeleteExpiredBookings(ctx context.Context, now time.Time) (int, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM meeting_bookings WHERE end_time < $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// --- Users ---

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := p.pool.QueryRow(ctx,
		`SELECT username, password, role FROM users WHERE LOWER(username) = LOWER($1)`, username).
		Scan(&u.Username, &u.Password, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	// The LOWER(username) index makes this conflict on case-insensitive
	// duplicates too, matching the lookup semantics.
	tag, err := p.pool.Exec(ctx,
		`INSERT INTO users (username, password, role) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`, user.Username, user.Password, user.Role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserExists
	}
	return nil
}

func (p *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT username, password, role FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Username, &u.Password, &u.Role); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *Postgres) SetUserRole(ctx context.Context, username, role string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET role = $2 WHERE username = $1`, username, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SetUserPassword(ctx context.Context, username, passwordHash string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET password = $2 WHERE username = $1`, username, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteUser(ctx context.Context, username string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&n)
	return n, err
}

// --- Scenes and energy savings ---

func (p *Postgres) CreateScene(ctx context.Context, scene *models.Scene) error {
	tag, err := p.pool.Exec(ctx,
		`INSERT INTO scenes (name, settings) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		scene.Name, scene.Settings)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSceneExists
	}
	return nil
}

func (p *Postgres) EnergySavings(ctx context.Context) (*models.EnergySavings, error) {
	var s models.EnergySavings
	err := p.pool.QueryRow(ctx,
		`SELECT hvac_runtime_reduced_hours, lights_off_hours FROM energy_savings WHERE id = $1`, officeKey).
		Scan(&s.HVACRuntimeReducedHours, &s.LightsOffHours)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := p.pool.Exec(ctx,
			`INSERT INTO energy_savings (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, officeKey); err != nil {
			return nil, err
		}
		return &models.EnergySavings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
