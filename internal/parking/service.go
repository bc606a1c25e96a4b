package parking

import (
	"context"
	"fmt"
	"log"
	"sort"

	"officehub/internal/models"
	"officehub/internal/store"
)

// EventSink receives domain events for the automation engine. Decoupled as an
// interface so the service does not depend on the engine package.
type EventSink interface {
	ProcessEvent(ctx context.Context, eventType string, attributes map[string]any) int
}

// Service implements parking spot reservations and check-ins.
type Service struct {
	store  store.Store
	events EventSink
}

func NewService(st store.Store, events EventSink) *Service {
	return &Service{store: st, events: events}
}

// Reserve marks a spot for the given holder. The spot flips to unavailable
// atomically, so concurrent reservations for the same spot yield exactly one
// winner.
func (s *Service) Reserve(ctx context.Context, spotID int, holder string) (*models.Reservation, error) {
	if err := s.store.ReserveSpot(ctx, spotID, holder); err != nil {
		return nil, err
	}
	log.Printf("PARKING: Spot %d reserved for %s", spotID, holder)
	return &models.Reservation{SpotID: spotID, Holder: holder}, nil
}

// GuestPass reserves a spot under the shared "guest" holder. Multiple guest
// passes may exist at once, each on its own spot.
func (s *Service) GuestPass(ctx context.Context, spotID int) (*models.Reservation, error) {
	return s.Reserve(ctx, spotID, "guest")
}

// Checkin records physical arrival at a reserved spot and emits a
// parking_checkin event. The first check-in on a spot wins; later ones fail.
func (s *Service) Checkin(ctx context.Context, spotID int, username string) (*models.Checkin, error) {
	ok, err := s.store.HasReservation(ctx, spotID, username)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, store.ErrNoReservation
	}
	if err := s.store.CreateCheckin(ctx, spotID, username); err != nil {
		return nil, err
	}
	checkin := &models.Checkin{SpotID: spotID, Holder: username}
	log.Printf("PARKING: %s checked in at spot %d", username, spotID)
	if s.events != nil {
		s.events.ProcessEvent(ctx, "parking_checkin", map[string]any{
			"spot_id":  spotID,
			"username": username,
		})
	}
	return checkin, nil
}

// Unreserve removes one reservation held by the user on the spot. The spot
// becomes available again only when no reservations and no check-in remain.
func (s *Service) Unreserve(ctx context.Context, spotID int, username string) error {
	if err := s.store.DeleteReservation(ctx, spotID, username); err != nil {
		return err
	}
	released, err := s.store.ReleaseSpotIfUnclaimed(ctx, spotID)
	if err != nil {
		return fmt.Errorf("release spot %d: %w", spotID, err)
	}
	if released {
		log.Printf("PARKING: Spot %d is available again", spotID)
	}
	log.Printf("PARKING: Reservation for %s on spot %d removed", username, spotID)
	return nil
}

// Clear force-frees a spot: drops every reservation and check-in and marks it
// available. Admin operation.
func (s *Service) Clear(ctx context.Context, spotID int) error {
	if err := s.store.ClearSpot(ctx, spotID); err != nil {
		return err
	}
	log.Printf("PARKING: Spot %d cleared", spotID)
	return nil
}

// Available lists spot ids currently open for reservation.
func (s *Service) Available(ctx context.Context) ([]int, error) {
	return s.store.AvailableSpots(ctx)
}

// AllSpots reports the status of every spot: occupied (checked in), reserved,
// or available, with the current holder when there is one.
func (s *Service) AllSpots(ctx context.Context) ([]models.SpotStatus, error) {
	spots, err := s.store.ListSpots(ctx)
	if err != nil {
		return nil, err
	}
	reservations, err := s.store.AllReservations(ctx)
	if err != nil {
		return nil, err
	}
	checkins, err := s.store.AllCheckins(ctx)
	if err != nil {
		return nil, err
	}

	reservedBy := make(map[int]string)
	for _, r := range reservations {
		if _, seen := reservedBy[r.SpotID]; !seen {
			reservedBy[r.SpotID] = r.Holder
		}
	}
	checkedInBy := make(map[int]string)
	for _, c := range checkins {
		checkedInBy[c.SpotID] = c.Holder
	}

	statuses := make([]models.SpotStatus, 0, len(spots))
	for _, spot := range spots {
		status := models.SpotStatus{ID: spot.ID, IsAvailable: spot.IsAvailable, Status: "available"}
		if holder, ok := checkedInBy[spot.ID]; ok {
			status.Status = "occupied"
			status.Holder = holder
		} else if holder, ok := reservedBy[spot.ID]; ok {
			status.Status = "reserved"
			status.Holder = holder
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// MyReservations lists the spot ids the user currently holds.
func (s *Service) MyReservations(ctx context.Context, username string) ([]int, error) {
	return s.store.ReservationsForHolder(ctx, username)
}

// Violations audits the reservation table for spots carrying more than one
// distinct holder. A healthy table never has any; entries indicate data
// imported from an external system or a bypassed API.
func (s *Service) Violations(ctx context.Context) ([]models.Violation, error) {
	reservations, err := s.store.AllReservations(ctx)
	if err != nil {
		return nil, err
	}
	holdersBySpot := make(map[int][]string)
	for _, r := range reservations {
		dup := false
		for _, h := range holdersBySpot[r.SpotID] {
			if h == r.Holder {
				dup = true
				break
			}
		}
		if !dup {
			holdersBySpot[r.SpotID] = append(holdersBySpot[r.SpotID], r.Holder)
		}
	}

	var violations []models.Violation
	for spotID, holders := range holdersBySpot {
		if len(holders) > 1 {
			violations = append(violations, models.Violation{
				SpotID:    spotID,
				Violation: "multiple holders",
				Holders:   holders,
			})
		}
	}
	sort.Slice(violations, func(i, j int) bool { return violations[i].SpotID < violations[j].SpotID })
	return violations, nil
}
