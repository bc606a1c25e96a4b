package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"officehub/internal/models"
	"officehub/internal/store"
)

// ActionFunc executes one action with its rule-authored parameters and the
// attributes of the event that triggered it.
type ActionFunc func(ctx context.Context, params map[string]string, event map[string]any) error

// Registry maps action types to handlers. Unknown types are a soft failure:
// logged, never propagated, so one bad rule cannot abort processing of the
// rest.
type Registry struct {
	store      store.Store
	mqttClient mqtt.Client
	handlers   map[string]ActionFunc
}

// NewRegistry builds a registry with the built-in office actions installed.
// mqttClient may be nil; actuator publishes are then skipped.
func NewRegistry(st store.Store, mqttClient mqtt.Client) *Registry {
	r := &Registry{
		store:      st,
		mqttClient: mqttClient,
		handlers:   make(map[string]ActionFunc),
	}
	r.Register("lights_on", r.actionLightsOn)
	r.Register("lights_off", r.actionLightsOff)
	r.Register("hvac_off", r.actionHVACOff)
	r.Register("reserve_parking", r.actionReserveParking)
	r.Register("clear_parking", r.actionClearParking)
	return r
}

// Register installs a handler for an action type, replacing any previous one.
func (r *Registry) Register(actionType string, fn ActionFunc) {
	r.handlers[actionType] = fn
}

// Dispatch looks up and invokes the handler for the action. It returns true
// when a handler was found and invoked; handler errors are logged, not
// returned, per the independent-effects contract.
func (r *Registry) Dispatch(ctx context.Context, action models.Action, sourceDescription string, event map[string]any) bool {
	log.Printf("AUTOMATION: %s triggered action: '%s' with params %v", sourceDescription, action.Type, action.Parameters)
	handler, ok := r.handlers[action.Type]
	if !ok {
		log.Printf("AUTOMATION: Unknown action '%s' requested by %s", action.Type, sourceDescription)
		return false
	}
	if err := handler(ctx, action.Parameters, event); err != nil {
		log.Printf("AUTOMATION: Action '%s' from %s failed: %v", action.Type, sourceDescription, err)
	}
	return true
}

func (r *Registry) publishActuator(topic string, payload any) {
	if r.mqttClient == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	r.mqttClient.Publish(topic, 1, false, data)
}

func (r *Registry) actionLightsOn(ctx context.Context, params map[string]string, event map[string]any) error {
	if err := r.store.SetLights(ctx, true); err != nil {
		return err
	}
	r.publishActuator("office/actuators/lights", map[string]bool{"on": true})
	log.Println("AUTOMATION: Lights turned ON by rule")
	return nil
}

func (r *Registry) actionLightsOff(ctx context.Context, params map[string]string, event map[string]any) error {
	if err := r.store.SetLights(ctx, false); err != nil {
		return err
	}
	r.publishActuator("office/actuators/lights", map[string]bool{"on": false})
	log.Println("AUTOMATION: Lights turned OFF by rule")
	return nil
}

func (r *Registry) actionHVACOff(ctx context.Context, params map[string]string, event map[string]any) error {
	if err := r.store.SetHVACMode(ctx, "off"); err != nil {
		return err
	}
	r.publishActuator("office/actuators/hvac", map[string]string{"mode": "off"})
	log.Println("AUTOMATION: HVAC turned OFF by rule")
	return nil
}

// actionReserveParking reserves the configured spot for the user carried in
// the event context. A missing or unavailable spot is logged and skipped
// rather than failing the dispatch.
func (r *Registry) actionReserveParking(ctx context.Context, params map[string]string, event map[string]any) error {
	spotRaw, ok := params["spot_id"]
	if !ok {
		log.Println("AUTOMATION: 'reserve_parking' action missing spot_id parameter")
		return nil
	}
	username, _ := event["username"].(string)
	if username == "" {
		log.Println("AUTOMATION: 'reserve_parking' action missing username context")
		return nil
	}
	spotID, err := strconv.Atoi(spotRaw)
	if err != nil {
		log.Printf("AUTOMATION: 'reserve_parking' has invalid spot_id %q", spotRaw)
		return nil
	}
	if err := r.store.ReserveSpot(ctx, spotID, username); err != nil {
		log.Printf("AUTOMATION: Could not reserve spot %d for '%s': %v", spotID, username, err)
		return nil
	}
	log.Printf("AUTOMATION: Reserved parking spot %d for '%s' via rule", spotID, username)
	return nil
}

func (r *Registry) actionClearParking(ctx context.Context, params map[string]string, event map[string]any) error {
	spotRaw, ok := params["spot_id"]
	if !ok {
		log.Println("AUTOMATION: 'clear_parking' action missing spot_id parameter")
		return nil
	}
	spotID, err := strconv.Atoi(spotRaw)
	if err != nil {
		return fmt.Errorf("invalid spot_id %q", spotRaw)
	}
	if err := r.store.ClearSpot(ctx, spotID); err != nil {
		return err
	}
	log.Printf("AUTOMATION: Cleared parking spot %d via rule", spotID)
	return nil
}
