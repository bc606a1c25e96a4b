package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"officehub/internal/models"
	"officehub/internal/store"
	"officehub/internal/utils"
)

// ErrInvalidRule rejects rules whose trigger or action lacks a type.
var ErrInvalidRule = errors.New("invalid rule structure: trigger and action must have a type")

// motionTopic is where motion sensors report: office/sensors/<area>/motion.
const motionTopic = "office/sensors/+/motion"

// Engine owns automation rules and runs events through them.
type Engine struct {
	store      store.Store
	actions    *Registry
	mqttClient mqtt.Client
}

// TestResult reports the outcome of a manual rule test.
type TestResult struct {
	RuleID   int    `json:"rule_id"`
	Executed bool   `json:"executed"`
	Message  string `json:"message"`
}

// NewEngine creates the rule engine. mqttClient may be nil when no broker is
// configured; sensor ingest is then disabled.
func NewEngine(st store.Store, mqttClient mqtt.Client) *Engine {
	return &Engine{
		store:      st,
		actions:    NewRegistry(st, mqttClient),
		mqttClient: mqttClient,
	}
}

// Actions exposes the dispatcher registry so callers can install custom
// handlers.
func (e *Engine) Actions() *Registry {
	return e.actions
}

// Start subscribes to the motion sensor topic.
func (e *Engine) Start() error {
	if e.mqttClient == nil {
		log.Println("ENGINE: No MQTT client, sensor ingest disabled")
		return nil
	}
	log.Printf("ENGINE: Subscribing to MQTT topic: %s", motionTopic)
	if token := e.mqttClient.Subscribe(motionTopic, 1, e.onMotionMessage); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Println("ENGINE: Started")
	return nil
}

// Stop disconnects the MQTT client.
func (e *Engine) Stop() {
	if e.mqttClient != nil {
		e.mqttClient.Disconnect(250)
	}
	log.Println("ENGINE: Stopped")
}

// onMotionMessage converts a sensor report into a motion event. The area
// comes from the topic; the payload may override it.
func (e *Engine) onMotionMessage(client mqtt.Client, msg mqtt.Message) {
	area := utils.ParseTopicArea(msg.Topic())
	var payload struct {
		Area string `json:"area"`
	}
	if err := json.Unmarshal(msg.Payload(), &payload); err == nil && payload.Area != "" {
		area = payload.Area
	}
	if area == "" {
		area = "general"
	}
	e.ProcessEvent(context.Background(), "motion", map[string]any{"area": area})
}

// CreateRule validates the rule structure, assigns the next sequential id and
// persists it as active.
func (e *Engine) CreateRule(ctx context.Context, trigger models.Trigger, action models.Action, description string) (*models.AutomationRule, error) {
	if trigger.Type == "" || action.Type == "" {
		return nil, ErrInvalidRule
	}
	if description == "" {
		description = "Custom rule"
	}
	rule, err := e.store.CreateRule(ctx, trigger, action, description)
	if err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}
	log.Printf("ENGINE: Created new rule #%d (%s -> %s)", rule.ID, rule.Trigger.Type, rule.Action.Type)
	return rule, nil
}

func (e *Engine) ListRules(ctx context.Context) ([]models.AutomationRule, error) {
	return e.store.ListRules(ctx)
}

// ToggleRule flips the active flag and returns the updated rule.
func (e *Engine) ToggleRule(ctx context.Context, id int) (*models.AutomationRule, error) {
	rule, err := e.store.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	rule.Active = !rule.Active
	if err := e.store.SetRuleActive(ctx, id, rule.Active); err != nil {
		return nil, err
	}
	log.Printf("ENGINE: Toggled rule %d to %s", id, activeWord(rule.Active))
	return rule, nil
}

func activeWord(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func (e *Engine) DeleteRule(ctx context.Context, id int) error {
	if err := e.store.DeleteRule(ctx, id); err != nil {
		return err
	}
	log.Printf("ENGINE: Rule %d deleted", id)
	return nil
}

// TestRule runs the rule's action once, bypassing trigger matching but still
// honoring the active flag: an inactive rule is skipped with an informational
// result instead of an error.
func (e *Engine) TestRule(ctx context.Context, id int) (*TestResult, error) {
	rule, err := e.store.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rule.Active {
		return &TestResult{
			RuleID:  id,
			Message: fmt.Sprintf("Rule %d is inactive. Test not run.", id),
		}, nil
	}
	source := fmt.Sprintf("Test for rule #%d", id)
	e.actions.Dispatch(ctx, rule.Action, source, map[string]any{})
	return &TestResult{
		RuleID:   id,
		Executed: true,
		Message:  fmt.Sprintf("Test triggered for rule #%d. Action '%s' executed.", id, rule.Action.Type),
	}, nil
}

// ProcessEvent runs an event through every active rule with a matching
// trigger type and dispatches the actions of those whose conditions hold
// against the attribute snapshot. Every matching rule executes
// independently; it returns how many were triggered.
func (e *Engine) ProcessEvent(ctx context.Context, eventType string, attributes map[string]any) int {
	log.Printf("ENGINE: Processing event '%s' with attributes: %v", eventType, attributes)
	rules, err := e.store.FindActiveRules(ctx, eventType)
	if err != nil {
		log.Printf("ENGINE: Failed to load rules for event '%s': %v", eventType, err)
		return 0
	}

	triggered := 0
	for _, rule := range rules {
		if !Matches(rule.Trigger.Condition, attributes) {
			continue
		}
		source := fmt.Sprintf("rule #%d ('%s')", rule.ID, rule.Description)
		e.actions.Dispatch(ctx, rule.Action, source, attributes)
		triggered++
	}

	if triggered > 0 {
		log.Printf("ENGINE: Event '%s' triggered %d rule(s)", eventType, triggered)
	}
	return triggered
}
