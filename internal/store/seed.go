package store

import "officehub/internal/models"

// DefaultRooms is the static meeting room catalog seeded on first startup.
func DefaultRooms() []models.MeetingRoom {
	return []models.MeetingRoom{
		{ID: 1, Name: "Conference Room A", Capacity: 10, Equipment: []string{"projector", "whiteboard"}},
		{ID: 2, Name: "Huddle Room", Capacity: 4, Equipment: []string{"tv", "whiteboard"}},
		{ID: 3, Name: "Board Room", Capacity: 16, Equipment: []string{"projector", "video_conference", "whiteboard"}},
	}
}

// DefaultRules are the automation rules installed on an empty database.
func DefaultRules() []models.AutomationRule {
	return []models.AutomationRule{
		{
			ID:          1,
			Trigger:     models.Trigger{Type: "motion", Condition: map[string]string{"area": "main_office"}},
			Action:      models.Action{Type: "lights_on", Parameters: map[string]string{}},
			Active:      true,
			Description: "When motion is detected in the Main Office, turn the lights on.",
		},
		{
			ID:          2,
			Trigger:     models.Trigger{Type: "motion", Condition: map[string]string{"area": "meeting_room_empty"}},
			Action:      models.Action{Type: "lights_off", Parameters: map[string]string{}},
			Active:      true,
			Description: "When the meeting room reports empty, turn the lights off.",
		},
		{
			ID:          3,
			Trigger:     models.Trigger{Type: "time", Condition: map[string]string{"time": "19:00"}},
			Action:      models.Action{Type: "hvac_off", Parameters: map[string]string{}},
			Active:      false,
			Description: "Turn off HVAC after business hours (7 PM).",
		},
	}
}

type userSeed struct {
	username      string
	plainPassword string
	role          string
}

func defaultUserSeeds() []userSeed {
	return []userSeed{
		{username: "admin1", plainPassword: "adminpass1", role: "admin"},
		{username: "user1", plainPassword: "userpass1", role: "user"},
	}
}
