package models

import "officehub/internal/models"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type PasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type RuleRequest struct {
	Trigger     models.Trigger `json:"trigger" binding:"required"`
	Action      models.Action  `json:"action" binding:"required"`
	Description string         `json:"description"`
}

type MotionRequest struct {
	Area string `json:"area" binding:"required"`
}

type SceneRequest struct {
	Name     string            `json:"name" binding:"required"`
	Settings map[string]string `json:"settings"`
}

type SpotRequest struct {
	SpotID int `json:"spot_id" binding:"required"`
}

type BookRequest struct {
	RoomID          int    `json:"room_id" binding:"required"`
	StartTime       string `json:"start_time" binding:"required"` // RFC 3339
	DurationMinutes int    `json:"duration_minutes" binding:"required"`
}

type TemperatureRequest struct {
	Temperature float64 `json:"temperature" binding:"required"`
}

type HVACModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type LightsRequest struct {
	State string `json:"state" binding:"required"` // "on" or "off"
}
