package middleware

import "officehub/auth"

type MiddlewareManager struct {
	auth *auth.AuthModule
}

func NewMiddlewareManager(authModule *auth.AuthModule) *MiddlewareManager {
	return &MiddlewareManager{auth: authModule}
}
