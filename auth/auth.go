package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"officehub/internal/models"
	"officehub/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	// ErrSessionsDisabled is returned by session operations when no Redis
	// client is configured.
	ErrSessionsDisabled = errors.New("session tokens are not enabled")
	// ErrLastAdmin protects the final admin account from demotion or
	// deletion.
	ErrLastAdmin = errors.New("cannot remove the last admin")
	// ErrSelfDelete stops admins from deleting their own account.
	ErrSelfDelete = errors.New("cannot delete your own account")
)

// EventSink receives domain events for the automation engine.
type EventSink interface {
	ProcessEvent(ctx context.Context, eventType string, attributes map[string]any) int
}

type AuthModule struct {
	store     store.Store
	redis     *redis.Client
	events    EventSink
	JWTSecret string
}

func NewAuthModule(st store.Store, redisClient *redis.Client, events EventSink, JWTSecret string) *AuthModule {
	return &AuthModule{
		store:     st,
		redis:     redisClient,
		events:    events,
		JWTSecret: JWTSecret,
	}
}

func generateSecureToken(length int) (string, error) {
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(randomBytes), nil
}

func (a *AuthModule) generateJWT(username, role string) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

func (a *AuthModule) authenticate(ctx context.Context, username, password string) (string, string, error) {
	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}
	return user.Username, user.Role, nil
}

// Login verifies credentials, signs a JWT and emits a user_login event so
// login-triggered automation rules fire.
func (a *AuthModule) Login(ctx context.Context, username, password string) (string, string, error) {
	canonical, role, err := a.authenticate(ctx, username, password)
	if err != nil {
		return "", "", err
	}
	token, err := a.generateJWT(canonical, role)
	if err != nil {
		return "", "", err
	}
	log.Printf("AUTH: %s logged in", canonical)
	if a.events != nil {
		a.events.ProcessEvent(ctx, "user_login", map[string]any{"username": canonical})
	}
	return token, role, nil
}

// LoginWithSession verifies credentials and stores an opaque token in Redis
// instead of issuing a JWT.
func (a *AuthModule) LoginWithSession(ctx context.Context, username, password string) (string, error) {
	if a.redis == nil {
		return "", ErrSessionsDisabled
	}
	canonical, role, err := a.authenticate(ctx, username, password)
	if err != nil {
		return "", err
	}
	token, err := generateSecureToken(32)
	if err != nil {
		return "", err
	}
	key := "session:" + token
	if err := a.redis.HSet(ctx, key, "username", canonical, "role", role).Err(); err != nil {
		return "", err
	}
	if err := a.redis.Expire(ctx, key, 24*time.Hour).Err(); err != nil {
		return "", err
	}
	if a.events != nil {
		a.events.ProcessEvent(ctx, "user_login", map[string]any{"username": canonical})
	}
	return token, nil
}

// ValidateTokenJWT parses and verifies a JWT, returning the username and
// role claims.
func (a *AuthModule) ValidateTokenJWT(ctx context.Context, token string) (string, string, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.JWTSecret), nil
	})
	if err != nil {
		return "", "", ErrInvalidToken
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return "", "", ErrInvalidToken
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return "", "", ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	return username, role, nil
}

// ValidateTokenSession resolves an opaque session token from Redis and
// slides its expiry.
func (a *AuthModule) ValidateTokenSession(ctx context.Context, token string) (string, string, error) {
	if a.redis == nil {
		return "", "", ErrInvalidToken
	}
	key := "session:" + token
	fields, err := a.redis.HGetAll(ctx, key).Result()
	if err != nil {
		return "", "", err
	}
	if len(fields) == 0 {
		return "", "", ErrInvalidToken
	}

	ttl, err := a.redis.TTL(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return "", "", err
	}
	if ttl < 20*time.Hour {
		if err := a.redis.Expire(ctx, key, 24*time.Hour).Err(); err != nil {
			return "", "", err
		}
	}
	return fields["username"], fields["role"], nil
}

// Logout drops a Redis session. JWTs expire on their own, so logging out a
// JWT bearer is a no-op.
func (a *AuthModule) Logout(ctx context.Context, token string) error {
	if a.redis == nil {
		return nil
	}
	return a.redis.Del(ctx, "session:"+token).Err()
}

// CreateUser registers a new account with the given role.
func (a *AuthModule) CreateUser(ctx context.Context, username, password, role string) error {
	if role != "admin" && role != "user" {
		role = "user"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &models.User{Username: username, Password: string(hashed), Role: role}
	if err := a.store.CreateUser(ctx, user); err != nil {
		return err
	}
	log.Printf("AUTH: Created user %s (role %s)", username, role)
	return nil
}

// SetRole changes a user's role. Demoting the last admin is refused.
func (a *AuthModule) SetRole(ctx context.Context, username, role string) error {
	if role != "admin" && role != "user" {
		return errors.New("unknown role: " + role)
	}
	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.Role == "admin" && role != "admin" {
		admins, err := a.store.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	return a.store.SetUserRole(ctx, user.Username, role)
}

// SetPassword rehashes and stores a new password.
func (a *AuthModule) SetPassword(ctx context.Context, username, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return a.store.SetUserPassword(ctx, username, string(hashed))
}

// DeleteUser removes an account. The requester cannot delete themselves and
// the last admin cannot be deleted.
func (a *AuthModule) DeleteUser(ctx context.Context, username, requester string) error {
	user, err := a.store.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.Username == requester {
		return ErrSelfDelete
	}
	if user.Role == "admin" {
		admins, err := a.store.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}
	if err := a.store.DeleteUser(ctx, user.Username); err != nil {
		return err
	}
	log.Printf("AUTH: User %s deleted by %s", user.Username, requester)
	return nil
}

func (a *AuthModule) ListUsers(ctx context.Context) ([]string, error) {
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names, nil
}
