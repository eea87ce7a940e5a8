// Package storage defines the key-value persistence used for hub snapshots
// and sessions, and a registry of the available backends.
package storage

import (
	"context"
	"fmt"
)

// Keys used by the store and the identity provider
const (
	AuthTokenKey = "auth_token"
	AuthUserKey  = "auth_user"
)

// SharedDataKey holds the snapshot of a store shared by every user
const SharedDataKey = "app_data_shared"

// AppDataKey is the snapshot key of a user
func AppDataKey(userID fmt.Stringer) string {
	return "app_data_" + userID.String()
}

// CurrentHubKey is the selected-hub key of a user
func CurrentHubKey(userID fmt.Stringer) string {
	return "current_hub_" + userID.String()
}

// KV is a string key-value store. Get reports a missing key with ok=false
// and a nil error.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Backend is a KV that owns a connection
type Backend interface {
	KV

	// Name returns the backend identifier (memory, redis, postgres, ...)
	Name() string

	// HealthCheck verifies the connection is alive
	HealthCheck(ctx context.Context) error

	// Close releases the connection
	Close() error
}
