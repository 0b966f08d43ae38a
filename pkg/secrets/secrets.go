package secrets

import (
	"context"
	"errors"
	"os"
	"sync"

	"mypetsvoice/backend/pkg/logger"
)

// Common errors
var (
	ErrSecretNotFound        = errors.New("secret not found")
	ErrManagerNotInitialized = errors.New("secrets manager not initialized")
)

// Manager provides access to secrets from various sources
type Manager interface {
	// GetSecret retrieves a secret by key
	GetSecret(ctx context.Context, key string) (string, error)

	// GetSecretWithDefault retrieves a secret with a default value if not found
	GetSecretWithDefault(ctx context.Context, key, defaultValue string) string
}

var (
	defaultManager Manager
	managerOnce    sync.Once
)

// Init initializes the default secrets manager. Vault is used when
// VAULT_ENABLED is set; otherwise secrets resolve from the environment.
func Init(log *logger.Logger) error {
	var err error
	managerOnce.Do(func() {
		manager, initErr := NewVaultManager(log)
		if initErr != nil {
			err = initErr
			return
		}
		defaultManager = manager
	})
	return err
}

// GetSecret retrieves a secret from the default manager
func GetSecret(ctx context.Context, key string) (string, error) {
	if defaultManager == nil {
		return "", ErrManagerNotInitialized
	}
	return defaultManager.GetSecret(ctx, key)
}

// GetSecretWithDefault retrieves a secret with a default value if not found
func GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	if defaultManager == nil {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return defaultValue
	}
	return defaultManager.GetSecretWithDefault(ctx, key, defaultValue)
}

// SetManager sets the default secrets manager (primarily used for testing)
func SetManager(manager Manager) {
	defaultManager = manager
}

// EnvManager resolves secrets from environment variables only
type EnvManager struct{}

// GetSecret retrieves a secret from the environment
func (EnvManager) GetSecret(ctx context.Context, key string) (string, error) {
	if v := os.Getenv(key); v != "" {
		return v, nil
	}
	return "", ErrSecretNotFound
}

// GetSecretWithDefault retrieves a secret with a default value if not found
func (EnvManager) GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
