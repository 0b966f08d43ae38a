package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"mypetsvoice/backend/pkg/logger"

	vault "github.com/hashicorp/vault/api"
)

var (
	ErrNoVaultToken   = errors.New("no vault token provided")
	ErrNoVaultAddress = errors.New("no vault address provided")
)

// VaultConfig holds configuration for the Vault client
type VaultConfig struct {
	Address     string
	Token       string
	Namespace   string
	Timeout     time.Duration
	MaxRetries  int
	SecretsPath string
	Enabled     bool
}

// VaultManager manages secrets with HashiCorp Vault, falling back to the
// environment when Vault is disabled or a key is missing.
type VaultManager struct {
	client *vault.Client
	config VaultConfig
	cache  map[string]string
	mu     sync.RWMutex
	log    *logger.Logger
}

// NewVaultManager creates a new Vault manager instance
func NewVaultManager(log *logger.Logger) (*VaultManager, error) {
	config := VaultConfig{
		Address:     os.Getenv("VAULT_ADDR"),
		Token:       os.Getenv("VAULT_TOKEN"),
		Namespace:   os.Getenv("VAULT_NAMESPACE"),
		SecretsPath: os.Getenv("VAULT_SECRETS_PATH"),
		Timeout:     10 * time.Second,
		MaxRetries:  3,
	}

	if enabled := os.Getenv("VAULT_ENABLED"); enabled != "" {
		config.Enabled = enabled == "true" || enabled == "1" || enabled == "yes"
	}

	// Without Vault the manager still works, resolving from the environment
	if !config.Enabled {
		return &VaultManager{
			config: config,
			cache:  make(map[string]string),
			log:    log,
		}, nil
	}

	if config.Address == "" {
		return nil, ErrNoVaultAddress
	}
	if config.Token == "" {
		return nil, ErrNoVaultToken
	}
	if config.SecretsPath == "" {
		config.SecretsPath = "secret/data/pet-chatbot"
	}

	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = config.Address
	vaultConfig.Timeout = config.Timeout
	vaultConfig.MaxRetries = config.MaxRetries

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	client.SetToken(config.Token)
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	return &VaultManager{
		client: client,
		config: config,
		cache:  make(map[string]string),
		log:    log,
	}, nil
}

// GetSecret retrieves a secret from Vault, with fallback to environment
func (m *VaultManager) GetSecret(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	if cached, ok := m.cache[key]; ok {
		m.mu.RUnlock()
		return cached, nil
	}
	m.mu.RUnlock()

	if m.config.Enabled && m.client != nil {
		secret, err := m.client.Logical().ReadWithContext(ctx, m.config.SecretsPath)
		if err != nil {
			m.log.LogError(err, "vault read failed", "path", m.config.SecretsPath)
		} else if secret != nil && secret.Data != nil {
			if data, ok := secret.Data["data"].(map[string]interface{}); ok {
				if value, ok := data[key].(string); ok && value != "" {
					m.mu.Lock()
					m.cache[key] = value
					m.mu.Unlock()
					return value, nil
				}
			}
		}
	}

	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	return "", ErrSecretNotFound
}

// GetSecretWithDefault retrieves a secret with a default value if not found
func (m *VaultManager) GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	value, err := m.GetSecret(ctx, key)
	if err != nil {
		return defaultValue
	}
	return value
}
