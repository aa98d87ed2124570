package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"resumechat/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets are KVv2 paths of the secrets resumechat reads at startup.
// An empty path leaves the corresponding setting as configured.
type VaultSecrets struct {
	// APIKeys holds a comma-separated "keys" value, e.g. "key1,key2"
	APIKeys       string `mapstructure:"apiKeys"`
	GeminiKey     string `mapstructure:"geminiKey"`
	RedisPassword string `mapstructure:"redisPassword"`
}

// VaultClient reads KVv2 secrets
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// secretBinding copies one Vault value into the configuration
type secretBinding struct {
	name  string
	path  string
	key   string
	apply func(cfg *Config, value string)
}

func secretBindings(secrets VaultSecrets) []secretBinding {
	return []secretBinding{
		{
			name: "session API keys",
			path: secrets.APIKeys,
			key:  "keys",
			apply: func(cfg *Config, value string) {
				if keys := splitAndTrim(value); len(keys) > 0 {
					cfg.Server.APIKeys = keys
				}
			},
		},
		{
			name:  "Gemini API key",
			path:  secrets.GeminiKey,
			key:   "api_key",
			apply: applyGeminiKeyToConfig,
		},
		{
			name: "session store password",
			path: secrets.RedisPassword,
			key:  "password",
			apply: func(cfg *Config, value string) {
				cfg.Session.Redis.Password = value
			},
		},
	}
}

// NewVaultClient connects to Vault. It returns nil when Vault is disabled.
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if logger == nil {
		logger = errors.Discard()
	}
	if !config.Enabled {
		logger.Debug("Vault integration disabled")
		return nil, nil
	}

	apiConfig := api.DefaultConfig()
	if config.Address != "" {
		apiConfig.Address = config.Address
	}
	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config, logger)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		logger.LogError(err, "Failed to connect to Vault", "address", apiConfig.Address)
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	logger.Info("Connected to Vault",
		"address", apiConfig.Address,
		"namespace", config.Namespace,
		"version", health.Version,
		"sealed", health.Sealed)

	return &VaultClient{client: client, config: config, logger: logger}, nil
}

// resolveVaultToken prefers the configured token and falls back to the token file
func resolveVaultToken(config VaultConfig, logger *errors.Logger) (string, error) {
	token := config.Token
	if token == "" && config.TokenFile != "" {
		raw, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(raw))
		logger.Debug("Vault token read from file", "file", config.TokenFile)
	}

	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, err := vc.extractSecretData(secret, path)
	if err != nil {
		return nil, err
	}
	version, err := vc.extractSecretVersion(secret, path)
	if err != nil {
		return nil, err
	}
	return &VaultSecret{Data: data, Version: version}, nil
}

func (vc *VaultClient) extractSecretData(secret *api.Secret, path string) (map[string]any, error) {
	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	return data, nil
}

func (vc *VaultClient) extractSecretVersion(secret *api.Secret, path string) (int64, error) {
	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	versionRaw, ok := metadata["version"]
	if !ok {
		return 0, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}
	return parseVersionValue(versionRaw, path)
}

// parseVersionValue accepts the numeric shapes the Vault API decodes versions into
func parseVersionValue(versionRaw any, path string) (int64, error) {
	switch v := versionRaw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, versionRaw)
	}
}

// GetStringSecret retrieves a string value from a Vault secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}

	vc.logger.Debug("Secret read from Vault",
		"path", path,
		"key", key,
		"version", secret.Version,
		"masked_value", maskSecret(str))
	return str, nil
}

func maskSecret(value string) string {
	if len(value) > 8 {
		return value[:4] + "****" + value[len(value)-4:]
	}
	if value == "" {
		return ""
	}
	return "****"
}

// ApplyVaultSecrets overlays the configured Vault secrets onto config
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	return loadAllSecretsFromVault(client, config, client.logger)
}

// loadAllSecretsFromVault applies every binding with a path; the first failure aborts
func loadAllSecretsFromVault(client *VaultClient, config *Config, logger *errors.Logger) error {
	applied := 0
	for _, b := range secretBindings(config.Vault.Secrets) {
		if b.path == "" {
			continue
		}

		value, err := client.GetStringSecret(b.path, b.key)
		if err != nil {
			logger.LogError(err, "Failed to load secret from Vault", "secret", b.name, "path", b.path)
			return fmt.Errorf("failed to load %s from vault: %w", b.name, err)
		}
		if value == "" {
			logger.Warn("Empty secret in Vault, keeping configured value", "secret", b.name, "path", b.path)
			continue
		}

		b.apply(config, value)
		applied++
	}

	logger.Info("Vault secrets applied", "count", applied)
	return nil
}

// applyGeminiKeyToConfig sets the shared key and fills operation keys left empty
func applyGeminiKeyToConfig(config *Config, geminiKey string) {
	config.AI.APIKey = geminiKey
	if config.AI.Judge.APIKey == "" {
		config.AI.Judge.APIKey = geminiKey
	}
	if config.AI.Question.APIKey == "" {
		config.AI.Question.APIKey = geminiKey
	}
}
