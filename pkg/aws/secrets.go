package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"
)

// SecretsAPI is the slice of the Secrets Manager client the service uses.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsClient resolves credential overrides from Secrets Manager. Values
// are cached for the lifetime of the process; failed lookups are not.
type SecretsClient struct {
	api    SecretsAPI
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]string
}

func NewSecretsClient(cfg sdkaws.Config, logger *zap.Logger) *SecretsClient {
	return NewSecretsClientWithAPI(secretsmanager.NewFromConfig(cfg), logger)
}

func NewSecretsClientWithAPI(api SecretsAPI, logger *zap.Logger) *SecretsClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecretsClient{api: api, logger: logger, cache: make(map[string]string)}
}

// GetSecret returns the raw string value of the named secret.
func (s *SecretsClient) GetSecret(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	v, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return v, nil
	}

	out, err := s.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: sdkaws.String(name)})
	if err != nil {
		s.logger.Warn("secret lookup failed", zap.String("secret", name), zap.Error(err))
		return "", fmt.Errorf("get secret %s: %w", name, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		s.logger.Warn("secret has no string value", zap.String("secret", name))
		return "", fmt.Errorf("secret %s has no string value", name)
	}

	s.mu.Lock()
	s.cache[name] = *out.SecretString
	s.mu.Unlock()
	return *out.SecretString, nil
}

// GetSecretMap decodes a secret stored as a flat JSON object of strings.
func (s *SecretsClient) GetSecretMap(ctx context.Context, name string) (map[string]string, error) {
	raw, err := s.GetSecret(ctx, name)
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		s.logger.Warn("secret is not a JSON object", zap.String("secret", name), zap.Error(err))
		return nil, fmt.Errorf("decode secret %s: %w", name, err)
	}
	return m, nil
}
