// internal/infra/secrets/provider.go
package secrets

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

var errProviderNotConfigured = errors.New("secrets: provider not configured")

// Provider resolves named secrets from Google Secret Manager, falling back to
// the environment when no client is available (local development).
type Provider struct {
	sm        *secretmanager.Client
	projectID string
	version   string
}

// New creates a provider backed by Secret Manager. Construction failure is
// non-fatal for local runs: callers may keep a nil provider and rely on the
// environment fallback in Resolve.
func New(ctx context.Context, projectID string) (*Provider, error) {
	prj := strings.TrimSpace(projectID)
	if prj == "" {
		return nil, errors.New("secrets: projectID is empty")
	}
	cli, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, errors.New("secrets: NewClient failed: " + err.Error())
	}
	return &Provider{sm: cli, projectID: prj, version: "latest"}, nil
}

// Get reads one secret version payload.
func (p *Provider) Get(ctx context.Context, secretID string) (string, error) {
	if p == nil || p.sm == nil {
		return "", errProviderNotConfigured
	}
	sid := strings.TrimSpace(secretID)
	if sid == "" {
		return "", errors.New("secrets: secretID is empty")
	}
	ver := strings.TrimSpace(p.version)
	if ver == "" {
		ver = "latest"
	}

	name := "projects/" + p.projectID + "/secrets/" + sid + "/versions/" + ver
	resp, err := p.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", errors.New("secrets: AccessSecretVersion failed (" + name + "): " + err.Error())
	}
	if resp == nil || resp.Payload == nil {
		return "", errors.New("secrets: empty payload (" + name + ")")
	}

	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

// Resolve returns the secret value for secretID, or the envKey variable when
// the provider is unavailable or the secret is missing. Used for credentials
// that ship via Secret Manager in production but via .env locally.
func Resolve(ctx context.Context, p *Provider, secretID, envKey string) string {
	if v, err := p.Get(ctx, secretID); err == nil && v != "" {
		return v
	} else if err != nil && !errors.Is(err, errProviderNotConfigured) {
		log.Printf("[secrets] WARN fallback to env for %s: %v", secretID, err)
	}
	return strings.TrimSpace(os.Getenv(envKey))
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	if p == nil || p.sm == nil {
		return nil
	}
	return p.sm.Close()
}
