package plansfeatures

import (
	"context"
	"errors"
	"os"
	"strings"

	"safety-inspections/internal/ports/capabilities"
)

// Resolver implementa capabilities.CapabilitiesResolver contra
// plans-features. Los handlers lo usan como gate de creación de
// shares cuando está configurado.
type Resolver struct {
	client   *Client
	allowAll bool
}

// NewResolver crea el resolver. Con ALLOW_ALL_CAPABILITIES=true (env)
// todo devuelve true (modo dev / fallback).
func NewResolver(client *Client) *Resolver {
	allowAll := strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_ALL_CAPABILITIES")), "true")
	return &Resolver{
		client:   client,
		allowAll: allowAll,
	}
}

var _ capabilities.CapabilitiesResolver = (*Resolver)(nil)

func (r *Resolver) HasFeature(ctx context.Context, in capabilities.CapabilityCheck) (bool, error) {
	feature := strings.TrimSpace(in.Feature)
	if feature == "" {
		return false, errors.New("feature required")
	}

	if r.allowAll {
		return true, nil
	}

	if r == nil || r.client == nil || !r.client.IsConfigured() {
		// Preferimos fallar explícito antes que permitir sin control.
		return false, ErrNotConfigured
	}

	resp, err := r.client.GetCapabilities(ctx, in.UserID)
	if err != nil {
		return false, err
	}

	return resp.Capabilities[feature], nil
}
