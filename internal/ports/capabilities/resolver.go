package capabilities

import "context"

// CapabilityCheck identifica la pregunta "¿este usuario tiene esta
// feature habilitada en su plan?".
type CapabilityCheck struct {
	UserID  string
	Feature string
}

type CapabilitiesResolver interface {
	HasFeature(ctx context.Context, in CapabilityCheck) (bool, error)
}
