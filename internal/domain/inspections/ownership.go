package inspections

import "context"

// OwnerOf expone el ownerUserID de una inspección. Es parte del
// contrato que consumen otros módulos (shares) vía interfaz, sin
// importar este paquete.
func (s *Service) OwnerOf(ctx context.Context, inspectionID string) (string, error) {
	i, err := s.GetByID(ctx, inspectionID)
	if err != nil {
		return "", err
	}
	return i.OwnerUserID, nil
}
