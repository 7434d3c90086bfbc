package inspections

import "time"

// Status del ciclo de vida de una inspección.
// @Enum draft, in_progress, completed
type Status string

const (
	StatusDraft      Status = "draft"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Inspection es el recurso autoritativo que el subsistema de shares
// expone a terceros. El CRUD completo del SaaS vive en otro servicio;
// acá solo está lo que el sharing necesita.
type Inspection struct {
	ID          string
	OwnerUserID string

	Title  string
	Notes  string
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item es la respuesta registrada para un campo del checklist,
// con clave natural (inspection_id, field_id). El lookup por esa
// clave es correctness-critical para el merge, por eso es una clave
// compuesta explícita y no una extracción sobre un blob JSON.
type Item struct {
	ID           string
	InspectionID string
	FieldID      string

	FieldType string
	Value     string // JSON canónico, normalizado en el merge
	Comment   string

	CreatedAt time.Time
	UpdatedAt time.Time
}
