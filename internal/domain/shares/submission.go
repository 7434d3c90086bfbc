package shares

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// FieldType cierra el conjunto de tipos de campo que acepta el merge.
// El payload llega dinámico desde el formulario público; acá se
// valida contra el tipo declarado antes de tocar storage, en vez de
// propagar valores sin tipar.
// @Enum text, number, boolean, select, date
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeSelect  FieldType = "select"
	FieldTypeDate    FieldType = "date"
)

// ResponseSubmission es una tupla del batch enviado a través de un
// grant con permiso edit. No se persiste como entidad propia: cada
// tupla se vuelca sobre el item (inspection_id, field_id).
type ResponseSubmission struct {
	FieldID   string
	FieldType FieldType
	Value     json.RawMessage
	Comment   string
}

// FieldResult reporta el destino de una tupla del batch. El batch es
// best-effort: una tupla malformada no frena a las demás, pero queda
// visible para que el caller muestre el éxito parcial.
type FieldResult struct {
	FieldID string
	Applied bool
	Error   string
}

// ApplyResult es el resultado agregado del merge.
type ApplyResult struct {
	InspectionID string
	Applied      int
	Fields       []FieldResult
}

var errValueRequired = errors.New("value required")

// normalizeValue valida el raw JSON contra el tipo declarado y lo
// devuelve en forma canónica para persistir.
func normalizeValue(ft FieldType, raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", errValueRequired
	}

	switch ft {
	case FieldTypeText:
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return "", fmt.Errorf("text field expects a JSON string")
		}
		return marshalValue(v)

	case FieldTypeNumber:
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return "", fmt.Errorf("number field expects a JSON number")
		}
		if _, err := n.Float64(); err != nil {
			return "", fmt.Errorf("number field expects a JSON number")
		}
		return n.String(), nil

	case FieldTypeBoolean:
		var v bool
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return "", fmt.Errorf("boolean field expects true or false")
		}
		return marshalValue(v)

	case FieldTypeSelect:
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return "", fmt.Errorf("select field expects an option id string")
		}
		if strings.TrimSpace(v) == "" {
			return "", fmt.Errorf("select field expects a non-empty option id")
		}
		return marshalValue(v)

	case FieldTypeDate:
		var v string
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return "", fmt.Errorf("date field expects an RFC3339 or YYYY-MM-DD string")
		}
		if _, err := time.Parse(time.RFC3339, v); err != nil {
			if _, err := time.Parse("2006-01-02", v); err != nil {
				return "", fmt.Errorf("date field expects an RFC3339 or YYYY-MM-DD string")
			}
		}
		return marshalValue(v)

	default:
		return "", fmt.Errorf("unknown field type %q", string(ft))
	}
}

func marshalValue(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
