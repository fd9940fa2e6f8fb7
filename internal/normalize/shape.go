package normalize

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Shape identifies which authoring layout a document uses.
type Shape int

const (
	ShapeMetadataOnly Shape = iota // No content keys: one empty day
	ShapeWeeks                     // "Weeks": per-week day lists
	ShapeDays                      // "Days": days repeated every week
	ShapeExercises                 // "Exercises": single implicit day
	ShapeBlock                     // Legacy typed Block: "name" + "days"/"weekTemplates"
	ShapeUnified                   // Canonical Unified JSON: "title" + "days"/"weeks"
	ShapeInvalid                   // Not a JSON object
)

func (s Shape) String() string {
	switch s {
	case ShapeMetadataOnly:
		return "metadata-only"
	case ShapeWeeks:
		return "weeks"
	case ShapeDays:
		return "days"
	case ShapeExercises:
		return "exercises"
	case ShapeBlock:
		return "block"
	case ShapeUnified:
		return "unified"
	default:
		return "invalid"
	}
}

// Detect probes the top-level keys of a document and returns its shape.
// Authoring keys win in the order Weeks, Days, Exercises; the legacy Block
// and Unified layouts are only considered when none of them is present.
func Detect(data []byte) Shape {
	obj, err := probe(data)
	if err != nil {
		return ShapeInvalid
	}
	return detect(obj)
}

func detect(obj map[string]json.RawMessage) Shape {
	switch {
	case present(obj, "Weeks"):
		return ShapeWeeks
	case present(obj, "Days"):
		return ShapeDays
	case present(obj, "Exercises"):
		return ShapeExercises
	case present(obj, "name") && (present(obj, "days") || present(obj, "weekTemplates")):
		return ShapeBlock
	case present(obj, "title") && (present(obj, "days") || present(obj, "weeks")):
		return ShapeUnified
	default:
		return ShapeMetadataOnly
	}
}

func probe(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}

// present reports whether key exists with a non-null value. Keys match
// exactly so that "Days" and "days" select different shapes.
func present(obj map[string]json.RawMessage, key string) bool {
	v, ok := obj[key]
	return ok && !isNull(v)
}

// lookup finds a field value, preferring an exact key match and falling
// back to a case-insensitive one the way encoding/json does.
func lookup(obj map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	if v, ok := obj[key]; ok {
		return v, !isNull(v)
	}
	for k, v := range obj {
		if strings.EqualFold(k, key) {
			return v, !isNull(v)
		}
	}
	return nil, false
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}
