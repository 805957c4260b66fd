package access

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/lekton/lekton/internal/apperr"
)

// Level is the ordered clearance tier gating document and search visibility.
// The numeric order defines the privilege hierarchy: Public is the least
// privileged, Admin the most. Levels are serialized as their lowercase names
// in both JSON and BSON; the numeric value is what the search index filters on.
type Level int

const (
	Public Level = iota
	Developer
	Architect
	Admin
)

var names = [...]string{"public", "developer", "architect", "admin"}

func (l Level) String() string {
	if l < Public || l > Admin {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return names[l]
}

// Parse converts a textual level to a Level. Matching is case-insensitive;
// unknown values are a validation error, never silently defaulted.
func Parse(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return Public, nil
	case "developer":
		return Developer, nil
	case "architect":
		return Architect, nil
	case "admin":
		return Admin, nil
	default:
		return Public, fmt.Errorf("unknown access level %q: %w", s, apperr.ErrValidation)
	}
}

// AtMost reports whether content at this level is visible to a caller
// holding max.
func (l Level) AtMost(max Level) bool { return l <= max }

// Levels returns all levels in ascending privilege order.
func Levels() []Level { return []Level{Public, Developer, Architect, Admin} }

func (l Level) MarshalJSON() ([]byte, error) {
	if l < Public || l > Admin {
		return nil, fmt.Errorf("cannot marshal access level %d: %w", int(l), apperr.ErrValidation)
	}
	return []byte(`"` + names[l] + `"`), nil
}

func (l *Level) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l Level) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if l < Public || l > Admin {
		return 0, nil, fmt.Errorf("cannot marshal access level %d: %w", int(l), apperr.ErrValidation)
	}
	return bson.MarshalValue(names[l])
}

func (l *Level) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(t, data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
