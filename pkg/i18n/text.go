package i18n

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
)

// Text is a bilingual display field stored as a JSONB column. Either side may
// be empty, but not both when the field is required.
type Text struct {
	En string `json:"en"`
	Ar string `json:"ar"`
}

// Resolve returns the string for the active language, falling back to the
// other language when the requested side is empty.
func (t Text) Resolve(lang enums.Language) string {
	primary, fallback := t.En, t.Ar
	if lang == enums.LanguageArabic {
		primary, fallback = t.Ar, t.En
	}
	if strings.TrimSpace(primary) != "" {
		return primary
	}
	return fallback
}

// IsEmpty reports whether both sides are blank.
func (t Text) IsEmpty() bool {
	return strings.TrimSpace(t.En) == "" && strings.TrimSpace(t.Ar) == ""
}

// Value implements driver.Valuer for JSONB storage.
func (t Text) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner.
func (t *Text) Scan(src any) error {
	switch value := src.(type) {
	case nil:
		*t = Text{}
		return nil
	case []byte:
		return json.Unmarshal(value, t)
	case string:
		return json.Unmarshal([]byte(value), t)
	default:
		return fmt.Errorf("i18n: cannot scan %T into Text", src)
	}
}
