package i18n

import (
	"golang.org/x/text/language"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
)

// Direction is the writing direction the UI should apply.
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

// Directive is the presentation bundle the UI layer applies for a language.
// It is a pure value; nothing here touches a live document.
type Directive struct {
	Locale    language.Tag `json:"-"`
	LocaleTag string       `json:"locale"`
	Direction Direction    `json:"direction"`
	Font      string       `json:"font"`
}

// DirectiveFor produces the presentation directive for the active language.
func DirectiveFor(lang enums.Language) Directive {
	if lang == enums.LanguageArabic {
		return Directive{
			Locale:    language.Arabic,
			LocaleTag: language.Arabic.String(),
			Direction: DirectionRTL,
			Font:      "Cairo",
		}
	}
	return Directive{
		Locale:    language.English,
		LocaleTag: language.English.String(),
		Direction: DirectionLTR,
		Font:      "Playfair Display",
	}
}
