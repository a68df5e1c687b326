package enums

import "fmt"

// Language is one of the two storefront display languages.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

var validLanguages = []Language{
	LanguageEnglish,
	LanguageArabic,
}

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}

// IsValid reports whether the value is a known Language.
func (l Language) IsValid() bool {
	for _, candidate := range validLanguages {
		if candidate == l {
			return true
		}
	}
	return false
}

// Other returns the opposite storefront language.
func (l Language) Other() Language {
	if l == LanguageArabic {
		return LanguageEnglish
	}
	return LanguageArabic
}

// ParseLanguage converts raw input into a Language, defaulting to English.
func ParseLanguage(value string) (Language, error) {
	for _, candidate := range validLanguages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid language %q", value)
}
