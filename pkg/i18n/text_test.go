package i18n

import (
	"testing"

	"github.com/maisonnoor/boutique-backend/pkg/enums"
)

func TestResolveActiveLanguage(t *testing.T) {
	text := Text{En: "Amber Oud", Ar: "عنبر العود"}
	if got := text.Resolve(enums.LanguageEnglish); got != "Amber Oud" {
		t.Fatalf("expected english side, got %q", got)
	}
	if got := text.Resolve(enums.LanguageArabic); got != "عنبر العود" {
		t.Fatalf("expected arabic side, got %q", got)
	}
}

func TestResolveFallsBackAcrossLanguages(t *testing.T) {
	text := Text{En: "Rose Saffron"}
	if got := text.Resolve(enums.LanguageArabic); got != "Rose Saffron" {
		t.Fatalf("expected fallback to english, got %q", got)
	}
	text = Text{Ar: "ورد وزعفران"}
	if got := text.Resolve(enums.LanguageEnglish); got != "ورد وزعفران" {
		t.Fatalf("expected fallback to arabic, got %q", got)
	}
}

func TestIsEmptyTreatsWhitespaceAsBlank(t *testing.T) {
	if !(Text{En: "  ", Ar: "\t"}).IsEmpty() {
		t.Fatalf("whitespace-only text should be empty")
	}
	if (Text{En: "Noir"}).IsEmpty() {
		t.Fatalf("text with one side set is not empty")
	}
}

func TestScanRoundTrip(t *testing.T) {
	original := Text{En: "Velvet Iris", Ar: "سوسن مخملي"}
	value, err := original.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	var decoded Text
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if decoded != original {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestDirectiveFor(t *testing.T) {
	ar := DirectiveFor(enums.LanguageArabic)
	if ar.Direction != DirectionRTL {
		t.Fatalf("arabic must be rtl, got %s", ar.Direction)
	}
	if ar.LocaleTag != "ar" {
		t.Fatalf("unexpected locale tag %q", ar.LocaleTag)
	}
	en := DirectiveFor(enums.LanguageEnglish)
	if en.Direction != DirectionLTR {
		t.Fatalf("english must be ltr, got %s", en.Direction)
	}
}
