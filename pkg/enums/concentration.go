package enums

import "fmt"

// Concentration represents the fragrance strength tiers carried by the catalog.
type Concentration string

const (
	ConcentrationExtrait       Concentration = "extrait"
	ConcentrationParfum        Concentration = "parfum"
	ConcentrationEauDeParfum   Concentration = "eau_de_parfum"
	ConcentrationEauDeToilette Concentration = "eau_de_toilette"
	ConcentrationEauDeCologne  Concentration = "eau_de_cologne"
	ConcentrationBodyMist      Concentration = "body_mist"
)

var validConcentrations = []Concentration{
	ConcentrationExtrait,
	ConcentrationParfum,
	ConcentrationEauDeParfum,
	ConcentrationEauDeToilette,
	ConcentrationEauDeCologne,
	ConcentrationBodyMist,
}

// String implements fmt.Stringer.
func (c Concentration) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Concentration.
func (c Concentration) IsValid() bool {
	for _, candidate := range validConcentrations {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConcentration converts raw input into a Concentration.
func ParseConcentration(value string) (Concentration, error) {
	for _, candidate := range validConcentrations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid concentration %q", value)
}
