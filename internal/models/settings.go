package models

import "fmt"

// Language is a locale code for the generated commentary.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
	LanguageFrench  Language = "fr"
	LanguageGerman  Language = "de"
	LanguageHindi   Language = "hi"
)

// Languages lists the supported locales.
var Languages = []Language{LanguageEnglish, LanguageSpanish, LanguageFrench, LanguageGerman, LanguageHindi}

// Industry is the business vertical used to benchmark the report.
type Industry string

const (
	IndustryRetail        Industry = "Retail"
	IndustryTechSaaS      Industry = "Tech / SaaS"
	IndustryManufacturing Industry = "Manufacturing"
	IndustryServices      Industry = "Services"
	IndustryHealthcare    Industry = "Healthcare"
	IndustryHospitality   Industry = "Hospitality"
	IndustryConstruction  Industry = "Construction"
)

// Industries lists the supported verticals.
var Industries = []Industry{
	IndustryRetail,
	IndustryTechSaaS,
	IndustryManufacturing,
	IndustryServices,
	IndustryHealthcare,
	IndustryHospitality,
	IndustryConstruction,
}

// DefaultCompanyName is sent when no company is configured.
const DefaultCompanyName = "User Corp"

// Settings holds the user-selected parameters that affect the report.
// It is a value type: a change produces a new Settings.
type Settings struct {
	CompanyName string
	Language    Language
	Industry    Industry
}

// DefaultSettings returns the settings a new session starts with.
func DefaultSettings() Settings {
	return Settings{
		CompanyName: DefaultCompanyName,
		Language:    LanguageEnglish,
		Industry:    IndustryRetail,
	}
}

// Validate checks that language and industry are supported values.
func (s Settings) Validate() error {
	if !containsLanguage(s.Language) {
		return fmt.Errorf("unsupported language: %q", s.Language)
	}
	if !containsIndustry(s.Industry) {
		return fmt.Errorf("unsupported industry: %q", s.Industry)
	}
	return nil
}

func containsLanguage(l Language) bool {
	for _, v := range Languages {
		if v == l {
			return true
		}
	}
	return false
}

func containsIndustry(i Industry) bool {
	for _, v := range Industries {
		if v == i {
			return true
		}
	}
	return false
}
