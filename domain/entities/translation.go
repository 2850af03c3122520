package entities

import "errors"

// TranslationResult is the immutable outcome of one completed translate
// call. All three fields are required; a partial result is never surfaced.
type TranslationResult struct {
	DetectedLanguage string `json:"detectedLanguage"`
	SourceText       string `json:"sourceText"`
	TranslatedText   string `json:"translatedText"`
}

// Validate checks that the result is complete.
func (r TranslationResult) Validate() error {
	if r.DetectedLanguage == "" {
		return errors.New("detected language is required")
	}
	if r.SourceText == "" {
		return errors.New("source text is required")
	}
	return nil
}

// LanguageOption describes one entry of the supported-language catalog.
type LanguageOption struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}
