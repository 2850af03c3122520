package config

import "github.com/shubhammaske12000-sudo/Translator/domain/entities"

// voiceLanguages is the catalog offered for live voice translation.
var voiceLanguages = []entities.LanguageOption{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "es", Name: "Spanish", NativeName: "Español"},
	{Code: "fr", Name: "French", NativeName: "Français"},
	{Code: "de", Name: "German", NativeName: "Deutsch"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు"},
	{Code: "bn", Name: "Bengali", NativeName: "বাংলা"},
	{Code: "mr", Name: "Marathi", NativeName: "मराठी"},
}

// dubbingLanguageCodes restricts dubbing targets to the voices that
// produce natural narration.
var dubbingLanguageCodes = map[string]bool{
	"hi": true,
	"en": true,
}

// VoiceLanguages returns the languages offered for voice translation.
func VoiceLanguages() []entities.LanguageOption {
	out := make([]entities.LanguageOption, len(voiceLanguages))
	copy(out, voiceLanguages)
	return out
}

// DubbingLanguages returns the subset of the catalog offered for dubbing.
func DubbingLanguages() []entities.LanguageOption {
	var out []entities.LanguageOption
	for _, lang := range voiceLanguages {
		if dubbingLanguageCodes[lang.Code] {
			out = append(out, lang)
		}
	}
	return out
}

// DefaultVoiceTarget is the translation target selected at session start.
func DefaultVoiceTarget() entities.LanguageOption {
	return voiceLanguages[0]
}

// LanguageByCode resolves a catalog entry, reporting whether it exists.
func LanguageByCode(code string) (entities.LanguageOption, bool) {
	for _, lang := range voiceLanguages {
		if lang.Code == code {
			return lang, true
		}
	}
	return entities.LanguageOption{}, false
}
