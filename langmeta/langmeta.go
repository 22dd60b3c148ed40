// Package langmeta provides a shared language metadata registry
// (English and native names) used for backend prompts and CLI output.
package langmeta

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Auto is the pseudo language code asking the backend to detect the source.
const Auto = "auto"

// Meta describes language display metadata.
type Meta struct {
	// Name is the English name, used in backend prompts.
	Name string
	// Native is the language's own name, used in CLI output.
	Native string
}

// Registry contains canonical language metadata.
// Locale variants are resolved in Resolve() via normalization and base fallback.
var Registry = map[string]Meta{
	"af":    {Name: "Afrikaans", Native: "Afrikaans"},
	"ar":    {Name: "Arabic", Native: "العربية"},
	"az":    {Name: "Azerbaijani", Native: "Azərbaycanca"},
	"be":    {Name: "Belarusian", Native: "Беларуская"},
	"bg":    {Name: "Bulgarian", Native: "Български"},
	"bn":    {Name: "Bengali", Native: "বাংলা"},
	"bs":    {Name: "Bosnian", Native: "Bosanski"},
	"ca":    {Name: "Catalan", Native: "Català"},
	"cs":    {Name: "Czech", Native: "Čeština"},
	"cy":    {Name: "Welsh", Native: "Cymraeg"},
	"da":    {Name: "Danish", Native: "Dansk"},
	"de":    {Name: "German", Native: "Deutsch"},
	"de-AT": {Name: "German (Austria)", Native: "Deutsch (Österreich)"},
	"de-CH": {Name: "German (Switzerland)", Native: "Deutsch (Schweiz)"},
	"el":    {Name: "Greek", Native: "Ελληνικά"},
	"en":    {Name: "English", Native: "English"},
	"en-GB": {Name: "English (UK)", Native: "English (UK)"},
	"en-US": {Name: "English (US)", Native: "English (US)"},
	"es":    {Name: "Spanish", Native: "Español"},
	"es-MX": {Name: "Spanish (Mexico)", Native: "Español (México)"},
	"et":    {Name: "Estonian", Native: "Eesti"},
	"eu":    {Name: "Basque", Native: "Euskara"},
	"fa":    {Name: "Persian", Native: "فارسی"},
	"fi":    {Name: "Finnish", Native: "Suomi"},
	"fr":    {Name: "French", Native: "Français"},
	"fr-CA": {Name: "French (Canada)", Native: "Français (Canada)"},
	"ga":    {Name: "Irish", Native: "Gaeilge"},
	"gl":    {Name: "Galician", Native: "Galego"},
	"he":    {Name: "Hebrew", Native: "עברית"},
	"hi":    {Name: "Hindi", Native: "हिन्दी"},
	"hr":    {Name: "Croatian", Native: "Hrvatski"},
	"hu":    {Name: "Hungarian", Native: "Magyar"},
	"hy":    {Name: "Armenian", Native: "Հայերեն"},
	"id":    {Name: "Indonesian", Native: "Bahasa Indonesia"},
	"is":    {Name: "Icelandic", Native: "Íslenska"},
	"it":    {Name: "Italian", Native: "Italiano"},
	"ja":    {Name: "Japanese", Native: "日本語"},
	"ka":    {Name: "Georgian", Native: "ქართული"},
	"kk":    {Name: "Kazakh", Native: "Қазақ тілі"},
	"ko":    {Name: "Korean", Native: "한국어"},
	"lt":    {Name: "Lithuanian", Native: "Lietuvių"},
	"lv":    {Name: "Latvian", Native: "Latviešu"},
	"mk":    {Name: "Macedonian", Native: "Македонски"},
	"ms":    {Name: "Malay", Native: "Bahasa Melayu"},
	"nb":    {Name: "Norwegian Bokmål", Native: "Norsk bokmål"},
	"nl":    {Name: "Dutch", Native: "Nederlands"},
	"no":    {Name: "Norwegian", Native: "Norsk"},
	"pl":    {Name: "Polish", Native: "Polski"},
	"pt":    {Name: "Portuguese", Native: "Português"},
	"pt-BR": {Name: "Portuguese (Brazil)", Native: "Português (Brasil)"},
	"ro":    {Name: "Romanian", Native: "Română"},
	"ru":    {Name: "Russian", Native: "Русский"},
	"sk":    {Name: "Slovak", Native: "Slovenčina"},
	"sl":    {Name: "Slovenian", Native: "Slovenščina"},
	"sq":    {Name: "Albanian", Native: "Shqip"},
	"sr":    {Name: "Serbian", Native: "Српски"},
	"sv":    {Name: "Swedish", Native: "Svenska"},
	"sw":    {Name: "Swahili", Native: "Kiswahili"},
	"ta":    {Name: "Tamil", Native: "தமிழ்"},
	"th":    {Name: "Thai", Native: "ไทย"},
	"tr":    {Name: "Turkish", Native: "Türkçe"},
	"uk":    {Name: "Ukrainian", Native: "Українська"},
	"ur":    {Name: "Urdu", Native: "اردو"},
	"uz":    {Name: "Uzbek", Native: "O'zbek"},
	"vi":    {Name: "Vietnamese", Native: "Tiếng Việt"},
	"zh":    {Name: "Chinese", Native: "中文"},
	"zh-CN": {Name: "Chinese (Simplified)", Native: "简体中文"},
	"zh-TW": {Name: "Chinese (Traditional)", Native: "繁體中文"},
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like pt_BR, pt-BR, and locale fallbacks.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := canonicalize(lang)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if parts := strings.SplitN(normalized, "-", 2); len(parts) == 2 {
		if m, ok := Registry[parts[0]]; ok {
			return m
		}
	}
	return Meta{Name: lang, Native: lang}
}

// Normalize validates a language code and returns it in canonical form
// (pt_br → pt-BR). The pseudo code "auto" is returned unchanged when
// allowAuto is set.
func Normalize(lang string, allowAuto bool) (string, error) {
	code := canonicalize(lang)
	if code == "" {
		return "", fmt.Errorf("empty language code")
	}
	if strings.EqualFold(code, Auto) {
		if allowAuto {
			return Auto, nil
		}
		return "", fmt.Errorf("language %q is only valid as a source language", lang)
	}
	if _, err := language.Parse(code); err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", lang, err)
	}
	return code, nil
}

// PromptName returns the name used when describing a language to an LLM.
func PromptName(lang string) string {
	if lang == Auto {
		return "the detected source language"
	}
	m := Resolve(lang)
	if m.Name == lang {
		return lang
	}
	return fmt.Sprintf("%s (%s)", m.Name, lang)
}
