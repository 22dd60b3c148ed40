// Package i18n translates yamltr's own command descriptions and run summary.
//
// Catalogs are gettext .po files embedded from locales/<lang>/LC_MESSAGES/yamltr.po.
// The interface language is taken from YAMLTR_LANG when set, otherwise from
// the usual gettext variables. Lookups before Init, or for messages missing
// from the catalog, return the English msgid.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const (
	domain     = "yamltr"
	localesDir = "locales"

	// EnvLang overrides the interface language detected from the locale.
	EnvLang = "YAMLTR_LANG"

	// fallbackLang is used when no variable names a usable locale.
	fallbackLang = "en"
)

var (
	po      *gotext.Locale
	current = fallbackLang
)

// Init loads the catalog for lang, or for the detected language when lang
// is empty, and returns the language in use.
func Init(lang string) string {
	if lang = cleanLocale(lang); lang == "" {
		lang = detectLanguage()
	}

	po = gotext.NewLocaleFSWithPath(lang, locales, localesDir)
	po.AddDomain(domain)
	po.SetDomain(domain)
	current = lang
	return lang
}

// Lang returns the interface language selected by the last Init.
func Lang() string {
	return current
}

// Available lists the languages that ship a catalog, sorted.
func Available() []string {
	entries, err := fs.ReadDir(locales, localesDir)
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		if _, err := fs.Stat(locales, localesDir+"/"+e.Name()+"/LC_MESSAGES/"+domain+".po"); err == nil {
			langs = append(langs, e.Name())
		}
	}
	sort.Strings(langs)
	return langs
}

// T returns the translation of msgid.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N returns the plural form of a message for count n.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// Tf formats the translation of format with args.
func Tf(format string, args ...any) string {
	return fmt.Sprintf(T(format), args...)
}

// Nf picks the plural form for n and formats it with n.
func Nf(singular, plural string, n int) string {
	return fmt.Sprintf(N(singular, plural, n), n)
}

// detectLanguage returns YAMLTR_LANG, else the first usable value of
// LANGUAGE, LC_ALL, LC_MESSAGES and LANG (GNU gettext order).
func detectLanguage() string {
	if v := cleanLocale(os.Getenv(EnvLang)); v != "" {
		return v
	}
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		raw := os.Getenv(env)
		if env == "LANGUAGE" {
			// Colon-separated preference list; the first entry wins.
			raw, _, _ = strings.Cut(raw, ":")
		}
		if v := cleanLocale(raw); v != "" {
			return v
		}
	}
	return fallbackLang
}

// cleanLocale strips the charset and modifier from a locale name
// (ru_RU.UTF-8@euro -> ru_RU). C and POSIX mean no translation and
// yield "".
func cleanLocale(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "C" || v == "POSIX" {
		return ""
	}
	return v
}
