package backend

import (
	"strings"

	"github.com/minios-linux/yamltr/langmeta"
)

// systemPrompt is sent to LLM backends. {{sourceLang}} and {{targetLang}}
// are replaced per call.
const systemPrompt = `You are a professional translator localizing the values of a YAML file used by a software application.

Translate the user's message from {{sourceLang}} to {{targetLang}}.

RULES:
- Return ONLY the translated text, with no explanations, quotes or code fences
- Keep every placeholder token of the form [[VAR0]], [[VAR1]], ... exactly as written, in a natural position
- Preserve leading and trailing whitespace, line breaks and punctuation style
- Keep product names, URLs and technical identifiers unchanged
- If the text is already in {{targetLang}}, return it unchanged`

func resolvePrompt(source, target string) string {
	r := strings.NewReplacer(
		"{{sourceLang}}", langmeta.PromptName(source),
		"{{targetLang}}", langmeta.PromptName(target),
	)
	return r.Replace(systemPrompt)
}

// cleanCompletion strips wrapping that chat models add despite instructions.
func cleanCompletion(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimSpace(s[3 : len(s)-3])
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			switch s[:i] {
			case "yaml", "text", "txt", "plaintext":
				s = strings.TrimSpace(s[i+1:])
			}
		}
	}
	return s
}
