package transcription

import (
	"sort"
	"strings"
)

// AutoLanguage asks the model to detect the spoken language.
const AutoLanguage = "auto"

// UnknownLanguage is reported when the engine does not name a language.
const UnknownLanguage = "unknown"

// whisperLanguages maps the codes whisper models accept to English names.
var whisperLanguages = map[string]string{
	"en": "english", "zh": "chinese", "de": "german", "es": "spanish", "ru": "russian",
	"ko": "korean", "fr": "french", "ja": "japanese", "pt": "portuguese", "tr": "turkish",
	"pl": "polish", "ca": "catalan", "nl": "dutch", "ar": "arabic", "sv": "swedish",
	"it": "italian", "id": "indonesian", "hi": "hindi", "fi": "finnish", "vi": "vietnamese",
	"he": "hebrew", "uk": "ukrainian", "el": "greek", "ms": "malay", "cs": "czech",
	"ro": "romanian", "da": "danish", "hu": "hungarian", "ta": "tamil", "no": "norwegian",
	"th": "thai", "ur": "urdu", "hr": "croatian", "bg": "bulgarian", "lt": "lithuanian",
	"la": "latin", "mi": "maori", "ml": "malayalam", "cy": "welsh", "sk": "slovak",
	"te": "telugu", "fa": "persian", "lv": "latvian", "bn": "bengali", "sr": "serbian",
	"az": "azerbaijani", "sl": "slovenian", "kn": "kannada", "et": "estonian", "mk": "macedonian",
	"br": "breton", "eu": "basque", "is": "icelandic", "hy": "armenian", "ne": "nepali",
	"mn": "mongolian", "bs": "bosnian", "kk": "kazakh", "sq": "albanian", "sw": "swahili",
	"gl": "galician", "mr": "marathi", "pa": "punjabi", "si": "sinhala", "km": "khmer",
	"sn": "shona", "yo": "yoruba", "so": "somali", "af": "afrikaans", "oc": "occitan",
	"ka": "georgian", "be": "belarusian", "tg": "tajik", "sd": "sindhi", "gu": "gujarati",
	"am": "amharic", "yi": "yiddish", "lo": "lao", "uz": "uzbek", "fo": "faroese",
	"ht": "haitian creole", "ps": "pashto", "tk": "turkmen", "nn": "nynorsk", "mt": "maltese",
	"sa": "sanskrit", "lb": "luxembourgish", "my": "myanmar", "bo": "tibetan", "tl": "tagalog",
	"mg": "malagasy", "as": "assamese", "tt": "tatar", "haw": "hawaiian", "ln": "lingala",
	"ha": "hausa", "ba": "bashkir", "jw": "javanese", "su": "sundanese", "yue": "cantonese",
}

var languageByName = func() map[string]string {
	m := make(map[string]string, len(whisperLanguages))
	for code, name := range whisperLanguages {
		m[name] = code
	}
	return m
}()

// Language is a recognized language hint.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Languages returns every recognized language sorted by code.
func Languages() []Language {
	out := make([]Language, 0, len(whisperLanguages))
	for code, name := range whisperLanguages {
		out = append(out, Language{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ResolveLanguage maps a hint to the code passed to the engine. "auto" and
// the empty hint resolve to "" (detect). Codes and English names are
// accepted case-insensitively. Anything else is an *InvalidLanguageError.
func ResolveLanguage(hint string) (string, error) {
	h := strings.ToLower(strings.TrimSpace(hint))
	if h == "" || h == AutoLanguage {
		return "", nil
	}
	if _, ok := whisperLanguages[h]; ok {
		return h, nil
	}
	if code, ok := languageByName[h]; ok {
		return code, nil
	}
	return "", &InvalidLanguageError{Language: hint}
}

// IsValidLanguageHint reports whether hint would resolve.
func IsValidLanguageHint(hint string) bool {
	_, err := ResolveLanguage(hint)
	return err == nil
}
