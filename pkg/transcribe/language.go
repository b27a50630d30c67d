package transcribe

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnsupportedLanguage is returned by ParseLanguage for languages outside
// Supported.
var ErrUnsupportedLanguage = errors.New("transcribe: unsupported language")

// Language is an output language for summaries and action items.
type Language struct {
	Tag language.Tag
}

// Supported output languages.
var (
	English  = Language{language.English}
	Spanish  = Language{language.Spanish}
	French   = Language{language.French}
	German   = Language{language.German}
	Japanese = Language{language.Japanese}

	Supported = []Language{English, Spanish, French, German, Japanese}
)

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Spanish,
	language.French,
	language.German,
	language.Japanese,
})

// Name returns the English name of the language, as used in prompts.
func (l Language) Name() string {
	return display.English.Languages().Name(l.Tag)
}

// String returns Name.
func (l Language) String() string { return l.Name() }

// IsZero reports whether l is the zero Language.
func (l Language) IsZero() bool { return l.Tag == language.Und }

// ParseLanguage accepts an English language name ("Spanish") or a BCP 47
// tag ("es", "es-MX") and returns the matching supported language. An
// empty string yields English.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return English, nil
	}
	for _, l := range Supported {
		if strings.EqualFold(s, l.Name()) {
			return l, nil
		}
	}
	tag, err := language.Parse(s)
	if err != nil {
		return Language{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return Language{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, s)
	}
	return Supported[idx], nil
}
