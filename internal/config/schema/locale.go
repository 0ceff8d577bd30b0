package schema

import "golang.org/x/text/language"

// DefaultLanguage is the fallback UI locale.
const DefaultLanguage = "en"

// SupportedLanguages lists the locale codes the UI ships translations for,
// in display order.
var SupportedLanguages = []string{
	"en",
	"zh-CN",
	"zh-TW",
	"ja",
	"ko",
	"fr",
	"de",
	"es",
	"pt-BR",
	"ru",
}

var supportedTags = func() []language.Tag {
	tags := make([]language.Tag, len(SupportedLanguages))
	for i, code := range SupportedLanguages {
		tags[i] = language.MustParse(code)
	}
	return tags
}()

var localeMatcher = language.NewMatcher(supportedTags)

// IsSupportedLanguage reports whether code is exactly one of the supported
// locale codes.
func IsSupportedLanguage(code string) bool {
	for _, c := range SupportedLanguages {
		if c == code {
			return true
		}
	}
	return false
}

// NearestLanguage maps an arbitrary locale code to the closest supported
// one. Unparseable or unrelated codes fall back to DefaultLanguage, so a
// legacy file with e.g. "zh" still loads as "zh-CN".
func NearestLanguage(code string) string {
	if IsSupportedLanguage(code) {
		return code
	}
	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	_, index, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return DefaultLanguage
	}
	return SupportedLanguages[index]
}
