package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var (
	supported = []language.Tag{language.English, language.SimplifiedChinese}
	codes     = []string{"en", "zh"}
	matcher   = language.NewMatcher(supported)
	builder   = newCatalog()
)

func newCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, e := range messages {
		if err := b.SetString(language.English, key, e.en); err != nil {
			panic(fmt.Sprintf("i18n: message %q (en): %v", key, err))
		}
		if err := b.SetString(language.SimplifiedChinese, key, e.zh); err != nil {
			panic(fmt.Sprintf("i18n: message %q (zh): %v", key, err))
		}
	}
	return b
}

// Localizer renders display strings in one language
type Localizer struct {
	code    string
	tag     language.Tag
	printer *message.Printer
}

// Languages returns the supported language codes
func Languages() []string {
	return append([]string(nil), codes...)
}

// New returns the localizer for a code such as "en" or "zh-CN"; unknown
// codes get English
func New(code string) *Localizer {
	tag, err := language.Parse(code)
	if err != nil {
		tag = language.English
	}
	return forTags(tag)
}

// Resolve picks a language from, in order, an explicit choice (query
// parameter or cookie), the Accept-Language header and the fallback code
func Resolve(explicit, acceptLanguage, fallback string) *Localizer {
	var tags []language.Tag
	if tag, err := language.Parse(explicit); err == nil && explicit != "" {
		tags = append(tags, tag)
	} else if accepted, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(accepted) > 0 {
		tags = accepted
	}
	if tag, err := language.Parse(fallback); err == nil {
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
	}
	return forTags(tags...)
}

func forTags(tags ...language.Tag) *Localizer {
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		idx = 0
	}
	return &Localizer{
		code:    codes[idx],
		tag:     supported[idx],
		printer: message.NewPrinter(supported[idx], message.Catalog(builder)),
	}
}

// Code returns the short language code, "en" or "zh"
func (l *Localizer) Code() string {
	return l.code
}

// Tag returns the BCP 47 tag, e.g. for the html lang attribute
func (l *Localizer) Tag() string {
	return l.tag.String()
}

// T renders the message key with args
func (l *Localizer) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}
