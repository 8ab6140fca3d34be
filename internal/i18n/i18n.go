package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// CookieName holds an explicit language choice.
const CookieName = "se_lang"

var (
	matcher = language.NewMatcher(Supported)
	cat     catalog.Catalog
)

func init() {
	c, err := newCatalog()
	if err != nil {
		panic(err)
	}
	cat = c
}

// Match picks the best supported tag for the given preferences, most preferred first.
// Unparseable entries are skipped and fallback is used when nothing matches.
func Match(fallback language.Tag, prefs ...string) language.Tag {
	for _, p := range prefs {
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := matcher.Match(tags...)
		if conf != language.No {
			return Supported[idx]
		}
	}
	return fallback
}

// Parse returns the supported tag for s, or English.
func Parse(s string) language.Tag {
	return Match(English, s)
}

// Printer formats catalog messages for one language.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

func NewPrinter(tag language.Tag) *Printer {
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

func (p *Printer) Tag() language.Tag {
	return p.tag
}

// T translates key. Unknown keys are returned as-is.
func (p *Printer) T(key string, args ...interface{}) string {
	return p.p.Sprintf(key, args...)
}
