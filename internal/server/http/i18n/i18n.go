// Package i18n resolves the caller language and renders client facing
// messages for error and voucher reason codes.
package i18n

import "golang.org/x/text/language"

const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL"
)

var supported = []language.Tag{
	language.English,
	language.Vietnamese,
}

var matcher = language.NewMatcher(supported)

// Match picks the best supported language for an Accept-Language header.
// English is used when nothing matches.
func Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return language.English
	}
	return supported[idx]
}

// Message returns the text for code in tag, falling back to English and then
// to the generic internal message.
func Message(tag language.Tag, code string) string {
	base, _ := tag.Base()
	if msgs, ok := catalog[base.String()]; ok {
		if msg, ok := msgs[code]; ok {
			return msg
		}
	}
	if msg, ok := catalog["en"][code]; ok {
		return msg
	}
	return catalog["en"][CodeInternal]
}
