package services

import (
	"net/http"

	"golang.org/x/text/language"
)

// requestLanguage negotiates ar/en from the Accept-Language header. Arabic is
// the shop default; English is served only when the request asks for it.
func requestLanguage(r *http.Request) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return language.Arabic
	}
	// Walk the request's preference order ourselves: the matcher's fallback
	// data maps unrelated languages (fr, de, ...) onto English, which would
	// override the shop default.
	for _, t := range tags {
		base, conf := t.Base()
		if conf == language.No {
			continue
		}
		switch base.String() {
		case "ar":
			return language.Arabic
		case "en":
			return language.English
		}
	}
	return language.Arabic
}

// DisplayName picks the localized service name, falling back to the other
// language when one is blank.
func DisplayName(s *Service, tag language.Tag) string {
	base, _ := tag.Base()
	if base.String() == "en" {
		if s.NameEN != "" {
			return s.NameEN
		}
		return s.NameAR
	}
	if s.NameAR != "" {
		return s.NameAR
	}
	return s.NameEN
}
