package services

import (
	"net/http/httptest"
	"testing"

	"golang.org/x/text/language"
)

func TestRequestLanguage(t *testing.T) {
	cases := []struct {
		header string
		want   language.Tag
	}{
		{"", language.Arabic},
		{"ar", language.Arabic},
		{"ar-SA,ar;q=0.9", language.Arabic},
		{"en-US,en;q=0.9", language.English},
		{"en-GB", language.English},
		{"fr-FR,fr;q=0.9", language.Arabic},
		{"de-DE,de;q=0.8,fr;q=0.5", language.Arabic},
		{"fr-FR,en;q=0.5", language.English},
		{"tr,ar;q=0.7,en;q=0.3", language.Arabic},
		{"garbage;;;", language.Arabic},
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/services/", nil)
		if tc.header != "" {
			r.Header.Set("Accept-Language", tc.header)
		}
		if got := requestLanguage(r); got != tc.want {
			t.Errorf("requestLanguage(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	service := &Service{NameAR: "قص شعر", NameEN: "Haircut"}

	if got := DisplayName(service, language.Arabic); got != "قص شعر" {
		t.Errorf("Arabic display name = %q", got)
	}
	if got := DisplayName(service, language.English); got != "Haircut" {
		t.Errorf("English display name = %q", got)
	}
}

func TestDisplayNameFallback(t *testing.T) {
	onlyEnglish := &Service{NameEN: "Beard Trim"}
	if got := DisplayName(onlyEnglish, language.Arabic); got != "Beard Trim" {
		t.Errorf("missing Arabic name should fall back to English, got %q", got)
	}

	onlyArabic := &Service{NameAR: "حلاقة"}
	if got := DisplayName(onlyArabic, language.English); got != "حلاقة" {
		t.Errorf("missing English name should fall back to Arabic, got %q", got)
	}
}
