package playground

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/playground/", nil)
	r.RemoteAddr = "192.0.2.10:54321"
	if ip := clientIP(r); ip != "192.0.2.10" {
		t.Errorf("expected remote addr host, got %q", ip)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 192.0.2.10")
	if ip := clientIP(r); ip != "203.0.113.7" {
		t.Errorf("expected first forwarded address, got %q", ip)
	}
}

func TestFormChoiceOmittedVsExplicit(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("hair_color_option_id", "none")
	writer.WriteField("beard_style_id", "3")
	writer.WriteField("style_id", "")
	writer.WriteField("beard_color_option_id", "  ")
	writer.Close()

	r := httptest.NewRequest("POST", "/playground/api/generate", &body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse form: %v", err)
	}

	value, present := formChoice(r, "hair_color_option_id")
	if !present || value != "none" {
		t.Errorf("expected explicit none, got %q present=%v", value, present)
	}

	value, present = formChoice(r, "beard_style_id")
	if !present || value != "3" {
		t.Errorf("expected explicit value 3, got %q present=%v", value, present)
	}

	if _, present = formChoice(r, "hair_color_id"); present {
		t.Error("missing field must count as omitted")
	}

	if _, present = formChoice(r, "style_id"); present {
		t.Error("blank field must count as omitted")
	}
	if _, present = formChoice(r, "beard_color_option_id"); present {
		t.Error("whitespace-only field must count as omitted")
	}
}

func TestFingerprintBytesStable(t *testing.T) {
	a := fingerprintBytes([]byte("same bytes"))
	b := fingerprintBytes([]byte("same bytes"))
	c := fingerprintBytes([]byte("other bytes"))

	if a != b {
		t.Error("identical input must produce identical fingerprints")
	}
	if a == c {
		t.Error("different input must produce different fingerprints")
	}
	if len(a) != 64 {
		t.Errorf("expected sha256 hex length 64, got %d", len(a))
	}
}
