package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNewProviderUnknownName(t *testing.T) {
	_, err := NewProvider(Config{Provider: Type("dalle")})
	if err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
	if !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestNewProviderStub(t *testing.T) {
	adapter, err := NewProvider(Config{Provider: TypeStub})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adapter.Name() != "stub" {
		t.Errorf("unexpected provider name %q", adapter.Name())
	}
}

func TestStubGenerateRoundTrip(t *testing.T) {
	selfiePath := filepath.Join(t.TempDir(), "selfie.jpg")
	if err := os.WriteFile(selfiePath, []byte("selfie-bytes"), 0o644); err != nil {
		t.Fatalf("write selfie: %v", err)
	}

	adapter := &StubProvider{}
	result, err := adapter.Generate(context.Background(), GenerateInput{SelfiePath: selfiePath})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if string(result.ImageBytes) != "selfie-bytes" {
		t.Errorf("stub must echo the selfie bytes, got %q", result.ImageBytes)
	}
	if result.MIMEType != "image/jpeg" {
		t.Errorf("unexpected MIME type %q", result.MIMEType)
	}
	if result.Provider != "stub" {
		t.Errorf("unexpected provider %q", result.Provider)
	}
}

func TestStubGenerateMissingSelfie(t *testing.T) {
	adapter := &StubProvider{}
	_, err := adapter.Generate(context.Background(), GenerateInput{SelfiePath: "/nonexistent/selfie.jpg"})
	if err == nil {
		t.Fatal("expected an error for a missing selfie")
	}
	var provErr *Error
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *provider.Error, got %T", err)
	}
	if provErr.Provider != "stub" {
		t.Errorf("unexpected provider %q on error", provErr.Provider)
	}
}

func TestErrorFormatting(t *testing.T) {
	wrapped := errors.New("connection refused")
	err := &Error{Provider: "grok", Message: "request failed", Err: wrapped}

	if err.Error() != "grok: request failed" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, wrapped) {
		t.Error("Unwrap should expose the underlying error")
	}

	bare := &Error{Message: "no provider"}
	if bare.Error() != "no provider" {
		t.Errorf("unexpected bare message %q", bare.Error())
	}
}

func TestExtensionFromMIME(t *testing.T) {
	cases := map[string]string{
		"image/jpeg": "jpg",
		"image/png":  "png",
		"image/webp": "webp",
		"":           "png",
	}
	for mimeType, want := range cases {
		if got := ExtensionFromMIME(mimeType); got != want {
			t.Errorf("ExtensionFromMIME(%q) = %q, want %q", mimeType, got, want)
		}
	}
}
