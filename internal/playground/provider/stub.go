package provider

import (
	"context"
	"os"
)

// StubProvider echoes the selfie back unchanged. Used in tests and in
// environments with generation disabled; it succeeds whenever the selfie
// file is readable.
type StubProvider struct{}

func init() {
	RegisterProvider(TypeStub, func(Config) (ImageProvider, error) {
		return &StubProvider{}, nil
	})
}

func (p *StubProvider) Name() string { return string(TypeStub) }

func (p *StubProvider) Generate(_ context.Context, input GenerateInput) (*ImageResult, error) {
	imageBytes, err := os.ReadFile(input.SelfiePath)
	if err != nil {
		return nil, &Error{Provider: p.Name(), Message: "read selfie: " + err.Error(), Err: err}
	}
	return &ImageResult{
		ImageBytes: imageBytes,
		MIMEType:   GuessMIME(input.SelfiePath),
		Provider:   p.Name(),
	}, nil
}
