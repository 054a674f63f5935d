package provider

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownProvider is returned by NewProvider for unrecognized names.
var ErrUnknownProvider = errors.New("unknown image provider")

// Error is the single error type that crosses the adapter boundary. Every
// transport failure, bad status, malformed payload, or missing credential is
// normalized to it, so the orchestrator never handles provider specifics.
type Error struct {
	Provider   string
	Message    string
	StatusCode int // upstream HTTP status when known, else 0
	Err        error
}

func (e *Error) Error() string {
	if e.Provider == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds a provider Error with a formatted message.
func Errorf(provider string, format string, args ...interface{}) *Error {
	return &Error{Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// GenerateInput carries everything an adapter needs for one edit.
type GenerateInput struct {
	SelfiePath         string
	ReferencePath      string
	BeardReferencePath string // empty when no beard edit was requested
	HairColorName      string
	BeardColorName     string
	ApplyBeardEdit     bool
}

// ImageResult is a successful generation.
type ImageResult struct {
	ImageBytes []byte
	MIMEType   string
	Provider   string
}

// ImageProvider is implemented once per external image-generation service.
type ImageProvider interface {
	// Name returns the provider name recorded on generation rows.
	Name() string

	// Generate transforms the selfie according to the reference image(s) and
	// color choices. Failures are always *Error.
	Generate(ctx context.Context, input GenerateInput) (*ImageResult, error)
}

// Type identifies which image provider to use.
type Type string

const (
	TypeStub       Type = "stub"
	TypeNanobanana Type = "nanobanana"
	TypeGrok       Type = "grok"
)

// providerRegistry holds registered provider constructors. New providers are
// registered from init() in their own package.
var providerRegistry = make(map[Type]func(Config) (ImageProvider, error))

func RegisterProvider(providerType Type, constructor func(Config) (ImageProvider, error)) {
	providerRegistry[providerType] = constructor
}

// NewProvider creates an ImageProvider from the configuration. Unknown names
// yield a typed error; missing credentials are reported later by Generate so
// a misconfigured deployment still records its failed generations.
func NewProvider(cfg Config) (ImageProvider, error) {
	constructor, ok := providerRegistry[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q (expected one of: nanobanana, grok, stub)", ErrUnknownProvider, cfg.Provider)
	}
	return constructor(cfg)
}
