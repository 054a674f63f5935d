// Package grok adapts the x.ai image edit API. It pre-composites all inputs
// into a single side-by-side image because the endpoint accepts one image.
package grok

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/BarberLink/BL-Backend/internal/playground/provider"
)

const providerName = "grok"

func init() {
	provider.RegisterProvider(provider.TypeGrok, func(cfg provider.Config) (provider.ImageProvider, error) {
		return NewClient(cfg), nil
	})
}

// Client calls the x.ai images edit endpoint. Single attempt, no retries.
type Client struct {
	apiKey       string
	model        string
	endpoint     string
	outputFormat string
	httpClient   *http.Client
}

func NewClient(cfg provider.Config) *Client {
	return &Client{
		apiKey:       cfg.GrokKey,
		model:        cfg.GrokModel,
		endpoint:     cfg.GrokEndpoint,
		outputFormat: cfg.GrokImageFormat,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) Generate(ctx context.Context, input provider.GenerateInput) (*provider.ImageResult, error) {
	if c.apiKey == "" {
		return nil, provider.Errorf(providerName, "API key is missing")
	}

	referencePaths := []string{input.ReferencePath}
	if input.BeardReferencePath != "" {
		referencePaths = append(referencePaths, input.BeardReferencePath)
	}
	compositeBytes, err := provider.CompositeReference(providerName, input.SelfiePath, referencePaths...)
	if err != nil {
		return nil, err
	}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(compositeBytes)

	payload := map[string]interface{}{
		"model": c.model,
		"prompt": provider.BuildHairTransformationPrompt(provider.PromptOptions{
			UseCompositeInput:     true,
			IncludeBeardReference: input.BeardReferencePath != "",
			HairColorName:         input.HairColorName,
			BeardColorName:        input.BeardColorName,
			ApplyBeardEdit:        input.ApplyBeardEdit,
			PromptStyle:           provider.PromptStylePro,
			PromptSet:             provider.PromptSetDefault,
		}),
		"image_url":    dataURL,
		"image_format": c.outputFormat,
	}

	provider.LogRequest(providerName, http.MethodPost, c.endpoint, map[string]interface{}{"model": c.model})
	responsePayload, err := provider.PostJSON(ctx, c.httpClient, providerName, c.endpoint, payload,
		map[string]string{"Authorization": "Bearer " + c.apiKey})
	if err != nil {
		provider.LogError(providerName, "generate", err)
		return nil, err
	}

	imageBytes, mimeType, err := c.extractImage(ctx, responsePayload)
	if err != nil {
		return nil, err
	}
	return &provider.ImageResult{ImageBytes: imageBytes, MIMEType: mimeType, Provider: providerName}, nil
}

// extractImage handles the response shapes the endpoint is known to return:
// a data list with b64_json or url entries, or those fields at the top level.
func (c *Client) extractImage(ctx context.Context, payload map[string]interface{}) ([]byte, string, error) {
	if dataList, ok := payload["data"].([]interface{}); ok && len(dataList) > 0 {
		first, _ := dataList[0].(map[string]interface{})
		if b64, _ := first["b64_json"].(string); b64 != "" {
			imageBytes, err := provider.DecodeBase64(providerName, b64)
			return imageBytes, "image/png", err
		}
		if resultURL, _ := first["url"].(string); resultURL != "" {
			return provider.DownloadBinary(ctx, c.httpClient, providerName, resultURL)
		}
	}

	if b64, _ := payload["b64_json"].(string); b64 != "" {
		imageBytes, err := provider.DecodeBase64(providerName, b64)
		return imageBytes, "image/png", err
	}
	if resultURL, _ := payload["url"].(string); resultURL != "" {
		return provider.DownloadBinary(ctx, c.httpClient, providerName, resultURL)
	}
	if b64, _ := payload["image"].(string); b64 != "" {
		imageBytes, err := provider.DecodeBase64(providerName, b64)
		return imageBytes, "image/png", err
	}

	return nil, "", provider.Errorf(providerName, "provider returned no image output")
}
