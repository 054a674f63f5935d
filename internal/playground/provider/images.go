package provider

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"mime"
	"os"
	"path/filepath"
	"strings"

	xdraw "golang.org/x/image/draw"

	_ "image/png"

	_ "golang.org/x/image/webp"
)

// GuessMIME maps a file extension to an image MIME type.
func GuessMIME(path string) string {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		return "image/jpeg"
	}
	return mimeType
}

// EncodeImageFile reads a file and returns its MIME type and base64 payload.
func EncodeImageFile(providerName, path string) (mimeType, b64 string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", "", &Error{Provider: providerName, Message: "read image file: " + err.Error(), Err: err}
	}
	return GuessMIME(path), base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeBase64 decodes a provider-returned base64 image payload.
func DecodeBase64(providerName, raw string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, &Error{Provider: providerName, Message: "provider returned invalid base64 image payload", Err: err}
	}
	return decoded, nil
}

// ExtensionFromMIME picks a file extension for a result image.
func ExtensionFromMIME(mimeType string) string {
	switch strings.TrimSpace(strings.ToLower(mimeType)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

// maxPanelHeight bounds composite panels; providers downscale anyway.
const maxPanelHeight = 1024

// CompositeReference builds one side-by-side JPEG out of the selfie followed
// by the reference image(s), for providers that accept only a single input
// image. All panels are scaled to a common height.
func CompositeReference(providerName, selfiePath string, referencePaths ...string) ([]byte, error) {
	panelPaths := append([]string{selfiePath}, referencePaths...)

	panels := make([]image.Image, 0, len(panelPaths))
	targetHeight := 0
	for _, path := range panelPaths {
		img, err := decodeImageFile(providerName, path)
		if err != nil {
			return nil, err
		}
		panels = append(panels, img)
		if h := img.Bounds().Dy(); h > targetHeight {
			targetHeight = h
		}
	}
	if targetHeight > maxPanelHeight {
		targetHeight = maxPanelHeight
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	scaled := make([]*image.RGBA, 0, len(panels))
	totalWidth := 0
	for _, img := range panels {
		bounds := img.Bounds()
		width := bounds.Dx() * targetHeight / max(bounds.Dy(), 1)
		if width < 1 {
			width = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, targetHeight))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
		scaled = append(scaled, dst)
		totalWidth += width
	}

	composed := image.NewRGBA(image.Rect(0, 0, totalWidth, targetHeight))
	background := color.RGBA{R: 245, G: 245, B: 245, A: 255}
	xdraw.Draw(composed, composed.Bounds(), image.NewUniform(background), image.Point{}, xdraw.Src)
	xOffset := 0
	for _, panel := range scaled {
		width := panel.Bounds().Dx()
		xdraw.Draw(composed, image.Rect(xOffset, 0, xOffset+width, targetHeight), panel, image.Point{}, xdraw.Over)
		xOffset += width
	}

	var buffer bytes.Buffer
	if err := jpeg.Encode(&buffer, composed, &jpeg.Options{Quality: 93}); err != nil {
		return nil, &Error{Provider: providerName, Message: "encode composite image", Err: err}
	}
	return buffer.Bytes(), nil
}

func decodeImageFile(providerName, path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &Error{Provider: providerName, Message: "open image file: " + err.Error(), Err: err}
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, &Error{Provider: providerName, Message: "decode image file: " + err.Error(), Err: err}
	}
	return img, nil
}
