package stamper

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // Registers the WebP decoder.
)

// Geometry scales with the image width but never drops below these floors,
// so small pictures still get a readable mark.
const (
	fontSizeDivisor = 20
	minFontSize     = 16

	marginDivisor = 100
	minMargin     = 10

	shadowOffsetDivisor = 400
	minShadowOffset     = 1
)

var errUnsupportedFormat = errors.New("unsupported image format")

// stampFile reads an image, draws the watermark text into its bottom-right
// corner and writes the result under the same name in the output folder.
// When the target format cannot be encoded the output falls back to PNG.
// Returns the path actually written.
func stampFile(path, outputDir, text string, opacity int, source *fontSource) (string, error) {
	input, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}

	decoded, _, err := image.Decode(input)

	// Best-effort cleanup.
	_ = input.Close()

	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	stamped, err := stampImage(decoded, text, opacity, source)
	if err != nil {
		return "", fmt.Errorf("stamp %s: %w", path, err)
	}

	outputPath := filepath.Join(outputDir, filepath.Base(path))

	if err = saveImage(outputPath, stamped); err == nil {
		return outputPath, nil
	}

	// Fall back to PNG.
	fallbackPath := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".png"

	if err = saveImage(fallbackPath, stamped); err != nil {
		return "", fmt.Errorf("save %s: %w", fallbackPath, err)
	}

	return fallbackPath, nil
}

// stampImage copies img onto a fresh canvas and draws the watermark text
// into the bottom-right corner. Empty text leaves the copy untouched.
func stampImage(img image.Image, text string, opacity int, source *fontSource) (*image.NRGBA, error) {
	bounds := img.Bounds()
	canvas := image.NewNRGBA(bounds)

	draw.Draw(canvas, bounds, img, bounds.Min, draw.Src)

	if text == "" {
		return canvas, nil
	}

	width := bounds.Dx()

	face, err := source.face(float64(scaledValue(width, fontSizeDivisor, minFontSize)))
	if err != nil {
		return nil, fmt.Errorf("prepare font face: %w", err)
	}

	// Best-effort cleanup.
	defer func() { _ = face.Close() }()

	var (
		metrics    = face.Metrics()
		textWidth  = font.MeasureString(face, text).Ceil()
		textHeight = (metrics.Ascent + metrics.Descent).Ceil()
		margin     = scaledValue(width, marginDivisor, minMargin)
	)

	x := bounds.Max.X - textWidth - margin
	y := bounds.Max.Y - textHeight - margin

	// Small images keep the text pinned inside the frame.
	if minX := bounds.Min.X + margin; x < minX {
		x = minX
	}

	if minY := bounds.Min.Y + margin; y < minY {
		y = minY
	}

	var (
		alpha    = uint8(255 * opacity / 100)
		offset   = scaledValue(width, shadowOffsetDivisor, minShadowOffset)
		baseline = y + metrics.Ascent.Ceil()
	)

	// Black shadow first, then the white text on top of it.
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.NRGBA{A: alpha}),
		Face: face,
		Dot:  fixed.P(x+offset, baseline+offset),
	}
	drawer.DrawString(text)

	drawer.Src = image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: alpha})
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)

	return canvas, nil
}

// scaledValue divides the width by the divisor and enforces the floor.
func scaledValue(width, divisor, floor int) int {
	value := width / divisor
	if value < floor {
		value = floor
	}

	return value
}

// saveImage writes the image in the format matching the file extension.
func saveImage(path string, img image.Image) error {
	output, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}

	if err = encodeImage(output, img, filepath.Ext(path)); err != nil {
		// Best-effort cleanup.
		_ = output.Close()
		_ = os.Remove(path)

		return err
	}

	return output.Close()
}

// encodeImage picks the encoder by extension.
// WebP has no encoder and reports an unsupported format.
func encodeImage(w io.Writer, img image.Image, extension string) error {
	switch strings.ToLower(extension) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, nil)
	case ".png":
		return png.Encode(w, img)
	case ".gif":
		return gif.Encode(w, img, nil)
	case ".bmp":
		return bmp.Encode(w, img)
	case ".tiff":
		return tiff.Encode(w, img, nil)
	default:
		return fmt.Errorf("%s: %w", extension, errUnsupportedFormat)
	}
}
