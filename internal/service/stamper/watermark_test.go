package stamper

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestImage writes a solid dark PNG called name into dir and returns its path.
func newTestImage(t *testing.T, dir, name string, width, height int) string {
	t.Helper()

	img := newDarkImage(width, height)
	path := filepath.Join(dir, name)

	var buf bytes.Buffer

	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	return path
}

// newDarkImage returns a solid dark canvas for pixel comparisons.
func newDarkImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: 20, G: 20, B: 20, A: 255})
		}
	}

	return img
}

// TestStampImage_DrawsBottomRight renders text and checks that pixels in the
// bottom-right quadrant changed while the far corner stayed intact.
func TestStampImage_DrawsBottomRight(t *testing.T) {
	t.Parallel()

	source, err := loadFontSource(context.Background(), "")
	require.NoError(t, err)

	base := newDarkImage(400, 300)

	stamped, err := stampImage(base, "confidential", 80, source)
	require.NoError(t, err)

	var changed int

	for y := 150; y < 300; y++ {
		for x := 200; x < 400; x++ {
			if stamped.NRGBAAt(x, y) != base.NRGBAAt(x, y) {
				changed++
			}
		}
	}

	require.NotZero(t, changed)
	require.Equal(t, base.NRGBAAt(5, 5), stamped.NRGBAAt(5, 5))
}

// TestStampImage_EmptyTextCopiesUnchanged passes the image through untouched.
func TestStampImage_EmptyTextCopiesUnchanged(t *testing.T) {
	t.Parallel()

	source, err := loadFontSource(context.Background(), "")
	require.NoError(t, err)

	base := newDarkImage(120, 90)

	stamped, err := stampImage(base, "", DefaultOpacity, source)
	require.NoError(t, err)
	require.Equal(t, base.Pix, stamped.Pix)
}

// TestStampImage_ZeroOpacityLeavesPixels draws fully transparent text,
// which must not move a single pixel.
func TestStampImage_ZeroOpacityLeavesPixels(t *testing.T) {
	t.Parallel()

	source, err := loadFontSource(context.Background(), "")
	require.NoError(t, err)

	base := newDarkImage(200, 150)

	stamped, err := stampImage(base, "invisible", 0, source)
	require.NoError(t, err)
	require.Equal(t, base.Pix, stamped.Pix)
}

// TestStampFile_WritesOutput covers the decode, stamp and encode flow end to end.
func TestStampFile_WritesOutput(t *testing.T) {
	t.Parallel()

	source, err := loadFontSource(context.Background(), "")
	require.NoError(t, err)

	var (
		inputDir  = t.TempDir()
		outputDir = t.TempDir()
	)

	path := newTestImage(t, inputDir, "photo.png", 200, 160)

	outputPath, err := stampFile(path, outputDir, "draft", DefaultOpacity, source)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(outputDir, "photo.png"), outputPath)

	file, err := os.Open(outputPath)
	require.NoError(t, err)

	defer func() { _ = file.Close() }()

	decoded, format, err := image.Decode(file)
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, image.Rect(0, 0, 200, 160), decoded.Bounds())
}

// TestStampFile_WebpFallsBackToPNG checks that formats without an encoder
// land as PNG under the same base name. Decoding sniffs the content, so PNG
// bytes under a .webp name exercise exactly the encoder fallback.
func TestStampFile_WebpFallsBackToPNG(t *testing.T) {
	t.Parallel()

	source, err := loadFontSource(context.Background(), "")
	require.NoError(t, err)

	var (
		inputDir  = t.TempDir()
		outputDir = t.TempDir()
	)

	path := newTestImage(t, inputDir, "clip.webp", 120, 90)

	outputPath, err := stampFile(path, outputDir, "draft", DefaultOpacity, source)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(outputDir, "clip.png"), outputPath)
	require.NoFileExists(t, filepath.Join(outputDir, "clip.webp"))
}

// TestStampFile_RejectsBrokenImage surfaces decode failures with the file name.
func TestStampFile_RejectsBrokenImage(t *testing.T) {
	t.Parallel()

	source, err := loadFontSource(context.Background(), "")
	require.NoError(t, err)

	var (
		inputDir  = t.TempDir()
		outputDir = t.TempDir()
	)

	path := filepath.Join(inputDir, "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	_, err = stampFile(path, outputDir, "draft", DefaultOpacity, source)
	require.Error(t, err)
	require.ErrorContains(t, err, "broken.png")
}

// TestEncodeImage_SelectsEncoderByExtension checks the dispatch and the
// unsupported-format sentinel.
func TestEncodeImage_SelectsEncoderByExtension(t *testing.T) {
	t.Parallel()

	img := newDarkImage(40, 30)

	cases := map[string]string{
		".jpg": "jpeg",
		".png": "png",
		".bmp": "bmp",
	}

	for extension, expected := range cases {
		var buf bytes.Buffer

		require.NoError(t, encodeImage(&buf, img, extension), extension)

		_, format, err := image.Decode(&buf)
		require.NoError(t, err, extension)
		require.Equal(t, expected, format, extension)
	}

	var buf bytes.Buffer

	require.ErrorIs(t, encodeImage(&buf, img, ".webp"), errUnsupportedFormat)
}

// TestScaledValue checks the width scaling floors.
func TestScaledValue(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		width    int
		divisor  int
		floor    int
		expected int
	}{
		"floor wins on small image": {width: 100, divisor: fontSizeDivisor, floor: minFontSize, expected: 16},
		"font scales with width":    {width: 1000, divisor: fontSizeDivisor, floor: minFontSize, expected: 50},
		"margin floor":              {width: 400, divisor: marginDivisor, floor: minMargin, expected: 10},
		"shadow offset scales":      {width: 2000, divisor: shadowOffsetDivisor, floor: minShadowOffset, expected: 5},
	}

	for name, tc := range cases {
		require.Equal(t, tc.expected, scaledValue(tc.width, tc.divisor, tc.floor), name)
	}
}
