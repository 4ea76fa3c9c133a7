package stamper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/oshokin/watermark-tool/internal/logger"
)

// fontDPI keeps one point equal to one pixel, so face sizes are plain pixel sizes.
const fontDPI = 72

// fontCandidates are probed in order when no font file is given.
// They match the faces the desktop edition of the tool relied on.
var fontCandidates = []string{
	"C:/Windows/Fonts/arial.ttf",
	"C:/Windows/Fonts/msyh.ttc",
	"C:/Windows/Fonts/simhei.ttf",
	"C:/Windows/Fonts/simsun.ttc",
}

// fontSource is a parsed font ready to produce faces at any pixel size.
type fontSource struct {
	parsed *opentype.Font
}

// loadFontSource loads the watermark font. An explicit path must parse or
// the call fails; without one the well-known candidates are probed and the
// bundled Go Regular face serves as the last resort.
func loadFontSource(ctx context.Context, fontPath string) (*fontSource, error) {
	if fontPath != "" {
		source, err := parseFontFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("load font %s: %w", fontPath, err)
		}

		return source, nil
	}

	for _, candidate := range fontCandidates {
		source, err := parseFontFile(candidate)
		if err == nil {
			logger.DebugKV(ctx, "Using system font", "path", candidate)

			return source, nil
		}
	}

	logger.Debug(ctx, "No system font found, using the bundled face")

	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bundled font: %w", err)
	}

	return &fontSource{parsed: parsed}, nil
}

// parseFontFile reads a TTF or OTF file, or the first font of a TTC/OTC collection.
func parseFontFile(path string) (*fontSource, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	extension := strings.ToLower(filepath.Ext(path))
	if extension == ".ttc" || extension == ".otc" {
		collection, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, err
		}

		parsed, err := collection.Font(0)
		if err != nil {
			return nil, err
		}

		return &fontSource{parsed: parsed}, nil
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}

	return &fontSource{parsed: parsed}, nil
}

// face produces a rendering face at the given pixel size.
func (s *fontSource) face(size float64) (font.Face, error) {
	return opentype.NewFace(s.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
}
