package stamper

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/watermark-tool/internal/logger"
)

// supportedExtensions lists the image formats the stamper can read,
// keyed by lowercase file extension.
var supportedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
	".tiff": {},
	".webp": {},
}

// isSupportedImage reports whether the file name carries a supported
// image extension. The check is case-insensitive.
func isSupportedImage(name string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(name))]

	return ok
}

// collectImages expands the given files and folders into a flat list of
// image paths. Folders are walked recursively, unsupported files are
// skipped with a warning, and duplicates keep their first occurrence.
func collectImages(ctx context.Context, inputs []string) ([]string, error) {
	var (
		seen   = make(map[string]struct{}, len(inputs))
		images = make([]string, 0, len(inputs))
	)

	appendImage := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}

		seen[path] = struct{}{}

		images = append(images, path)
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("read input %s: %w", input, err)
		}

		if !info.IsDir() {
			if !isSupportedImage(input) {
				logger.WarnKV(ctx, "Skipping unsupported file", "path", input)

				continue
			}

			appendImage(input)

			continue
		}

		err = filepath.WalkDir(input, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !entry.IsDir() && isSupportedImage(path) {
				appendImage(path)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk folder %s: %w", input, err)
		}
	}

	return images, nil
}
