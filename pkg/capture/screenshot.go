package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"

	"github.com/df07/go-interactive-raytracer/pkg/renderer"
)

// SaveScreenshot writes the frame to path. The format follows the file
// extension: .bmp or .png. Missing directories are created.
func SaveScreenshot(fb *renderer.FrameBuffer, path string) error {
	encode, err := encoderFor(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create screenshot: %w", err)
	}

	if err := encode(file, fb.Image()); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode screenshot %s: %w", path, err)
	}
	return file.Close()
}

// ScreenshotPath returns output/<scene>/<prefix>_<timestamp>.<ext>
func ScreenshotPath(outputDir, sceneName, prefix, ext string, now time.Time) string {
	timestamp := now.Format("20060102_150405")
	return filepath.Join(outputDir, sceneName, fmt.Sprintf("%s_%s.%s", prefix, timestamp, strings.TrimPrefix(ext, ".")))
}

type encodeFunc func(*os.File, image.Image) error

func encoderFor(path string) (encodeFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return func(f *os.File, img image.Image) error { return png.Encode(f, img) }, nil
	case ".bmp":
		return func(f *os.File, img image.Image) error { return bmp.Encode(f, img) }, nil
	default:
		return nil, fmt.Errorf("unsupported screenshot format %q (use .png or .bmp)", filepath.Ext(path))
	}
}
