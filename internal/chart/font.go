package chart

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	gochart "github.com/wcharczuk/go-chart/v2"
)

var (
	fontOnce sync.Once
	font     *truetype.Font
	fontErr  error
)

// Setup loads the font used by every chart. It runs once per process; later
// calls return the first result. An empty path selects the bundled font.
func Setup(path string) error {
	fontOnce.Do(func() {
		if path == "" {
			font, fontErr = gochart.GetDefaultFont()
			return
		}
		b, err := os.ReadFile(path)
		if err != nil {
			fontErr = fmt.Errorf("read font: %w", err)
			return
		}
		font, fontErr = truetype.Parse(b)
		if fontErr != nil {
			fontErr = fmt.Errorf("parse font %s: %w", path, fontErr)
		}
	})
	return fontErr
}

// currentFont returns the configured font, falling back to the bundled one
// when Setup was never called or failed.
func currentFont() *truetype.Font {
	if err := Setup(""); err != nil || font == nil {
		f, _ := gochart.GetDefaultFont()
		return f
	}
	return font
}
