package tray

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image/png"
	"os"
)

//go:embed placeholder.png
var placeholderIcon []byte

// PlaceholderIcon returns the built-in 1x1 icon.
func PlaceholderIcon() []byte {
	return placeholderIcon
}

// LoadIcon reads a PNG tray icon from path. Any failure, including an empty
// image, yields the placeholder icon and the reason it was used.
func LoadIcon(path string) ([]byte, error) {
	if path == "" {
		return placeholderIcon, errors.New("no icon configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return placeholderIcon, fmt.Errorf("failed to read icon: %w", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return placeholderIcon, fmt.Errorf("failed to decode icon %s: %w", path, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return placeholderIcon, fmt.Errorf("icon %s is empty", path)
	}
	return data, nil
}
