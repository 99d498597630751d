package platform

import (
	"fmt"
	"log/slog"
)

// BackdropSetter is implemented by windows that can apply a compositor
// backdrop material (blur, acrylic, vibrancy).
type BackdropSetter interface {
	SetBackdrop(material string) error
}

// BackdropOf looks up the backdrop capability of a window.
func BackdropOf(w Window) (func(material string) error, bool) {
	s, ok := w.(BackdropSetter)
	if !ok {
		return nil, false
	}
	return s.SetBackdrop, true
}

// ApplyBackdrop applies a backdrop material if the window supports it. A missing
// capability, an error, or a panic inside the setter is logged and swallowed.
func ApplyBackdrop(w Window, material string, logger *slog.Logger) (applied bool) {
	if logger == nil {
		logger = slog.Default()
	}
	if material == "" || w == nil {
		return false
	}

	set, ok := BackdropOf(w)
	if !ok {
		logger.Debug("backdrop not available", "window", w.Kind().String())
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn("backdrop effect failed", "window", w.Kind().String(), "error", fmt.Sprint(r))
			applied = false
		}
	}()

	if err := set(material); err != nil {
		logger.Info("backdrop effect not available", "window", w.Kind().String(), "material", material, "error", err)
		return false
	}
	return true
}
