package tgmarkup

import (
	"sync"

	"github.com/tgmarkup/tgmarkup-go/internal/types"
)

// Symbol defines the display glyphs the GFM importer uses for elements
// with no entity representation.
type Symbol = types.Symbol

// RenderConfig controls the GFM importer.
type RenderConfig = types.RenderConfig

var (
	defaultRenderConfig     *RenderConfig
	defaultRenderConfigOnce sync.Once
)

// DefaultRenderConfig returns the shared default importer configuration.
func DefaultRenderConfig() *RenderConfig {
	defaultRenderConfigOnce.Do(func() {
		defaultRenderConfig = types.DefaultRenderConfig()
	})
	return defaultRenderConfig
}
