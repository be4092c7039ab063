package vtex

import "github.com/gogpu/gputypes"

// supportedLayerFormats is the fixed set of pixel-layer formats a stack
// layer may use. The set mirrors what the native tile caches can back.
var supportedLayerFormats = map[gputypes.TextureFormat]struct{}{
	gputypes.TextureFormatRGBA8Unorm:     {},
	gputypes.TextureFormatRGBA8UnormSrgb: {},
	gputypes.TextureFormatBGRA8Unorm:     {},
	gputypes.TextureFormatBGRA8UnormSrgb: {},
	gputypes.TextureFormatR8Unorm:        {},
	gputypes.TextureFormatR32Float:       {},
	gputypes.TextureFormatRG32Float:      {},
	gputypes.TextureFormatRGBA32Float:    {},
}

// SupportedLayerFormat reports whether f may be used as a pixel-layer
// format in StackCreationParams. It is a pure predicate: it performs no
// native calls and is checked before any resource allocation.
func SupportedLayerFormat(f gputypes.TextureFormat) bool {
	_, ok := supportedLayerFormats[f]
	return ok
}
