package gateway

// SafetyCategory names a class of harmful content the remote capability can
// filter on.
type SafetyCategory string

const (
	// SafetyHarassment covers harassment and bullying content.
	SafetyHarassment SafetyCategory = "harassment"
	// SafetyHateSpeech covers hate speech.
	SafetyHateSpeech SafetyCategory = "hate_speech"
	// SafetySexuallyExplicit covers sexually explicit content.
	SafetySexuallyExplicit SafetyCategory = "sexually_explicit"
	// SafetyDangerousContent covers instructions enabling harm.
	SafetyDangerousContent SafetyCategory = "dangerous_content"
)

// SafetyThreshold sets how aggressively a category is blocked.
type SafetyThreshold int

const (
	// BlockNone blocks only content the remote rates as very likely harmful.
	BlockNone SafetyThreshold = iota
	// BlockFew blocks content rated highly likely harmful.
	BlockFew
	// BlockSome blocks content rated likely harmful.
	BlockSome
	// BlockMost blocks content rated possibly harmful.
	BlockMost
)

// String returns the string representation of the threshold.
func (t SafetyThreshold) String() string {
	switch t {
	case BlockNone:
		return "block_none"
	case BlockFew:
		return "block_few"
	case BlockSome:
		return "block_some"
	case BlockMost:
		return "block_most"
	default:
		return "unknown"
	}
}

// SafetyConfig maps content categories to blocking thresholds. It is applied
// by the remote capability on every call and must be passed through
// unmodified by every layer between the caller and the provider.
type SafetyConfig map[SafetyCategory]SafetyThreshold

// DefaultSafetyConfig covers all known categories at BlockSome.
func DefaultSafetyConfig() SafetyConfig {
	return SafetyConfig{
		SafetyHarassment:       BlockSome,
		SafetyHateSpeech:       BlockSome,
		SafetySexuallyExplicit: BlockSome,
		SafetyDangerousContent: BlockSome,
	}
}

// Clone returns an independent copy of the config.
func (c SafetyConfig) Clone() SafetyConfig {
	if c == nil {
		return nil
	}
	out := make(SafetyConfig, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
