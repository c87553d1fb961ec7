package core

// VerdictCategory classifies the outcome of a moderation check.
type VerdictCategory int

const (
	// CategorySafe indicates the checked content or action raised no flags.
	CategorySafe VerdictCategory = iota
	// CategoryUnsafeText indicates the text component was flagged.
	CategoryUnsafeText
	// CategoryUnsafeImage indicates the image component was flagged.
	CategoryUnsafeImage
	// CategoryUnsafeAction indicates a proposed action was flagged.
	CategoryUnsafeAction
)

// String returns the string representation of the category.
func (c VerdictCategory) String() string {
	switch c {
	case CategorySafe:
		return "safe"
	case CategoryUnsafeText:
		return "unsafe-text"
	case CategoryUnsafeImage:
		return "unsafe-image"
	case CategoryUnsafeAction:
		return "unsafe-action"
	default:
		return "unknown"
	}
}

// ModerationVerdict is the outcome of a single safety check. Verdicts are
// produced fresh per check and never persisted beyond the turn that
// requested them.
type ModerationVerdict struct {
	Allowed  bool
	Category VerdictCategory
	Reason   string
}

// SafeVerdict returns an allowing verdict.
func SafeVerdict() ModerationVerdict {
	return ModerationVerdict{Allowed: true, Category: CategorySafe}
}

// UnsafeVerdict returns a blocking verdict with the given category and reason.
func UnsafeVerdict(category VerdictCategory, reason string) ModerationVerdict {
	return ModerationVerdict{Allowed: false, Category: category, Reason: reason}
}
