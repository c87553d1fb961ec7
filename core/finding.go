package core

// FindingSource identifies the modality an analysis finding was derived from.
type FindingSource int

const (
	// SourceText marks a finding produced from the turn's text component.
	SourceText FindingSource = iota
	// SourceImage marks a finding produced from the turn's image component.
	SourceImage
)

// String returns the string representation of the source.
func (s FindingSource) String() string {
	switch s {
	case SourceText:
		return "text"
	case SourceImage:
		return "image"
	default:
		return "unknown"
	}
}

// AnalysisFinding is the normalized textual result of one modality-specific
// analysis stage. Findings exist only inside a turn's working record and are
// never persisted.
type AnalysisFinding struct {
	Source  FindingSource
	Summary string
}
