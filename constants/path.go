package constants

// ResolutionPath records which branch produced an identifier.
type ResolutionPath string

// Stable values (printed by the CLI and written to reports).
const (
	PathBusiness  ResolutionPath = "BUSINESS"  // class resolved, DOC-* identifier
	PathUniversal ResolutionPath = "UNIVERSAL" // fallback, UNIV-* identifier
)

// Universal sub-paths, recorded for diagnostics only.
const (
	UniversalText   = "text"
	UniversalVisual = "visual"
	UniversalBytes  = "bytes"
)
