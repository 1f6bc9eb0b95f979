package domain

// WatchRule reruns Step whenever a file matching one of Globs changes.
// Globs are relative to the source root and use forward slashes.
type WatchRule struct {
	Name  string
	Globs []string
	Step  Step
}
