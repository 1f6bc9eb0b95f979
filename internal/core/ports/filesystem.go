package ports

// InputResolver expands glob patterns into concrete files.
//
//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks
type InputResolver interface {
	// Resolve returns the files below root matching any of patterns, as
	// slash-separated paths relative to root, sorted and without duplicates.
	// A root that does not exist matches nothing.
	Resolve(root string, patterns []string) ([]string, error)
}

// FileWriter writes output files.
type FileWriter interface {
	// WriteFile writes data to path, creating parent directories. It leaves
	// the file untouched and reports false when the bytes already match.
	WriteFile(path string, data []byte) (bool, error)
}

// Hasher digests output trees.
type Hasher interface {
	// HashTree returns a deterministic digest of every file below root.
	HashTree(root string) (string, error)
}
