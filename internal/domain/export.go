package domain

import "time"

// ExportFormatVersion is the version tag written into every export
// envelope. Import rejects any envelope whose version differs from it.
const ExportFormatVersion = "1.0"

// ExportFilter narrows an Export call to a subset of a namespace's
// memories. A zero value exports everything.
type ExportFilter struct {
	Sectors       []Sector
	Tags          []string
	MinStrength   float64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ExportedMemory is one memory record plus its per-sector embedding
// vectors, as carried in an export envelope.
type ExportedMemory struct {
	Memory
	Embeddings map[Sector][]float32 `json:"embeddings"`
}

// ExportEnvelope is the versioned JSON document produced by the
// export/import service (component H).
type ExportEnvelope struct {
	Version    string           `json:"version"`
	Namespace  string           `json:"namespace"`
	ExportedAt time.Time        `json:"exportedAt"`
	Filter     ExportFilter     `json:"filter"`
	Count      int              `json:"count"`
	Memories   []ExportedMemory `json:"memories"`
	Links      []Link           `json:"links"`
}

// ImportMode selects how an import reconciles with existing data.
type ImportMode string

const (
	ImportMerge   ImportMode = "merge"
	ImportReplace ImportMode = "replace"
)

func ValidImportMode(m string) bool {
	switch ImportMode(m) {
	case ImportMerge, ImportReplace:
		return true
	}
	return false
}

// ImportOptions controls how Import reconciles an envelope with
// existing data. RegenerateEmbeddings embeds each memory the import
// creates from its content instead of restoring the envelope's vectors —
// needed when the envelope predates embeddings or the provider's model
// has changed. Memories that already exist keep their stored vectors
// either way.
type ImportOptions struct {
	Mode                 ImportMode
	RegenerateEmbeddings bool
}

// ImportResult summarizes the outcome of one Import call.
type ImportResult struct {
	MemoriesCreated int
	MemoriesUpdated int
	LinksCreated    int
	Skipped         int
}
