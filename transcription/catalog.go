package transcription

import (
	"slices"
	"strings"
)

// ModelID identifies a model in the catalog ("tiny", "base", ...).
type ModelID string

// DefaultWeightsBaseURL hosts the ggml weights for the whisper.cpp engine.
const DefaultWeightsBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// ModelInfo describes one catalog entry.
type ModelInfo struct {
	ID   ModelID `json:"id"`
	Name string  `json:"name"`
	// Size is the approximate download size as shown to users.
	Size      string `json:"size"`
	SizeBytes int64  `json:"-"`
	// Filename is the ggml weights file name in the weights cache.
	Filename string `json:"filename"`
}

// URL returns the download URL of the weights under baseURL.
func (m ModelInfo) URL(baseURL string) string {
	if baseURL == "" {
		baseURL = DefaultWeightsBaseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + m.Filename
}

// Catalog is the fixed, ordered set of known models.
type Catalog struct {
	models []ModelInfo
}

// DefaultCatalog returns the whisper model family, smallest first.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		ModelInfo{ID: "tiny", Name: "Tiny", Size: "75M", SizeBytes: 75 << 20, Filename: "ggml-tiny.bin"},
		ModelInfo{ID: "base", Name: "Base", Size: "142M", SizeBytes: 142 << 20, Filename: "ggml-base.bin"},
		ModelInfo{ID: "small", Name: "Small", Size: "466M", SizeBytes: 466 << 20, Filename: "ggml-small.bin"},
		ModelInfo{ID: "medium", Name: "Medium", Size: "1.5G", SizeBytes: 1536 << 20, Filename: "ggml-medium.bin"},
		ModelInfo{ID: "large", Name: "Large", Size: "2.9G", SizeBytes: 2970 << 20, Filename: "ggml-large-v3.bin"},
	)
}

// NewCatalog builds a catalog from models in the given order.
func NewCatalog(models ...ModelInfo) *Catalog {
	return &Catalog{models: slices.Clone(models)}
}

// Lookup returns the entry for id.
func (c *Catalog) Lookup(id ModelID) (ModelInfo, bool) {
	for _, m := range c.models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// IsKnown reports whether id is in the catalog.
func (c *Catalog) IsKnown(id string) bool {
	_, ok := c.Lookup(ModelID(id))
	return ok
}

// Models returns all entries in catalog order.
func (c *Catalog) Models() []ModelInfo {
	return slices.Clone(c.models)
}

// IDs returns the model ids as strings, in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.models))
	for i, m := range c.models {
		ids[i] = string(m.ID)
	}
	return ids
}
