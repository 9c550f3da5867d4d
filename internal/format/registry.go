package format

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"DataPipeline/internal/domain"
)

// Codec reads and writes one dataset serialization (CSV, JSON records, ...).
type Codec interface {
	Name() string
	Extensions() []string
	Decode(r io.Reader) (*domain.Dataset, error)
	Encode(w io.Writer, ds *domain.Dataset) error
}

// Registry maps file extensions to codecs.
type Registry struct {
	extensions map[string]Codec
}

// NewRegistry builds a registry holding the given codecs.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{extensions: map[string]Codec{}}
	for _, c := range codecs {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a codec implementation.
func (r *Registry) Register(codec Codec) {
	if r.extensions == nil {
		r.extensions = map[string]Codec{}
	}
	for _, ext := range codec.Extensions() {
		r.extensions[strings.ToLower(ext)] = codec
	}
}

// ForPath picks the codec registered for the file extension.
func (r *Registry) ForPath(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if codec, ok := r.extensions[ext]; ok {
		return codec, nil
	}
	return nil, fmt.Errorf("no format registered for %q (known: %s)", ext, strings.Join(r.knownExtensions(), ", "))
}

func (r *Registry) knownExtensions() []string {
	out := make([]string, 0, len(r.extensions))
	for ext := range r.extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
