package shape

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Annotation is a user edit of one entity that outlives a session
type Annotation struct {
	Index    int      `yaml:"index" json:"index"`
	Name     string   `yaml:"name,omitempty" json:"name,omitempty"`
	MeshSize *float64 `yaml:"maxh,omitempty" json:"maxh,omitempty"`
}

// Size returns the canonical mesh size of the annotation
func (a Annotation) Size() float64 {
	return MeshSizeFromPtr(a.MeshSize)
}

// IsEmpty reports whether the annotation carries no edit
func (a Annotation) IsEmpty() bool {
	return a.Name == "" && a.MeshSize == nil
}

// Annotations holds all saved edits for one geometry
type Annotations struct {
	Geometry string       `yaml:"geometry,omitempty" json:"geometry,omitempty"`
	Digest   string       `yaml:"digest,omitempty" json:"digest,omitempty"`
	Solids   []Annotation `yaml:"solids,omitempty" json:"solids,omitempty"`
	Faces    []Annotation `yaml:"faces,omitempty" json:"faces,omitempty"`
	Edges    []Annotation `yaml:"edges,omitempty" json:"edges,omitempty"`
}

// For returns the annotations of one kind
func (a *Annotations) For(kind Kind) []Annotation {
	switch kind {
	case Solid:
		return a.Solids
	case Face:
		return a.Faces
	default:
		return a.Edges
	}
}

// Set replaces the annotations of one kind
func (a *Annotations) Set(kind Kind, list []Annotation) {
	switch kind {
	case Solid:
		a.Solids = list
	case Face:
		a.Faces = list
	default:
		a.Edges = list
	}
}

// Len returns the total number of annotations
func (a *Annotations) Len() int {
	return len(a.Solids) + len(a.Faces) + len(a.Edges)
}

// Annotation returns the entry for one entity. ok is false when the entity
// has neither a name nor a mesh size and the file did not carry one either.
// A cleared value comes back as an explicit empty entry so that it
// overrides what the geometry file holds.
func (s *Shape) Annotation(kind Kind, index int) (a Annotation, ok bool) {
	name, size := s.Entity(kind, index)
	a = Annotation{Index: index, Name: name, MeshSize: MeshSizePtr(size)}
	loadedName, loadedSize := s.Loaded(kind, index)
	changed := name != loadedName || !SameMeshSize(size, loadedSize)
	return a, changed || !a.IsEmpty()
}

// Annotations collects the names and mesh sizes of a shape that are set or
// differ from the loaded ones
func (s *Shape) Annotations() *Annotations {
	out := &Annotations{Geometry: s.Name, Digest: s.Digest}
	for _, kind := range Kinds {
		var list []Annotation
		for i := 0; i < s.Count(kind); i++ {
			if a, ok := s.Annotation(kind, i); ok {
				list = append(list, a)
			}
		}
		out.Set(kind, list)
	}
	return out
}

// Apply writes annotations onto the shape. Entries that do not fit the shape
// (a different geometry with fewer entities) are skipped and counted.
func (s *Shape) Apply(a *Annotations) (skipped int) {
	for _, kind := range Kinds {
		for _, ann := range a.For(kind) {
			if ann.Index < 0 || ann.Index >= s.Count(kind) {
				skipped++
				continue
			}
			s.SetEntity(kind, ann.Index, ann.Name, ann.Size())
		}
	}
	return skipped
}

// WriteYAML encodes annotations as YAML
func (a *Annotations) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("failed to encode annotations: %w", err)
	}
	return enc.Close()
}

// ReadYAML decodes annotations from YAML
func ReadYAML(r io.Reader) (*Annotations, error) {
	var a Annotations
	if err := yaml.NewDecoder(r).Decode(&a); err != nil {
		if err == io.EOF {
			return &a, nil
		}
		return nil, fmt.Errorf("failed to decode annotations: %w", err)
	}
	for _, kind := range Kinds {
		for _, ann := range a.For(kind) {
			if ann.MeshSize != nil {
				if _, err := CheckMeshSize(*ann.MeshSize); err != nil {
					return nil, fmt.Errorf("%s %d: %w", kind, ann.Index, err)
				}
			}
		}
	}
	return &a, nil
}
