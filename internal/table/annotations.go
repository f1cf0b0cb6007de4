package table

import "github.com/philipparndt/gomesh/pkg/shape"

// Annotations returns the rows carrying a name or mesh size, or whose
// values were cleared since loading
func (t *Table) Annotations() []shape.Annotation {
	var list []shape.Annotation
	for i := range t.visible {
		if a, ok := t.shape.Annotation(t.kind, i); ok {
			list = append(list, a)
		}
	}
	return list
}

// ApplyAnnotations writes saved names and mesh sizes onto the rows. Entries
// beyond the table are skipped and counted.
func (t *Table) ApplyAnnotations(list []shape.Annotation) (skipped int) {
	for _, a := range list {
		if t.check(a.Index) != nil {
			skipped++
			continue
		}
		t.shape.SetEntity(t.kind, a.Index, a.Name, a.Size())
		t.stale = true
	}
	return skipped
}
