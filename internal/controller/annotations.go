package controller

import (
	"errors"
	"fmt"
	"io"

	"github.com/philipparndt/gomesh/pkg/shape"
)

// ErrNoStore is returned by Save when the session has no annotation store
var ErrNoStore = errors.New("annotation store disabled")

// Save stores the names and mesh sizes of the current geometry. The next
// upload of the same file content picks them up again.
func (c *Controller) Save() error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	if c.store == nil {
		return ErrNoStore
	}
	a := c.shape.Annotations()
	if err := c.store.Save(a); err != nil {
		return err
	}
	c.notice = fmt.Sprintf("Saved %d annotations", a.Len())
	return nil
}

// ExportAnnotations writes the names and mesh sizes as YAML
func (c *Controller) ExportAnnotations(w io.Writer) error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	return c.shape.Annotations().WriteYAML(w)
}

// ImportAnnotations applies names and mesh sizes from YAML. Entries for
// entities the geometry does not have are skipped and counted.
func (c *Controller) ImportAnnotations(r io.Reader) (skipped int, err error) {
	if err := c.editable(); err != nil {
		return 0, err
	}
	a, err := shape.ReadYAML(r)
	if err != nil {
		return 0, err
	}
	for _, kind := range shape.Kinds {
		skipped += c.tables[kind].ApplyAnnotations(a.For(kind))
	}
	c.notice = fmt.Sprintf("Imported %d annotations", a.Len()-skipped)
	c.refresh()
	return skipped, nil
}
