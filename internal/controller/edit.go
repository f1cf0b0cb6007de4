package controller

import (
	"strings"

	"github.com/philipparndt/gomesh/pkg/shape"
)

func (c *Controller) editable() error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	if c.busy {
		return ErrBusy
	}
	return nil
}

// SetName renames one entity
func (c *Controller) SetName(kind shape.Kind, index int, name string) error {
	if err := c.editable(); err != nil {
		return err
	}
	if err := c.tables[kind].SetName(index, name); err != nil {
		return err
	}
	c.refresh()
	return nil
}

// SetMeshSize sets the mesh size of one entity from an input value. An
// empty value removes the override.
func (c *Controller) SetMeshSize(kind shape.Kind, index int, text string) error {
	if err := c.editable(); err != nil {
		return err
	}
	if err := c.tables[kind].SetMeshSizeText(index, text); err != nil {
		return err
	}
	c.refresh()
	return nil
}

// SetVisible shows or hides one entity
func (c *Controller) SetVisible(kind shape.Kind, index int, visible bool) error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	if err := c.tables[kind].SetVisible(index, visible); err != nil {
		return err
	}
	c.refresh()
	return nil
}

// BulkInputs returns the values of the "change for all selected" inputs
func (c *Controller) BulkInputs() (name, meshSize string) {
	return c.bulkName, c.bulkMeshSize
}

// SetBulkName renames every selected entity of the active kind
func (c *Controller) SetBulkName(name string) error {
	if err := c.editable(); err != nil {
		return err
	}
	t := c.tables[c.active]
	for _, index := range t.Selected() {
		if err := t.SetName(index, name); err != nil {
			return err
		}
	}
	c.bulkName = name
	c.refresh()
	return nil
}

// SetBulkMeshSize sets the mesh size of every selected entity of the active
// kind. Invalid values change nothing.
func (c *Controller) SetBulkMeshSize(text string) error {
	if err := c.editable(); err != nil {
		return err
	}
	size, err := shape.ParseMeshSize(text)
	if err != nil {
		return err
	}
	t := c.tables[c.active]
	for _, index := range t.Selected() {
		if err := t.SetMeshSize(index, size); err != nil {
			return err
		}
	}
	c.bulkMeshSize = strings.TrimSpace(text)
	c.refresh()
	return nil
}

// SetFilter narrows the rows of a kind by name and returns to the first page
func (c *Controller) SetFilter(kind shape.Kind, text string) error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	c.tables[kind].SetFilter(text)
	c.pages[kind] = 0
	return nil
}

// Page returns the current page of a kind's table
func (c *Controller) Page(kind shape.Kind) int {
	return c.pages[kind]
}

// SetPage moves a table to page, clamped to the available pages
func (c *Controller) SetPage(kind shape.Kind, page int) error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	c.pages[kind] = c.tables[kind].ClampPage(page)
	return nil
}
