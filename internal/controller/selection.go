package controller

import (
	"fmt"

	"github.com/philipparndt/gomesh/internal/selection"
	"github.com/philipparndt/gomesh/pkg/shape"
	"github.com/philipparndt/gomesh/pkg/viewer"
)

// ActiveKind returns the kind of the visible table
func (c *Controller) ActiveKind() shape.Kind {
	return c.active
}

// SetActiveKind switches the table tab. The projection follows the tab.
func (c *Controller) SetActiveKind(kind shape.Kind) error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	if c.active != kind {
		c.active = kind
		c.markStale()
	}
	c.refresh()
	return nil
}

// ClickRow applies a click on a table row
func (c *Controller) ClickRow(kind shape.Kind, index int, mods selection.Modifiers) error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	if err := c.sel.Click(kind, index, mods); err != nil {
		return err
	}
	c.refresh()
	return nil
}

// HandlePick routes a click in the viewer. Clicks that ended a camera drag
// are ignored; clicks on empty space clear the active selection. Face picks
// select faces, or toggle the solids around the face while the solids tab
// is active. Edge picks select edges.
func (c *Controller) HandlePick(p viewer.Pick) error {
	if c.shape == nil || c.mode != ModeGeometry || p.DidMove {
		return nil
	}
	if p.Empty() {
		c.sel.Clear(c.active)
		c.refresh()
		return nil
	}

	kind, ok := shape.KindForDim(p.Dim)
	if !ok || kind == shape.Solid {
		return fmt.Errorf("unsupported pick dimension %d", p.Dim)
	}
	if p.Index < 0 || p.Index >= c.shape.Count(kind) {
		return fmt.Errorf("%w: picked %s %d", selection.ErrIndexOutOfRange, kind, p.Index)
	}

	if kind == shape.Face && c.active == shape.Solid {
		if err := c.sel.ToggleEach(shape.Solid, c.shape.FaceSolids(p.Index)); err != nil {
			return err
		}
		c.refresh()
		return nil
	}

	if c.active != kind {
		c.active = kind
		c.markStale()
	}
	if err := c.sel.Click(kind, p.Index, selection.Modifiers{Ctrl: p.Ctrl, Shift: p.Shift}); err != nil {
		return err
	}
	c.scrollTo(kind, p.Index)
	c.refresh()
	return nil
}

// scrollTo moves the table of kind to the page showing index
func (c *Controller) scrollTo(kind shape.Kind, index int) {
	if page := c.tables[kind].PageOf(index); page >= 0 {
		c.pages[kind] = page
	}
}

// SelectAll selects every displayed row of a kind
func (c *Controller) SelectAll(kind shape.Kind) error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	if err := c.tables[kind].SelectAll(); err != nil {
		return err
	}
	c.refresh()
	return nil
}

// ClearSelection empties the selection of a kind
func (c *Controller) ClearSelection(kind shape.Kind) error {
	if c.shape == nil {
		return ErrNoGeometry
	}
	c.sel.Clear(kind)
	c.refresh()
	return nil
}
