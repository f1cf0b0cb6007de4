package viewer

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// Widget shows a View in a fyne window: drag to orbit, scroll to zoom,
// click to pick
type Widget struct {
	widget.BaseWidget
	view      *View
	image     *canvas.Image
	dragStart *fyne.Position
	moved     bool
	onPick    func(Pick)
}

// NewWidget creates a widget drawing view
func NewWidget(view *View) *Widget {
	w := &Widget{view: view}
	w.image = canvas.NewImageFromImage(nil)
	w.image.FillMode = canvas.ImageFillStretch
	w.image.ScaleMode = canvas.ImageScaleFastest
	w.ExtendBaseWidget(w)
	return w
}

// SetOnPick sets the callback for clicks on the view
func (w *Widget) SetOnPick(callback func(Pick)) {
	w.onPick = callback
}

// View returns the wrapped view
func (w *Widget) View() *View {
	return w.view
}

// Redraw renders the view again, e.g. after colors changed
func (w *Widget) Redraw() {
	w.image.Image = w.view.Frame().Image
	canvas.Refresh(w.image)
}

// CreateRenderer creates the renderer for the widget
func (w *Widget) CreateRenderer() fyne.WidgetRenderer {
	return &viewWidgetRenderer{widget: w}
}

// Dragged handles mouse drag events for rotation
func (w *Widget) Dragged(event *fyne.DragEvent) {
	if w.dragStart != nil {
		deltaX := event.Position.X - w.dragStart.X
		deltaY := event.Position.Y - w.dragStart.Y

		w.view.Rotate(float64(deltaY)*0.01, float64(-deltaX)*0.01)
		w.Redraw()
	}
	pos := event.Position
	w.dragStart = &pos
	w.moved = true
}

// DragEnd handles the end of a drag event
func (w *Widget) DragEnd() {
	w.dragStart = nil
}

// Tapped picks the entity under the cursor
func (w *Widget) Tapped(event *fyne.PointEvent) {
	pick := w.view.Pick(int(event.Position.X), int(event.Position.Y))
	pick.DidMove = w.moved
	w.moved = false

	if drv, ok := fyne.CurrentApp().Driver().(desktop.Driver); ok {
		mods := drv.CurrentKeyModifiers()
		pick.Ctrl = mods&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0
		pick.Shift = mods&fyne.KeyModifierShift != 0
	}

	if w.onPick != nil {
		w.onPick(pick)
	}
}

// Scrolled handles scroll events for zooming
func (w *Widget) Scrolled(event *fyne.ScrollEvent) {
	w.view.Zoom(-float64(event.Scrolled.DY) * 0.002)
	w.Redraw()
}

// viewWidgetRenderer implements fyne.WidgetRenderer
type viewWidgetRenderer struct {
	widget *Widget
}

func (r *viewWidgetRenderer) Layout(size fyne.Size) {
	r.widget.image.Resize(size)
	r.widget.view.Resize(int(size.Width), int(size.Height))
	r.widget.Redraw()
}

func (r *viewWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *viewWidgetRenderer) Refresh() {
	r.widget.Redraw()
}

func (r *viewWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.widget.image}
}

func (r *viewWidgetRenderer) Destroy() {}
