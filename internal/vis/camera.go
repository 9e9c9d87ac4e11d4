package vis

import (
	"gioui.org/io/pointer"
)

// Camera manages the horizontal view transform of the Gantt area: pan in
// screen pixels and zoom in pixels per time unit.
type Camera struct {
	OffsetX float32
	Scale   float32 // pixels per time unit

	dragging bool
	lastX    float32
}

// NewCamera fits roughly the whole horizon into a default window.
func NewCamera(horizon int) *Camera {
	scale := float32(1200) / float32(horizon)
	if scale < 1 {
		scale = 1
	}
	if scale > 60 {
		scale = 60
	}
	return &Camera{OffsetX: 140, Scale: scale}
}

// Reset restores the initial view.
func (c *Camera) Reset(horizon int) {
	fresh := NewCamera(horizon)
	c.OffsetX = fresh.OffsetX
	c.Scale = fresh.Scale
}

// TimeToScreen converts a time coordinate to a screen X.
func (c *Camera) TimeToScreen(t float64) float32 {
	return float32(t)*c.Scale + c.OffsetX
}

// ScreenToTime converts a screen X to a time coordinate.
func (c *Camera) ScreenToTime(x float32) float64 {
	return float64((x - c.OffsetX) / c.Scale)
}

// HandleEvent processes pointer events for pan and zoom.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.dragging = true
		}
		c.lastX = ev.Position.X

	case pointer.Drag:
		if c.dragging {
			c.OffsetX += ev.Position.X - c.lastX
		}
		c.lastX = ev.Position.X

	case pointer.Release:
		c.dragging = false

	case pointer.Scroll:
		if ev.Scroll.Y == 0 {
			return
		}
		// Zoom centered on the time under the pointer.
		t := c.ScreenToTime(ev.Position.X)
		factor := float32(1.1)
		if ev.Scroll.Y > 0 {
			c.Scale /= factor
		} else {
			c.Scale *= factor
		}
		if c.Scale < 0.05 {
			c.Scale = 0.05
		}
		if c.Scale > 200 {
			c.Scale = 200
		}
		c.OffsetX = ev.Position.X - float32(t)*c.Scale
	}
}
