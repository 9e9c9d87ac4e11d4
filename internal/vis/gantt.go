package vis

import (
	"fmt"
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
)

const (
	rowHeight  = 28
	rowGap     = 4
	labelWidth = 130
)

// taskPalette cycles over task bars so adjacent tasks read apart.
var taskPalette = []color.NRGBA{
	{R: 102, G: 170, B: 255, A: 255},
	{R: 255, G: 170, B: 90, A: 255},
	{R: 140, G: 220, B: 140, A: 255},
	{R: 230, G: 130, B: 200, A: 255},
	{R: 255, G: 220, B: 100, A: 255},
	{R: 150, G: 200, B: 230, A: 255},
	{R: 220, G: 120, B: 120, A: 255},
	{R: 170, G: 150, B: 255, A: 255},
}

// Gantt draws the per-unit schedule rows.
type Gantt struct {
	state    *State
	camera   *Camera
	unitType map[core.UnitID]core.TypeID
}

// NewGantt creates the Gantt widget.
func NewGantt(st *State, camera *Camera) *Gantt {
	return &Gantt{state: st, camera: camera, unitType: st.Instance.UnitToType()}
}

// Layout renders rows, calendar shading, bars, and the cursor line.
func (g *Gantt) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	size := gtx.Constraints.Max

	g.handlePointerEvents(gtx, size)

	for row, u := range g.state.Units {
		y0 := row * (rowHeight + rowGap)
		y1 := y0 + rowHeight

		// Row background.
		paint.FillShape(gtx.Ops, color.NRGBA{R: 40, G: 42, B: 48, A: 255},
			clip.Rect(image.Rect(labelWidth, y0, size.X, y1)).Op())

		// Calendar unavailability.
		for _, off := range g.state.OffWindows(u) {
			x0 := g.clampX(g.camera.TimeToScreen(float64(off.Start)), size.X)
			x1 := g.clampX(g.camera.TimeToScreen(float64(off.End)), size.X)
			if x1 > x0 {
				paint.FillShape(gtx.Ops, color.NRGBA{R: 70, G: 50, B: 50, A: 255},
					clip.Rect(image.Rect(int(x0), y0, int(x1), y1)).Op())
			}
		}

		// Unit label.
		label := material.Label(th, 12, g.unitLabel(u))
		label.Color = color.NRGBA{R: 190, G: 190, B: 195, A: 255}
		layout.Inset{Top: unit.Dp(float32(y0 + 6)), Left: unit.Dp(8)}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions { return label.Layout(gtx) })
	}

	// Task bars.
	for _, bar := range g.state.Bars {
		row, ok := g.state.RowOf[bar.Unit]
		if !ok {
			continue
		}
		y0 := row*(rowHeight+rowGap) + 3
		y1 := y0 + rowHeight - 6

		x0 := g.clampX(g.camera.TimeToScreen(float64(bar.Start)), size.X)
		x1 := g.clampX(g.camera.TimeToScreen(float64(bar.End)), size.X)
		if x1 <= x0 {
			continue
		}
		paint.FillShape(gtx.Ops, taskColor(int(bar.Task)),
			clip.Rect(image.Rect(int(x0), y0, int(x1), y1)).Op())

		if x1-x0 > 24 {
			label := material.Label(th, 11, fmt.Sprintf("t%d", bar.Task))
			label.Color = color.NRGBA{R: 20, G: 20, B: 25, A: 255}
			layout.Inset{Top: unit.Dp(float32(y0 + 3)), Left: unit.Dp(float32(x0 + 4))}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions { return label.Layout(gtx) })
		}
	}

	// Cursor line.
	cursorX := int(g.camera.TimeToScreen(g.state.Cursor))
	if cursorX >= labelWidth && cursorX < size.X {
		totalHeight := len(g.state.Units) * (rowHeight + rowGap)
		paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 180},
			clip.Rect(image.Rect(cursorX, 0, cursorX+2, totalHeight)).Op())
	}

	return layout.Dimensions{Size: size}
}

func (g *Gantt) unitLabel(u core.UnitID) string {
	return fmt.Sprintf("r%d / unit %d", g.unitType[u], u)
}

func (g *Gantt) clampX(x float32, max int) float32 {
	if x < labelWidth {
		return labelWidth
	}
	if x > float32(max) {
		return float32(max)
	}
	return x
}

func (g *Gantt) handlePointerEvents(gtx layout.Context, size image.Point) {
	area := clip.Rect(image.Rect(0, 0, size.X, size.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, g)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: g,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll,
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			g.camera.HandleEvent(pe)
		}
	}
}

func taskColor(task int) color.NRGBA {
	return taskPalette[task%len(taskPalette)]
}
