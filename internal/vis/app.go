package vis

import (
	"fmt"
	"image/color"

	"gioui.org/app"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
	"github.com/elektrolab-or/rcpspas-research/internal/validate"
)

// App is the schedule viewer application.
type App struct {
	state    *State
	theme    *material.Theme
	gantt    *Gantt
	timeline *Timeline
	camera   *Camera
}

// NewApp builds the viewer for one instance/solution pair. The validation
// report may be nil when the caller skipped validation.
func NewApp(inst *core.FlatInstance, sol *core.Solution, rep *validate.Report, policy validate.Policy) *App {
	th := material.NewTheme()
	st := NewState(inst, sol, rep, policy)
	camera := NewCamera(st.Horizon)

	return &App{
		state:    st,
		theme:    th,
		gantt:    NewGantt(st, camera),
		timeline: NewTimeline(st),
		camera:   camera,
	}
}

// Run starts the application event loop.
func (a *App) Run(w *app.Window) error {
	var ops op.Ops
	tag := new(int)

	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)

			for {
				ev, ok := gtx.Event(key.Filter{Focus: tag})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					a.handleKeyEvent(ke)
				}
			}
			event.Op(gtx.Ops, tag)

			a.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (a *App) handleKeyEvent(e key.Event) {
	switch e.Name {
	case key.NameLeftArrow:
		a.state.Step(-1)
	case key.NameRightArrow:
		a.state.Step(1)
	case key.NameHome:
		a.state.SeekTo(0)
	case key.NameEnd:
		a.state.SeekTo(float64(a.state.Horizon))
	case "R":
		a.camera.Reset(a.state.Horizon)
	}
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, color.NRGBA{R: 30, G: 30, B: 35, A: 255})

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutHeader(gtx)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return a.gantt.Layout(gtx, a.theme)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.timeline.Layout(gtx, a.theme)
		}),
	)
}

// layoutHeader shows the instance name, policy, and validation verdict.
func (a *App) layoutHeader(gtx layout.Context) layout.Dimensions {
	title := material.Label(a.theme, 14,
		fmt.Sprintf("%s  [%s]", a.state.Instance.Name, a.state.Policy))
	title.Color = color.NRGBA{R: 220, G: 220, B: 225, A: 255}

	verdict := material.Label(a.theme, 13, a.verdictText())
	verdict.Alignment = text.End
	if a.state.Report != nil && !a.state.Report.Valid {
		verdict.Color = color.NRGBA{R: 240, G: 110, B: 110, A: 255}
	} else {
		verdict.Color = color.NRGBA{R: 130, G: 220, B: 140, A: 255}
	}

	return layout.Inset{Top: unit.Dp(8), Bottom: unit.Dp(8), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions { return title.Layout(gtx) }),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions { return verdict.Layout(gtx) }),
			)
		})
}

func (a *App) verdictText() string {
	if a.state.Report == nil {
		return fmt.Sprintf("makespan=%d (not validated)", a.state.Solution.Makespan)
	}
	if a.state.Report.Valid {
		return fmt.Sprintf("valid, makespan=%d", a.state.Report.Makespan)
	}
	return fmt.Sprintf("INVALID: %d violation(s)", len(a.state.Report.Violations))
}
