// Command rcpspasvis shows a validated schedule as a per-unit Gantt chart.
package main

import (
	"flag"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"

	"github.com/elektrolab-or/rcpspas-research/internal/timeoffs"
	"github.com/elektrolab-or/rcpspas-research/internal/validate"
	"github.com/elektrolab-or/rcpspas-research/internal/vis"
)

func main() {
	instancePath := flag.String("instance", "", "Instance .data file")
	solutionPath := flag.String("solution", "", "Solution JSON file")
	policyName := flag.String("policy", "mig-delay", "Scheduling policy name or number (1-6)")
	flag.Parse()

	if *instancePath == "" || *solutionPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	inst, err := timeoffs.LoadInstance(*instancePath)
	if err != nil {
		log.Fatal(err)
	}
	sol, err := timeoffs.LoadSolution(*solutionPath)
	if err != nil {
		log.Fatal(err)
	}
	policy, err := validate.ParsePolicy(*policyName)
	if err != nil {
		log.Fatal(err)
	}

	// The heterogeneous policy needs an explicit partition; the viewer
	// shows it unvalidated.
	var rep *validate.Report
	if policy != validate.Heterogeneous {
		rep, err = validate.New(inst).Validate(sol, policy)
		if err != nil {
			log.Fatal(err)
		}
	}

	go func() {
		window := new(app.Window)
		window.Option(
			app.Title("RCPSP Schedule Viewer"),
			app.Size(unit.Dp(1400), unit.Dp(900)),
		)

		application := vis.NewApp(inst, sol, rep, policy)
		if err := application.Run(window); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
