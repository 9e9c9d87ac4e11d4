// Package main generates benchmark instances for the time-offs problem
// variants at various scales. Generation is deterministic per seed.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/elektrolab-or/rcpspas-research/internal/core"
	"github.com/elektrolab-or/rcpspas-research/internal/timeoffs"
)

// tierConfig defines the parameter ranges for one instance tier.
type tierConfig struct {
	name       string
	label      string
	dirName    string
	nMin, nMax int // internal tasks
	kMin, kMax int // resource types
	mMin, mMax int // resource units
	unitsPerTypeMin, unitsPerTypeMax int
	taskSizeMin, taskSizeMax         int
	calStepsMin, calStepsMax         int
	topologies []string
	calendars  []string
	count      int
}

var tiers = map[int]tierConfig{
	6: {
		name: "tier6", label: "Tier 6 (Large)", dirName: "tier6_large",
		nMin: 200, nMax: 300,
		kMin: 3, kMax: 5,
		mMin: 15, mMax: 25,
		unitsPerTypeMin: 3, unitsPerTypeMax: 8,
		taskSizeMin: 1, taskSizeMax: 20,
		calStepsMin: 20, calStepsMax: 30,
		topologies: []string{"random_dag", "grid"},
		calendars:  []string{"staggered", "random"},
		count:      100,
	},
	7: {
		name: "tier7", label: "Tier 7 (Very Large)", dirName: "tier7_very_large",
		nMin: 300, nMax: 500,
		kMin: 3, kMax: 5,
		mMin: 20, mMax: 30,
		unitsPerTypeMin: 4, unitsPerTypeMax: 8,
		taskSizeMin: 1, taskSizeMax: 20,
		calStepsMin: 20, calStepsMax: 30,
		topologies: []string{"random_dag", "grid"},
		calendars:  []string{"staggered", "random"},
		count:      100,
	},
}

// randInt returns a uniform integer in [lo, hi].
func randInt(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

// randFloat returns a uniform float in [lo, hi).
func randFloat(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// generateResourceTypes distributes m units across k types.
func generateResourceTypes(rng *rand.Rand, k, m, uptMin, uptMax int) []core.ResourceType {
	counts := make([]int, k)
	for i := range counts {
		counts[i] = uptMin
	}
	remaining := m - k*uptMin
	for remaining > 0 {
		var candidates []int
		for i, c := range counts {
			if c < uptMax {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			break
		}
		counts[candidates[rng.Intn(len(candidates))]]++
		remaining--
	}

	types := make([]core.ResourceType, 0, k)
	uid := 0
	for tid := 0; tid < k; tid++ {
		rt := core.ResourceType{ID: core.TypeID(tid)}
		for i := 0; i < counts[tid]; i++ {
			rt.Units = append(rt.Units, core.UnitID(uid))
			uid++
		}
		types = append(types, rt)
	}
	return types
}

// staggeredCalendar generates a regular on/off pattern with a phase offset
// per unit so that breaks do not align across the pool.
func staggeredCalendar(rng *rand.Rand, uid, numSteps, horizon, totalUnits int) core.Calendar {
	numCycles := max(1, numSteps/2)
	cycleLen := float64(horizon) / float64(numCycles)
	onFrac := randFloat(rng, 0.82, 0.92)
	onDur := cycleLen * onFrac
	offDur := cycleLen * (1 - onFrac)

	offset := math.Mod(float64(uid)*cycleLen/float64(max(1, totalUnits)), cycleLen)

	cal := core.Calendar{{Time: 0, Value: 100}}
	t := max(1, int(offset+randFloat(rng, -2, 2)))

	for len(cal) < numSteps-1 && t < horizon {
		cal = append(cal, core.CalendarStep{Time: t, Value: 0})
		tOn := t + max(1, int(offDur+randFloat(rng, -2, 2)))
		if tOn >= horizon || len(cal) >= numSteps-1 {
			break
		}
		cal = append(cal, core.CalendarStep{Time: tOn, Value: 100})
		t = tOn + max(1, int(onDur+randFloat(rng, -3, 3)))
	}

	cal = append(cal, core.CalendarStep{Time: horizon, Value: 0})
	return cal
}

// randomCalendar generates irregular on/off intervals: long variable on
// periods and short off periods.
func randomCalendar(rng *rand.Rand, numSteps, horizon int) core.Calendar {
	avgSegment := float64(horizon) / float64(max(1, numSteps-1))
	first := 0
	if rng.Intn(2) == 0 {
		first = 100
	}
	cal := core.Calendar{{Time: 0, Value: first}}

	t := 0
	for i := 0; i < numSteps-2; i++ {
		cur := cal[len(cal)-1].Value
		var gap int
		if cur == 100 {
			gap = max(2, int(randFloat(rng, 0.3, 1.8)*avgSegment))
		} else {
			gap = randInt(rng, 2, max(3, int(0.15*avgSegment)))
		}
		t += gap
		if t >= horizon {
			break
		}
		next := 100
		if cur == 100 {
			next = 0
		}
		cal = append(cal, core.CalendarStep{Time: t, Value: next})
	}

	cal = append(cal, core.CalendarStep{Time: horizon, Value: 0})
	return cal
}

type edge struct{ from, to int }

// randomDAG builds a layered random DAG over tasks 0..n+1 with 0 as source
// and n+1 as sink.
func randomDAG(rng *rand.Rand, n, avgSuccessors int) map[edge]bool {
	source, sink := 0, n+1

	numLayers := max(3, int(math.Sqrt(float64(n))))
	layerOf := make([]int, n+2)
	layerOf[source] = 0
	layerOf[sink] = numLayers + 1
	for t := 1; t <= n; t++ {
		layerOf[t] = randInt(rng, 1, numLayers)
	}

	layers := make(map[int][]int)
	for t := 0; t <= n+1; t++ {
		layers[layerOf[t]] = append(layers[layerOf[t]], t)
	}
	var layerIDs []int
	for l := range layers {
		layerIDs = append(layerIDs, l)
	}
	sort.Ints(layerIDs)

	edges := make(map[edge]bool)

	for _, t := range layers[layerIDs[1]] {
		edges[edge{source, t}] = true
	}

	for li := 1; li < len(layerIDs)-1; li++ {
		var later []int
		for lj := li + 1; lj < len(layerIDs)-1; lj++ {
			later = append(later, layers[layerIDs[lj]]...)
		}
		if len(later) == 0 {
			continue
		}
		for _, t := range layers[layerIDs[li]] {
			nSucc := max(1, randInt(rng, max(1, avgSuccessors-2), avgSuccessors+2))
			nSucc = min(nSucc, len(later))
			for _, idx := range rng.Perm(len(later))[:nSucc] {
				edges[edge{t, later[idx]}] = true
			}
		}
	}

	for _, t := range layers[layerIDs[len(layerIDs)-2]] {
		edges[edge{t, sink}] = true
	}
	return edges
}

// gridDAG builds a 2D grid DAG: right and down neighbors, occasional
// diagonals, source feeding the first column, last column feeding the sink.
func gridDAG(rng *rand.Rand, n int) map[edge]bool {
	source, sink := 0, n+1

	cols := max(2, int(math.Sqrt(float64(n*2))))
	rows := max(2, (n+cols-1)/cols)

	cell := func(r, c int) (int, bool) {
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return 0, false
		}
		tid := r*cols + c + 1
		if tid > n {
			return 0, false
		}
		return tid, true
	}

	edges := make(map[edge]bool)
	maxCol := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			t, ok := cell(r, c)
			if !ok {
				continue
			}
			if c > maxCol {
				maxCol = c
			}
			if right, ok := cell(r, c+1); ok {
				edges[edge{t, right}] = true
			}
			if down, ok := cell(r+1, c); ok {
				edges[edge{t, down}] = true
			}
			if diag, ok := cell(r+1, c+1); ok && rng.Float64() < 0.3 {
				edges[edge{t, diag}] = true
			}
		}
	}

	for r := 0; r < rows; r++ {
		if t, ok := cell(r, 0); ok {
			edges[edge{source, t}] = true
		}
		if t, ok := cell(r, maxCol); ok {
			edges[edge{t, sink}] = true
		}
	}
	return edges
}

// repairDAG connects stragglers to source/sink and verifies acyclicity.
func repairDAG(edges map[edge]bool, n int) error {
	source, sink := 0, n+1

	adj := make([][]int, n+2)
	radj := make([][]int, n+2)
	for e := range edges {
		adj[e.from] = append(adj[e.from], e.to)
		radj[e.to] = append(radj[e.to], e.from)
	}

	reach := func(start int, next [][]int) []bool {
		seen := make([]bool, n+2)
		seen[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for _, v := range next[u] {
				if !seen[v] {
					seen[v] = true
					queue = append(queue, v)
				}
			}
		}
		return seen
	}

	fwd := reach(source, adj)
	for t := 1; t <= n; t++ {
		if !fwd[t] {
			edges[edge{source, t}] = true
			adj[source] = append(adj[source], t)
			radj[t] = append(radj[t], source)
		}
	}

	bwd := reach(sink, radj)
	for t := 1; t <= n; t++ {
		if !bwd[t] {
			edges[edge{t, sink}] = true
			adj[t] = append(adj[t], sink)
			radj[sink] = append(radj[sink], t)
		}
	}

	// Kahn's algorithm as an acyclicity check.
	inDeg := make([]int, n+2)
	for e := range edges {
		inDeg[e.to]++
	}
	var queue []int
	for i, d := range inDeg {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	count := 0
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		count++
		for _, v := range adj[u] {
			inDeg[v]--
			if inDeg[v] == 0 {
				queue = append(queue, v)
			}
		}
	}
	if count != n+2 {
		return fmt.Errorf("cycle detected: sorted %d of %d tasks", count, n+2)
	}
	return nil
}

// generateTasks synthesizes n internal tasks plus dummy source and sink.
func generateTasks(rng *rand.Rand, n int, types []core.ResourceType, sizeMin, sizeMax int) []core.Task {
	tasks := make([]core.Task, 0, n+2)
	tasks = append(tasks, core.Task{ID: 0, Requirements: map[core.TypeID]int{}})

	for t := 1; t <= n; t++ {
		task := core.Task{
			ID:           core.TaskID(t),
			Duration:     randInt(rng, sizeMin, sizeMax),
			Requirements: make(map[core.TypeID]int),
		}
		for _, rt := range types {
			maxQty := min(3, len(rt.Units))
			if rng.Float64() < 0.6 && maxQty > 0 {
				task.Requirements[rt.ID] = randInt(rng, 1, maxQty)
			}
		}
		if len(task.Requirements) == 0 {
			task.Requirements[types[rng.Intn(len(types))].ID] = 1
		}
		tasks = append(tasks, task)
	}

	tasks = append(tasks, core.Task{ID: core.TaskID(n + 1), Requirements: map[core.TypeID]int{}})
	return tasks
}

// generateInstance draws one instance from the tier's parameter ranges.
func generateInstance(rng *rand.Rand, cfg tierConfig, idx int) (*core.FlatInstance, string, error) {
	n := randInt(rng, cfg.nMin, cfg.nMax)
	k := randInt(rng, cfg.kMin, cfg.kMax)

	mMin := max(cfg.mMin, k*cfg.unitsPerTypeMin)
	mMax := min(cfg.mMax, k*cfg.unitsPerTypeMax)
	m := randInt(rng, mMin, mMax)

	topology := cfg.topologies[rng.Intn(len(cfg.topologies))]
	calStyle := cfg.calendars[rng.Intn(len(cfg.calendars))]

	types := generateResourceTypes(rng, k, m, cfg.unitsPerTypeMin, cfg.unitsPerTypeMax)

	horizon := int(float64(n) * randFloat(rng, 8.5, 10.5))
	numSteps := randInt(rng, cfg.calStepsMin, cfg.calStepsMax)

	var units []core.ResourceUnit
	for _, rt := range types {
		for _, uid := range rt.Units {
			var cal core.Calendar
			if calStyle == "staggered" {
				cal = staggeredCalendar(rng, int(uid), numSteps, horizon, m)
			} else {
				cal = randomCalendar(rng, numSteps, horizon)
			}
			units = append(units, core.ResourceUnit{ID: uid, Calendar: cal})
		}
	}

	var edges map[edge]bool
	if topology == "random_dag" {
		edges = randomDAG(rng, n, randInt(rng, 3, 8))
	} else {
		edges = gridDAG(rng, n)
	}
	if err := repairDAG(edges, n); err != nil {
		return nil, "", err
	}

	tasks := generateTasks(rng, n, types, cfg.taskSizeMin, cfg.taskSizeMax)

	edgeList := make([]edge, 0, len(edges))
	for e := range edges {
		edgeList = append(edgeList, e)
	}
	sort.Slice(edgeList, func(i, j int) bool {
		if edgeList[i].from != edgeList[j].from {
			return edgeList[i].from < edgeList[j].from
		}
		return edgeList[i].to < edgeList[j].to
	})
	precedences := make([]core.Arc, len(edgeList))
	for i, e := range edgeList {
		precedences[i] = core.Arc{Pred: core.TaskID(e.from), Succ: core.TaskID(e.to)}
	}

	inst := &core.FlatInstance{
		Name:        fmt.Sprintf("%s_%03d", cfg.name, idx),
		Tasks:       tasks,
		Types:       types,
		Units:       units,
		Precedences: precedences,
	}
	header := fmt.Sprintf("%s - Instance %d: N=%d, K=%d, topology=%s, calendar=%s",
		cfg.label, idx, n, k, topology, calStyle)
	return inst, header, nil
}

func main() {
	tier := flag.Int("tier", 0, "Tier to generate (6 or 7)")
	count := flag.Int("count", 0, "Number of instances (default: from tier config)")
	seed := flag.Int64("seed", 42, "Random seed for deterministic generation")
	outputDir := flag.String("output", "", "Output directory (default: auto from tier)")
	flag.Parse()

	cfg, ok := tiers[*tier]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown tier %d (valid: 6, 7)\n", *tier)
		os.Exit(1)
	}
	n := cfg.count
	if *count > 0 {
		n = *count
	}
	outDir := *outputDir
	if outDir == "" {
		outDir = cfg.dirName
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))

	fmt.Printf("Generating %d %s instances...\n", n, cfg.label)
	fmt.Printf("  Tasks: %d-%d, Types: %d-%d, Units: %d-%d\n",
		cfg.nMin, cfg.nMax, cfg.kMin, cfg.kMax, cfg.mMin, cfg.mMax)
	fmt.Printf("  Output: %s/\n", outDir)

	for i := 0; i < n; i++ {
		inst, header, err := generateInstance(rng, cfg, i)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating instance %d: %v\n", i, err)
			os.Exit(1)
		}

		path := filepath.Join(outDir, inst.Name+".data")
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		if err := timeoffs.WriteInstance(f, inst, header); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		f.Close()

		if i == 0 || (i+1)%10 == 0 {
			fmt.Printf("  [%3d/%d] %s.data (%d tasks)\n", i+1, n, inst.Name, len(inst.Tasks))
		}
	}
	fmt.Printf("Done. %d instances in %s/\n", n, outDir)
}
