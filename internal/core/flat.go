package core

// TaskID identifies a task in the flat (time-offs) problem description.
type TaskID int

// TypeID identifies a renewable resource type.
type TypeID int

// UnitID identifies a single resource unit.
type UnitID int

// Task is a unit of work in the flat description consumed by the schedule
// validator. Duration 0 marks a dummy task.
type Task struct {
	ID           TaskID
	Duration     int
	Requirements map[TypeID]int // demand per resource type; absent means 0
}

// ResourceType is a pool of interchangeable units.
type ResourceType struct {
	ID    TypeID
	Units []UnitID
}

// ResourceUnit is a single unit with a time-varying availability calendar.
type ResourceUnit struct {
	ID       UnitID
	Calendar Calendar
}

// Arc is a precedence constraint: Pred must finish before Succ starts.
type Arc struct {
	Pred, Succ TaskID
}

// FlatInstance is the flat task/resource/calendar description used by the
// time-offs problem variants and by the schedule validator.
type FlatInstance struct {
	Name        string
	Tasks       []Task
	Types       []ResourceType
	Units       []ResourceUnit
	Precedences []Arc
}

// TaskByID returns the task with the given ID, or nil.
func (f *FlatInstance) TaskByID(id TaskID) *Task {
	for i := range f.Tasks {
		if f.Tasks[i].ID == id {
			return &f.Tasks[i]
		}
	}
	return nil
}

// UnitCalendars returns a unit -> calendar lookup.
func (f *FlatInstance) UnitCalendars() map[UnitID]Calendar {
	m := make(map[UnitID]Calendar, len(f.Units))
	for _, u := range f.Units {
		m[u.ID] = u.Calendar
	}
	return m
}

// UnitToType returns the reverse unit -> type lookup.
func (f *FlatInstance) UnitToType() map[UnitID]TypeID {
	m := make(map[UnitID]TypeID)
	for _, rt := range f.Types {
		for _, u := range rt.Units {
			m[u] = rt.ID
		}
	}
	return m
}

// Flatten converts a resolved RCPSP-AS instance into a flat description.
// Only activities belonging to the root branch or to a selected branch are
// kept; per-type capacities are expanded into always-available units.
// Selected must name exactly the chosen branch of each subgraph.
func Flatten(inst *Instance, selected BranchSet) *FlatInstance {
	flat := &FlatInstance{Name: inst.Name}

	uid := UnitID(0)
	for typeIdx, capacity := range inst.Resources {
		rt := ResourceType{ID: TypeID(typeIdx)}
		for i := 0; i < capacity; i++ {
			rt.Units = append(rt.Units, uid)
			flat.Units = append(flat.Units, ResourceUnit{ID: uid})
			uid++
		}
		flat.Types = append(flat.Types, rt)
	}

	kept := make(map[ActivityID]bool, len(inst.Activities))
	for i := range inst.Activities {
		act := &inst.Activities[i]
		if !act.InBranch(RootBranch) && !act.Branches.Intersects(selected) {
			continue
		}
		kept[act.ID] = true

		reqs := make(map[TypeID]int)
		for typeIdx, qty := range act.Requirements {
			if qty > 0 {
				reqs[TypeID(typeIdx)] = qty
			}
		}
		flat.Tasks = append(flat.Tasks, Task{
			ID:           TaskID(act.ID),
			Duration:     act.Duration,
			Requirements: reqs,
		})
	}

	for i := range inst.Activities {
		act := &inst.Activities[i]
		if !kept[act.ID] {
			continue
		}
		for _, succ := range act.SortedSuccessors() {
			if kept[succ] {
				flat.Precedences = append(flat.Precedences, Arc{TaskID(act.ID), TaskID(succ)})
			}
		}
	}

	return flat
}
