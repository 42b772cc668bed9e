package timeline

import "sort"

// TabLane is one lane of a parallel turn: the ordered steps that share a
// tab index.
type TabLane struct {
	Tab   int
	Steps []*Step
}

// TurnGroup is the ordered set of top-level steps sharing a turn index.
type TurnGroup struct {
	Turn      int
	Synthetic bool
	// Parallel is set when steps span more than one tab, or when the
	// producer announced branching for this turn ahead of the second lane.
	Parallel bool
	// Steps in arrival order across all lanes.
	Steps []*Step
	// Lanes sorted by tab index; each lane's steps keep arrival order.
	Lanes []TabLane
	// ActiveTab is the lane shown in collapsed display; defaults to the
	// first lane and is user-navigable through the view controller.
	ActiveTab int
	// UniqueToolNames is the order-preserving deduplicated list of tool
	// labels across all lanes, for collapsed-state summaries.
	UniqueToolNames []string
}

// Lane returns the lane for a tab index, or nil.
func (g *TurnGroup) Lane(tab int) *TabLane {
	for i := range g.Lanes {
		if g.Lanes[i].Tab == tab {
			return &g.Lanes[i]
		}
	}
	return nil
}

// groupTurns folds the assembled step list into ordered turn groups.
// branching maps turn index to an advance parallelism notice.
func groupTurns(steps []*Step, branching map[int]bool, syntheticTurn int) []*TurnGroup {
	byTurn := map[int]*TurnGroup{}
	var order []int
	for _, s := range steps {
		g := byTurn[s.Turn]
		if g == nil {
			g = &TurnGroup{Turn: s.Turn, Synthetic: s.Turn == syntheticTurn, ActiveTab: -1}
			byTurn[s.Turn] = g
			order = append(order, s.Turn)
		}
		g.Steps = append(g.Steps, s)
		lane := g.Lane(s.Tab)
		if lane == nil {
			g.Lanes = append(g.Lanes, TabLane{Tab: s.Tab})
			lane = &g.Lanes[len(g.Lanes)-1]
		}
		lane.Steps = append(lane.Steps, s)
	}

	sort.Ints(order)
	out := make([]*TurnGroup, 0, len(order))
	for _, turn := range order {
		g := byTurn[turn]
		sort.Slice(g.Lanes, func(i, j int) bool { return g.Lanes[i].Tab < g.Lanes[j].Tab })
		g.Parallel = len(g.Lanes) > 1 || branching[turn]
		if len(g.Lanes) > 0 {
			g.ActiveTab = g.Lanes[0].Tab
		}
		g.UniqueToolNames = uniqueToolNames(g.Steps)
		out = append(out, g)
	}
	return out
}

func uniqueToolNames(steps []*Step) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, s := range steps {
		if !s.IsActualTool() {
			continue
		}
		name := s.ToolLabel()
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
