package systems

// SystemInfo describes one phase of a simulation tick.
type SystemInfo struct {
	ID          string // used as the perf tracking key
	Name        string
	Description string
	Category    string // "core", "analytics" or "internal"
}

// Tick phase IDs, in execution order.
const (
	PhaseMutation  = "mutation"
	PhaseStep      = "step"
	PhaseHeat      = "heat"
	PhaseAnalytics = "analytics"
	PhasePortals   = "portals"
	PhaseTelemetry = "telemetry"
)

var tickPhases = []SystemInfo{
	{ID: PhaseMutation, Name: "Mutation", Description: "Flips a random cell on a jittered countdown", Category: "core"},
	{ID: PhaseStep, Name: "Step", Description: "Applies the active rule to every cell", Category: "core"},
	{ID: PhaseHeat, Name: "Heat Trail", Description: "Warms live cells and decays the heat map", Category: "analytics"},
	{ID: PhaseAnalytics, Name: "Population", Description: "Tracks history, extinctions and stagnation", Category: "analytics"},
	{ID: PhasePortals, Name: "Portals", Description: "Checks and protects portal zones", Category: "analytics"},
	{ID: PhaseTelemetry, Name: "Telemetry", Description: "Collects window stats and bookmarks", Category: "internal"},
}

// SystemRegistry is an ordered list of tick phases. Perf tracking and logs
// index phases through it so their names stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	index   map[string]int
}

// NewSystemRegistry returns a registry holding the tick phases in execution order.
func NewSystemRegistry() *SystemRegistry {
	r := &SystemRegistry{index: make(map[string]int, len(tickPhases))}
	for _, info := range tickPhases {
		r.Register(info)
	}
	return r
}

// Register appends a phase, or replaces the entry with the same ID, and
// returns its position.
func (r *SystemRegistry) Register(info SystemInfo) int {
	if i, ok := r.index[info.ID]; ok {
		r.systems[i] = info
		return i
	}
	r.index[info.ID] = len(r.systems)
	r.systems = append(r.systems, info)
	return len(r.systems) - 1
}

// Index returns the execution position of a phase.
func (r *SystemRegistry) Index(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// GetName returns the display name for a phase, or the ID if unknown.
func (r *SystemRegistry) GetName(id string) string {
	if i, ok := r.index[id]; ok {
		return r.systems[i].Name
	}
	return id
}

// Len returns the number of registered phases.
func (r *SystemRegistry) Len() int { return len(r.systems) }

// All returns the phases in execution order.
func (r *SystemRegistry) All() []SystemInfo { return r.systems }

// ByCategory returns the phases of one category, in execution order.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var out []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			out = append(out, info)
		}
	}
	return out
}

// IDs returns phase IDs in execution order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
