package systems

import "github.com/pthm-cable/critters/telemetry"

// SystemInfo describes a tick phase for UI display.
type SystemInfo struct {
	ID          string // Perf phase identifier
	Name        string // Display name
	Description string
}

// SystemRegistry holds metadata about the tick phases.
// This keeps the UI and the perf collector naming in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all phases in tick order.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.Register(SystemInfo{ID: telemetry.PhaseWorld, Name: "World", Description: "Generation clock and food respawn"})
	reg.Register(SystemInfo{ID: telemetry.PhaseAging, Name: "Aging", Description: "Timeouts, life, hunger and starvation"})
	reg.Register(SystemInfo{ID: telemetry.PhaseCommit, Name: "Commit", Description: "Applies deferred creations and removals"})
	reg.Register(SystemInfo{ID: telemetry.PhasePhysics, Name: "Physics", Description: "Impulses, interactions, then integration"})
	reg.Register(SystemInfo{ID: telemetry.PhaseSensors, Name: "Sensors", Description: "Raycast sensing"})
	reg.Register(SystemInfo{ID: telemetry.PhaseThink, Name: "Think", Description: "Network inference and training"})
	reg.Register(SystemInfo{ID: telemetry.PhaseMove, Name: "Move", Description: "Output to velocity mapping"})
	return reg
}

// Register adds a phase to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases in tick order.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// IDs returns all phase IDs in tick order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
