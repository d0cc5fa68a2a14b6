package scoring

// EvidenceEntry is one rationale line, attributable to the engine and
// stage that produced it.
type EvidenceEntry struct {
	Engine EngineKind `json:"engine"`
	Stage  string     `json:"stage,omitempty"`
	Note   string     `json:"note"`
}

// EvidenceTrail is the ordered, auditable record of rationale backing a
// final score. Entries are grouped by engine in the fixed EngineOrder and
// are append-only within one request's lifecycle.
type EvidenceTrail struct {
	Entries []EvidenceEntry `json:"entries"`
}

// Append adds a rationale entry to the trail.
func (t *EvidenceTrail) Append(engine EngineKind, stage, note string) {
	t.Entries = append(t.Entries, EvidenceEntry{Engine: engine, Stage: stage, Note: note})
}

// Len returns the number of entries in the trail.
func (t *EvidenceTrail) Len() int {
	return len(t.Entries)
}
