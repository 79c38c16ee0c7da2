package reading

// Student is a tracked pupil. Grade is the Swedish school year (7-9 for
// the built-in targets, but any grade is storable).
type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade int    `json:"grade"`
}

// Material is an optional reading text an assessment can reference.
// Difficulty fields are nil when unknown.
type Material struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Lexile *float64 `json:"lexile"`
	Lix    *float64 `json:"lix"`
	Words  *float64 `json:"words"`
}

// Assessment is one reading measurement for one student on one date.
// Measurement fields are pointers: nil means not recorded, which is
// distinct from a recorded zero. Assessments are never edited in place;
// corrections are delete-and-re-add.
type Assessment struct {
	ID            string   `json:"id"`
	StudentID     string   `json:"studentId"`
	Date          string   `json:"date"` // YYYY-MM-DD, string-sortable
	MaterialID    *string  `json:"materialId"`
	WPM           *float64 `json:"wpm"`
	Comprehension *float64 `json:"comprehension"`
	Lexile        *float64 `json:"lexile"`
	Lix           *float64 `json:"lix"`
	DLSStanine    *int     `json:"dlsStanine"`
	DLSPercentile *float64 `json:"dlsPercentile"`
	Notes         string   `json:"notes"`
}

// Range is a [min,max] pair used to rescale a raw metric to 0..100.
// Marshals as a two-element JSON array.
type Range [2]float64

func (r Range) Min() float64 { return r[0] }
func (r Range) Max() float64 { return r[1] }

// Ranges holds the rescale bounds per metric.
type Ranges struct {
	WPM    Range `json:"wpm"`
	Comp   Range `json:"comp"`
	Lexile Range `json:"lexile"`
	Lix    Range `json:"lix"`
}

// Weights are the relative importance of the three composite components.
// They need not sum to 1: absent components are excluded from the
// denominator when averaging, so only the ratios matter.
type Weights struct {
	WPM   float64 `json:"wpm"`
	Comp  float64 `json:"comp"`
	Level float64 `json:"level"`
}

// Target is the per-grade goal used by the advice queries.
type Target struct {
	WPM  float64 `json:"wpm"`
	Comp float64 `json:"comp"`
}

// Targets maps school grade to its target. Integer keys marshal as
// JSON object keys ("7", "8", ...), matching the wire format.
type Targets map[int]Target

// Settings is the singleton scoring configuration.
type Settings struct {
	Ranges  Ranges  `json:"ranges"`
	Weights Weights `json:"weights"`
	Targets Targets `json:"targets"`
}

// Snapshot is the whole persisted aggregate: every collection plus the
// settings, exactly the shape of the export document.
type Snapshot struct {
	Students    []Student    `json:"students"`
	Materials   []Material   `json:"materials"`
	Assessments []Assessment `json:"assessments"`
	Settings    Settings     `json:"settings"`
}

// DefaultSettings returns the built-in configuration used when no
// persisted state exists.
func DefaultSettings() Settings {
	return Settings{
		Ranges: Ranges{
			WPM:    Range{60, 260},
			Comp:   Range{0, 100},
			Lexile: Range{-200, 1600},
			Lix:    Range{20, 70},
		},
		Weights: Weights{WPM: 0.35, Comp: 0.35, Level: 0.30},
		Targets: Targets{
			7: {WPM: 140, Comp: 70},
			8: {WPM: 160, Comp: 75},
			9: {WPM: 180, Comp: 80},
		},
	}
}

// NewSnapshot returns an empty aggregate with default settings.
func NewSnapshot() Snapshot {
	return Snapshot{
		Students:    []Student{},
		Materials:   []Material{},
		Assessments: []Assessment{},
		Settings:    DefaultSettings(),
	}
}

// Clone deep-copies the snapshot so callers can hold or mutate it
// without aliasing the store's state.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Students:    make([]Student, len(s.Students)),
		Materials:   make([]Material, len(s.Materials)),
		Assessments: make([]Assessment, len(s.Assessments)),
		Settings:    s.Settings,
	}
	copy(out.Students, s.Students)
	for i, m := range s.Materials {
		m.Lexile = clonePtr(m.Lexile)
		m.Lix = clonePtr(m.Lix)
		m.Words = clonePtr(m.Words)
		out.Materials[i] = m
	}
	for i, a := range s.Assessments {
		a.MaterialID = clonePtr(a.MaterialID)
		a.WPM = clonePtr(a.WPM)
		a.Comprehension = clonePtr(a.Comprehension)
		a.Lexile = clonePtr(a.Lexile)
		a.Lix = clonePtr(a.Lix)
		a.DLSStanine = clonePtr(a.DLSStanine)
		a.DLSPercentile = clonePtr(a.DLSPercentile)
		out.Assessments[i] = a
	}
	if s.Settings.Targets != nil {
		out.Settings.Targets = make(Targets, len(s.Settings.Targets))
		for g, t := range s.Settings.Targets {
			out.Settings.Targets[g] = t
		}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
