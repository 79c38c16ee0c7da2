package reading

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/nats-io/nuid"

	"github.com/lasmonitor/lasmonitor/internal/snapshot"
)

var (
	ErrNoStudentSelected = errors.New("no student selected")
	ErrUnknownStudent    = errors.New("unknown student")
)

// Store owns the in-memory aggregate and writes it back through the slot
// after every mutation. It also carries the "currently selected student"
// that assessment entry is tied to. Not safe for concurrent use: all
// mutations happen on the single UI-event thread of control.
type Store struct {
	snap     Snapshot
	slot     snapshot.Slot
	log      *slog.Logger
	selected string // student ID, "" when none
}

// Load reads the persisted aggregate from the slot. An empty or corrupt
// slot yields a fresh aggregate with default settings; Load never fails.
func Load(ctx context.Context, slot snapshot.Slot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{snap: NewSnapshot(), slot: slot, log: logger}
	data, err := slot.Load(ctx)
	if err != nil {
		if !errors.Is(err, snapshot.ErrNotFound) {
			logger.Warn("snapshot load failed, starting fresh", "err", err)
		}
		return s
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Warn("snapshot corrupt, starting fresh", "err", err)
		return s
	}
	s.snap = snap
	return s
}

// persist writes the aggregate back to the slot. Write failures are
// logged and swallowed: record-keeping continues on the in-memory copy.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.snap)
	if err != nil {
		s.log.Warn("snapshot encode failed", "err", err)
		return
	}
	if err := s.slot.Save(ctx, data); err != nil {
		s.log.Warn("snapshot save failed", "err", err)
	}
}

// NewID returns an identifier unique within the process and, thanks to
// the random prefix, across independent runs.
func NewID() string { return nuid.Next() }

// AddStudent appends a new student. A name that is empty after trimming
// is a no-op, reported through ok.
func (s *Store) AddStudent(ctx context.Context, name string, grade int) (Student, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Student{}, false
	}
	st := Student{ID: NewID(), Name: name, Grade: grade}
	s.snap.Students = append(s.snap.Students, st)
	s.persist(ctx)
	return st, true
}

// DeleteStudent removes the student and every assessment referencing it.
func (s *Store) DeleteStudent(ctx context.Context, id string) {
	students := s.snap.Students[:0]
	for _, st := range s.snap.Students {
		if st.ID != id {
			students = append(students, st)
		}
	}
	s.snap.Students = students

	assessments := s.snap.Assessments[:0]
	for _, a := range s.snap.Assessments {
		if a.StudentID != id {
			assessments = append(assessments, a)
		}
	}
	s.snap.Assessments = assessments

	if s.selected == id {
		s.selected = ""
	}
	s.persist(ctx)
}

// AddMaterial appends a new material. Empty trimmed title is a no-op.
func (s *Store) AddMaterial(ctx context.Context, title string, lexile, lix, words *float64) (Material, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Material{}, false
	}
	m := Material{ID: NewID(), Title: title, Lexile: lexile, Lix: lix, Words: words}
	s.snap.Materials = append(s.snap.Materials, m)
	s.persist(ctx)
	return m, true
}

// DeleteMaterial removes the material and clears the reference on any
// assessment pointing at it. The assessments themselves stay.
func (s *Store) DeleteMaterial(ctx context.Context, id string) {
	materials := s.snap.Materials[:0]
	for _, m := range s.snap.Materials {
		if m.ID != id {
			materials = append(materials, m)
		}
	}
	s.snap.Materials = materials

	for i := range s.snap.Assessments {
		a := &s.snap.Assessments[i]
		if a.MaterialID != nil && *a.MaterialID == id {
			a.MaterialID = nil
		}
	}
	s.persist(ctx)
}

// NewAssessment carries the caller-supplied fields of an assessment to
// record. Nil measurement fields are stored as absent, never defaulted.
type NewAssessment struct {
	Date          string
	MaterialID    *string
	WPM           *float64
	Comprehension *float64
	Lexile        *float64
	Lix           *float64
	DLSStanine    *int
	DLSPercentile *float64
	Notes         string
}

// AddAssessment records a measurement for the currently selected student.
func (s *Store) AddAssessment(ctx context.Context, in NewAssessment) (Assessment, error) {
	if s.selected == "" {
		return Assessment{}, ErrNoStudentSelected
	}
	a := Assessment{
		ID:            NewID(),
		StudentID:     s.selected,
		Date:          in.Date,
		MaterialID:    in.MaterialID,
		WPM:           in.WPM,
		Comprehension: in.Comprehension,
		Lexile:        in.Lexile,
		Lix:           in.Lix,
		DLSStanine:    in.DLSStanine,
		DLSPercentile: in.DLSPercentile,
		Notes:         strings.TrimSpace(in.Notes),
	}
	s.snap.Assessments = append(s.snap.Assessments, a)
	s.persist(ctx)
	return a, nil
}

// DeleteAssessment removes one assessment by id.
func (s *Store) DeleteAssessment(ctx context.Context, id string) {
	assessments := s.snap.Assessments[:0]
	for _, a := range s.snap.Assessments {
		if a.ID != id {
			assessments = append(assessments, a)
		}
	}
	s.snap.Assessments = assessments
	s.persist(ctx)
}

// SelectStudent makes id the target of subsequent AddAssessment calls.
func (s *Store) SelectStudent(id string) error {
	for _, st := range s.snap.Students {
		if st.ID == id {
			s.selected = id
			return nil
		}
	}
	return ErrUnknownStudent
}

func (s *Store) ClearSelection() { s.selected = "" }

func (s *Store) SelectedStudent() (Student, bool) {
	if s.selected == "" {
		return Student{}, false
	}
	for _, st := range s.snap.Students {
		if st.ID == s.selected {
			return st, true
		}
	}
	return Student{}, false
}

// Replace swaps in a whole new aggregate (the import path) and persists
// it. The selection is reset: its student may not exist anymore.
func (s *Store) Replace(ctx context.Context, snap Snapshot) {
	s.snap = snap.Clone()
	s.selected = ""
	s.persist(ctx)
}

func (s *Store) Students() []Student {
	out := make([]Student, len(s.snap.Students))
	copy(out, s.snap.Students)
	return out
}

func (s *Store) Materials() []Material {
	out := make([]Material, len(s.snap.Materials))
	copy(out, s.snap.Materials)
	return out
}

func (s *Store) Assessments() []Assessment {
	out := make([]Assessment, len(s.snap.Assessments))
	copy(out, s.snap.Assessments)
	return out
}

// AssessmentsFor returns the student's assessments in date order. The
// sort is stable so same-day measurements keep insertion order.
func (s *Store) AssessmentsFor(studentID string) []Assessment {
	var out []Assessment
	for _, a := range s.snap.Assessments {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *Store) Settings() Settings { return s.snap.Clone().Settings }

// Snapshot returns a deep copy of the full aggregate (the export path).
func (s *Store) Snapshot() Snapshot { return s.snap.Clone() }
