package reading

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lasmonitor/lasmonitor/internal/snapshot"
)

func newTestStore(t *testing.T) (*Store, *snapshot.MemSlot) {
	t.Helper()
	slot := &snapshot.MemSlot{}
	return Load(context.Background(), slot, nil), slot
}

func fp(v float64) *float64 { return &v }

func TestLoad_EmptySlotYieldsDefaults(t *testing.T) {
	store, _ := newTestStore(t)
	if got := len(store.Students()); got != 0 {
		t.Fatalf("expected empty roster, got %d", got)
	}
	s := store.Settings()
	if s.Ranges.WPM != (Range{60, 260}) {
		t.Fatalf("unexpected default wpm range: %v", s.Ranges.WPM)
	}
	if s.Weights != (Weights{WPM: 0.35, Comp: 0.35, Level: 0.30}) {
		t.Fatalf("unexpected default weights: %+v", s.Weights)
	}
	if s.Targets[8] != (Target{WPM: 160, Comp: 75}) {
		t.Fatalf("unexpected grade-8 target: %+v", s.Targets[8])
	}
}

func TestLoad_CorruptSlotYieldsDefaults(t *testing.T) {
	slot := &snapshot.MemSlot{Data: []byte("{not json")}
	store := Load(context.Background(), slot, nil)
	if got := len(store.Students()); got != 0 {
		t.Fatalf("expected fresh aggregate, got %d students", got)
	}
}

func TestLoad_RoundTripsThroughSlot(t *testing.T) {
	ctx := context.Background()
	slot := &snapshot.MemSlot{}
	store := Load(ctx, slot, nil)
	st, _ := store.AddStudent(ctx, "Ada", 8)

	again := Load(ctx, slot, nil)
	students := again.Students()
	if len(students) != 1 || students[0] != st {
		t.Fatalf("reloaded roster mismatch: %+v", students)
	}
}

func TestAddStudent_TrimsAndRejectsEmpty(t *testing.T) {
	ctx := context.Background()
	store, slot := newTestStore(t)
	if _, ok := store.AddStudent(ctx, "   ", 7); ok {
		t.Fatal("blank name must be a no-op")
	}
	if slot.Saves != 0 {
		t.Fatalf("no-op must not persist, got %d saves", slot.Saves)
	}
	st, ok := store.AddStudent(ctx, "  Ada  ", 8)
	if !ok || st.Name != "Ada" || st.Grade != 8 {
		t.Fatalf("unexpected student: %+v ok=%v", st, ok)
	}
	if st.ID == "" {
		t.Fatal("student must get an id")
	}
	if slot.Saves != 1 {
		t.Fatalf("mutation must persist once, got %d saves", slot.Saves)
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestDeleteStudent_CascadesAssessments(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	ada, _ := store.AddStudent(ctx, "Ada", 8)
	bo, _ := store.AddStudent(ctx, "Bo", 7)

	mustSelect(t, store, ada.ID)
	mustAdd(t, store, NewAssessment{Date: "2024-01-10", WPM: fp(150)})
	mustSelect(t, store, bo.ID)
	mustAdd(t, store, NewAssessment{Date: "2024-01-11", WPM: fp(120)})

	store.DeleteStudent(ctx, ada.ID)

	if got := store.Students(); len(got) != 1 || got[0].ID != bo.ID {
		t.Fatalf("roster after delete: %+v", got)
	}
	left := store.Assessments()
	if len(left) != 1 || left[0].StudentID != bo.ID {
		t.Fatalf("assessments after delete: %+v", left)
	}
}

func TestDeleteStudent_ClearsSelection(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	ada, _ := store.AddStudent(ctx, "Ada", 8)
	mustSelect(t, store, ada.ID)

	store.DeleteStudent(ctx, ada.ID)

	if _, ok := store.SelectedStudent(); ok {
		t.Fatal("selection must be cleared when its student is deleted")
	}
	if _, err := store.AddAssessment(ctx, NewAssessment{Date: "2024-02-01"}); !errors.Is(err, ErrNoStudentSelected) {
		t.Fatalf("expected ErrNoStudentSelected, got %v", err)
	}
}

func TestDeleteMaterial_ClearsReferencesOnly(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	ada, _ := store.AddStudent(ctx, "Ada", 8)
	m, _ := store.AddMaterial(ctx, "Momo", fp(700), nil, fp(31000))

	mustSelect(t, store, ada.ID)
	a := mustAdd(t, store, NewAssessment{Date: "2024-01-10", MaterialID: &m.ID, WPM: fp(150)})

	store.DeleteMaterial(ctx, m.ID)

	if got := store.Materials(); len(got) != 0 {
		t.Fatalf("materials after delete: %+v", got)
	}
	left := store.Assessments()
	if len(left) != 1 || left[0].ID != a.ID {
		t.Fatalf("assessment must survive material delete: %+v", left)
	}
	if left[0].MaterialID != nil {
		t.Fatalf("dangling material reference must be cleared, got %v", *left[0].MaterialID)
	}
}

func TestAddAssessment_RequiresSelection(t *testing.T) {
	ctx := context.Background()
	store, slot := newTestStore(t)
	store.AddStudent(ctx, "Ada", 8)
	saves := slot.Saves

	_, err := store.AddAssessment(ctx, NewAssessment{Date: "2024-01-10"})
	if !errors.Is(err, ErrNoStudentSelected) {
		t.Fatalf("expected ErrNoStudentSelected, got %v", err)
	}
	if slot.Saves != saves {
		t.Fatal("aborted operation must not persist")
	}
	if got := len(store.Assessments()); got != 0 {
		t.Fatalf("aborted operation must not mutate, got %d assessments", got)
	}
}

func TestAddAssessment_UnspecifiedFieldsStayAbsent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	ada, _ := store.AddStudent(ctx, "Ada", 8)
	mustSelect(t, store, ada.ID)

	a := mustAdd(t, store, NewAssessment{Date: "2024-01-10", WPM: fp(150)})
	if a.Comprehension != nil || a.Lexile != nil || a.Lix != nil ||
		a.DLSStanine != nil || a.DLSPercentile != nil || a.MaterialID != nil {
		t.Fatalf("unset fields must stay nil: %+v", a)
	}
	if a.WPM == nil || *a.WPM != 150 {
		t.Fatalf("wpm lost: %+v", a)
	}
}

func TestAssessmentsFor_DateOrderedStable(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	ada, _ := store.AddStudent(ctx, "Ada", 8)
	mustSelect(t, store, ada.ID)

	mustAdd(t, store, NewAssessment{Date: "2024-03-01", Notes: "third"})
	mustAdd(t, store, NewAssessment{Date: "2024-01-10", Notes: "first"})
	mustAdd(t, store, NewAssessment{Date: "2024-01-10", Notes: "second"})

	got := store.AssessmentsFor(ada.ID)
	var notes []string
	for _, a := range got {
		notes = append(notes, a.Notes)
	}
	want := []string{"first", "second", "third"}
	for idx := range want {
		if notes[idx] != want[idx] {
			t.Fatalf("order %v, want %v", notes, want)
		}
	}
}

func TestPersistFailure_IsSwallowed(t *testing.T) {
	ctx := context.Background()
	slot := &snapshot.MemSlot{SaveErr: errors.New("quota exceeded")}
	store := Load(ctx, slot, nil)

	st, ok := store.AddStudent(ctx, "Ada", 8)
	if !ok {
		t.Fatal("mutation must succeed even when persistence fails")
	}
	if got := store.Students(); len(got) != 1 || got[0].ID != st.ID {
		t.Fatalf("in-memory state must keep the mutation: %+v", got)
	}
}

func TestSettingsSetters(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if err := store.SetRangeBound(ctx, MetricWPM, BoundMin, 80); err != nil {
		t.Fatal(err)
	}
	if err := store.SetWeight(ctx, ComponentLevel, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := store.SetTarget(ctx, 9, TargetWPM, 190); err != nil {
		t.Fatal(err)
	}
	if err := store.SetTarget(ctx, 6, TargetComp, 65); err != nil {
		t.Fatal(err)
	}

	s := store.Settings()
	if s.Ranges.WPM != (Range{80, 260}) {
		t.Fatalf("wpm range: %v", s.Ranges.WPM)
	}
	if s.Weights.Level != 0.5 {
		t.Fatalf("level weight: %v", s.Weights.Level)
	}
	if s.Targets[9] != (Target{WPM: 190, Comp: 80}) {
		t.Fatalf("grade-9 target: %+v", s.Targets[9])
	}
	// a grade without a built-in target gets created on first set
	if s.Targets[6] != (Target{WPM: 0, Comp: 65}) {
		t.Fatalf("grade-6 target: %+v", s.Targets[6])
	}

	if err := store.SetRangeBound(ctx, Metric("bogus"), BoundMin, 1); err == nil {
		t.Fatal("unknown metric must error")
	}
	if err := store.SetWeight(ctx, Component("bogus"), 1); err == nil {
		t.Fatal("unknown component must error")
	}
}

func TestReplace_SwapsAggregateAndResetsSelection(t *testing.T) {
	ctx := context.Background()
	store, slot := newTestStore(t)
	ada, _ := store.AddStudent(ctx, "Ada", 8)
	mustSelect(t, store, ada.ID)

	incoming := NewSnapshot()
	incoming.Students = []Student{{ID: "x1", Name: "Nils", Grade: 7}}
	store.Replace(ctx, incoming)

	if got := store.Students(); len(got) != 1 || got[0].Name != "Nils" {
		t.Fatalf("aggregate not replaced: %+v", got)
	}
	if _, ok := store.SelectedStudent(); ok {
		t.Fatal("selection must reset on replace")
	}
	// replace persists
	var persisted Snapshot
	if err := json.Unmarshal(slot.Data, &persisted); err != nil {
		t.Fatalf("persisted data not json: %v", err)
	}
	if len(persisted.Students) != 1 || persisted.Students[0].Name != "Nils" {
		t.Fatalf("persisted aggregate mismatch: %+v", persisted.Students)
	}
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	ada, _ := store.AddStudent(ctx, "Ada", 8)
	mustSelect(t, store, ada.ID)
	mustAdd(t, store, NewAssessment{Date: "2024-01-10", WPM: fp(150)})

	snap := store.Snapshot()
	*snap.Assessments[0].WPM = 999
	snap.Students[0].Name = "Mallory"

	if got := store.Assessments(); *got[0].WPM != 150 {
		t.Fatalf("snapshot aliased assessment data: %v", *got[0].WPM)
	}
	if got := store.Students(); got[0].Name != "Ada" {
		t.Fatalf("snapshot aliased student data: %v", got[0].Name)
	}
}

func mustSelect(t *testing.T, store *Store, id string) {
	t.Helper()
	if err := store.SelectStudent(id); err != nil {
		t.Fatalf("select %s: %v", id, err)
	}
}

func mustAdd(t *testing.T, store *Store, in NewAssessment) Assessment {
	t.Helper()
	a, err := store.AddAssessment(context.Background(), in)
	if err != nil {
		t.Fatalf("add assessment: %v", err)
	}
	return a
}
