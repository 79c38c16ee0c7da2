package progress

import (
	"github.com/lasmonitor/lasmonitor/internal/reading"
	"github.com/lasmonitor/lasmonitor/internal/scoring"
)

// Advice notes, one vocabulary for the whole cohort so the list reads
// consistently.
const (
	NoteNoData        = "no measurements yet"
	NoteFluency       = "focus on reading speed (timed/repeated reading)"
	NoteComprehension = "work on reading strategies and pre-reading"
	NoteDecline       = "NRS dropped; check text level and day form, adjust difficulty"
	NoteSteady        = "steady/positive; continue and raise difficulty stepwise"
)

// StudentAdvice is the tips row for one student.
type StudentAdvice struct {
	Student reading.Student
	Notes   []string
}

// Advice compares each student's latest measurement against the grade
// target and the previous composite. Target-based notes only fire when
// the student's grade has a configured target; raw fields that were not
// recorded trigger nothing. A student with no measurements gets the
// no-data marker alone.
func Advice(snap reading.Snapshot) []StudentAdvice {
	out := make([]StudentAdvice, len(snap.Students))
	for i, st := range snap.Students {
		out[i] = StudentAdvice{Student: st, Notes: adviseOne(snap, st)}
	}
	return out
}

func adviseOne(snap reading.Snapshot, st reading.Student) []string {
	list := assessmentsFor(snap, st.ID)
	if len(list) == 0 {
		return []string{NoteNoData}
	}
	last := list[len(list)-1]

	var notes []string
	if target, ok := snap.Settings.Targets[st.Grade]; ok {
		if last.WPM != nil && *last.WPM < target.WPM {
			notes = append(notes, NoteFluency)
		}
		if last.Comprehension != nil && *last.Comprehension < target.Comp {
			notes = append(notes, NoteComprehension)
		}
	}
	if lastN, ok := scoring.NRS(last, snap.Settings.Ranges, snap.Settings.Weights); ok && len(list) > 1 {
		if prevN, ok := scoring.NRS(list[len(list)-2], snap.Settings.Ranges, snap.Settings.Weights); ok && lastN < prevN {
			notes = append(notes, NoteDecline)
		}
	}
	if len(notes) == 0 {
		notes = append(notes, NoteSteady)
	}
	return notes
}
