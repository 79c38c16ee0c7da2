// Package progress answers the read-model questions the views ask:
// cohort trend, per-student trend, latest score and delta, and
// per-grade target advice. Everything here is a pure function of a
// snapshot; scores always come from the snapshot's own settings.
package progress

import (
	"sort"

	"github.com/lasmonitor/lasmonitor/internal/reading"
	"github.com/lasmonitor/lasmonitor/internal/scoring"
)

// CohortPoint is the mean NRS of all assessments recorded on one date.
type CohortPoint struct {
	Date string
	NRS  int
	N    int // assessments that contributed
}

// CohortSeries aggregates NRS across the whole cohort by date,
// date-ascending. Assessments with no scoreable field are skipped.
func CohortSeries(snap reading.Snapshot) []CohortPoint {
	type acc struct {
		sum, n int
	}
	byDate := map[string]*acc{}
	for _, a := range snap.Assessments {
		nrs, ok := scoring.NRS(a, snap.Settings.Ranges, snap.Settings.Weights)
		if !ok {
			continue
		}
		if byDate[a.Date] == nil {
			byDate[a.Date] = &acc{}
		}
		byDate[a.Date].sum += nrs
		byDate[a.Date].n++
	}
	out := make([]CohortPoint, 0, len(byDate))
	for date, a := range byDate {
		out = append(out, CohortPoint{Date: date, NRS: scoring.Round(float64(a.sum) / float64(a.n)), N: a.n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// StudentPoint is one assessment's chartable values. NRS is nil when the
// assessment has nothing scoreable; WPM/Comprehension pass through the
// recorded-or-absent state of the raw fields.
type StudentPoint struct {
	Date          string
	NRS           *int
	WPM           *float64
	Comprehension *float64
}

// StudentSeries returns the student's assessments in date order, scored.
func StudentSeries(snap reading.Snapshot, studentID string) []StudentPoint {
	list := assessmentsFor(snap, studentID)
	out := make([]StudentPoint, len(list))
	for i, a := range list {
		p := StudentPoint{Date: a.Date, WPM: a.WPM, Comprehension: a.Comprehension}
		if nrs, ok := scoring.NRS(a, snap.Settings.Ranges, snap.Settings.Weights); ok {
			p.NRS = &nrs
		}
		out[i] = p
	}
	return out
}

// StudentStatus is the dashboard row for one student.
type StudentStatus struct {
	Student     reading.Student
	Assessments int
	LastNRS     *int
	Delta       *int // latest minus previous, nil unless both scored
}

// Overview returns one status per student, in roster order.
func Overview(snap reading.Snapshot) []StudentStatus {
	out := make([]StudentStatus, len(snap.Students))
	for i, st := range snap.Students {
		list := assessmentsFor(snap, st.ID)
		status := StudentStatus{Student: st, Assessments: len(list)}
		status.LastNRS, status.Delta = latestAndDelta(snap, list)
		out[i] = status
	}
	return out
}

// LatestPoint is a student's most recent NRS, for the cohort comparison
// chart. NRS is nil when the student has no scoreable assessment yet.
type LatestPoint struct {
	Student reading.Student
	NRS     *int
}

// LatestNRS returns each student's most recent composite, roster order.
func LatestNRS(snap reading.Snapshot) []LatestPoint {
	out := make([]LatestPoint, len(snap.Students))
	for i, st := range snap.Students {
		nrs, _ := latestAndDelta(snap, assessmentsFor(snap, st.ID))
		out[i] = LatestPoint{Student: st, NRS: nrs}
	}
	return out
}

func assessmentsFor(snap reading.Snapshot, studentID string) []reading.Assessment {
	var out []reading.Assessment
	for _, a := range snap.Assessments {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// latestAndDelta scores the last and next-to-last assessments of a
// date-ordered list. The delta exists only when both have a composite.
func latestAndDelta(snap reading.Snapshot, list []reading.Assessment) (last, delta *int) {
	if len(list) == 0 {
		return nil, nil
	}
	if nrs, ok := scoring.NRS(list[len(list)-1], snap.Settings.Ranges, snap.Settings.Weights); ok {
		last = &nrs
	}
	if last == nil || len(list) < 2 {
		return last, nil
	}
	if prev, ok := scoring.NRS(list[len(list)-2], snap.Settings.Ranges, snap.Settings.Weights); ok {
		d := *last - prev
		delta = &d
	}
	return last, delta
}
