package db

import (
	"fmt"
	"time"

	"github.com/genf/workreport/pkg/core/model"
	"github.com/genf/workreport/pkg/core/period"
)

// WriteMode selects how derived rows are written to the warehouse
type WriteMode string

const (
	// WriteAppend adds only rows completed after the newest stored row
	WriteAppend WriteMode = "append"
	// WriteReplace swaps the whole table for the given rows
	WriteReplace WriteMode = "replace"
	// WriteMerge updates rows with a matching id and inserts the rest
	WriteMerge WriteMode = "merge"
)

func ParseWriteMode(s string) (WriteMode, error) {
	switch m := WriteMode(s); m {
	case WriteAppend, WriteReplace, WriteMerge:
		return m, nil
	}
	return "", fmt.Errorf("unknown write mode %q (want append, replace or merge)", s)
}

// MaxDate is the latest completion date among rows, zero when there are none
func MaxDate(rows []StoredWorkLog) time.Time {
	var max time.Time
	for _, r := range rows {
		if r.DateCompleted.After(max) {
			max = r.DateCompleted
		}
	}
	return max
}

// NewerThan keeps rows completed strictly after after. A zero after keeps everything.
func NewerThan(rows []StoredWorkLog, after time.Time) []StoredWorkLog {
	if after.IsZero() {
		return rows
	}
	var out []StoredWorkLog
	for _, r := range rows {
		if r.DateCompleted.After(after) {
			out = append(out, r)
		}
	}
	return out
}

// MergeByID overwrites existing rows that share an id with an incoming row and
// appends the incoming rows that are new. Existing order is kept.
func MergeByID(existing, incoming []StoredWorkLog) []StoredWorkLog {
	pos := make(map[string]int, len(existing))
	out := make([]StoredWorkLog, len(existing), len(existing)+len(incoming))
	copy(out, existing)
	for i, r := range out {
		pos[r.ID] = i
	}
	for _, r := range incoming {
		if i, ok := pos[r.ID]; ok {
			out[i] = r
			continue
		}
		pos[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}

// InRange keeps the records completed within r. A zero range keeps everything.
func InRange(rs model.RecordSet, r period.DateRange) model.RecordSet {
	if r.IsZero() {
		return rs
	}
	rows := make([]model.WorkLog, 0, len(rs.Rows))
	for _, rec := range rs.Rows {
		if r.Contains(rec.DateCompleted) {
			rows = append(rows, rec)
		}
	}
	return rs.WithRows(rows)
}
