package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genf/workreport/pkg/core/model"
)

func TestParseWriteMode(t *testing.T) {
	for _, s := range []string{"append", "replace", "merge"} {
		m, err := ParseWriteMode(s)
		require.NoError(t, err)
		assert.Equal(t, WriteMode(s), m)
	}
	_, err := ParseWriteMode("overwrite")
	assert.Error(t, err)
}

func TestNewerThan(t *testing.T) {
	rows := []StoredWorkLog{
		{ID: "a", DateCompleted: day(2025, 1, 1)},
		{ID: "b", DateCompleted: day(2025, 2, 1)},
	}
	assert.Equal(t, day(2025, 2, 1), MaxDate(rows))
	assert.True(t, MaxDate(nil).IsZero())

	assert.Equal(t, rows, NewerThan(rows, time.Time{}))
	got := NewerThan(rows, day(2025, 1, 1))
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
	assert.Empty(t, NewerThan(rows, day(2025, 2, 1)))
}

func TestMergeByID(t *testing.T) {
	existing := []StoredWorkLog{{ID: "a", Cost: 1}, {ID: "b", Cost: 2}}
	incoming := []StoredWorkLog{{ID: "b", Cost: 20}, {ID: "c", Cost: 3}, {ID: "c", Cost: 30}}

	merged := MergeByID(existing, incoming)
	require.Len(t, merged, 3)
	assert.Equal(t, []StoredWorkLog{{ID: "a", Cost: 1}, {ID: "b", Cost: 20}, {ID: "c", Cost: 30}}, merged)
	assert.Equal(t, 2.0, existing[1].Cost, "input is not modified")
}

func TestWorkLogID(t *testing.T) {
	rec := model.WorkLog{WorkerName: "Ola", WorkType: "snow_removal", DateCompleted: day(2025, 3, 1), HoursWorked: 2}

	id := WorkLogID(rec)
	assert.Len(t, id, 36)
	assert.Equal(t, id, WorkLogID(rec), "derived ids are stable")

	other := rec
	other.HoursWorked = 3
	assert.NotEqual(t, id, WorkLogID(other))

	rec.ID = "given"
	assert.Equal(t, "given", WorkLogID(rec))
}

func TestStoredRows(t *testing.T) {
	units := 12.0
	rs := model.NewRecordSet([]model.WorkLog{{
		ID: "a", WorkerName: "Ola", Role: model.RoleGenf, UnitsCompleted: &units,
		DateCompleted: day(2025, 3, 1), Cost: 240, Season: "24/25",
	}}, model.ColWorkerName)

	rows := StoredRows(rs)
	require.Len(t, rows, 1)
	assert.Equal(t, "genf", rows[0].Role)
	assert.Equal(t, &units, rows[0].UnitsCompleted)
	assert.Equal(t, "24/25", rows[0].Season)
}
