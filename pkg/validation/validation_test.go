package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPersonName(t *testing.T) {
	valid := []string{"Alice", "Alice Smith", "  Bob Jones  ", "Zoë Ångström", "Mary Ann Lee"}
	for _, s := range valid {
		assert.True(t, IsPersonName(s), s)
	}

	invalid := []string{"", "   ", "Alice1", "O'Brien", "Smith-Jones", "Bob,Jones", "Tab\tName", "R2D2"}
	for _, s := range invalid {
		assert.False(t, IsPersonName(s), s)
	}
}

func TestVar_Tags(t *testing.T) {
	assert.NoError(t, Var("PRESENT", TagAttendanceStatus))
	assert.NoError(t, Var(" absent ", TagAttendanceStatus))
	assert.Error(t, Var("late", TagAttendanceStatus))

	assert.NoError(t, Var("2024-01-10", TagISODate))
	assert.Error(t, Var("2024-02-30", TagISODate))
	assert.Error(t, Var("10/01/2024", TagISODate))
}

func TestStruct_FailedFields(t *testing.T) {
	type input struct {
		Name   string `validate:"personname"`
		ID     int64  `validate:"gt=0"`
		Status string `validate:"attendance_status"`
	}

	err := Struct(input{Name: "Bob1", ID: 0, Status: "present"})
	require.Error(t, err)

	assert.Equal(t, []string{"Name", "ID"}, FailedFields(err))
	assert.True(t, HasFailure(err, "ID"))
	assert.False(t, HasFailure(err, "Status"))
	assert.Nil(t, FailedFields(assert.AnError))
}
