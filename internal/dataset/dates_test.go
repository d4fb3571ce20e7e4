package dataset

import (
	"errors"
	"testing"

	"github.com/spacesedan/nytsentiment/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDay(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2018-03-01", "2018-03-01"},
		{"2018-03-01 23:59:59", "2018-03-01"},
		{"2018-03-01T22:30:00-05:00", "2018-03-02"},
		{"2018-01-01T05:00:00+0000", "2018-01-01"},
		{"2018-03-01T22:30:00-0500", "2018-03-02"},
		{"20180301", "2018-03-01"},
		{"03/01/2018", "2018-03-01"},
		{"2018/03/01", "2018-03-01"},
		{"1519862400", "2018-03-01"},
		{"1519862400.5", "2018-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Day(models.StringValue(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDayErrors(t *testing.T) {
	var parseErr *DateParseError

	_, err := Day(models.StringValue("last tuesday"))
	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "last tuesday", parseErr.Value)

	// not a calendar day, and too short to be read as epoch seconds
	_, err = Day(models.StringValue("20181399"))
	assert.True(t, errors.As(err, &parseErr))

	_, err = Day(models.MissingValue())
	assert.True(t, errors.As(err, &parseErr))
}

func TestDeriveDates(t *testing.T) {
	ds := models.NewDataset(models.ROLE_COMMENTS, []string{"commentDate"})
	for i, raw := range []string{"2018-03-01", "garbage", ""} {
		rec := models.NewRecord(i)
		if raw == "" {
			rec.Set("commentDate", models.MissingValue())
		} else {
			rec.Set("commentDate", models.StringValue(raw))
		}
		ds.Records = append(ds.Records, rec)
	}

	failed := DeriveDates(ds, "commentDate", models.FIELD_DATE)

	assert.Equal(t, 2, failed)
	assert.Equal(t, []string{"commentDate", "date"}, ds.Columns)
	assert.Equal(t, "2018-03-01", ds.Records[0].Get("date").Str)
	assert.False(t, ds.Records[1].Get("date").Valid)
	assert.False(t, ds.Records[2].Get("date").Valid)
}
