package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_Layouts(t *testing.T) {
	want := NewDate(2024, time.March, 5)
	for _, in := range []string{"2024-03-05", "2024/03/05", "05/03/2024", "05-03-2024", "05.03.2024", "20240305", "2024-03-05 17:30:00", "2024-03-05T23:00:00Z"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(want), "%s parsed as %s", in, got)
	}
}

func TestParseDate_RejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "2024-02-30", "2024-13-01", "yesterday", "2024-3-5x"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestDate_JSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-07-01"}`), &v))
	assert.Equal(t, "2024-07-01", v.D.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-07-01"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"d":null}`), &v))
	assert.True(t, v.D.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"d":20240701}`), &v))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 7, 1, 15, 4, 0, 0, time.UTC)))
	assert.Equal(t, "2024-07-01", d.String())

	require.NoError(t, d.Scan([]byte("2024-07-02")))
	assert.Equal(t, "2024-07-02", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestDaysBetween(t *testing.T) {
	days := DaysBetween(NewDate(2024, 2, 27), NewDate(2024, 3, 1))
	require.Len(t, days, 4)
	assert.Equal(t, "2024-02-29", days[2].String())

	assert.Empty(t, DaysBetween(NewDate(2024, 3, 2), NewDate(2024, 3, 1)))
}
