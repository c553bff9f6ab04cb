//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    Date
		wantErr bool
	}{
		{input: "2022-01-15", want: NewDate(2022, time.January, 15)},
		{input: " 2022-01-15 ", want: NewDate(2022, time.January, 15)},
		{input: "2022-03", want: NewDate(2022, time.March, 1)},
		{input: "2022-01-15T10:30:00Z", want: NewDate(2022, time.January, 15)},
		{input: "03/2021", want: NewDate(2021, time.March, 1)},
		{input: "2019", want: NewDate(2019, time.January, 1)},
		{input: "yesterday", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s", got)
		})
	}
}

func TestParseOptionalDate_Empty(t *testing.T) {
	d, err := ParseOptionalDate("  ")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Start Date  `json:"start"`
		End   *Date `json:"end"`
	}

	in := wrapper{Start: NewDate(2022, time.January, 15)}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2022-01-15","end":null}`, string(b))

	var out wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2021-06","end":"2023-02-28"}`), &out))
	assert.Equal(t, "2021-06-01", out.Start.String())
	require.NotNil(t, out.End)
	assert.Equal(t, "2023-02-28", out.End.String())

	assert.Error(t, json.Unmarshal([]byte(`{"start":"not a date"}`), &out))
	assert.Error(t, json.Unmarshal([]byte(`{"start":20220115}`), &out))
}

func TestDate_TimeConversion(t *testing.T) {
	var nilDate *Date
	assert.Nil(t, nilDate.TimePtr())
	assert.Nil(t, DateFromTime(nil))

	d := NewDate(2020, time.February, 29)
	tp := d.TimePtr()
	require.NotNil(t, tp)

	back := DateFromTime(tp)
	require.NotNil(t, back)
	assert.Equal(t, "2020-02-29", back.String())
}
