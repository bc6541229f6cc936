package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexTimeScan(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		src  interface{}
		want int64
	}{
		{"nil is absent", nil, 0},
		{"sql timestamp", ts, ts.UnixMilli()},
		{"raw millis bigint", int64(1717243200000), 1717243200000},
		{"float millis", float64(1500), 1500},
		{"numeric bytes", []byte("2500"), 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ft FlexTime
			require.NoError(t, ft.Scan(tt.src))
			assert.Equal(t, tt.want, ft.Millis())
		})
	}

	var ft FlexTime
	assert.Error(t, ft.Scan(struct{}{}))
}

func TestFlexTimeUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{"null is absent", `null`, 0},
		{"raw millis number", `1717243200000`, 1717243200000},
		{"structured seconds", `{"seconds": 1717243200, "nanoseconds": 0}`, 1717243200000},
		{"structured with nanos", `{"seconds": 10, "nanoseconds": 500000000}`, 10500},
		{"structured without seconds", `{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ft FlexTime
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ft))
			assert.Equal(t, tt.want, ft.Millis())
		})
	}
}

func TestFlexTimeRoundTrip(t *testing.T) {
	ft := MillisTime(424242)

	out, err := json.Marshal(ft)
	require.NoError(t, err)
	assert.Equal(t, "424242", string(out))

	var back FlexTime
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, ft.Millis(), back.Millis())
}

func TestFlexTimeValue(t *testing.T) {
	v, err := MillisTime(1000).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), v)

	v, err = FlexTime{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestNormalizedStatus(t *testing.T) {
	r := Reservation{Status: StatusReserved}
	assert.Equal(t, StatusReserved, r.NormalizedStatus())
	assert.True(t, r.Active())

	r.Status = StatusCancelled
	assert.Equal(t, StatusCancelled, r.NormalizedStatus())
	assert.False(t, r.Active())

	r.Status = "totally-bogus"
	assert.Equal(t, StatusUnknown, r.NormalizedStatus())
	assert.False(t, r.Active())
}
