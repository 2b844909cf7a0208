package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"7", 7},
		{" 30 ", 30},
		{"3:30", 3},
		{"5:00", 5},
		{"0:45", 0},
		{"7.9", 7},
		{"abc", DefaultItemDuration},
		{"", DefaultItemDuration},
		{"-4", DefaultItemDuration},
		{"3:75", DefaultItemDuration},
		{"x:10", DefaultItemDuration},
		{"NaN", DefaultItemDuration},
		{"Inf", DefaultItemDuration},
		{"1440", MaxItemDuration},
		{"1441", DefaultItemDuration},
		{"1e19", DefaultItemDuration},
		{"9223372036854775807", DefaultItemDuration},
		{"99999999999999999999", DefaultItemDuration},
		{"9223372036854775807:00", DefaultItemDuration},
		{"1441:00", DefaultItemDuration},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.in))
		})
	}
}

func TestRawDuration_UnmarshalJSON(t *testing.T) {
	var payload []struct {
		Duration RawDuration `json:"duration"`
	}
	err := json.Unmarshal([]byte(`[{"duration":7},{"duration":"3:30"},{"duration":null},{"duration":"abc"},{}]`), &payload)
	require.NoError(t, err)

	got := make([]int, 0, len(payload))
	for _, p := range payload {
		got = append(got, p.Duration.Minutes())
	}
	assert.Equal(t, []int{7, 3, DefaultItemDuration, DefaultItemDuration, DefaultItemDuration}, got)
}

func TestParseItemType(t *testing.T) {
	assert.Equal(t, ItemMessage, ParseItemType("MESSAGE"))
	assert.Equal(t, ItemWalkIn, ParseItemType("walk-in"))
	assert.Equal(t, ItemAltarCall, ParseItemType("altar call"))
	assert.Equal(t, ItemWorship, ParseItemType("SONG"))
	assert.Equal(t, ItemClosingSong, ParseItemType("CANCION_FINAL"))
	assert.Equal(t, ItemAnnouncements, ParseItemType("NOTICIAS"))
	assert.Equal(t, ItemGeneric, ParseItemType("karaoke"))
	assert.Equal(t, ItemGeneric, ParseItemType(""))
}

func TestTimeline(t *testing.T) {
	start := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	items := []ServicePlanItem{
		{Type: ItemWorship, Title: "Intro", Duration: 3, Order: 0},
		{Type: ItemMessage, Title: "Sermon", Duration: 30, Order: 1},
	}

	starts := ProjectedStarts(start, items)
	require.Len(t, starts, 2)
	assert.Equal(t, start, starts[0])
	assert.Equal(t, time.Date(2026, 10, 18, 10, 3, 0, 0, time.UTC), starts[1])
	assert.Equal(t, 33, TotalDuration(items))

	assert.Empty(t, ProjectedStarts(start, nil))
	assert.Zero(t, TotalDuration(nil))
}

func TestTimeline_OversizedDurationsFallBack(t *testing.T) {
	start := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	items := []ServicePlanItem{
		{Title: "Huge", Duration: RawDuration("200000000000000000000").Minutes()},
		{Title: "Next", Duration: RawDuration("3").Minutes()},
	}

	starts := ProjectedStarts(start, items)
	require.Len(t, starts, 2)
	assert.Equal(t, start.Add(DefaultItemDuration*time.Minute), starts[1])
	assert.True(t, starts[1].After(start))
	assert.Equal(t, DefaultItemDuration+3, TotalDuration(items))
}

func TestMember_BornOn(t *testing.T) {
	birth := time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC)
	m := Member{BirthDate: &birth}
	assert.True(t, m.BornOn(time.March, 14))
	assert.False(t, m.BornOn(time.March, 15))
	assert.False(t, (&Member{}).BornOn(time.March, 14))
}
