package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultItemDuration is stored when a submitted duration cannot be parsed.
const DefaultItemDuration = 5

// MaxItemDuration caps a single item at one day; longer values fall back to
// DefaultItemDuration.
const MaxItemDuration = 24 * 60

// ItemType tags an itinerary row.
type ItemType string

const (
	ItemWalkIn             ItemType = "WALK_IN"
	ItemPreroll            ItemType = "PREROLL"
	ItemWorship            ItemType = "WORSHIP"
	ItemConducting         ItemType = "CONDUCTING"
	ItemConnection         ItemType = "CONNECTION"
	ItemOffering           ItemType = "OFFERING"
	ItemAnnouncements      ItemType = "ANNOUNCEMENTS"
	ItemVolunteerSpotlight ItemType = "VOLUNTEER_SPOTLIGHT"
	ItemMessage            ItemType = "MESSAGE"
	ItemMinistration       ItemType = "MINISTRATION"
	ItemAltarCall          ItemType = "ALTAR_CALL"
	ItemClosingSong        ItemType = "CLOSING_SONG"
	ItemWalkOut            ItemType = "WALK_OUT"
	ItemGeneric            ItemType = "GENERIC"
)

// ItemTypes lists every item type in itinerary-editor order.
var ItemTypes = []ItemType{
	ItemWalkIn, ItemPreroll, ItemWorship, ItemConducting, ItemConnection, ItemOffering,
	ItemAnnouncements, ItemVolunteerSpotlight, ItemMessage, ItemMinistration, ItemAltarCall,
	ItemClosingSong, ItemWalkOut, ItemGeneric,
}

// legacy codes still sent by older clients
var itemTypeAliases = map[string]ItemType{
	"SONG":          ItemWorship,
	"CONDUCCION":    ItemConducting,
	"CONEXION":      ItemConnection,
	"OFRENDAS":      ItemOffering,
	"NOTICIAS":      ItemAnnouncements,
	"ANUNCIO":       ItemAnnouncements,
	"VOLUNTARIO":    ItemVolunteerSpotlight,
	"MENSAJE":       ItemMessage,
	"MINISTRACION":  ItemMinistration,
	"LLAMADO":       ItemAltarCall,
	"CANCION_FINAL": ItemClosingSong,
}

// ParseItemType maps a submitted type tag to the enumeration. Unknown tags become GENERIC.
func ParseItemType(raw string) ItemType {
	code := strings.ToUpper(strings.TrimSpace(raw))
	code = strings.NewReplacer("-", "_", " ", "_").Replace(code)
	for _, t := range ItemTypes {
		if string(t) == code {
			return t
		}
	}
	if t, ok := itemTypeAliases[code]; ok {
		return t
	}
	return ItemGeneric
}

// ParseDuration reads whole minutes from "7", "7.5" or "3:30" (seconds truncated).
// Anything unparseable or above MaxItemDuration yields DefaultItemDuration.
func ParseDuration(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultItemDuration
	}

	if minutes, seconds, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(strings.TrimSpace(minutes))
		if err != nil || m < 0 || m > MaxItemDuration {
			return DefaultItemDuration
		}
		sec, err := strconv.Atoi(strings.TrimSpace(seconds))
		if err != nil || sec < 0 || sec >= 60 {
			return DefaultItemDuration
		}
		return m
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > MaxItemDuration {
		return DefaultItemDuration
	}
	return int(f)
}

// RawDuration is a duration as submitted: a JSON number of minutes or a string.
type RawDuration string

// UnmarshalJSON accepts numbers, strings and null without failing.
func (d *RawDuration) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*d = RawDuration(s)
		return nil
	}
	*d = RawDuration(b)
	return nil
}

// Minutes parses the raw value with ParseDuration.
func (d RawDuration) Minutes() int {
	return ParseDuration(string(d))
}

// TotalDuration sums item durations in minutes.
func TotalDuration(items []ServicePlanItem) int {
	total := 0
	for _, item := range items {
		total += item.Duration
	}
	return total
}

// ProjectedStarts returns each item's start: the service start plus the
// durations of every preceding item, in list order.
func ProjectedStarts(start time.Time, items []ServicePlanItem) []time.Time {
	starts := make([]time.Time, len(items))
	elapsed := 0
	for i, item := range items {
		starts[i] = start.Add(time.Duration(elapsed) * time.Minute)
		elapsed += item.Duration
	}
	return starts
}
