package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbcollection-th/takeout-merge/internal/config"
	"github.com/bbcollection-th/takeout-merge/internal/sidecar"
)

func fullRecord() *sidecar.Record {
	return &sidecar.Record{
		ExpectedFilename: "IMG_0001.jpg",
		Description:      "Sunset over the bay",
		People:           []string{"anthony bernard", "jane o'connor"},
		Albums:           []string{"Vacation 2020"},
		TakenAt:          1577880000, // 2020-01-01 12:00:00 UTC
		CreatedAt:        1577966400,
		Latitude:         48.8584,
		Longitude:        2.2945,
		Altitude:         35.5,
		HasGeo:           true,
		Favorite:         true,
	}
}

func TestSynthesize_AppendModeRegions(t *testing.T) {
	list := Synthesize(fullRecord(), false, config.ModeAppendOnly)
	require.NotEmpty(t, list)

	// The plan must open a create-only region before the first scalar and
	// close it before the first list operation, never leaving it open.
	assert.Equal(t, Directive{Tag: "wm", Op: RawFlag, Value: "cg"}, list[0])

	open := false
	for _, d := range list {
		switch d.Op {
		case RawFlag:
			require.Equal(t, "wm", d.Tag)
			open = d.Value == "cg"
		case SetIfAbsent:
			assert.True(t, open, "conditional write of %s outside cg region", d.Tag)
		case SetUnconditional:
			t.Fatalf("append mode must not write %s unconditionally", d.Tag)
		case RemoveValue, AddValue:
			assert.False(t, open, "list op on %s inside cg region", d.Tag)
		}
	}
	assert.False(t, open, "region left open at end of plan")
}

func TestSynthesize_OverwriteModeHasNoFlags(t *testing.T) {
	list := Synthesize(fullRecord(), false, config.ModeOverwrite)
	for _, d := range list {
		assert.NotEqual(t, RawFlag, d.Op, "overwrite plan carries flag %s=%s", d.Tag, d.Value)
		assert.NotEqual(t, SetIfAbsent, d.Op)
	}
}

func TestSynthesize_ListPairs(t *testing.T) {
	list := Synthesize(fullRecord(), false, config.ModeAppendOnly)

	// Every RemoveValue is directly followed by AddValue for the same tag
	// and value, the shape that makes re-runs duplicate-free.
	for i, d := range list {
		if d.Op == RemoveValue {
			require.Less(t, i+1, len(list))
			next := list[i+1]
			assert.Equal(t, AddValue, next.Op)
			assert.Equal(t, d.Tag, next.Tag)
			assert.Equal(t, d.Value, next.Value)
		}
	}

	added := map[string][]string{}
	for _, d := range list {
		if d.Op == AddValue {
			added[d.Tag] = append(added[d.Tag], d.Value)
		}
	}
	assert.Equal(t, []string{"Anthony Bernard", "Jane O'Connor"}, added["XMP-iptcExt:PersonInImage"])
	assert.Equal(t, []string{"Anthony Bernard", "Jane O'Connor", "Album: Vacation 2020"}, added["XMP-dc:Subject"])
	assert.Equal(t, added["XMP-dc:Subject"], added["IPTC:Keywords"])
}

// applyPlan simulates a metadata target: SetIfAbsent only fills holes,
// SetUnconditional replaces, RemoveValue/AddValue edit lists with the
// remove-if-present semantics the real tool implements.
func applyPlan(scalars map[string]string, lists map[string][]string, plan DirectiveList) {
	for _, d := range plan {
		switch d.Op {
		case SetIfAbsent:
			if _, ok := scalars[d.Tag]; !ok {
				scalars[d.Tag] = d.Value
			}
		case SetUnconditional:
			scalars[d.Tag] = d.Value
		case RemoveValue:
			kept := lists[d.Tag][:0]
			for _, v := range lists[d.Tag] {
				if v != d.Value {
					kept = append(kept, v)
				}
			}
			lists[d.Tag] = kept
		case AddValue:
			lists[d.Tag] = append(lists[d.Tag], d.Value)
		}
	}
}

func TestSynthesize_ModesAgreeOnEmptyTarget(t *testing.T) {
	appendScalars, appendLists := map[string]string{}, map[string][]string{}
	applyPlan(appendScalars, appendLists, Synthesize(fullRecord(), false, config.ModeAppendOnly))

	overScalars, overLists := map[string]string{}, map[string][]string{}
	applyPlan(overScalars, overLists, Synthesize(fullRecord(), false, config.ModeOverwrite))

	assert.Equal(t, overScalars, appendScalars)
	assert.Equal(t, overLists, appendLists)
}

func TestSynthesize_ListMergeIdempotent(t *testing.T) {
	plan := Synthesize(fullRecord(), false, config.ModeAppendOnly)
	scalars, lists := map[string]string{}, map[string][]string{}

	applyPlan(scalars, lists, plan)
	first := map[string][]string{}
	for k, v := range lists {
		first[k] = append([]string{}, v...)
	}

	applyPlan(scalars, lists, plan)
	assert.Equal(t, first, lists, "second application must not grow any list")
}

func TestSynthesize_AppendPreservesExistingScalars(t *testing.T) {
	scalars := map[string]string{"DateTimeOriginal": "2015:06:01 08:00:00"}
	applyPlan(scalars, map[string][]string{}, Synthesize(fullRecord(), false, config.ModeAppendOnly))
	assert.Equal(t, "2015:06:01 08:00:00", scalars["DateTimeOriginal"],
		"camera-written date survives an append merge")
	assert.Equal(t, "2020:01:01 12:00:00", scalars["CreateDate"])
}

func TestSynthesize_Values(t *testing.T) {
	plan := Synthesize(fullRecord(), false, config.ModeOverwrite)
	scalars := map[string]string{}
	applyPlan(scalars, map[string][]string{}, plan)

	assert.Equal(t, "2020:01:01 12:00:00", scalars["DateTimeOriginal"], "epoch rendered as UTC wall-clock")
	assert.Equal(t, "2020:01:02 12:00:00", scalars["XMP-xmp:CreateDate"])
	assert.Equal(t, "5", scalars["XMP-xmp:Rating"])
	assert.Equal(t, "48.8584", scalars["GPSLatitude"])
	assert.Equal(t, "N", scalars["GPSLatitudeRef"])
	assert.Equal(t, "E", scalars["GPSLongitudeRef"])
	assert.Equal(t, "0", scalars["GPSAltitudeRef"])
	assert.Equal(t, "Sunset over the bay", scalars["IPTC:Caption-Abstract"])
}

func TestSynthesize_SouthernHemisphere(t *testing.T) {
	rec := fullRecord()
	rec.Latitude = -33.8688
	rec.Longitude = 151.2093
	rec.Altitude = -2.5

	scalars := map[string]string{}
	applyPlan(scalars, map[string][]string{}, Synthesize(rec, false, config.ModeOverwrite))
	assert.Equal(t, "33.8688", scalars["GPSLatitude"], "coordinate stored as magnitude")
	assert.Equal(t, "S", scalars["GPSLatitudeRef"])
	assert.Equal(t, "E", scalars["GPSLongitudeRef"])
	assert.Equal(t, "1", scalars["GPSAltitudeRef"], "below sea level")
}

func TestSynthesize_VideoFanOut(t *testing.T) {
	plan := Synthesize(fullRecord(), true, config.ModeOverwrite)
	tags := map[string]bool{}
	for _, d := range plan {
		tags[d.Tag] = true
	}
	for _, want := range []string{
		"QuickTime:Description", "QuickTime:CreateDate", "QuickTime:ModifyDate",
		"MediaCreateDate", "TrackCreateDate", "QuickTime:GPSCoordinates",
	} {
		assert.True(t, tags[want], "video plan missing %s", want)
	}

	photo := Synthesize(fullRecord(), false, config.ModeOverwrite)
	for _, d := range photo {
		assert.NotContains(t, d.Tag, "QuickTime", "photo plan carries video tag %s", d.Tag)
	}
}

func TestSynthesize_EmptyRecord(t *testing.T) {
	rec := &sidecar.Record{ExpectedFilename: "IMG_0001.jpg"}
	plan := Synthesize(rec, false, config.ModeAppendOnly)
	assert.Empty(t, plan, "no metadata means no directives, not even flags")
	assert.False(t, plan.HasTagWrites())
}

func TestSynthesize_FavoriteFalseEmitsNothing(t *testing.T) {
	rec := &sidecar.Record{ExpectedFilename: "IMG_0001.jpg", Favorite: false, Description: "x"}
	for _, d := range Synthesize(rec, false, config.ModeOverwrite) {
		assert.NotEqual(t, "XMP-xmp:Rating", d.Tag)
	}
}

func TestSynthesize_PeopleNormalizedAndDeduped(t *testing.T) {
	rec := &sidecar.Record{
		ExpectedFilename: "IMG_0001.jpg",
		People:           []string{"anthony bernard", "Anthony BERNARD"},
	}
	plan := Synthesize(rec, false, config.ModeAppendOnly)
	var people []string
	for _, d := range plan {
		if d.Tag == "XMP-iptcExt:PersonInImage" && d.Op == AddValue {
			people = append(people, d.Value)
		}
	}
	assert.Equal(t, []string{"Anthony Bernard"}, people,
		"casing variants collapse after normalization")
}
