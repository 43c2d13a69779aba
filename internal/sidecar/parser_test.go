package sidecar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sidecarPath = "/takeout/IMG_0001.jpg.supplemental-metadata.json"

func TestParse_FullRecord(t *testing.T) {
	data := []byte(`{
		"title": "IMG_0001.jpg",
		"description": "Sunset over the bay",
		"photoTakenTime": {"timestamp": "1577880000", "formatted": "Jan 1, 2020"},
		"creationTime": {"timestamp": "1577966400"},
		"geoData": {"latitude": 48.8584, "longitude": 2.2945, "altitude": 35.5},
		"people": [{"name": "anthony bernard"}, {"name": "Jane Doe"}],
		"favorited": true,
		"archived": false
	}`)

	rec, err := Parse(data, sidecarPath)
	require.NoError(t, err)

	assert.Equal(t, "IMG_0001.jpg", rec.ExpectedFilename)
	assert.Equal(t, "Sunset over the bay", rec.Description)
	assert.Equal(t, int64(1577880000), rec.TakenAt)
	assert.Equal(t, int64(1577966400), rec.CreatedAt)
	assert.True(t, rec.HasGeo)
	assert.InDelta(t, 48.8584, rec.Latitude, 1e-9)
	assert.InDelta(t, 2.2945, rec.Longitude, 1e-9)
	assert.InDelta(t, 35.5, rec.Altitude, 1e-9)
	assert.Equal(t, []string{"anthony bernard", "Jane Doe"}, rec.People)
	assert.True(t, rec.Favorite)
	assert.Equal(t, DispositionNormal, rec.Disposition())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		err  error
	}{
		{"malformed json", `{"title": `, ErrMalformedJSON},
		{"not an object", `[1,2,3]`, ErrMalformedJSON},
		{"missing title", `{"description": "x"}`, ErrMissingTitle},
		{"title mismatch", `{"title": "OTHER.jpg"}`, ErrTitleMismatch},
		{"title case mismatch", `{"title": "img_0001.jpg"}`, ErrTitleMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), sidecarPath)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestParse_PeopleShapes(t *testing.T) {
	data := []byte(`{
		"title": "IMG_0001.jpg",
		"people": [
			{"name": "Alice"},
			{"person": {"name": "Bob"}},
			{"name": "  Alice  "},
			{"name": ""},
			{"tag": "no-name"}
		]
	}`)

	rec, err := Parse(data, sidecarPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, rec.People,
		"both entry shapes accepted, whitespace trimmed, duplicates dropped")
}

func TestParse_GeoFallbackAndNulling(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		hasGeo  bool
		wantLat float64
	}{
		{
			"zero coordinates nulled",
			`{"title": "IMG_0001.jpg", "geoData": {"latitude": 0.0, "longitude": 0.0}}`,
			false, 0,
		},
		{
			"exif fallback when geoData absent",
			`{"title": "IMG_0001.jpg", "geoDataExif": {"latitude": 51.5, "longitude": -0.12}}`,
			true, 51.5,
		},
		{
			"no geo blocks at all",
			`{"title": "IMG_0001.jpg"}`,
			false, 0,
		},
		{
			"missing longitude nulls position",
			`{"title": "IMG_0001.jpg", "geoData": {"latitude": 51.5}}`,
			false, 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse([]byte(tt.data), sidecarPath)
			require.NoError(t, err)
			assert.Equal(t, tt.hasGeo, rec.HasGeo)
			if tt.hasGeo {
				assert.InDelta(t, tt.wantLat, rec.Latitude, 1e-9)
			}
		})
	}
}

func TestParse_FavoriteShapes(t *testing.T) {
	for _, tt := range []struct {
		name string
		data string
		want bool
	}{
		{"bare bool", `{"title": "IMG_0001.jpg", "favorited": true}`, true},
		{"value wrapper", `{"title": "IMG_0001.jpg", "favorited": {"value": true}}`, true},
		{"absent", `{"title": "IMG_0001.jpg"}`, false},
		{"wrapper false", `{"title": "IMG_0001.jpg", "favorited": {"value": false}}`, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse([]byte(tt.data), sidecarPath)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Favorite)
		})
	}
}

func TestParse_EpochShapes(t *testing.T) {
	data := []byte(`{
		"title": "IMG_0001.jpg",
		"photoTakenTime": {"timestamp": 1577880000},
		"creationTime": {"timestamp": "not-a-number"}
	}`)
	rec, err := Parse(data, sidecarPath)
	require.NoError(t, err)
	assert.Equal(t, int64(1577880000), rec.TakenAt, "numeric timestamp accepted")
	assert.Zero(t, rec.CreatedAt, "unparseable timestamp treated as absent")
}

func TestDisposition_Priority(t *testing.T) {
	rec := &Record{Trashed: true, Locked: true, Archived: true}
	assert.Equal(t, DispositionTrashed, rec.Disposition())
	rec.Trashed = false
	assert.Equal(t, DispositionLocked, rec.Disposition())
	rec.Locked = false
	assert.Equal(t, DispositionArchived, rec.Disposition())
	rec.Archived = false
	assert.Equal(t, DispositionNormal, rec.Disposition())
}

func TestAlbumTitle(t *testing.T) {
	assert.Equal(t, "Vacation 2020", AlbumTitle([]byte(`{"title": " Vacation 2020 "}`)))
	assert.Empty(t, AlbumTitle([]byte(`not json`)))
	assert.Empty(t, AlbumTitle([]byte(`{"date": {}}`)))
}
