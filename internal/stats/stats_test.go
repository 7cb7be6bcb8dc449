package stats_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcat-go/internal/mcat"
	"mcat-go/internal/stats"
	"mcat-go/internal/testutil"
)

func TestDerive_Empty(t *testing.T) {
	d := stats.NewDeriver(testutil.NewFakeHeaderReader())

	got, err := d.Derive(nil, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, mcat.EmptyStats(), got)
	assert.Equal(t, 0, got.ObservationCount)
	assert.Equal(t, "---", got.FirstObservation)
	assert.Equal(t, "---", got.LastObservation)
	assert.Equal(t, " ", got.ShortCode)
}

func TestDerive_TenFilesOverThirtyDays(t *testing.T) {
	dir := t.TempDir()
	headers := testutil.NewFakeHeaderReader()

	var names []string
	for i := 0; i < 10; i++ {
		name := "g10p62_" + string(rune('0'+i)) + "8900000.fits"
		names = append(names, name)
	}
	// Epochs ascend with the name; only the boundary headers matter.
	headers.SetObservation(names[0], "2020-01-01T00:00:00", -1.0)
	headers.SetObservation(names[9], "2020-01-31T00:00:00", 4.5)
	files := testutil.WriteObservationFiles(t, dir, names...)

	got, err := stats.NewDeriver(headers).Derive(files, dir)
	require.NoError(t, err)
	assert.Equal(t, 10, got.ObservationCount)
	assert.Equal(t, "2020-01-01T00:00:00", got.FirstObservation)
	assert.Equal(t, "2020-01-31T00:00:00", got.LastObservation)
	assert.InDelta(t, 10.0, got.MeanCadencePerMonth, 1e-9)
	assert.InDelta(t, 4.5, got.SystemicVelocity, 1e-9, "velocity comes from the latest file")
	assert.Equal(t, "g10p62", got.ShortCode)
}

func TestDerive_ShuffleInvariant(t *testing.T) {
	dir := t.TempDir()
	headers := testutil.NewFakeHeaderReader()
	names := []string{
		"w51_591000000.fits",
		"w51_589500000.fits",
		"w51_600250000.fits",
		"w51_593000000.fits",
		"w51_590000000.fits",
	}
	headers.SetObservation("w51_589500000.fits", "2021-01-01T00:00:00", 55.0)
	headers.SetObservation("w51_600250000.fits", "2022-01-01T00:00:00", 57.0)
	files := testutil.WriteObservationFiles(t, dir, names...)

	want, err := stats.NewDeriver(headers).Derive(files, dir)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]string(nil), files...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got, err := stats.NewDeriver(headers).Derive(shuffled, dir)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDerive_SingleFile(t *testing.T) {
	dir := t.TempDir()
	headers := testutil.NewFakeHeaderReader()
	headers.SetObservation("s255_591000000.fits", "2020-05-05T12:00:00", 5.0)
	files := testutil.WriteObservationFiles(t, dir, "s255_591000000.fits")

	got, err := stats.NewDeriver(headers).Derive(files, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ObservationCount)
	assert.Equal(t, got.FirstObservation, got.LastObservation)
	assert.Equal(t, 0.0, got.MeanCadencePerMonth)
}

func TestDerive_FlaggedBoundaryExcluded(t *testing.T) {
	dir := t.TempDir()
	headers := testutil.NewFakeHeaderReader()
	names := []string{
		"g10p62_589000000.fits",
		"g10p62_590000000.fits",
		"g10p62_591000000.fits",
		"g10p62_592000000noedt.fits",
	}
	headers.SetObservation(names[1], "2020-02-01T00:00:00", 1.0)
	headers.SetObservation(names[2], "2020-03-02T00:00:00", 2.0)
	files := testutil.WriteObservationFiles(t, dir, names...)
	testutil.WriteFlagFile(t, dir, names[0])

	got, err := stats.NewDeriver(headers).Derive(files, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ObservationCount)
	assert.Equal(t, "2020-02-01T00:00:00", got.FirstObservation)
	assert.Equal(t, "2020-03-02T00:00:00", got.LastObservation)
	assert.InDelta(t, 2.0, got.SystemicVelocity, 1e-9)
}

func TestDerive_EverythingFlagged(t *testing.T) {
	dir := t.TempDir()
	files := testutil.WriteObservationFiles(t, dir, "g10p62_589000000.fits")
	testutil.WriteFlagFile(t, dir, "g10p62_589000000.fits")

	got, err := stats.NewDeriver(testutil.NewFakeHeaderReader()).Derive(files, dir)
	require.NoError(t, err)
	assert.Equal(t, mcat.EmptyStats(), got)
}

func TestDerive_Errors(t *testing.T) {
	t.Run("malformed name", func(t *testing.T) {
		dir := t.TempDir()
		files := testutil.WriteObservationFiles(t, dir, "notes.fits")

		_, err := stats.NewDeriver(testutil.NewFakeHeaderReader()).Derive(files, dir)
		assert.ErrorIs(t, err, mcat.ErrMalformedFilename)
	})

	t.Run("missing velocity", func(t *testing.T) {
		dir := t.TempDir()
		headers := testutil.NewFakeHeaderReader()
		headers.Set("a_591000000.fits", map[string]any{"DATE-OBS": "2020-01-01T00:00:00"})
		files := testutil.WriteObservationFiles(t, dir, "a_591000000.fits")

		_, err := stats.NewDeriver(headers).Derive(files, dir)
		assert.ErrorIs(t, err, mcat.ErrMissingMetadata)
	})
}

func TestDeriver_CheckName(t *testing.T) {
	d := stats.NewDeriver(testutil.NewFakeHeaderReader())

	assert.NoError(t, d.CheckName("/in/g10p62_591000000.fits"))
	assert.ErrorIs(t, d.CheckName("g10p62_bad.fits"), mcat.ErrMalformedFilename)
	assert.ErrorIs(t, d.CheckName("notes.fits"), mcat.ErrMalformedFilename)
}

func TestCadence(t *testing.T) {
	tests := []struct {
		name        string
		first, last string
		count       int
		want        float64
	}{
		{name: "ten over thirty days", first: "2020-01-01T00:00:00", last: "2020-01-31T00:00:00", count: 10, want: 10},
		{name: "zero span", first: "2020-01-01T00:00:00", last: "2020-01-01T00:00:00", count: 3, want: 0},
		{name: "negative span", first: "2020-02-01T00:00:00", last: "2020-01-01T00:00:00", count: 3, want: 0},
		{name: "rounded to three decimals", first: "2020-01-01", last: "2020-01-08", count: 2, want: 8.571},
		{name: "fractional seconds", first: "2020-01-01T00:00:00.000", last: "2020-01-16T00:00:00.500", count: 1, want: 2},
		{name: "rfc3339 with zone", first: "2020-01-01T00:00:00Z", last: "2020-01-31T00:00:00+00:00", count: 5, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stats.Cadence(tt.first, tt.last, tt.count)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, err := stats.Cadence("yesterday", "2020-01-01", 1)
	assert.Error(t, err)
}

func TestParseTimestamp_NoZoneIsUTC(t *testing.T) {
	ts, err := stats.ParseTimestamp("2020-01-01T10:00:00")
	require.NoError(t, err)
	assert.Equal(t, "UTC", ts.Location().String())
}
