package jca

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/results.html
var resultsHtml string

//go:embed testdata/released.html
var releasedHtml string

//go:embed testdata/notfound.html
var notfoundHtml string

//go:embed testdata/maintenance.html
var maintenanceHtml string

func TestExtractDetails(t *testing.T) {
	res, err := DocumentExtractor{}.Extract(resultsHtml)
	require.NoError(t, err)
	require.False(t, res.NotFound)

	want := map[string]string{
		"CUSTOMS REFERENCE": "2026 JMKIN C 12345",
		"IMPORTER NAME":     "ISLAND TRADING CO LTD",
		"LANE ASSIGNED":     "Green",
		"CUSTOMS RELEASE":   "Pending",
	}
	if diff := cmp.Diff(want, res.Details); diff != "" {
		t.Fatalf("details mismatch (-want +got):\n%s", diff)
	}

	// the empty exit note cell must not produce an entry
	require.Equal(t, "", res.Detail(DetailCustomsExitNote))
}

func TestExtractAssignedUnits(t *testing.T) {
	res, err := DocumentExtractor{}.Extract(resultsHtml)
	require.NoError(t, err)

	// the colspan filler row has fewer than 4 cells and is skipped,
	// the rows around it still come through in order
	want := []AssignedUnit{
		{
			Unit:          "Valuation Branch",
			DateAssigned:  "2026-02-10 09:14",
			DateCompleted: "2026-02-11 16:02",
			Status:        "Completed",
		},
		{
			Unit:         "Risk Management Unit",
			DateAssigned: "2026-02-11 08:30",
			Status:       "Pending",
		},
	}
	if diff := cmp.Diff(want, res.AssignedUnits); diff != "" {
		t.Fatalf("units mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractNotFound(t *testing.T) {
	res, err := DocumentExtractor{}.Extract(notfoundHtml)
	require.NoError(t, err)
	require.True(t, res.NotFound)
	require.Empty(t, res.Details)
	require.Empty(t, res.AssignedUnits)
}

func TestExtractNotFoundPhrase(t *testing.T) {
	res, err := DocumentExtractor{}.Extract("<html><body>No records found</body></html>")
	require.NoError(t, err)
	require.True(t, res.NotFound)
}

func TestExtractMalformed(t *testing.T) {
	_, err := DocumentExtractor{}.Extract(maintenanceHtml)
	require.ErrorIs(t, err, ErrMalformedResults)
}
