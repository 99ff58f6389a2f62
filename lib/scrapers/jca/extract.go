package jca

import (
	"errors"
	"fmt"
	"strings"

	"brokertrack-backend/lib/htmlutil"
	"brokertrack-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

var ErrMalformedResults = errors.New("portal response is missing the results container")

// detail-field labels in their normalized (uppercased, colon-stripped)
// form
const (
	DetailCustomsReference = "CUSTOMS REFERENCE"
	DetailImporterName     = "IMPORTER NAME"
	DetailCustomsRelease   = "CUSTOMS RELEASE"
	DetailCustomsExitNote  = "CUSTOMS EXIT NOTE"
	DetailLaneAssigned     = "LANE ASSIGNED"
)

// AssignedUnit is one row of the portal's processing-unit table: an
// internal customs unit (e.g. "Valuation Branch") and its progress on
// the declaration. Dates are kept as the portal's free text.
type AssignedUnit struct {
	Unit          string
	DateAssigned  string
	DateCompleted string
	Status        string
}

// Result is the normalized form of one search response. NotFound set
// means the portal explicitly reported no matching declaration, which
// is a terminal answer, not an error.
type Result struct {
	NotFound      bool
	Details       map[string]string
	AssignedUnits []AssignedUnit
}

func (r Result) Detail(key string) string {
	return r.Details[key]
}

// Extractor turns raw portal markup into a Result. The portal's HTML
// is not a stable API, implementations are expected to extract what
// they can rather than abort on unexpected structure.
type Extractor interface {
	Extract(markup string) (Result, error)
}

// DocumentExtractor is the default Extractor, built on a structural
// HTML parse of the two result containers.
type DocumentExtractor struct{}

func (DocumentExtractor) Extract(markup string) (Result, error) {
	if strings.Contains(markup, "ui-messages-error") ||
		strings.Contains(markup, "No records found") {
		return Result{NotFound: true}, nil
	}
	if !strings.Contains(markup, "declarationDetails") &&
		!strings.Contains(markup, "DECLARATION DETAILS") {
		return Result{}, ErrMalformedResults
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResults, err)
	}

	details := map[string]string{}
	doc.Find("table#declarationDetails tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		key := textutil.NormalizeLabel(htmlutil.CellText(cells.First()))
		var values []string
		cells.Slice(1, cells.Length()).Each(func(_ int, cell *goquery.Selection) {
			if v := htmlutil.CellText(cell); v != "" {
				values = append(values, v)
			}
		})
		value := strings.Join(values, " ")
		if key != "" && value != "" {
			details[key] = value
		}
	})

	var units []AssignedUnit
	doc.Find("table.dataTable tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		// rows missing columns are skipped, never fatal
		if cells.Length() < 4 {
			return
		}
		units = append(units, AssignedUnit{
			Unit:          htmlutil.CellText(cells.Eq(0)),
			DateAssigned:  htmlutil.CellText(cells.Eq(1)),
			DateCompleted: htmlutil.CellText(cells.Eq(2)),
			Status:        htmlutil.CellText(cells.Eq(3)),
		})
	})

	return Result{
		Details:       details,
		AssignedUnits: units,
	}, nil
}
