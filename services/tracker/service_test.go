package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"brokertrack-backend/lib/scrapers/jca"

	"github.com/stretchr/testify/require"
)

const trackerPage = `<html><body>
<form id="dec-trk">
<input type="hidden" name="javax.faces.ViewState" value="tok-1234" />
</form>
</body></html>`

const releasedPage = `<html><body>
<table id="declarationDetails">
<tr><td>Customs Reference:</td><td>2026 JMKIN C 67890</td></tr>
<tr><td>Importer Name:</td><td>BLUE MOUNTAIN IMPORTS</td></tr>
<tr><td>Customs Release:</td><td>Generated</td></tr>
<tr><td>Customs Exit Note:</td><td>Generated</td></tr>
</table>
<table class="dataTable"><tbody></tbody></table>
</body></html>`

const notFoundPage = `<html><body>
<div class="ui-messages-error">No records found for the given criteria.</div>
</body></html>`

// a fake declaration-tracker portal serving the session page on GET
// and canned results on POST, keyed by commercial reference
func fakePortal(t *testing.T, failSessionFor *atomic.Int64, shipmentRefs map[string]string) *httptest.Server {
	var gets atomic.Int64
	server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			n := gets.Add(1)
			if failSessionFor != nil && n == failSessionFor.Load() {
				conn, _, err := w.(http.Hijacker).Hijack()
				require.NoError(t, err)
				conn.Close()
				return
			}
			w.Write([]byte(trackerPage))
			return
		}

		require.NoError(t, r.ParseForm())
		require.Equal(t, "tok-1234", r.PostForm.Get("javax.faces.ViewState"))
		page, ok := shipmentRefs[r.PostForm.Get("dec-trk:comRef")]
		require.True(t, ok, "unexpected reference %q", r.PostForm.Get("dec-trk:comRef"))
		w.Write([]byte(page))
	}))
	// the hijacked connection must be a fresh one: the transport
	// silently retries idempotent requests that die on a reused
	// keep-alive connection, which would defeat the fault injection
	server.Config.SetKeepAlivesEnabled(false)
	server.Start()
	return server
}

func TestScrapePipeline(t *testing.T) {
	server := fakePortal(t, nil, map[string]string{
		"CBJ286": releasedPage,
	})
	defer server.Close()

	service, cleanup := setupTestService(t)
	defer cleanup()
	service.portal = jca.NewClient(jca.ClientOptions{
		BaseUrl: server.URL,
		Timeout: time.Second * 5,
	})
	ctx := context.Background()

	shipment := createTestShipment(t, service, "CBJ286")

	batch, err := service.ScrapeBatch(ctx, shipment.ID)
	require.NoError(t, err)
	require.Equal(t, "Scraped 1 shipment(s)", batch.Message)
	require.Len(t, batch.Results, 1)
	require.True(t, batch.Results[0].Success)
	require.Equal(t, jca.StatusReleased, batch.Results[0].Status)

	stored, err := service.GetShipment(ctx, shipment.ID)
	require.NoError(t, err)
	require.Equal(t, string(jca.StatusReleased), stored.Status)
	require.Equal(t, "2026 JMKIN C 67890", stored.CustomsReference.String)

	entries, err := service.ListStatusEntries(ctx, shipment.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// a released shipment is terminal, the next full cycle skips it
	batch, err = service.ScrapeBatch(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, batch.Results)
}

func TestScrapeNotFound(t *testing.T) {
	server := fakePortal(t, nil, map[string]string{
		"GHOST1": notFoundPage,
	})
	defer server.Close()

	service, cleanup := setupTestService(t)
	defer cleanup()
	service.portal = jca.NewClient(jca.ClientOptions{
		BaseUrl: server.URL,
		Timeout: time.Second * 5,
	})
	ctx := context.Background()

	shipment := createTestShipment(t, service, "GHOST1")

	batch, err := service.ScrapeBatch(ctx, shipment.ID)
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	require.Equal(t, jca.StatusNotValid, batch.Results[0].Status)

	stored, err := service.GetShipment(ctx, shipment.ID)
	require.NoError(t, err)
	require.Equal(t, string(jca.StatusNotValid), stored.Status)

	entries, err := service.ListStatusEntries(ctx, shipment.ID)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestScrapeBatchPartialFailure(t *testing.T) {
	// the second shipment's session acquisition dies mid-connection,
	// the other two must still be processed
	var failSecond atomic.Int64
	failSecond.Store(2)

	server := fakePortal(t, &failSecond, map[string]string{
		"REF-A": releasedPage,
		"REF-C": releasedPage,
	})
	defer server.Close()

	service, cleanup := setupTestService(t)
	defer cleanup()
	service.portal = jca.NewClient(jca.ClientOptions{
		BaseUrl: server.URL,
		Timeout: time.Second * 5,
	})
	ctx := context.Background()

	createTestShipment(t, service, "REF-A")
	createTestShipment(t, service, "REF-B")
	createTestShipment(t, service, "REF-C")

	batch, err := service.ScrapeBatch(ctx, 0)
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)

	require.True(t, batch.Results[0].Success)
	require.Equal(t, "REF-A", batch.Results[0].Ref)

	require.False(t, batch.Results[1].Success)
	require.Equal(t, "REF-B", batch.Results[1].Ref)
	require.Contains(t, batch.Results[1].Error, "portal unreachable")

	require.True(t, batch.Results[2].Success)
	require.Equal(t, "REF-C", batch.Results[2].Ref)
}

func TestScrapeMalformedLeavesShipmentUntouched(t *testing.T) {
	server := fakePortal(t, nil, map[string]string{
		"REF-M": "<html><body><h1>Scheduled Maintenance</h1></body></html>",
	})
	defer server.Close()

	service, cleanup := setupTestService(t)
	defer cleanup()
	service.portal = jca.NewClient(jca.ClientOptions{
		BaseUrl: server.URL,
		Timeout: time.Second * 5,
	})
	ctx := context.Background()

	shipment := createTestShipment(t, service, "REF-M")

	batch, err := service.ScrapeBatch(ctx, shipment.ID)
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	require.False(t, batch.Results[0].Success)

	// nothing was written, the shipment stays eligible for retry
	stored, err := service.GetShipment(ctx, shipment.ID)
	require.NoError(t, err)
	require.Equal(t, string(jca.StatusPending), stored.Status)
	require.False(t, stored.LastScrapedAt.Valid)
}
