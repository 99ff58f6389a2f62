package tracker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShipmentApi(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	server := httptest.NewServer(service.Router())
	defer server.Close()

	body, err := json.Marshal(map[string]string{
		"office_code":          "JMKCT",
		"year":                 "2026",
		"commercial_reference": "CBJ286",
		"trn":                  "1203709130000",
		"tracking_role":        "Importer",
	})
	require.NoError(t, err)

	res, err := http.Post(server.URL+"/shipments", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var created shipmentJson
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	require.Equal(t, "CBJ286", created.CommercialReference)
	require.Equal(t, "Importer", created.TrackingRole)
	require.Equal(t, "Pending", created.Status)
	require.Nil(t, created.CustomsReference)

	res, err = http.Get(server.URL + "/shipments")
	require.NoError(t, err)
	defer res.Body.Close()
	var listed []shipmentJson
	require.NoError(t, json.NewDecoder(res.Body).Decode(&listed))
	require.Len(t, listed, 1)

	res, err = http.Get(fmt.Sprintf("%s/shipments/%d/statuses", server.URL, created.Id))
	require.NoError(t, err)
	defer res.Body.Close()
	var statuses []statusEntryJson
	require.NoError(t, json.NewDecoder(res.Body).Decode(&statuses))
	require.Empty(t, statuses)

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/shipments/%d", server.URL, created.Id), nil)
	require.NoError(t, err)
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	res, err = http.Get(fmt.Sprintf("%s/shipments/%d", server.URL, created.Id))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCreateShipmentValidation(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	server := httptest.NewServer(service.Router())
	defer server.Close()

	res, err := http.Post(server.URL+"/shipments", "application/json", bytes.NewReader([]byte(`{"year":"2026"}`)))
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}
