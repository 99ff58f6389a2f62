package jca

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/tracker.html
var trackerHtml string

func TestAcquireSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "E8A1B0C5D2F3"})
		w.Write([]byte(trackerHtml))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})

	session, err := client.AcquireSession(context.Background())
	require.NoError(t, err)
	require.Equal(t, "E8A1B0C5D2F3", session.JsessionId)
	require.Equal(t, "3222866227983918773:5263958733321446443", session.ViewState)
}

func TestAcquireSessionMissingViewState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(maintenanceHtml))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})

	_, err := client.AcquireSession(context.Background())
	require.ErrorIs(t, err, ErrMissingViewState)
}

func TestAcquireSessionUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(ClientOptions{
		BaseUrl: server.URL,
		Timeout: time.Second,
	})

	_, err := client.AcquireSession(context.Background())
	require.ErrorIs(t, err, ErrPortalUnreachable)
}

func TestSearchDeclaration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())

		cookie, err := r.Cookie("JSESSIONID")
		require.NoError(t, err)
		require.Equal(t, "E8A1B0C5D2F3", cookie.Value)

		require.Equal(t, "dec-trk", r.PostForm.Get("dec-trk"))
		require.Equal(t, "JMKCT", r.PostForm.Get("dec-trk:offices"))
		require.Equal(t, "2026", r.PostForm.Get("dec-trk:year"))
		require.Equal(t, "CBJ286", r.PostForm.Get("dec-trk:comRef"))
		require.Equal(t, "1203709130000", r.PostForm.Get("dec-trk:trn"))
		require.Equal(t, "true", r.PostForm.Get("dec-trk:declarant"))
		require.Equal(t, "Search", r.PostForm.Get("dec-trk:j_idt63"))
		require.Equal(t, "state-token", r.PostForm.Get("javax.faces.ViewState"))

		w.Write([]byte(resultsHtml))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})
	session := Session{JsessionId: "E8A1B0C5D2F3", ViewState: "state-token"}

	markup, err := client.SearchDeclaration(context.Background(), session, Query{
		OfficeCode:          "JMKCT",
		Year:                "2026",
		CommercialReference: "CBJ286",
		Trn:                 "1203709130000",
		Role:                "Broker",
	})
	require.NoError(t, err)
	require.Equal(t, resultsHtml, markup)
}

func TestSearchDeclarationImporterRole(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "false", r.PostForm.Get("dec-trk:declarant"))
		w.Write([]byte(resultsHtml))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{BaseUrl: server.URL})

	_, err := client.SearchDeclaration(context.Background(), Session{ViewState: "v"}, Query{
		Role: RoleImporter,
	})
	require.NoError(t, err)
}
