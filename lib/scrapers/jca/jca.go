package jca

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"brokertrack-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/jca")

// DefaultBaseUrl is the JCA (Jamaica Customs Agency) declaration
// tracker, a JSF application with no JSON API.
const DefaultBaseUrl = "https://jets.jacustoms.gov.jm/portal/services/document-tracking/declaration-tracker.jsf"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// RoleImporter submits the search as importer; every other tracking
// role submits as declarant.
const RoleImporter = "Importer"

var ErrPortalUnreachable = errors.New("portal unreachable")
var ErrMissingViewState = errors.New("could not find ViewState field on portal page")

// TransportConfig controls the TLS downgrades needed to talk to the
// portal. The server negotiates weak Diffie-Hellman parameters that
// modern TLS stacks reject with their default settings.
type TransportConfig struct {
	AllowWeakCiphers   bool `json:"allow_weak_ciphers"`
	RejectUnauthorized bool `json:"reject_unauthorized"`
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl   string
	Transport TransportConfig
	// defaults to 25s, the portal routinely takes >10s to respond
	Timeout time.Duration
}

type Client struct {
	baseUrl string
	http    *resty.Client
}

func NewClient(opts ClientOptions) *Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 25
	}

	client := resty.New()
	// the session cookie is carried explicitly per search, a shared
	// jar would leak one shipment's session into the next
	client.SetCookieJar(nil)
	client.SetTimeout(timeout)
	client.SetHeader("User-Agent", browserUserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetHeader("Accept-Language", "en-US,en;q=0.5")
	client.SetTLSClientConfig(tlsConfig(opts.Transport))

	telemetry.InstrumentResty(client, "scrapers/jca/http")

	return &Client{
		baseUrl: baseUrl,
		http:    client,
	}
}

func tlsConfig(cfg TransportConfig) *tls.Config {
	out := &tls.Config{
		InsecureSkipVerify: !cfg.RejectUnauthorized,
	}
	if cfg.AllowWeakCiphers {
		out.MinVersion = tls.VersionTLS10
		out.CipherSuites = weakCipherSuites()
	}
	return out
}

func weakCipherSuites() []uint16 {
	var ids []uint16
	for _, suite := range tls.CipherSuites() {
		ids = append(ids, suite.ID)
	}
	for _, suite := range tls.InsecureCipherSuites() {
		ids = append(ids, suite.ID)
	}
	return ids
}

// Session is the ephemeral state of one portal interaction: the
// server-assigned JSESSIONID plus the single-use ViewState token
// embedded in the page. The token is consumed by the one search it
// was acquired for and cannot be reused or retried.
type Session struct {
	JsessionId string
	ViewState  string
}

// AcquireSession fetches the tracker page anonymously and pulls out
// the session cookie and ViewState token. A fresh session is required
// before every single search.
func (c *Client) AcquireSession(ctx context.Context) (Session, error) {
	ctx, span := tracer.Start(ctx, "AcquireSession")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.baseUrl)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrPortalUnreachable, err)
	}

	var jsessionId string
	for _, cookie := range res.Cookies() {
		if cookie.Name == "JSESSIONID" {
			jsessionId = cookie.Value
			break
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMissingViewState, err)
	}
	viewState := doc.Find(`input[name="javax.faces.ViewState"]`).AttrOr("value", "")
	if viewState == "" {
		// a maintenance page or a layout change, either way nothing
		// can be submitted
		return Session{}, ErrMissingViewState
	}

	return Session{
		JsessionId: jsessionId,
		ViewState:  viewState,
	}, nil
}

type Query struct {
	OfficeCode          string
	Year                string
	CommercialReference string
	Trn                 string
	// see RoleImporter
	Role string
}

// SearchDeclaration submits one declaration search using the given
// session and returns the raw response markup. The session's
// ViewState is invalidated by this call regardless of outcome, a
// retry needs a new AcquireSession.
func (c *Client) SearchDeclaration(ctx context.Context, session Session, q Query) (string, error) {
	ctx, span := tracer.Start(ctx, "SearchDeclaration")
	defer span.End()

	declarant := "true"
	if q.Role == RoleImporter {
		declarant = "false"
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetCookie(&http.Cookie{Name: "JSESSIONID", Value: session.JsessionId}).
		SetFormData(map[string]string{
			"dec-trk":               "dec-trk",
			"dec-trk:offices":       q.OfficeCode,
			"dec-trk:year":          q.Year,
			"dec-trk:comRef":        q.CommercialReference,
			"dec-trk:trn":           q.Trn,
			"dec-trk:declarant":     declarant,
			"dec-trk:j_idt63":       "Search",
			"javax.faces.ViewState": session.ViewState,
		}).
		Post(c.baseUrl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPortalUnreachable, err)
	}

	return string(res.Body()), nil
}
