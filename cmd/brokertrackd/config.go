package main

import (
	"database/sql"
	"time"

	"brokertrack-backend/lib/scrapers/jca"
	"brokertrack-backend/lib/sqliteutil"
	"brokertrack-backend/services/tracker/db"
)

type DatabaseConfig struct {
	// local sqlite file, used when no url is set
	File string `json:"file"`
	// hosted libsql url
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (c DatabaseConfig) Open() (*sql.DB, error) {
	if c.Url != "" {
		return sqliteutil.OpenRemote(db.Schema, c.Url, c.AuthToken)
	}
	file := c.File
	if file == "" {
		file = "brokertrack.db"
	}
	return sqliteutil.OpenDB(db.Schema, file)
}

type PortalConfig struct {
	BaseUrl            string `json:"base_url"`
	AllowWeakCiphers   bool   `json:"allow_weak_ciphers"`
	RejectUnauthorized bool   `json:"reject_unauthorized"`
	TimeoutSeconds     int    `json:"timeout_seconds"`
}

func (c PortalConfig) Client() *jca.Client {
	return jca.NewClient(jca.ClientOptions{
		BaseUrl: c.BaseUrl,
		Transport: jca.TransportConfig{
			AllowWeakCiphers:   c.AllowWeakCiphers,
			RejectUnauthorized: c.RejectUnauthorized,
		},
		Timeout: time.Duration(c.TimeoutSeconds) * time.Second,
	})
}

type Config struct {
	Database              DatabaseConfig `json:"database"`
	Portal                PortalConfig   `json:"portal"`
	ScrapeIntervalMinutes int            `json:"scrape_interval_minutes"`
	Port                  int            `json:"port"`
	Debug                 bool           `json:"debug"`
}

func (c Config) ScrapeInterval() time.Duration {
	minutes := c.ScrapeIntervalMinutes
	if minutes <= 0 {
		minutes = 10
	}
	return time.Duration(minutes) * time.Minute
}
