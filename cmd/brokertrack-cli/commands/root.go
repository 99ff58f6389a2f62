package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"brokertrack-backend/lib/configutil"
	"brokertrack-backend/lib/scrapers/jca"
	"brokertrack-backend/lib/serviceutil"
	"brokertrack-backend/lib/sqliteutil"
	"brokertrack-backend/lib/telemetry"
	"brokertrack-backend/services/tracker"
	"brokertrack-backend/services/tracker/db"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brokertrack-cli",
	Short: "brokertrack-cli manages tracked declarations and runs scrapes against the JCA portal.",
}

func ExecuteContext(ctx context.Context) {
	telemetry.InitSlog(false)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type databaseConfig struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

type portalConfig struct {
	BaseUrl            string `json:"base_url"`
	AllowWeakCiphers   bool   `json:"allow_weak_ciphers"`
	RejectUnauthorized bool   `json:"reject_unauthorized"`
	TimeoutSeconds     int    `json:"timeout_seconds"`
}

type cliConfig struct {
	Database databaseConfig `json:"database"`
	Portal   portalConfig   `json:"portal"`
}

func openService() (tracker.Service, func()) {
	config, err := configutil.ReadRecursively[cliConfig]("config.json5")
	if os.IsNotExist(err) {
		// the live portal needs the TLS downgrade, see jca.TransportConfig
		config.Portal.AllowWeakCiphers = true
	} else if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	var database *sql.DB
	if config.Database.Url != "" {
		database, err = sqliteutil.OpenRemote(db.Schema, config.Database.Url, config.Database.AuthToken)
	} else {
		file := config.Database.File
		if file == "" {
			file = "brokertrack.db"
		}
		database, err = sqliteutil.OpenDB(db.Schema, file)
	}
	if err != nil {
		serviceutil.Fatal("failed to open database", err)
	}

	service := tracker.NewService(database, tracker.Options{
		Portal: jca.NewClient(jca.ClientOptions{
			BaseUrl: config.Portal.BaseUrl,
			Transport: jca.TransportConfig{
				AllowWeakCiphers:   config.Portal.AllowWeakCiphers,
				RejectUnauthorized: config.Portal.RejectUnauthorized,
			},
			Timeout: time.Duration(config.Portal.TimeoutSeconds) * time.Second,
		}),
	})
	return service, func() { database.Close() }
}
