package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var scrapeShipmentId *int64

func init() {
	scrapeShipmentId = scrapeCmd.Flags().Int64("shipment", 0, "Scrape a single shipment by id instead of all active ones.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--shipment <id>]",
	Short: "Runs one scrape cycle against the declaration tracker.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService()
		defer cleanup()

		batch, err := service.ScrapeBatch(cmd.Context(), *scrapeShipmentId)
		if err != nil {
			fatalcmd(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Reference", "Status", "Error"})
		for _, r := range batch.Results {
			status := string(r.Status)
			t.AppendRow(table.Row{r.ShipmentId, r.Ref, status, r.Error})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()

		fmt.Println(batch.Message)
	},
}
