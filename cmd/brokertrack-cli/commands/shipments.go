package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"brokertrack-backend/services/tracker"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(shipmentsCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(statusesCmd)

	addCmd.Flags().StringVar(&addOffice, "office", "", "Customs office code, e.g. JMKCT.")
	addCmd.Flags().StringVar(&addYear, "year", "", "Filing year.")
	addCmd.Flags().StringVar(&addRef, "ref", "", "Commercial reference.")
	addCmd.Flags().StringVar(&addTrn, "trn", "", "Taxpayer registration number.")
	addCmd.Flags().StringVar(&addRole, "role", "Declarant", "Tracking role (Declarant, Importer or Broker).")
	addCmd.MarkFlagRequired("office")
	addCmd.MarkFlagRequired("ref")
	addCmd.MarkFlagRequired("trn")
}

func fatalcmd(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

var shipmentsCmd = &cobra.Command{
	Use:   "shipments",
	Short: "Lists tracked shipments.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService()
		defer cleanup()

		shipments, err := service.ListShipments(cmd.Context())
		if err != nil {
			fatalcmd(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Id", "Office", "Year", "Reference", "Role", "Status", "Customs Ref", "Last Scraped"})
		for _, s := range shipments {
			lastScraped := ""
			if s.LastScrapedAt.Valid {
				lastScraped = time.Unix(s.LastScrapedAt.Int64, 0).Format(time.DateTime)
			}
			t.AppendRow(table.Row{
				s.ID, s.OfficeCode, s.Year, s.CommercialReference,
				s.TrackingRole, s.Status, s.CustomsReference.String, lastScraped,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}

var addOffice, addYear, addRef, addTrn, addRole string

var addCmd = &cobra.Command{
	Use:   "add --office <code> --ref <reference> --trn <trn> [--year <year>] [--role <role>]",
	Short: "Starts tracking a declaration.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cleanup := openService()
		defer cleanup()

		shipment, err := service.CreateShipment(cmd.Context(), tracker.NewShipment{
			OfficeCode:          addOffice,
			Year:                addYear,
			CommercialReference: addRef,
			Trn:                 addTrn,
			TrackingRole:        addRole,
		})
		if err != nil {
			fatalcmd(err)
		}
		fmt.Printf("tracking shipment %d (%s)\n", shipment.ID, shipment.CommercialReference)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Stops tracking a shipment and discards its status entries.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fatalcmd(err)
		}

		service, cleanup := openService()
		defer cleanup()

		if err := service.DeleteShipment(cmd.Context(), id); err != nil {
			fatalcmd(err)
		}
	},
}

var statusesCmd = &cobra.Command{
	Use:   "statuses <id>",
	Short: "Prints the stored status entries for a shipment.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fatalcmd(err)
		}

		service, cleanup := openService()
		defer cleanup()

		entries, err := service.ListStatusEntries(cmd.Context(), id)
		if err != nil {
			fatalcmd(err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Key", "Value", "Assigned", "Completed"})
		for _, e := range entries {
			t.AppendRow(table.Row{
				e.StatusType, e.StatusValue,
				e.DateTimeAssigned.String, e.DateTimeCompleted.String,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
