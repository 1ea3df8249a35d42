// Command invoicectl is a terminal front-end for the invoicing API.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "invoicectl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "invoicectl",
		Usage: "create, track and download invoices",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "billing API base URL",
				Value:   "http://localhost:8080",
				EnvVars: []string{"INVOICECTL_SERVER"},
			},
			&cli.StringFlag{
				Name:    "session",
				Usage:   "session file",
				Value:   defaultSessionPath(),
				EnvVars: []string{"INVOICECTL_SESSION"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "per-request timeout",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log requests to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: runRegister,
			},
			{
				Name:  "login",
				Usage: "log in and store the session",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: runLogin,
			},
			{
				Name:   "logout",
				Usage:  "forget the stored session",
				Action: runLogout,
			},
			invoiceCommands(),
			profileCommands(),
			accountCommands(),
		},
	}
}

func invoiceCommands() *cli.Command {
	return &cli.Command{
		Name:    "invoices",
		Aliases: []string{"inv"},
		Usage:   "manage invoices",
		Subcommands: []*cli.Command{
			{Name: "list", Usage: "list invoices", Action: runInvoiceList},
			{Name: "show", Usage: "show one invoice", ArgsUsage: "ID", Action: runInvoiceShow},
			{
				Name:  "create",
				Usage: "create an invoice",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "client", Usage: "client name"},
					&cli.StringFlag{Name: "email", Usage: "client email"},
					&cli.StringFlag{Name: "due", Usage: "due date YYYY-MM-DD"},
					&cli.StringFlag{Name: "address", Usage: "billing address"},
					&cli.StringFlag{Name: "extra", Usage: "extra information"},
					&cli.StringSliceFlag{Name: "item", Usage: "line item TITLE[:QTY[:PRICE]], repeatable"},
				},
				Action: runInvoiceCreate,
			},
			{Name: "pay", Usage: "mark an invoice paid", ArgsUsage: "ID", Action: runInvoicePay},
			{
				Name:      "payment",
				Usage:     "record a payment",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "amount", Required: true},
					&cli.StringFlag{Name: "label"},
					&cli.StringFlag{Name: "date", Usage: "YYYY-MM-DD"},
				},
				Action: runInvoicePayment,
			},
			{Name: "delete", Usage: "delete an invoice", ArgsUsage: "ID", Action: runInvoiceDelete},
			{
				Name:      "download",
				Usage:     "download an invoice document",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "pdf", Usage: "pdf or xlsx"},
					&cli.StringFlag{Name: "out", Usage: "output file"},
				},
				Action: runInvoiceDownload,
			},
			{
				Name:  "export",
				Usage: "download a spreadsheet of all invoices",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: "invoices.xlsx"},
				},
				Action: runInvoiceExport,
			},
			{Name: "summary", Usage: "show totals", Action: runInvoiceSummary},
		},
	}
}

func profileCommands() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "manage your business profile",
		Subcommands: []*cli.Command{
			{Name: "show", Usage: "show the profile", Action: runProfileShow},
			{
				Name:  "set",
				Usage: "create or update the profile",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first"},
					&cli.StringFlag{Name: "last"},
					&cli.StringFlag{Name: "business"},
					&cli.StringFlag{Name: "address"},
				},
				Action: runProfileSet,
			},
			{Name: "picture", Usage: "upload a profile picture", ArgsUsage: "FILE", Action: runProfilePicture},
		},
	}
}

func accountCommands() *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "manage payout accounts",
		Subcommands: []*cli.Command{
			{Name: "list", Usage: "list accounts", Action: runAccountList},
			{
				Name:  "add",
				Usage: "add an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "number", Required: true},
					&cli.StringFlag{Name: "bank", Required: true},
					&cli.StringFlag{Name: "paypal"},
				},
				Action: runAccountAdd,
			},
			{Name: "remove", Usage: "remove an account", ArgsUsage: "ID", Action: runAccountRemove},
		},
	}
}
