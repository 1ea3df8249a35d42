package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"invoicing-cloud/internal/billingclient"
	"invoicing-cloud/internal/frontdesk"
	invoicing "invoicing-cloud/internal/invoicing/domain"
	profiles "invoicing-cloud/internal/profiles/domain"
)

func newLogger(c *cli.Context) *log.Logger {
	if !c.Bool("verbose") {
		return log.New(io.Discard, "", 0)
	}
	return log.New(c.App.ErrWriter, "invoicectl ", log.LstdFlags)
}

func serverURL(c *cli.Context, sf sessionFile) string {
	if !c.IsSet("server") && sf.Server != "" {
		return sf.Server
	}
	return c.String("server")
}

// anonymousClient builds a client without a session.
func anonymousClient(c *cli.Context) (*billingclient.Client, error) {
	return billingclient.NewClient(c.String("server"), c.Duration("timeout"))
}

// sessionClient builds a client from the stored session.
func sessionClient(c *cli.Context) (*billingclient.Client, error) {
	sf, err := loadSession(c.String("session"))
	if err != nil {
		return nil, err
	}
	client, err := billingclient.NewClient(serverURL(c, sf), c.Duration("timeout"))
	if err != nil {
		return nil, err
	}
	newLogger(c).Printf("using session of %s at %s", sf.Session.Username, serverURL(c, sf))
	return client.WithSession(sf.Session), nil
}

func deskFor(c *cli.Context) (*frontdesk.Desk, *billingclient.Client, error) {
	client, err := sessionClient(c)
	if err != nil {
		return nil, nil, err
	}
	desk, err := frontdesk.New(client)
	if err != nil {
		return nil, nil, err
	}
	return desk, client, nil
}

func requireArg(c *cli.Context, name string) (string, error) {
	value := strings.TrimSpace(c.Args().First())
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}

func runRegister(c *cli.Context) error {
	client, err := anonymousClient(c)
	if err != nil {
		return err
	}
	user, err := client.Register(c.Context, c.String("username"), c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "registered %s (%s)\n", user.Username, user.ID)
	return nil
}

func runLogin(c *cli.Context) error {
	client, err := anonymousClient(c)
	if err != nil {
		return err
	}
	session, err := client.Login(c.Context, c.String("username"), c.String("password"))
	if err != nil {
		return err
	}
	path := c.String("session")
	if err := saveSession(path, sessionFile{Server: c.String("server"), Session: session}); err != nil {
		return err
	}
	newLogger(c).Printf("session stored in %s", path)
	fmt.Fprintf(c.App.Writer, "logged in as %s\n", session.Username)
	return nil
}

func runLogout(c *cli.Context) error {
	if err := clearSession(c.String("session")); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "logged out")
	return nil
}

func runInvoiceList(c *cli.Context) error {
	desk, _, err := deskFor(c)
	if err != nil {
		return err
	}
	invoices, err := desk.List(c.Context)
	if err != nil {
		return err
	}
	return printInvoiceTable(c.App.Writer, invoices)
}

func runInvoiceShow(c *cli.Context) error {
	id, err := requireArg(c, "invoice id")
	if err != nil {
		return err
	}
	desk, _, err := deskFor(c)
	if err != nil {
		return err
	}
	inv, err := desk.Open(c.Context, id)
	if err != nil {
		return err
	}
	return printInvoice(c.App.Writer, inv)
}

func runInvoiceCreate(c *cli.Context) error {
	draft, err := draftFromFlags(c)
	if err != nil {
		return err
	}
	desk, _, err := deskFor(c)
	if err != nil {
		return err
	}
	inv, err := desk.Submit(c.Context, draft)
	if err != nil {
		var verr *invoicing.ValidationError
		if errors.As(err, &verr) {
			printValidation(c.App.ErrWriter, verr)
		}
		return err
	}
	fmt.Fprintf(c.App.Writer, "created invoice %s\n", inv.ID())
	return printInvoice(c.App.Writer, inv)
}

func draftFromFlags(c *cli.Context) (*invoicing.Draft, error) {
	draft := invoicing.NewDraft()
	draft.ClientName = c.String("client")
	draft.ClientEmail = c.String("email")
	draft.BillingAddress = c.String("address")
	draft.ExtraInformation = c.String("extra")
	if raw := strings.TrimSpace(c.String("due")); raw != "" {
		due, err := invoicing.ParseDate(raw)
		if err != nil {
			return nil, err
		}
		draft.DueDate = due
	}
	for i, raw := range c.StringSlice("item") {
		index := 0
		if i > 0 {
			index = draft.AddItem()
		}
		if err := applyItemArg(draft, index, raw); err != nil {
			return nil, err
		}
	}
	return draft, nil
}

// applyItemArg parses TITLE[:QTY[:PRICE]]; the title may itself contain colons.
func applyItemArg(draft *invoicing.Draft, index int, raw string) error {
	parts := strings.Split(raw, ":")
	title := raw
	var qty, price string
	switch {
	case len(parts) >= 3:
		title = strings.Join(parts[:len(parts)-2], ":")
		qty, price = parts[len(parts)-2], parts[len(parts)-1]
	case len(parts) == 2:
		title, qty = parts[0], parts[1]
	}
	if err := draft.UpdateItem(index, invoicing.FieldTitle, strings.TrimSpace(title)); err != nil {
		return err
	}
	if qty != "" {
		if err := draft.UpdateItem(index, invoicing.FieldQuantity, qty); err != nil {
			return err
		}
	}
	if price != "" {
		if err := draft.UpdateItem(index, invoicing.FieldUnitPrice, price); err != nil {
			return err
		}
	}
	return nil
}

func runInvoicePay(c *cli.Context) error {
	id, err := requireArg(c, "invoice id")
	if err != nil {
		return err
	}
	desk, _, err := deskFor(c)
	if err != nil {
		return err
	}
	inv, err := desk.Open(c.Context, id)
	if err != nil {
		return err
	}
	if err := desk.MarkPaid(c.Context, inv); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "invoice %s is %s\n", inv.ID(), inv.Status())
	return nil
}

func runInvoicePayment(c *cli.Context) error {
	id, err := requireArg(c, "invoice id")
	if err != nil {
		return err
	}
	amount, err := invoicing.ParseMoney(c.String("amount"))
	if err != nil {
		return err
	}
	var date time.Time
	if raw := c.String("date"); raw != "" {
		day, err := invoicing.ParseDate(raw)
		if err != nil {
			return err
		}
		date = day.Time()
	}
	desk, _, err := deskFor(c)
	if err != nil {
		return err
	}
	inv, err := desk.Open(c.Context, id)
	if err != nil {
		return err
	}
	if err := desk.RecordPayment(c.Context, inv, amount, c.String("label"), date); err != nil {
		return err
	}
	balance := inv.BalanceReport()
	fmt.Fprintf(c.App.Writer, "recorded %s; paid %s, remaining %s\n",
		invoicing.FormatMoney(amount), invoicing.FormatMoney(balance.Paid), invoicing.FormatMoney(balance.Remaining))
	if balance.Overpaid {
		fmt.Fprintf(c.App.Writer, "warning: invoice is overpaid by %s\n", invoicing.FormatMoney(balance.Outstanding.Neg()))
	}
	return nil
}

func runInvoiceDelete(c *cli.Context) error {
	id, err := requireArg(c, "invoice id")
	if err != nil {
		return err
	}
	desk, _, err := deskFor(c)
	if err != nil {
		return err
	}
	inv, err := desk.Open(c.Context, id)
	if err != nil {
		return err
	}
	if err := desk.Delete(c.Context, inv); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "deleted invoice %s\n", id)
	return nil
}

func runInvoiceDownload(c *cli.Context) error {
	id, err := requireArg(c, "invoice id")
	if err != nil {
		return err
	}
	format := strings.ToLower(c.String("format"))
	desk, _, err := deskFor(c)
	if err != nil {
		return err
	}
	inv, err := desk.Open(c.Context, id)
	if err != nil {
		return err
	}
	data, err := desk.Download(c.Context, inv, format)
	if err != nil {
		return err
	}
	out := c.String("out")
	if out == "" {
		out = fmt.Sprintf("invoice_%s.%s", inv.ID(), format)
	}
	return writeOutput(c, out, data)
}

func runInvoiceExport(c *cli.Context) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	data, err := client.ExportInvoices(c.Context)
	if err != nil {
		return err
	}
	return writeOutput(c, c.String("out"), data)
}

func runInvoiceSummary(c *cli.Context) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	summary, err := client.Summary(c.Context)
	if err != nil {
		return err
	}
	printSummary(c.App.Writer, summary)
	return nil
}

func runProfileShow(c *cli.Context) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	profile, err := client.GetProfile(c.Context)
	if err != nil {
		return err
	}
	printProfile(c.App.Writer, profile)
	return nil
}

func runProfileSet(c *cli.Context) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	var update profiles.ProfileUpdate
	for flag, target := range map[string]**string{
		"first":    &update.FirstName,
		"last":     &update.LastName,
		"business": &update.BusinessName,
		"address":  &update.Address,
	} {
		if c.IsSet(flag) {
			value := c.String(flag)
			*target = &value
		}
	}
	profile, err := client.UpdateProfile(c.Context, update)
	if errors.Is(err, invoicing.ErrNotFound) {
		profile, err = client.CreateProfile(c.Context, profiles.ProfileInput{
			FirstName:    c.String("first"),
			LastName:     c.String("last"),
			BusinessName: c.String("business"),
			Address:      c.String("address"),
		})
	}
	if err != nil {
		return err
	}
	printProfile(c.App.Writer, profile)
	return nil
}

func runProfilePicture(c *cli.Context) error {
	path, err := requireArg(c, "picture file")
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	profile, err := client.UploadPicture(c.Context, filepath.Base(path), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "picture stored as %s\n", profile.ProfilePicture)
	return nil
}

func runAccountList(c *cli.Context) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	accounts, err := client.ListAccounts(c.Context)
	if err != nil {
		return err
	}
	return printAccounts(c.App.Writer, accounts)
}

func runAccountAdd(c *cli.Context) error {
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	account, err := client.CreateAccount(c.Context, profiles.AccountInput{
		AccountName:   c.String("name"),
		AccountNumber: c.String("number"),
		BankName:      c.String("bank"),
		PayPalID:      c.String("paypal"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "added account %s\n", account.ID)
	return nil
}

func runAccountRemove(c *cli.Context) error {
	id, err := requireArg(c, "account id")
	if err != nil {
		return err
	}
	client, err := sessionClient(c)
	if err != nil {
		return err
	}
	if err := client.DeleteAccount(c.Context, id); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "removed account %s\n", id)
	return nil
}

func writeOutput(c *cli.Context, path string, data []byte) error {
	if path == "-" {
		_, err := c.App.Writer.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s (%d bytes)\n", path, len(data))
	return nil
}
