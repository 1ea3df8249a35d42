package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	invoicing "invoicing-cloud/internal/invoicing/domain"
	profiles "invoicing-cloud/internal/profiles/domain"
)

func printInvoiceTable(w io.Writer, invoices []*invoicing.Invoice) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLIENT\tDUE\tSTATUS\tTOTAL\tREMAINING")
	for _, inv := range invoices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			inv.ID(), inv.ClientName(), inv.DueDate(), inv.Status(),
			invoicing.FormatMoney(inv.Total()), invoicing.FormatMoney(inv.RemainingBalance()))
	}
	return tw.Flush()
}

func printInvoice(w io.Writer, inv *invoicing.Invoice) error {
	fmt.Fprintf(w, "Invoice  %s\n", inv.ID())
	fmt.Fprintf(w, "Client   %s <%s>\n", inv.ClientName(), inv.ClientEmail())
	fmt.Fprintf(w, "Address  %s\n", inv.BillingAddress())
	fmt.Fprintf(w, "Due      %s\n", inv.DueDate())
	fmt.Fprintf(w, "Status   %s\n", inv.Status())
	if extra := inv.ExtraInformation(); extra != "" {
		fmt.Fprintf(w, "Notes    %s\n", extra)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ITEM\tQTY\tPRICE\tSUBTOTAL\t")
	for _, item := range inv.Items() {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", item.Title, item.Quantity,
			invoicing.FormatMoney(item.UnitPrice), invoicing.FormatMoney(item.Subtotal()))
	}
	fmt.Fprintf(tw, "\t\tTOTAL\t%s\t\n", invoicing.FormatMoney(inv.Total()))
	for _, p := range inv.Payments() {
		fmt.Fprintf(tw, "%s\t%s\t\t-%s\t\n", p.Date.Format("2006-01-02"), p.Label, invoicing.FormatMoney(p.Amount))
	}
	fmt.Fprintf(tw, "\t\tREMAINING\t%s\t\n", invoicing.FormatMoney(inv.RemainingBalance()))
	if err := tw.Flush(); err != nil {
		return err
	}
	if inv.IsOverpaid() {
		fmt.Fprintln(w, "warning: invoice is overpaid")
	}
	return nil
}

func printValidation(w io.Writer, verr *invoicing.ValidationError) {
	fmt.Fprintln(w, "invoice is incomplete:")
	for _, f := range verr.Fields {
		fmt.Fprintf(w, "  %s %s\n", f.Field, f.Reason)
	}
}

func printSummary(w io.Writer, s invoicing.Summary) {
	fmt.Fprintf(w, "Invoices     %d (%d paid, %d unpaid, %d overpaid)\n", s.Count, s.Paid, s.Unpaid, s.Overpaid)
	fmt.Fprintf(w, "Billed       %s\n", invoicing.FormatMoney(s.Billed))
	fmt.Fprintf(w, "Revenue      %s\n", invoicing.FormatMoney(s.Revenue))
	fmt.Fprintf(w, "Received     %s\n", invoicing.FormatMoney(s.Received))
	fmt.Fprintf(w, "Outstanding  %s\n", invoicing.FormatMoney(s.Outstanding))
}

func printProfile(w io.Writer, p profiles.Profile) {
	fmt.Fprintln(w, p.DisplayName())
	fmt.Fprintf(w, "Name      %s %s\n", p.FirstName, p.LastName)
	if p.BusinessName != "" {
		fmt.Fprintf(w, "Business  %s\n", p.BusinessName)
	}
	if p.Address != "" {
		fmt.Fprintf(w, "Address   %s\n", p.Address)
	}
	if p.ProfilePicture != "" {
		fmt.Fprintf(w, "Picture   %s\n", p.ProfilePicture)
	}
}

func printAccounts(w io.Writer, accounts []profiles.Account) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tNUMBER\tBANK\tPAYPAL")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.AccountName, a.AccountNumber, a.BankName, a.PayPalID)
	}
	return tw.Flush()
}
