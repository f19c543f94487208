package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sangkips/ecs-receipts/internal/directory"
	"github.com/sangkips/ecs-receipts/internal/preview"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/internal/wizard"
)

type newOptions struct {
	empCode     string
	search      string
	investorID  string
	category    string
	fields      []string
	listOptions bool
	pdfPath     string
	logoPath    string
	save        bool
}

func (a *app) newCommand() *cobra.Command {
	var o newOptions
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Walk the receipt wizard non-interactively",
		Long: `Runs the four wizard steps from flags: employee, investor, product and
preview. Fields are applied in order, so set issuer before scheme:

  receiptctl new --investor INV001 --category MF \
    --set issuer="ABC Mutual Fund" --set scheme="Growth Fund" \
    --set investmentAmount=50000 --pdf receipt.pdf --save`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runNew(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.empCode, "emp", "", "employee code (defaults to the signed-in employee)")
	f.StringVar(&o.search, "search", "", "list investors matching this text and stop")
	f.StringVar(&o.investorID, "investor", "", "investor id")
	f.StringVar(&o.category, "category", "", "product category: MF, FD, INS, BOND, NCD or IPO")
	f.StringArrayVar(&o.fields, "set", nil, "product field as name=value; repeatable")
	f.BoolVar(&o.listOptions, "options", false, "print the product form options and stop")
	f.StringVar(&o.pdfPath, "pdf", "", "write the receipt PDF to this file")
	f.StringVar(&o.logoPath, "logo", "", "logo image for the PDF header")
	f.BoolVar(&o.save, "save", false, "submit the receipt to the API")
	return cmd
}

func (a *app) runNew(cmd *cobra.Command, o newOptions) error {
	out := cmd.OutOrStdout()
	if o.save {
		if _, err := a.requireUser(); err != nil {
			return err
		}
	}

	dir, err := directory.Load(directory.DefaultFiles(a.cfg.GetString(keyCatalog)))
	if err != nil {
		return err
	}
	m := wizard.New(dir, a.sess, a.client)

	// Step 1
	if o.empCode != "" {
		if _, err := m.SetEmployeeCode(o.empCode); err != nil {
			return err
		}
	}
	st := m.State()
	if !st.EmployeeFound && strings.TrimSpace(st.EmpCode) != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s (%s)\n", wizard.NoticeNoEmployee, st.EmpCode)
	}
	if _, err := m.Continue(); err != nil {
		return err
	}

	// Step 2
	if o.search != "" || o.investorID == "" {
		results, err := m.SearchInvestors(o.search)
		if err != nil {
			return err
		}
		printInvestors(out, results)
		if o.investorID == "" {
			return nil
		}
	}
	if _, err := m.SelectInvestor(o.investorID); err != nil {
		return fmt.Errorf("%s: %w", o.investorID, err)
	}
	if _, err := m.Continue(); err != nil {
		return err
	}

	// Step 3
	if o.category != "" {
		c, err := receipt.ParseCategory(o.category)
		if err != nil {
			return err
		}
		if err := m.SelectCategory(c); err != nil {
			return err
		}
	}
	for _, kv := range o.fields {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--set %q: want name=value", kv)
		}
		if err := m.SetField(strings.TrimSpace(name), value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if o.listOptions {
		printOptions(out, m.Options())
		return nil
	}
	st, err = m.Continue()
	if err != nil {
		return err
	}

	// Step 4
	fmt.Fprint(out, preview.Text(preview.Layout(*st.Record)))

	if o.pdfPath != "" {
		data, err := preview.NewPDFRenderer(o.logoPath).PDF(preview.Layout(*st.Record))
		if err != nil {
			return fmt.Errorf("failed to render PDF: %w", err)
		}
		if err := os.WriteFile(o.pdfPath, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nPDF written to %s\n", o.pdfPath)
	}

	if o.save {
		ctx, cancel := a.context(cmd)
		defer cancel()
		id, err := m.Save(ctx)
		if err != nil {
			return fmt.Errorf("save failed: %w", err)
		}
		fmt.Fprintf(out, "\nSaved receipt %s (id %s)\n", st.Record.ReceiptNo, id)
	}
	return nil
}

func printInvestors(w io.Writer, results []receipt.InvestorInfo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPAN\tPIN")
	for _, inv := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", inv.InvestorID, inv.InvestorName, dash(inv.PAN), dash(inv.PinCode))
	}
	_ = tw.Flush()
}

func printOptions(w io.Writer, o wizard.Options) {
	line := func(label string, list []string) {
		if len(list) > 0 {
			fmt.Fprintf(w, "%-22s %s\n", label+":", strings.Join(list, " | "))
		}
	}
	cats := make([]string, 0, len(o.Categories))
	for _, c := range o.Categories {
		cats = append(cats, string(c))
	}
	line("categories", cats)
	line("issuers", o.Issuers)
	line("schemes", o.Schemes)
	line("insurance categories", o.InsuranceCategories)
	line("insurance products", o.InsuranceProducts)
	line("scheme options", o.SchemeOptions)
	line("modes", o.TxnModes)
	line("transaction types", o.TxnKinds)
	line("client types", o.ClientTypes)
	line("interest payable", o.InterestPayables)
	line("interest frequency", o.InterestFrequencies)
}
