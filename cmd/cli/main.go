package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL   string
	timeout   time.Duration
	actorID   string
	actorRole string
	token     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gobooks-cli",
		Short: "GoBooks CLI tool",
		Long:  `A command line interface for interacting with the GoBooks API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoBooks API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "cli", "Actor ID sent with requests")
	rootCmd.PersistentFlags().StringVar(&actorRole, "role", "admin", "Actor role sent with requests")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token (used instead of actor headers)")

	rootCmd.AddCommand(accountCmd())
	rootCmd.AddCommand(periodCmd())
	rootCmd.AddCommand(entryCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Chart of accounts operations",
	}

	var (
		name           string
		parent         string
		classification string
		nature         string
		postable       bool
	)

	createCmd := &cobra.Command{
		Use:   "create CODE",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{
				"code":           args[0],
				"name":           name,
				"classification": classification,
				"nature":         nature,
				"postable":       postable,
			}
			if parent != "" {
				payload["parent_code"] = parent
			}

			return doRequest(http.MethodPost, "/api/v1/accounts/", payload)
		},
	}
	createCmd.Flags().StringVar(&name, "name", "", "Account display name")
	createCmd.Flags().StringVar(&parent, "parent", "", "Parent account code")
	createCmd.Flags().StringVar(&classification, "class", "", "Classification (asset, liability, equity, revenue, cost_of_sales, expense, memo_order)")
	createCmd.Flags().StringVar(&nature, "nature", "", "Normal balance side (debit or credit)")
	createCmd.Flags().BoolVar(&postable, "postable", false, "Whether the account receives line items")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the chart of accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/accounts/", nil)
		},
	}

	deactivateCmd := &cobra.Command{
		Use:   "deactivate CODE",
		Short: "Deactivate an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodDelete, "/api/v1/accounts/"+args[0], nil)
		},
	}

	var (
		asOf     string
		periodID string
	)

	balanceCmd := &cobra.Command{
		Use:   "balance CODE",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/accounts/" + args[0] + "/balance"
			switch {
			case periodID != "":
				path += "?period_id=" + periodID
			case asOf != "":
				path += "?as_of=" + asOf
			}

			return doRequest(http.MethodGet, path, nil)
		},
	}
	balanceCmd.Flags().StringVar(&asOf, "as-of", "", "Cutoff date (YYYY-MM-DD)")
	balanceCmd.Flags().StringVar(&periodID, "period", "", "Restrict to a period ID")

	cmd.AddCommand(createCmd, listCmd, deactivateCmd, balanceCmd)

	return cmd
}

func periodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Accounting period operations",
	}

	var start, end string

	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Open a new accounting period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodPost, "/api/v1/periods/", map[string]any{
				"name":  args[0],
				"start": start,
				"end":   end,
			})
		},
	}
	createCmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")

	closeCmd := &cobra.Command{
		Use:   "close ID",
		Short: "Close a period, generating its closing entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodPost, "/api/v1/periods/"+args[0]+"/close", nil)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/periods/", nil)
		},
	}

	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Show the currently open period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/periods/open", nil)
		},
	}

	entriesCmd := &cobra.Command{
		Use:   "entries ID",
		Short: "List a period's journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/periods/"+args[0]+"/entries", nil)
		},
	}

	cmd.AddCommand(createCmd, closeCmd, listCmd, openCmd, entriesCmd)

	return cmd
}

func entryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Journal entry operations",
	}

	var (
		periodID    string
		date        string
		description string
		debits      []string
		credits     []string
	)

	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Post a balanced journal entry",
		Long: `Post a journal entry. Lines are given as CODE=AMOUNT pairs:

  gobooks-cli entry post --period p-1 --date 2026-01-15 \
      --debit 61=100.00 --credit 113=100.00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := make([]map[string]any, 0, len(debits)+len(credits))

			for _, d := range debits {
				code, amount, err := splitLine(d)
				if err != nil {
					return err
				}
				lines = append(lines, map[string]any{"account_code": code, "debit": amount, "credit": "0"})
			}

			for _, c := range credits {
				code, amount, err := splitLine(c)
				if err != nil {
					return err
				}
				lines = append(lines, map[string]any{"account_code": code, "debit": "0", "credit": amount})
			}

			return doRequest(http.MethodPost, "/api/v1/entries/", map[string]any{
				"period_id":   periodID,
				"date":        date,
				"description": description,
				"lines":       lines,
			})
		},
	}
	postCmd.Flags().StringVar(&periodID, "period", "", "Period ID")
	postCmd.Flags().StringVar(&date, "date", "", "Entry date (YYYY-MM-DD)")
	postCmd.Flags().StringVar(&description, "description", "", "Entry description")
	postCmd.Flags().StringArrayVar(&debits, "debit", nil, "Debit line as CODE=AMOUNT (repeatable)")
	postCmd.Flags().StringArrayVar(&credits, "credit", nil, "Credit line as CODE=AMOUNT (repeatable)")

	getCmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show a journal entry with its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/entries/"+args[0], nil)
		},
	}

	cmd.AddCommand(postCmd, getCmd)

	return cmd
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Financial reports",
	}

	for _, r := range []struct {
		use   string
		short string
		path  string
	}{
		{"trial-balance ID", "Trial balance for a period", "trial-balance"},
		{"income-statement ID", "Income statement for a period", "income-statement"},
		{"balance-sheet ID", "Balance sheet as of a period's end", "balance-sheet"},
	} {
		r := r
		cmd.AddCommand(&cobra.Command{
			Use:   r.use,
			Short: r.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return doRequest(http.MethodGet, "/api/v1/periods/"+args[0]+"/reports/"+r.path, nil)
			},
		})
	}

	return cmd
}

// seedAccount is one row of the demo chart.
type seedAccount struct {
	code     string
	name     string
	parent   string
	class    string
	nature   string
	postable bool
}

// demoChart is a minimal working chart of accounts, including the earnings
// and retained-earnings transfer accounts the closing engine requires.
var demoChart = []seedAccount{
	{"11", "Cash and banks", "", "asset", "debit", false},
	{"113", "Bank accounts", "11", "asset", "debit", true},
	{"12", "Receivables and inventory", "", "asset", "debit", false},
	{"121", "Trade receivables", "12", "asset", "debit", true},
	{"152", "Equipment", "12", "asset", "debit", true},
	{"22", "Trade payables", "", "liability", "credit", false},
	{"221", "Suppliers", "22", "liability", "credit", true},
	{"25", "Tax liabilities", "", "liability", "credit", false},
	{"251", "VAT payable", "25", "liability", "credit", true},
	{"31", "Capital", "", "equity", "credit", false},
	{"311", "Share capital", "31", "equity", "credit", true},
	{"33", "Retained earnings", "31", "equity", "credit", true},
	{"34", "Current-year earnings", "31", "equity", "credit", true},
	{"41", "Revenue", "", "revenue", "credit", false},
	{"411", "Sales revenue", "41", "revenue", "credit", true},
	{"51", "Cost of sales", "", "cost_of_sales", "debit", false},
	{"511", "Cost of goods sold", "51", "cost_of_sales", "debit", true},
	{"61", "Expenses", "", "expense", "debit", false},
	{"611", "Operating expenses", "61", "expense", "debit", true},
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create a demo chart of accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range demoChart {
				payload := map[string]any{
					"code":           a.code,
					"name":           a.name,
					"classification": a.class,
					"nature":         a.nature,
					"postable":       a.postable,
				}
				if a.parent != "" {
					payload["parent_code"] = a.parent
				}

				fmt.Printf("creating %s %s\n", a.code, a.name)
				if err := doRequest(http.MethodPost, "/api/v1/accounts/", payload); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func splitLine(s string) (string, string, error) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], nil
		}
	}

	return "", "", fmt.Errorf("invalid line %q: expected CODE=AMOUNT", s)
}

func doRequest(method, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("X-Actor-Id", actorID)
		req.Header.Set("X-Actor-Role", actorRole)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(data), 500))
	}

	if len(data) > 0 {
		var pretty any
		if err := json.Unmarshal(data, &pretty); err == nil {
			printJSON(pretty)
		} else {
			fmt.Println(string(data))
		}
	}

	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}

	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	return s[:max-3] + "..."
}
