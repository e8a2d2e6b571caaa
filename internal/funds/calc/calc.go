// Package calc derives display-ready aggregates from balance reports.
// Every function here is pure: no network access, no mutation of inputs, and
// a defined output for every input combination.
package calc

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"dastyar-dashboard/internal/funds/domain"
)

// Tab selects the currency unit used for every numeric value in the result.
type Tab string

const (
	TabToman  Tab = "toman"
	TabDollar Tab = "dollar"
)

// AccountView is one account prepared for display: the raw balance in the
// selected currency plus its Persian-digit formatted string.
type AccountView struct {
	Serial            int64
	AccountingName    string
	Balance           float64
	BalanceDisplay    string
	BalancePercentage float64
}

// Result is the flat display record driving the dashboard: formatted totals,
// raw bank/fund balances in the selected currency, per-account views, and the
// bank-vs-fund split percentages for the proportion chart.
type Result struct {
	CombinedBalanceDisplay string
	BankBalanceDisplay     string
	FundBalanceDisplay     string
	BankBalance            float64
	FundBalance            float64
	BankPercentage         int
	FundPercentage         int
	BankAccounts           []AccountView
	FundAccounts           []AccountView
}

// persianPrinter renders numbers with Persian digit glyphs and grouping separators.
var persianPrinter = message.NewPrinter(language.Persian)

// FormatBalance transcodes a numeric balance into Persian digits with
// thousands separators. Ordering and precision are unchanged; fractions are
// kept to at most two digits.
func FormatBalance(v float64) string {
	return persianPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Calculate transforms the three balance reports plus a currency tab into a
// display-ready Result. Any nil report degrades to a zero-valued result with
// empty account lists; Calculate never panics.
func Calculate(combined, bank, fund *domain.BalanceReport, tab Tab) Result {
	result := Result{
		BankAccounts: []AccountView{},
		FundAccounts: []AccountView{},
	}
	if combined == nil || bank == nil || fund == nil {
		return result
	}

	combinedTotal := selectTotal(combined, tab)
	bankTotal := selectTotal(bank, tab)
	fundTotal := selectTotal(fund, tab)

	result.BankBalance = bankTotal
	result.FundBalance = fundTotal
	result.CombinedBalanceDisplay = FormatBalance(combinedTotal)
	result.BankBalanceDisplay = FormatBalance(bankTotal)
	result.FundBalanceDisplay = FormatBalance(fundTotal)

	if combinedTotal != 0 {
		result.BankPercentage = int(math.Round(bankTotal / combinedTotal * 100))
		result.FundPercentage = int(math.Round(fundTotal / combinedTotal * 100))
	}

	result.BankAccounts = accountViews(bank.Accounts, tab)
	result.FundAccounts = accountViews(fund.Accounts, tab)
	return result
}

// selectTotal picks the report total for the currency tab.
func selectTotal(r *domain.BalanceReport, tab Tab) float64 {
	if tab == TabDollar {
		return r.TotalBalanceInDollar
	}
	return r.TotalBalance
}

// selectBalance picks the entry balance for the currency tab.
func selectBalance(e domain.AccountEntry, tab Tab) float64 {
	if tab == TabDollar {
		return e.BalanceInDollar
	}
	return e.Balance
}

// accountViews maps report entries to display views, preserving upstream order
// and carrying the upstream percentage through unchanged.
func accountViews(entries []domain.AccountEntry, tab Tab) []AccountView {
	out := make([]AccountView, 0, len(entries))
	for _, e := range entries {
		balance := selectBalance(e, tab)
		out = append(out, AccountView{
			Serial:            e.Serial,
			AccountingName:    e.AccountingName,
			Balance:           balance,
			BalanceDisplay:    FormatBalance(balance),
			BalancePercentage: e.BalancePercentage,
		})
	}
	return out
}
