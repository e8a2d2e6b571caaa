package domain

// AccountEntry is one account row inside a balance report as served to clients.
// BalancePercentage is this entry's share of its report's total, precomputed
// server-side so clients render it as-is.
type AccountEntry struct {
	Serial            int64   `json:"serial"`
	AccountingName    string  `json:"accountingName"`
	Balance           float64 `json:"balance"`
	BalanceInDollar   float64 `json:"balanceInDollar"`
	BalancePercentage float64 `json:"balancePercentage"`
}

// BalanceReport aggregates a set of accounts: the combined report covers all
// accounts, the bank and fund reports cover one kind each.
type BalanceReport struct {
	TotalBalance         float64        `json:"totalBalance"`
	TotalBalanceInDollar float64        `json:"totalBalanceInDollar"`
	UnitOfMeasure        string         `json:"unitOfMeasure"`
	Accounts             []AccountEntry `json:"accounts"`
}
