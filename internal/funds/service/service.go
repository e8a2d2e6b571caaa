// Package service builds balance reports from stored accounts.
package service

import (
	"context"
	"math"

	"dastyar-dashboard/internal/funds/domain"
	"dastyar-dashboard/internal/funds/repository"
)

// UnitToman is the unit label carried on every report.
const UnitToman = "تومان"

// Service assembles combined, bank-only, and fund-only balance reports.
// dollarRate is the toman price of one dollar; zero disables the dollar projection.
type Service struct {
	repo       repository.Repository
	dollarRate float64
}

// NewService returns a funds service backed by the given repository.
func NewService(repo repository.Repository, dollarRate float64) *Service {
	return &Service{repo: repo, dollarRate: dollarRate}
}

// CombinedReport returns the report over all accounts.
func (s *Service) CombinedReport(ctx context.Context) (*domain.BalanceReport, error) {
	accounts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.buildReport(accounts), nil
}

// BankReport returns the report over bank accounts only.
func (s *Service) BankReport(ctx context.Context) (*domain.BalanceReport, error) {
	accounts, err := s.repo.ListByKind(ctx, domain.KindBank)
	if err != nil {
		return nil, err
	}
	return s.buildReport(accounts), nil
}

// FundReport returns the report over fund accounts only.
func (s *Service) FundReport(ctx context.Context) (*domain.BalanceReport, error) {
	accounts, err := s.repo.ListByKind(ctx, domain.KindFund)
	if err != nil {
		return nil, err
	}
	return s.buildReport(accounts), nil
}

// buildReport totals the accounts and derives per-entry percentages relative
// to this report's own total. Percentages are rounded to whole numbers and a
// zero total yields zero percentages rather than NaN.
func (s *Service) buildReport(accounts []domain.Account) *domain.BalanceReport {
	report := &domain.BalanceReport{
		UnitOfMeasure: UnitToman,
		Accounts:      make([]domain.AccountEntry, 0, len(accounts)),
	}
	var total float64
	for _, a := range accounts {
		total += a.Balance
	}
	report.TotalBalance = total
	report.TotalBalanceInDollar = s.toDollar(total)
	for _, a := range accounts {
		entry := domain.AccountEntry{
			Serial:          a.Serial,
			AccountingName:  a.AccountingName,
			Balance:         a.Balance,
			BalanceInDollar: s.toDollar(a.Balance),
		}
		if total != 0 {
			entry.BalancePercentage = math.Round(a.Balance / total * 100)
		}
		report.Accounts = append(report.Accounts, entry)
	}
	return report
}

func (s *Service) toDollar(toman float64) float64 {
	if s.dollarRate <= 0 {
		return 0
	}
	return toman / s.dollarRate
}
