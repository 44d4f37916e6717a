package org

import "github.com/shopspring/decimal"

// Account is the root of an organization. It owns funds.
type Account struct{ handle }

// CreateFund allocates balance from the account's unallocated capital to a
// new linked fund.
func (a *Account) CreateFund(fundID, name string, balance decimal.Decimal) (*Fund, error) {
	h, err := a.create(fundID, name, balance)
	if err != nil {
		return nil, err
	}
	return &Fund{ruled{h}}, nil
}

func (a *Account) Fund(fundID string) (*Fund, error) {
	h, err := a.child(fundID)
	if err != nil {
		return nil, err
	}
	return &Fund{ruled{h}}, nil
}

// Funds returns the linked funds in creation order.
func (a *Account) Funds() []*Fund {
	var out []*Fund
	for _, k := range a.childKeys() {
		out = append(out, &Fund{ruled{handle{a.r, k}}})
	}
	return out
}

// RemoveFund detaches a fund and releases its allocation.
func (a *Account) RemoveFund(fundID string) error { return a.remove(fundID) }

// Fund owns portfolios and carries fund level rules.
type Fund struct{ ruled }

func (f *Fund) CreatePortfolio(portfolioID, name string, balance decimal.Decimal) (*Portfolio, error) {
	h, err := f.create(portfolioID, name, balance)
	if err != nil {
		return nil, err
	}
	return &Portfolio{ruled{h}}, nil
}

func (f *Fund) Portfolio(portfolioID string) (*Portfolio, error) {
	h, err := f.child(portfolioID)
	if err != nil {
		return nil, err
	}
	return &Portfolio{ruled{h}}, nil
}

func (f *Fund) Portfolios() []*Portfolio {
	var out []*Portfolio
	for _, k := range f.childKeys() {
		out = append(out, &Portfolio{ruled{handle{f.r, k}}})
	}
	return out
}

func (f *Fund) RemovePortfolio(portfolioID string) error { return f.remove(portfolioID) }

// Account returns the parent account, if linked.
func (f *Fund) Account() (*Account, bool) {
	p := f.Parent()
	if p.Link != Linked {
		return nil, false
	}
	return &Account{handle{f.r, p.Key}}, true
}

// Portfolio owns strategies and carries portfolio level rules.
type Portfolio struct{ ruled }

func (p *Portfolio) CreateStrategy(strategyID, name string, balance decimal.Decimal) (*Strategy, error) {
	h, err := p.create(strategyID, name, balance)
	if err != nil {
		return nil, err
	}
	return &Strategy{h}, nil
}

func (p *Portfolio) Strategy(strategyID string) (*Strategy, error) {
	h, err := p.child(strategyID)
	if err != nil {
		return nil, err
	}
	return &Strategy{h}, nil
}

func (p *Portfolio) Strategies() []*Strategy {
	var out []*Strategy
	for _, k := range p.childKeys() {
		out = append(out, &Strategy{handle{p.r, k}})
	}
	return out
}

func (p *Portfolio) RemoveStrategy(strategyID string) error { return p.remove(strategyID) }

// Fund returns the parent fund, if linked.
func (p *Portfolio) Fund() (*Fund, bool) {
	par := p.Parent()
	if par.Link != Linked {
		return nil, false
	}
	return &Fund{ruled{handle{p.r, par.Key}}}, true
}
