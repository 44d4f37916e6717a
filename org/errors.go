package org

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/tradeorg/rules"
	"github.com/shopspring/decimal"
)

var (
	// ErrCompliance matches every *ComplianceError.
	ErrCompliance = errors.New("compliance violation")

	// ErrInsufficientFunds matches every *InsufficientFundsError.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrContract matches every *ContractError. It signals a malformed
	// call and is not an expected trading outcome.
	ErrContract = errors.New("contract violation")

	ErrNotFound = errors.New("node not found")
	ErrExists   = errors.New("node already exists")
)

// ComplianceError is returned when a fund or portfolio rule denies a trade.
type ComplianceError struct {
	Level  rules.Level
	NodeID string
	Code   string
	Reason string
}

func (e *ComplianceError) Error() string {
	return fmt.Sprintf("%s %s rule violation: %s", e.Level, e.NodeID, e.Reason)
}

func (e *ComplianceError) Unwrap() error { return ErrCompliance }

// InsufficientFundsError reports a cash or allocation shortfall at NodeID.
type InsufficientFundsError struct {
	NodeID    string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds at %s: need %s, have %s",
		e.NodeID, e.Required.StringFixed(2), e.Available.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }

// ContractError wraps the cause of a malformed call. It matches both
// ErrContract and the cause.
type ContractError struct {
	Op  string
	Err error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ContractError) Unwrap() []error { return []error{ErrContract, e.Err} }

func contractErr(op string, err error) error {
	return &ContractError{Op: op, Err: err}
}

// ErrorKind names the rejection class of err: compliance,
// insufficient_funds, contract or other. It labels logs, metrics and
// replay summaries.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrCompliance):
		return "compliance"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrContract):
		return "contract"
	default:
		return "other"
	}
}
