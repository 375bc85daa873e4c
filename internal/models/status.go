package models

import "fmt"

// Closed status sets. Raw strings from the store go through the Parse*
// helpers; everything past the repository layer works with these constants
// only.

type LoanStatus string

const (
	LoanActive    LoanStatus = "active"
	LoanPaid      LoanStatus = "paid"
	LoanOverdue   LoanStatus = "overdue"
	LoanCancelled LoanStatus = "cancelled"
)

func ParseLoanStatus(s string) (LoanStatus, error) {
	switch LoanStatus(s) {
	case LoanActive, LoanPaid, LoanOverdue, LoanCancelled:
		return LoanStatus(s), nil
	}
	return "", fmt.Errorf("invalid loan status: %q", s)
}

type InstallmentStatus string

const (
	InstallmentPending       InstallmentStatus = "pending"
	InstallmentPartiallyPaid InstallmentStatus = "partially_paid"
	InstallmentPaid          InstallmentStatus = "paid"
	InstallmentOverdue       InstallmentStatus = "overdue"
)

func ParseInstallmentStatus(s string) (InstallmentStatus, error) {
	switch InstallmentStatus(s) {
	case InstallmentPending, InstallmentPartiallyPaid, InstallmentPaid, InstallmentOverdue:
		return InstallmentStatus(s), nil
	}
	return "", fmt.Errorf("invalid installment status: %q", s)
}

// Payable reports whether an installment in this status can still receive
// cash.
func (s InstallmentStatus) Payable() bool {
	switch s {
	case InstallmentPending, InstallmentPartiallyPaid, InstallmentOverdue:
		return true
	case InstallmentPaid:
		return false
	}
	return false
}

type PaymentKind string

const (
	PaymentKindInstallment PaymentKind = "installment"
	PaymentKindPartial     PaymentKind = "partial"
	PaymentKindFull        PaymentKind = "full"
	PaymentKindAdvance     PaymentKind = "advance"
)

func ParsePaymentKind(s string) (PaymentKind, error) {
	switch PaymentKind(s) {
	case PaymentKindInstallment, PaymentKindPartial, PaymentKindFull, PaymentKindAdvance:
		return PaymentKind(s), nil
	}
	return "", fmt.Errorf("invalid payment kind: %q", s)
}

type FloatStatus string

const (
	FloatInProgress FloatStatus = "in_progress"
	FloatFinished   FloatStatus = "finished"
	FloatReconciled FloatStatus = "reconciled"
)

func ParseFloatStatus(s string) (FloatStatus, error) {
	switch FloatStatus(s) {
	case FloatInProgress, FloatFinished, FloatReconciled:
		return FloatStatus(s), nil
	}
	return "", fmt.Errorf("invalid daily float status: %q", s)
}

type ReconClassification string

const (
	ReconBalanced  ReconClassification = "balanced"
	ReconSurplus   ReconClassification = "surplus"
	ReconShortfall ReconClassification = "shortfall"
	ReconAudit     ReconClassification = "audit"
)

func ParseReconClassification(s string) (ReconClassification, error) {
	switch ReconClassification(s) {
	case ReconBalanced, ReconSurplus, ReconShortfall, ReconAudit:
		return ReconClassification(s), nil
	}
	return "", fmt.Errorf("invalid reconciliation classification: %q", s)
}

type ExpenseApproval string

const (
	ExpenseApproved ExpenseApproval = "approved"
	ExpensePending  ExpenseApproval = "pending"
	ExpenseRejected ExpenseApproval = "rejected"
)

func ParseExpenseApproval(s string) (ExpenseApproval, error) {
	switch ExpenseApproval(s) {
	case ExpenseApproved, ExpensePending, ExpenseRejected:
		return ExpenseApproval(s), nil
	}
	return "", fmt.Errorf("invalid expense approval status: %q", s)
}
