package payment

import (
	"github.com/shopspring/decimal"
)

// LedgerTotal folds a ledger into the amount applied to the order balance:
// the sum of PAID entries of NORMAL type. FEE entries are excluded from
// balance derivation by design.
func LedgerTotal(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.CountsTowardBalance() {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// GrossPaidTotal folds every PAID entry regardless of type. Used for
// bookkeeping display only; never fed into status derivation.
func GrossPaidTotal(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Status == StatusPaid {
			total = total.Add(p.Amount)
		}
	}
	return total
}
