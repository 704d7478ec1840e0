package core

import "github.com/shopspring/decimal"

// Totals is the income/expense summary of a set of transactions.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Net     decimal.Decimal // Income - Expense
}

// Aggregate sums amounts by kind. The result does not depend on input order.
func Aggregate(txs []Transaction) Totals {
	income := decimal.Zero
	expense := decimal.Zero
	for _, t := range txs {
		switch t.Kind {
		case KindIncome:
			income = income.Add(t.Amount)
		case KindExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return Totals{
		Income:  income,
		Expense: expense,
		Net:     income.Sub(expense),
	}
}
