package main

import (
	"bankstat/internal/core"

	"github.com/shopspring/decimal"
)

// demoRows is a small statement covering two cards, income, cashback and an
// operation without a status.
var demoRows = []struct {
	at, card, status, category, amount, cashback, description string
}{
	{"31.12.2021 16:44:00", "*7197", "OK", "Супермаркеты", "-160.89", "3", "Колхоз"},
	{"31.12.2021 16:39:04", "*7197", "", "Супермаркеты", "-118.12", "", "Магнит"},
	{"30.12.2021 19:06:03", "*4556", "OK", "Фастфуд", "-564.00", "5", "Вкусно и точка"},
	{"30.12.2021 12:00:00", "*4556", "OK", "Пополнения", "5000.00", "", "Перевод"},
	{"28.12.2021 09:15:40", "*7197", "OK", "Транспорт", "-57.00", "", "Метро"},
	{"20.12.2021 18:30:00", "*7197", "OK", "Супермаркеты", "-1245.50", "12", "Перекрёсток"},
	{"15.12.2021 10:00:00", "*4556", "FAILED", "Связь", "-300.00", "", "МТС"},
	{"02.12.2021 14:20:11", "*4556", "OK", "Аптеки", "-420.30", "4", "Ригла"},
	{"25.11.2021 21:10:00", "*7197", "OK", "Супермаркеты", "-980.00", "9", "Пятёрочка"},
	{"10.10.2021 08:00:00", "*4556", "OK", "Пополнения", "25000.00", "", "Зарплата"},
}

func demoStatement() []core.Transaction {
	out := make([]core.Transaction, 0, len(demoRows))
	for _, r := range demoRows {
		amount := decimal.RequireFromString(r.amount)
		cashback, _ := core.ParseOptionalAmount(r.cashback)
		out = append(out, core.Transaction{
			OperatedAt:    core.ParseTimestamp(r.at),
			Card:          r.card,
			Status:        r.status,
			Category:      r.category,
			AmountRaw:     amount,
			AmountRounded: amount.Abs(),
			Cashback:      cashback,
			Description:   r.description,
		})
	}
	return out
}
