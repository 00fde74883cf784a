package dashboard

func salesPage() Page {
	return Page{
		Slug:    "sales",
		Title:   "Sales",
		Caption: "Trends and sanity checks",
		Queries: []Query{
			{
				ID: "monthly",
				Template: `
SELECT toStartOfMonth(transaction_date) AS month,
       sum(amount) AS total_sales,
       count() AS nb_sales
FROM {{ .silver }}.FINANCIAL_TRANSACTIONS_CLEAN
WHERE transaction_type = 'Sale'
GROUP BY month
ORDER BY month`,
				Columns: []string{"MONTH", "TOTAL_SALES", "NB_SALES"},
			},
			{
				ID: "by_type",
				Template: `
SELECT transaction_type, sum(amount) AS total_amount
FROM {{ .silver }}.FINANCIAL_TRANSACTIONS_CLEAN
GROUP BY transaction_type
ORDER BY total_amount DESC`,
				Columns: []string{"TRANSACTION_TYPE", "TOTAL_AMOUNT"},
			},
		},
		Charts: []ChartSpec{
			{
				ID:          "monthly_total_sales",
				Kind:        KindLine,
				Caption:     "Total sales (monthly)",
				Query:       "monthly",
				Index:       "MONTH",
				Series:      "TOTAL_SALES",
				Placeholder: "No sales data.",
			},
			{
				ID:          "monthly_nb_sales",
				Kind:        KindLine,
				Caption:     "Number of sales (monthly)",
				Query:       "monthly",
				Index:       "MONTH",
				Series:      "NB_SALES",
				Placeholder: "No sales data.",
			},
			{
				ID:          "amount_by_type",
				Kind:        KindBar,
				Caption:     "Total amount per transaction type",
				Query:       "by_type",
				Index:       "TRANSACTION_TYPE",
				Series:      "TOTAL_AMOUNT",
				Placeholder: "No transactions.",
			},
		},
	}
}
