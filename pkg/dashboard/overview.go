package dashboard

import "github.com/ethpandaops/rbi/pkg/convert"

func overviewPage() Page {
	return Page{
		Slug:    "overview",
		Title:   "Overview",
		Caption: "Headline KPIs and quick visualisations",
		Queries: []Query{
			{
				ID: "kpi",
				Template: `
SELECT
  sumIf(amount, transaction_type = 'Sale') AS total_sales,
  countIf(transaction_type = 'Sale') AS nb_sales,
  uniqExact(region) AS nb_regions
FROM {{ .silver }}.FINANCIAL_TRANSACTIONS_CLEAN`,
				Columns: []string{"TOTAL_SALES", "NB_SALES", "NB_REGIONS"},
			},
			{
				// a sale is flagged when a promotion in its region covers its date
				ID: "promo_rate",
				Template: `
WITH sales AS (
  SELECT transaction_id, transaction_date, region
  FROM {{ .silver }}.FINANCIAL_TRANSACTIONS_CLEAN
  WHERE transaction_type = 'Sale'
),
flagged AS (
  SELECT
    s.transaction_id,
    max(if(s.transaction_date BETWEEN p.start_date AND p.end_date, 1, 0)) AS is_promo
  FROM sales s
  LEFT JOIN {{ .silver }}.PROMOTIONS_CLEAN p ON p.region = s.region
  GROUP BY s.transaction_id, s.transaction_date, s.region
)
SELECT toFloat64(avg(is_promo)) AS promo_rate
FROM flagged`,
				Columns: []string{"PROMO_RATE"},
			},
			{
				ID: "monthly_sales",
				Template: `
SELECT toStartOfMonth(transaction_date) AS month,
       sum(amount) AS total_sales
FROM {{ .silver }}.FINANCIAL_TRANSACTIONS_CLEAN
WHERE transaction_type = 'Sale'
GROUP BY month
ORDER BY month`,
				Columns: []string{"MONTH", "TOTAL_SALES"},
			},
			{
				ID: "sales_by_region",
				Template: `
SELECT region, sum(amount) AS total_sales
FROM {{ .silver }}.FINANCIAL_TRANSACTIONS_CLEAN
WHERE transaction_type = 'Sale'
GROUP BY region
ORDER BY total_sales DESC`,
				Columns: []string{"REGION", "TOTAL_SALES"},
			},
		},
		Charts: []ChartSpec{
			{
				ID:          "monthly_sales",
				Kind:        KindLine,
				Caption:     "Sales trend (monthly)",
				Query:       "monthly_sales",
				Index:       "MONTH",
				Series:      "TOTAL_SALES",
				Placeholder: "No sales data.",
			},
			{
				ID:          "sales_by_region",
				Kind:        KindBar,
				Caption:     "Sales by region",
				Query:       "sales_by_region",
				Index:       "REGION",
				Series:      "TOTAL_SALES",
				Placeholder: "No region data.",
			},
		},
		KPIs: func(res Results) []KPI {
			kpi := res["kpi"]

			return []KPI{
				{Label: "Total Sales", Value: convert.FmtMoney(convert.SafeFloat(first(kpi, "TOTAL_SALES"), 0))},
				{Label: "Number of sales", Value: convert.FmtCount(convert.SafeInt(first(kpi, "NB_SALES"), 0))},
				{Label: "Number of regions", Value: convert.FmtCount(convert.SafeInt(first(kpi, "NB_REGIONS"), 0))},
				{Label: "Share of sales during a promotion", Value: convert.FmtPercent(convert.SafeFloat(first(res["promo_rate"], "PROMO_RATE"), 0))},
			}
		},
	}
}
