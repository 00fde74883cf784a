package dashboard

func roiPage() Page {
	return Page{
		Slug:    "roi",
		Title:   "Marketing ROI",
		Caption: "Campaign analysis (proxy)",
		Queries: []Query{
			{
				ID: "roi",
				Template: `
SELECT
  campaign_name,
  region,
  product_category,
  budget,
  reach,
  conversion_rate,
  reach * conversion_rate AS estimated_conversions,
  (reach * conversion_rate) / nullIf(budget, 0) AS roi_proxy
FROM {{ .silver }}.MARKETING_CAMPAIGNS_CLEAN
ORDER BY roi_proxy DESC NULLS LAST
LIMIT 50`,
				Columns: []string{"CAMPAIGN_NAME", "REGION", "ROI_PROXY"},
			},
			{
				// sales in the campaign's region between its start and end dates
				ID: "campaign_sales",
				Template: `
WITH sales_daily AS (
  SELECT transaction_date, region, sum(amount) AS daily_sales
  FROM {{ .silver }}.FINANCIAL_TRANSACTIONS_CLEAN
  WHERE transaction_type = 'Sale'
  GROUP BY transaction_date, region
)
SELECT
  c.campaign_name,
  c.region,
  CAST(sumIfOrNull(s.daily_sales, s.transaction_date BETWEEN c.start_date AND c.end_date) AS Nullable(Decimal(18, 2))) AS sales_during_campaign
FROM {{ .silver }}.MARKETING_CAMPAIGNS_CLEAN c
LEFT JOIN sales_daily s ON s.region = c.region
GROUP BY c.campaign_name, c.region
ORDER BY sales_during_campaign DESC NULLS LAST
LIMIT 50`,
				Columns: []string{"CAMPAIGN_NAME", "REGION", "SALES_DURING_CAMPAIGN"},
			},
		},
		Charts: []ChartSpec{
			{
				ID:          "top_roi",
				Kind:        KindBar,
				Caption:     "Top campaigns by ROI proxy",
				Query:       "roi",
				Index:       "CAMPAIGN_NAME",
				Series:      "ROI_PROXY",
				Limit:       20,
				Placeholder: "No campaigns.",
			},
			{
				ID:          "top_campaign_sales",
				Kind:        KindBar,
				Caption:     "Top campaigns by sales during the campaign",
				Query:       "campaign_sales",
				Index:       "CAMPAIGN_NAME",
				Series:      "SALES_DURING_CAMPAIGN",
				Limit:       20,
				Placeholder: "No campaign sales.",
			},
		},
	}
}
