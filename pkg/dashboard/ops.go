package dashboard

func opsPage() Page {
	return Page{
		Slug:    "ops",
		Title:   "Ops & Logistics",
		Caption: "Stock alerts and delivery performance",
		Queries: []Query{
			{
				ID: "stock_alerts",
				Template: `
SELECT product_category, count() AS nb_stock_alerts
FROM {{ .silver }}.INVENTORY_CLEAN
WHERE current_stock IS NOT NULL
  AND reorder_point IS NOT NULL
  AND current_stock <= reorder_point
GROUP BY product_category
ORDER BY nb_stock_alerts DESC`,
				Columns: []string{"PRODUCT_CATEGORY", "NB_STOCK_ALERTS"},
			},
			{
				ID: "delivery",
				Template: `
SELECT status,
       avg(dateDiff('day', ship_date, estimated_delivery)) AS avg_delivery_days,
       count() AS nb_shipments
FROM {{ .silver }}.LOGISTICS_AND_SHIPPING_CLEAN
WHERE ship_date IS NOT NULL
  AND estimated_delivery IS NOT NULL
GROUP BY status
ORDER BY avg_delivery_days DESC`,
				Columns: []string{"STATUS", "AVG_DELIVERY_DAYS", "NB_SHIPMENTS"},
			},
		},
		Charts: []ChartSpec{
			{
				ID:          "stock_alerts_by_category",
				Kind:        KindBar,
				Caption:     "Stock alerts per category",
				Query:       "stock_alerts",
				Index:       "PRODUCT_CATEGORY",
				Series:      "NB_STOCK_ALERTS",
				Placeholder: "No stock alerts detected.",
			},
			{
				ID:          "delivery_days_by_status",
				Kind:        KindBar,
				Caption:     "Average planned delivery days per shipment status",
				Query:       "delivery",
				Index:       "STATUS",
				Series:      "AVG_DELIVERY_DAYS",
				Placeholder: "No delivery data.",
			},
		},
	}
}
