package dashboard

func promotionsPage() Page {
	return Page{
		Slug:    "promotions",
		Title:   "Promotions",
		Caption: "Volume and discount",
		Queries: []Query{
			{
				ID: "by_category",
				Template: `
SELECT
  product_category,
  count() AS nb_promos,
  avg(discount_percentage) AS avg_discount
FROM {{ .silver }}.PROMOTIONS_CLEAN
GROUP BY product_category
ORDER BY nb_promos DESC`,
				Columns: []string{"PRODUCT_CATEGORY", "NB_PROMOS", "AVG_DISCOUNT"},
			},
			{
				ID: "by_region",
				Template: `
SELECT region, count() AS nb_promos
FROM {{ .silver }}.PROMOTIONS_CLEAN
GROUP BY region
ORDER BY nb_promos DESC`,
				Columns: []string{"REGION", "NB_PROMOS"},
			},
		},
		Charts: []ChartSpec{
			{
				ID:          "promos_by_category",
				Kind:        KindBar,
				Caption:     "Promotions per category",
				Query:       "by_category",
				Index:       "PRODUCT_CATEGORY",
				Series:      "NB_PROMOS",
				Placeholder: "No promotions.",
			},
			{
				ID:          "discount_by_category",
				Kind:        KindBar,
				Caption:     "Average discount per category",
				Query:       "by_category",
				Index:       "PRODUCT_CATEGORY",
				Series:      "AVG_DISCOUNT",
				Placeholder: "No promotions.",
			},
			{
				ID:          "promos_by_region",
				Kind:        KindBar,
				Caption:     "Promotions per region",
				Query:       "by_region",
				Index:       "REGION",
				Series:      "NB_PROMOS",
				Placeholder: "No promotions.",
			},
		},
	}
}
