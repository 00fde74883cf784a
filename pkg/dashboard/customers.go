package dashboard

func customersPage() Page {
	return Page{
		Slug:    "customers",
		Title:   "Customers",
		Caption: "Descriptive segmentation and customer experience",
		Queries: []Query{
			{
				ID: "by_region",
				Template: `
SELECT region, count() AS nb_clients, avg(annual_income) AS avg_income
FROM {{ .silver }}.CUSTOMER_DEMOGRAPHICS_CLEAN
GROUP BY region
ORDER BY nb_clients DESC`,
				Columns: []string{"REGION", "NB_CLIENTS", "AVG_INCOME"},
			},
			{
				ID: "by_gender",
				Template: `
SELECT gender, count() AS nb_clients
FROM {{ .silver }}.CUSTOMER_DEMOGRAPHICS_CLEAN
GROUP BY gender
ORDER BY nb_clients DESC`,
				Columns: []string{"GENDER", "NB_CLIENTS"},
			},
			{
				ID: "by_marital_status",
				Template: `
SELECT marital_status, count() AS nb_clients
FROM {{ .silver }}.CUSTOMER_DEMOGRAPHICS_CLEAN
GROUP BY marital_status
ORDER BY nb_clients DESC`,
				Columns: []string{"MARITAL_STATUS", "NB_CLIENTS"},
			},
			{
				ID: "service",
				Template: `
SELECT issue_category,
       avg(customer_satisfaction) AS avg_satisfaction,
       count() AS nb_interactions
FROM {{ .silver }}.CUSTOMER_SERVICE_INTERACTIONS_CLEAN
GROUP BY issue_category
ORDER BY avg_satisfaction ASC`,
				Columns: []string{"ISSUE_CATEGORY", "AVG_SATISFACTION", "NB_INTERACTIONS"},
			},
			{
				ID: "reviews",
				Template: `
SELECT product_category,
       avg(rating) AS avg_rating,
       count() AS nb_reviews
FROM {{ .silver }}.PRODUCT_REVIEWS_CLEAN
GROUP BY product_category
ORDER BY avg_rating DESC`,
				Columns: []string{"PRODUCT_CATEGORY", "AVG_RATING", "NB_REVIEWS"},
			},
		},
		Charts: []ChartSpec{
			{ID: "clients_by_region", Kind: KindBar, Caption: "Customers per region", Query: "by_region", Index: "REGION", Series: "NB_CLIENTS", Placeholder: "No customers."},
			{ID: "clients_by_gender", Kind: KindBar, Caption: "Customers per gender", Query: "by_gender", Index: "GENDER", Series: "NB_CLIENTS", Placeholder: "No customers."},
			{ID: "clients_by_marital_status", Kind: KindBar, Caption: "Customers per marital status", Query: "by_marital_status", Index: "MARITAL_STATUS", Series: "NB_CLIENTS", Placeholder: "No customers."},
			{ID: "satisfaction_by_issue", Kind: KindBar, Caption: "Average satisfaction per issue category", Query: "service", Index: "ISSUE_CATEGORY", Series: "AVG_SATISFACTION", Placeholder: "No service interactions."},
			{ID: "rating_by_category", Kind: KindBar, Caption: "Average review rating per product category", Query: "reviews", Index: "PRODUCT_CATEGORY", Series: "AVG_RATING", Placeholder: "No product reviews."},
		},
	}
}
