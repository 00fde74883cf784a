package features

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethpandaops/rbi/pkg/rendering"
	"github.com/ethpandaops/rbi/pkg/warehouse"
	"github.com/sirupsen/logrus"
)

// FeatureTable is the table the loader reads from the analytics database
const FeatureTable = "ML_PROMO_EFFECTIVENESS"

// ErrFeatureTableMissing is returned when the feature table has not been built
var ErrFeatureTableMissing = errors.New("feature table ML_PROMO_EFFECTIVENESS not found")

const loadTemplate = `
SELECT
    PRODUCT_CATEGORY,
    DISCOUNT_PERCENTAGE,
    PROMOTION_TYPE,
    REGION,
    DURATION_DAYS,
    BASELINE_AVG_TRANSACTION,
    BASELINE_DAILY_TRANSACTIONS,
    BASELINE_DAILY_SALES,
    HAS_CAMPAIGN_OVERLAP,
    NUM_OVERLAPPING_CAMPAIGNS,
    START_MONTH,
    START_QUARTER,
    START_DAY_OF_WEEK,
    IS_HOLIDAY_SEASON,
    STARTS_ON_WEEKEND,
    IS_SUCCESSFUL,
    SALES_LIFT_RATIO,
    ROI_PROXY
FROM {{ .analytics }}.ML_PROMO_EFFECTIVENESS
WHERE BASELINE_DAILY_SALES > 0`

// Loader reads promotion features from the warehouse
type Loader struct {
	log    logrus.FieldLogger
	client warehouse.Client
	sql    string
}

// NewLoader creates a loader; the query is rendered once against the analytics database
func NewLoader(log logrus.FieldLogger, client warehouse.Client, engine *rendering.TemplateEngine) (*Loader, error) {
	sql, err := engine.Render("features", loadTemplate, nil)
	if err != nil {
		return nil, err
	}

	return &Loader{
		log:    log.WithField("component", "features"),
		client: client,
		sql:    strings.TrimSpace(sql),
	}, nil
}

// SQL returns the rendered load statement
func (l *Loader) SQL() string {
	return l.sql
}

// Load fetches every promotion with a positive baseline
func (l *Loader) Load(ctx context.Context) ([]FeatureRecord, error) {
	table, err := l.client.Query(ctx, l.sql)
	if err != nil {
		if warehouse.IsMissingTable(err) {
			return nil, fmt.Errorf("%w: %w", ErrFeatureTableMissing, err)
		}

		return nil, fmt.Errorf("failed to load features: %w", err)
	}

	records, err := Records(table)
	if err != nil {
		return nil, err
	}

	l.log.WithField("records", len(records)).Info("Loaded promotion records")

	return records, nil
}
