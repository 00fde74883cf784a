package warehouse

import (
	"context"
	"fmt"

	"github.com/ethpandaops/rbi/pkg/convert"
)

// CountRows returns the number of rows in database.table. A missing table is
// reported through the returned error; check it with IsMissingTable.
func CountRows(ctx context.Context, client Client, database, table string) (int64, error) {
	result, err := client.Query(ctx, fmt.Sprintf("SELECT count() AS count FROM %s.%s", database, table))
	if err != nil {
		return 0, err
	}

	if err := result.Require("COUNT"); err != nil {
		return 0, err
	}

	if result.Empty() {
		return 0, nil
	}

	return convert.SafeInt(result.Value(0, "COUNT"), 0), nil
}
