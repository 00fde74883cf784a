package warehouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/ethpandaops/rbi/pkg/observability"
	"github.com/sirupsen/logrus"
)

// nativeClient wraps a clickhouse-go connection
type nativeClient struct {
	log     logrus.FieldLogger
	options *clickhouse.Options
	conn    driver.Conn
	timeout time.Duration
}

func newNativeClient(logger logrus.FieldLogger, cfg *Config) (*nativeClient, error) {
	options, err := createClickHouseOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.WithField("component", "warehouse-native")

	if cfg.Debug {
		options.Debug = true
		options.Debugf = func(format string, v ...interface{}) {
			log.Debugf(format, v...)
		}
	}

	return &nativeClient{
		log:     log,
		options: options,
		timeout: cfg.QueryTimeout,
	}, nil
}

// createClickHouseOptions translates the config URL into driver options. The
// scheme selects the protocol; a database in the URL path wins over the config.
func createClickHouseOptions(cfg *Config) (*clickhouse.Options, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid warehouse URL: %w", err)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("invalid warehouse URL: missing host in %q", cfg.URL)
	}

	options := &clickhouse.Options{
		Addr:            []string{parsed.Host},
		Protocol:        clickhouse.Native,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     cfg.QueryTimeout,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	}

	switch parsed.Scheme {
	case "http":
		options.Protocol = clickhouse.HTTP
	case "https":
		options.Protocol = clickhouse.HTTP
		options.TLS = &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify} //nolint:gosec // opt-in via config
	default:
		if parsed.Port() == "9440" {
			options.TLS = &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify} //nolint:gosec // opt-in via config
		}
	}

	if parsed.User != nil {
		options.Auth.Username = parsed.User.Username()
		if password, ok := parsed.User.Password(); ok {
			options.Auth.Password = password
		}
	}

	if db := strings.Trim(parsed.Path, "/"); db != "" {
		options.Auth.Database = db
	}

	if len(cfg.Settings) > 0 {
		options.Settings = clickhouse.Settings{}
		for key, value := range cfg.Settings {
			options.Settings[key] = value
		}
	}

	return options, nil
}

func (c *nativeClient) Driver() string {
	return DriverNative
}

func (c *nativeClient) Start() error {
	conn, err := clickhouse.Open(c.options)
	if err != nil {
		return fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	c.conn = conn

	c.log.WithField("addr", c.options.Addr).Info("Connected to ClickHouse")

	return nil
}

func (c *nativeClient) Stop() error {
	if c.conn == nil {
		return nil
	}

	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close ClickHouse connection: %w", err)
	}

	c.log.Info("Closed ClickHouse connection")

	return nil
}

func (c *nativeClient) Query(ctx context.Context, sql string) (*Table, error) {
	start := time.Now()

	table, err := c.query(ctx, sql)
	observability.RecordWarehouseQuery(DriverNative, err, time.Since(start).Seconds())

	return table, err
}

func (c *nativeClient) query(ctx context.Context, sql string) (*Table, error) {
	if c.conn == nil {
		return nil, ErrNotStarted
	}

	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	rows, err := c.conn.Query(ctx, trimStatement(sql))
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	types := rows.ColumnTypes()
	columns := make([]Column, len(types))
	for i, ct := range types {
		columns[i] = Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
	}

	var out [][]interface{}

	for rows.Next() {
		dest := make([]interface{}, len(types))
		for i, ct := range types {
			dest[i] = reflect.New(ct.ScanType()).Interface()
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row %d: %w", len(out), err)
		}

		row := make([]interface{}, len(dest))
		for i, d := range dest {
			row[i] = unwrap(reflect.ValueOf(d))
		}

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return NewTable(columns, out), nil
}

// unwrap dereferences scan destinations, mapping NULL to nil
func unwrap(v reflect.Value) interface{} {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	return v.Interface()
}
