package warehouse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ethpandaops/rbi/pkg/observability"
	"github.com/sirupsen/logrus"
)

// ErrClickHouseResponse is returned when ClickHouse answers with a non-200 status
var ErrClickHouseResponse = errors.New("clickhouse error")

// clickhouseResponse represents the JSON response from ClickHouse HTTP interface.
type clickhouseResponse struct {
	Data []map[string]interface{} `json:"data"`
	Meta []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"meta"`
	Rows int `json:"rows"`
}

// httpClient talks to the ClickHouse HTTP interface
type httpClient struct {
	log          logrus.FieldLogger
	httpClient   *http.Client
	baseURL      string
	username     string
	password     string
	database     string
	settings     map[string]string
	debug        bool
	queryTimeout time.Duration
}

func newHTTPClient(logger logrus.FieldLogger, cfg *Config) *httpClient {
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxOpenConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     cfg.KeepAlive,
	}

	return &httpClient{
		log:          logger.WithField("component", "warehouse-http"),
		httpClient:   &http.Client{Transport: transport},
		baseURL:      strings.TrimRight(cfg.URL, "/"),
		username:     cfg.Username,
		password:     cfg.Password,
		database:     cfg.Database,
		settings:     cfg.Settings,
		debug:        cfg.Debug,
		queryTimeout: cfg.QueryTimeout,
	}
}

func (c *httpClient) Driver() string {
	return DriverHTTP
}

func (c *httpClient) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := c.execute(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	c.log.Info("Connected to ClickHouse HTTP interface")

	return nil
}

func (c *httpClient) Stop() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}

	c.log.Info("Closed ClickHouse HTTP client")

	return nil
}

func (c *httpClient) Query(ctx context.Context, sql string) (*Table, error) {
	start := time.Now()

	table, err := c.query(ctx, sql)
	observability.RecordWarehouseQuery(DriverHTTP, err, time.Since(start).Seconds())

	return table, err
}

func (c *httpClient) query(ctx context.Context, sql string) (*Table, error) {
	body, err := c.execute(ctx, trimStatement(sql)+" FORMAT JSON")
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	var result clickhouseResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	columns := make([]Column, len(result.Meta))
	for i, meta := range result.Meta {
		columns[i] = Column{Name: meta.Name, Type: meta.Type}
	}

	rows := make([][]interface{}, len(result.Data))
	for i, data := range result.Data {
		row := make([]interface{}, len(result.Meta))
		for j, meta := range result.Meta {
			row[j] = data[meta.Name]
		}
		rows[i] = row
	}

	return NewTable(columns, rows), nil
}

func (c *httpClient) execute(ctx context.Context, query string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.getTimeout(ctx))
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "text/plain")

	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	params := req.URL.Query()
	if c.database != "" {
		params.Set("database", c.database)
	}
	for key, value := range c.settings {
		params.Set(key, value)
	}
	req.URL.RawQuery = params.Encode()

	if c.debug {
		c.log.WithField("query", truncateQuery(query)).Debug("Executing ClickHouse query")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WithError(closeErr).Debug("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w (status %d): %s", ErrClickHouseResponse, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

func (c *httpClient) getTimeout(ctx context.Context) time.Duration {
	// Check if context already has a deadline
	if deadline, ok := ctx.Deadline(); ok {
		return time.Until(deadline)
	}

	return c.queryTimeout
}
