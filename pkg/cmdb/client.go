package cmdb

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NVIDIA/patch-inventory/pkg/defaults"
	cmderrors "github.com/NVIDIA/patch-inventory/pkg/errors"
	"github.com/google/uuid"
)

// Fetcher retrieves host records constrained to live, installed servers
// running the given OS. Implementations return at most limit records.
type Fetcher interface {
	Fetch(ctx context.Context, osFilter string, limit int) ([]HostRecord, error)
}

// maxErrorBody caps how much of a failed response is logged.
const maxErrorBody = 512

// Client queries the CMDB table API.
type Client struct {
	baseURL     string
	table       string
	groupField  string
	credentials Credentials
	timeout     time.Duration
	httpClient  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the basic auth credentials.
func WithCredentials(c Credentials) Option {
	return func(cl *Client) {
		cl.credentials = c
	}
}

// WithTable overrides the CMDB table name.
func WithTable(table string) Option {
	return func(cl *Client) {
		if table != "" {
			cl.table = table
		}
	}
}

// WithGroupField overrides the attribute read into HostRecord.Group.
func WithGroupField(field string) Option {
	return func(cl *Client) {
		if field != "" {
			cl.groupField = field
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(cl *Client) {
		if hc != nil {
			cl.httpClient = hc
		}
	}
}

// NewClient returns a Client for the CMDB at baseURL
// (for example https://acme.service-now.com).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		table:      defaults.Table,
		groupField: defaults.GroupField,
		timeout:    defaults.CMDBRequestTimeout,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InstanceURL returns the base URL of a hosted ServiceNow instance.
func InstanceURL(instance string) string {
	return fmt.Sprintf("https://%s.service-now.com", instance)
}

// BuildQuery returns the encoded-query restricting results to live,
// installed servers of the given OS. A percent-encoded filter such as
// "Linux%20Red%20Hat" is decoded first so it is not escaped twice.
func BuildQuery(osFilter string) string {
	if strings.Contains(osFilter, "%") {
		if decoded, err := url.QueryUnescape(osFilter); err == nil {
			osFilter = decoded
		}
	}
	return "os=" + osFilter + "^install_status=1^state=Live"
}

// tableResponse is the table API envelope.
type tableResponse struct {
	Result []map[string]any `json:"result"`
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, osFilter string, limit int) ([]HostRecord, error) {
	if limit < 1 {
		return nil, cmderrors.New(cmderrors.ErrCodeInvalidRequest,
			fmt.Sprintf("limit must be positive, got %d", limit))
	}

	start := time.Now()
	defer func() {
		cmdbRequestDuration.Observe(time.Since(start).Seconds())
	}()

	records, err := c.fetch(ctx, osFilter, limit)
	if err != nil {
		cmdbRequestTotal.WithLabelValues(string(cmderrors.CodeOf(err))).Inc()
		return nil, err
	}

	cmdbRequestTotal.WithLabelValues("success").Inc()
	cmdbRecordsRetrieved.Set(float64(len(records)))
	return records, nil
}

func (c *Client) fetch(ctx context.Context, osFilter string, limit int) ([]HostRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("sysparm_query", BuildQuery(osFilter))
	q.Set("sysparm_limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/api/now/table/%s?%s", c.baseURL, url.PathEscape(c.table), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, cmderrors.Wrap(cmderrors.ErrCodeInvalidRequest, "failed to build cmdb request", err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if !c.credentials.IsZero() {
		req.SetBasicAuth(c.credentials.Username, c.credentials.Password)
	}

	slog.Debug("querying cmdb",
		slog.String("table", c.table),
		slog.String("query", q.Get("sysparm_query")),
		slog.Int("limit", limit),
		slog.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, cmderrors.WrapWithContext(transportCode(err), "cmdb query failed", err,
			map[string]any{"request_id": requestID})
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("failed to close cmdb response body", "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The body stays in the debug log; error context reaches API clients.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.Debug("cmdb error response",
			slog.Int("status", resp.StatusCode),
			slog.String("body", strings.TrimSpace(string(body))),
			slog.String("request_id", requestID),
		)
		return nil, cmderrors.WrapWithContext(cmderrors.CodeFromHTTPStatus(resp.StatusCode),
			fmt.Sprintf("cmdb query failed with status %d", resp.StatusCode), nil,
			map[string]any{
				"request_id": requestID,
				"status":     resp.StatusCode,
			})
	}

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, cmderrors.WrapWithContext(cmderrors.ErrCodeRetrievalFailed, "failed to decode cmdb response", err,
			map[string]any{"request_id": requestID})
	}

	records := make([]HostRecord, 0, len(tr.Result))
	for _, raw := range tr.Result {
		records = append(records, NewHostRecord(raw, c.groupField))
	}

	slog.Debug("retrieved hosts from cmdb",
		slog.Int("count", len(records)),
		slog.String("request_id", requestID),
	)

	return records, nil
}

// transportCode classifies an error returned by http.Client.Do.
func transportCode(err error) cmderrors.ErrorCode {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return cmderrors.ErrCodeTimeout
	}
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return cmderrors.ErrCodeTimeout
	}
	return cmderrors.ErrCodeUnavailable
}
