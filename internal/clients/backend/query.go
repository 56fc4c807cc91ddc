package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Query is a fluent builder over the backend's table API. Builders are
// single-use: construct with From, chain filters, finish with one of
// Get, Count, Insert or Update.
type Query struct {
	client  *Client
	table   string
	columns string
	filters url.Values
	order   string
	limit   int
	single  bool
}

func (c *Client) From(table string) *Query {
	return &Query{
		client:  c,
		table:   table,
		columns: "*",
		filters: url.Values{},
	}
}

func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

func (q *Query) Eq(column string, value any) *Query {
	q.filters.Add(column, "eq."+fmt.Sprint(value))
	return q
}

func (q *Query) In(column string, values []any) *Query {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	q.filters.Add(column, "in.("+strings.Join(parts, ",")+")")
	return q
}

func (q *Query) OrderBy(column string, descending bool) *Query {
	q.order = column + ".asc"
	if descending {
		q.order = column + ".desc"
	}
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Single makes Get expect exactly one row; zero or many rows fail.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

// Get executes the query and decodes the row collection (or, after
// Single, the one row) into dest.
func (q *Query) Get(ctx context.Context, dest any) error {
	const op = "backend.Query.Get"

	req, err := q.request(ctx, http.MethodGet, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}

	if err := q.client.execute(req, dest); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Count executes the query asking only for the exact row count.
func (q *Query) Count(ctx context.Context) (int64, error) {
	const op = "backend.Query.Count"

	req, err := q.request(ctx, http.MethodGet, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Prefer", "count=exact")
	req.Header.Set("Range", "0-0")

	resp, err := q.client.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, &Error{Status: 0, Message: err.Error()})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%s: %w", op, readError(resp))
	}

	count, err := parseContentRange(resp.Header.Get("Content-Range"))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, &Error{Status: resp.StatusCode, Message: err.Error()})
	}

	return count, nil
}

// Insert writes one row. Filters do not apply to inserts.
func (q *Query) Insert(ctx context.Context, row any) error {
	const op = "backend.Query.Insert"

	req, err := q.request(ctx, http.MethodPost, row)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Prefer", "return=minimal")

	if err := q.client.execute(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Update patches every row matching the accumulated filters.
func (q *Query) Update(ctx context.Context, patch any) error {
	const op = "backend.Query.Update"

	req, err := q.request(ctx, http.MethodPatch, patch)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Prefer", "return=minimal")

	if err := q.client.execute(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (q *Query) request(ctx context.Context, method string, body any) (*http.Request, error) {
	params := url.Values{}
	for column, ops := range q.filters {
		for _, opval := range ops {
			params.Add(column, opval)
		}
	}

	if method == http.MethodGet {
		params.Set("select", q.columns)
		if q.order != "" {
			params.Set("order", q.order)
		}
		if q.limit > 0 {
			params.Set("limit", strconv.Itoa(q.limit))
		}
	}

	endpoint := q.client.baseURL + "/rest/v1/" + q.table
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	return q.client.newTableRequest(ctx, method, endpoint, body)
}

func parseContentRange(header string) (int64, error) {
	_, total, found := strings.Cut(header, "/")
	if !found || total == "*" {
		return 0, fmt.Errorf("no exact count in Content-Range %q", header)
	}

	return strconv.ParseInt(total, 10, 64)
}
