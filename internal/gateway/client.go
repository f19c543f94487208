package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/internal/session"
	"github.com/sangkips/ecs-receipts/pkg/pagination"
)

// idempotencyNamespace derives stable Idempotency-Key values from record content.
var idempotencyNamespace = uuid.MustParse("6f1c1f3e-8a4e-4b53-9a57-2b3f1d0c9e21")

// APIError is a non-2xx answer from the receipts API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Receipt is a persisted receipt as the API returns it.
type Receipt struct {
	ID           string     `json:"id"`
	Status       string     `json:"status"`
	CreatedBy    string     `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	DeleteReason string     `json:"delete_reason,omitempty"`
	receipt.Record
}

// ReceiptQuery filters GET /receipts.
type ReceiptQuery struct {
	From           string
	To             string
	Category       string
	Issuer         string
	EmpCode        string
	Status         string
	IncludeDeleted bool
	Page           int
	Size           int
	Sort           string
}

func (q ReceiptQuery) params() map[string]string {
	p := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			p[k] = v
		}
	}
	set("from", q.From)
	set("to", q.To)
	set("category", q.Category)
	set("issuer", q.Issuer)
	set("emp_code", q.EmpCode)
	set("status", q.Status)
	set("sort", q.Sort)
	if q.IncludeDeleted {
		p["include_deleted"] = "true"
	}
	if q.Page > 0 {
		p["page"] = strconv.Itoa(q.Page)
	}
	if q.Size > 0 {
		p["size"] = strconv.Itoa(q.Size)
	}
	return p
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the receipts REST API.
type Client struct {
	http   *resty.Client
	tokens func() string
}

type ClientOption func(*Client)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.http.SetTimeout(d) }
}

func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json").
			SetTimeout(30 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UseTokens sets where bearer tokens come from.
func (c *Client) UseTokens(s session.Session) {
	c.tokens = s.Token
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, query map[string]string, headers map[string]string, out interface{}) error {
	req := c.http.R().SetContext(ctx)
	if c.tokens != nil {
		if tok := c.tokens(); tok != "" {
			req.SetAuthToken(tok)
		}
	}
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return err
	}

	var env envelope
	_ = json.Unmarshal(resp.Body(), &env)

	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Message: errorMessage(env, resp)}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// errorMessage prefers the body's error, then its message, then the status text.
func errorMessage(env envelope, resp *resty.Response) string {
	switch {
	case env.Error != "":
		return env.Error
	case env.Message != "":
		return env.Message
	}
	if text := http.StatusText(resp.StatusCode()); text != "" {
		return text
	}
	return resp.Status()
}

type loginData struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

// Authenticate logs in with an employee code.
func (c *Client) Authenticate(ctx context.Context, empCode, password string) (*session.User, string, error) {
	var out loginData
	body := map[string]string{"emp_code": empCode, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, nil, nil, &out); err != nil {
		return nil, "", err
	}
	if out.Token == "" || out.User == nil {
		return nil, "", fmt.Errorf("login response carried no token")
	}
	return out.User, out.Token, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (*session.User, error) {
	var u session.User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateReceipt posts a record and returns the stored id. The idempotency
// key is derived from the record so a retried submit is not stored twice.
func (c *Client) CreateReceipt(ctx context.Context, rec receipt.Record) (string, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	key := uuid.NewSHA1(idempotencyNamespace, raw).String()

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/receipts", rec, nil, map[string]string{"Idempotency-Key": key}, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) ListReceipts(ctx context.Context, q ReceiptQuery) (*pagination.PaginatedResult[Receipt], error) {
	var out pagination.PaginatedResult[Receipt]
	if err := c.do(ctx, http.MethodGet, "/api/receipts", nil, q.params(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReceipt(ctx context.Context, id string) (*Receipt, error) {
	var out Receipt
	if err := c.do(ctx, http.MethodGet, "/api/receipts/"+id, nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReceiptsByEmployee(ctx context.Context, empCode string) ([]Receipt, error) {
	var out []Receipt
	if err := c.do(ctx, http.MethodGet, "/api/receipts/emp/"+empCode, nil, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteReceipt(ctx context.Context, id, reason string) error {
	return c.do(ctx, http.MethodDelete, "/api/receipts/"+id, map[string]string{"reason": reason}, nil, nil, nil)
}

func (c *Client) RestoreReceipt(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/receipts/"+id+"/restore", nil, nil, nil, nil)
}

func (c *Client) SetReceiptStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, http.MethodPatch, "/api/receipts/"+id+"/status", map[string]string{"status": status}, nil, nil, nil)
}

// StatsFilter narrows the stats endpoints.
type StatsFilter struct {
	From    string
	To      string
	EmpCode string
}

func (f StatsFilter) params() map[string]string {
	return ReceiptQuery{From: f.From, To: f.To, EmpCode: f.EmpCode}.params()
}

func (c *Client) Summary(ctx context.Context, f StatsFilter) (*receipt.Summary, error) {
	var out receipt.Summary
	if err := c.do(ctx, http.MethodGet, "/api/stats/summary", nil, f.params(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ByCategory(ctx context.Context, f StatsFilter) ([]receipt.CategoryTotal, error) {
	var out []receipt.CategoryTotal
	if err := c.do(ctx, http.MethodGet, "/api/stats/by-category", nil, f.params(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ByDay(ctx context.Context, f StatsFilter) ([]receipt.DayTotal, error) {
	var out []receipt.DayTotal
	if err := c.do(ctx, http.MethodGet, "/api/stats/by-day", nil, f.params(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
