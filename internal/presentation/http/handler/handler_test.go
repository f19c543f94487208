package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sangkips/ecs-receipts/internal/application/service"
	"github.com/sangkips/ecs-receipts/internal/config"
	"github.com/sangkips/ecs-receipts/internal/directory"
	"github.com/sangkips/ecs-receipts/internal/infrastructure/database"
	"github.com/sangkips/ecs-receipts/internal/infrastructure/repository"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/handler"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/middleware"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/routes"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/validation"
	"github.com/sangkips/ecs-receipts/internal/preview"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/pkg/printer"
	"github.com/sangkips/ecs-receipts/pkg/utils"
)

const (
	adminCode    = "ADMIN1"
	employeeCode = "ECS497"
	password     = "secret123"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type testServer struct {
	t       *testing.T
	router  *gin.Engine
	wizards *service.WizardService
}

func testDirectory() *directory.Directory {
	return directory.New(
		[]directory.Employee{{Code: employeeCode, Name: "Jane Doe", Branch: "Mumbai"}},
		[]receipt.InvestorInfo{
			{InvestorID: "1001", InvestorName: "Ravi Kumar", Email: "ravi@example.com"},
			{InvestorID: "1002", InvestorName: "Anita Sharma"},
		},
		[]directory.Issuer{{Company: "ABC Mutual Fund", Schemes: []string{"Growth Fund", "Liquid Fund"}}},
		[]directory.Issuer{{Company: "REC Limited", Schemes: []string{"Tax Free Bond"}}},
		[]directory.InsuranceIssuer{{Company: "Secure Life", Subsections: []directory.InsuranceSection{
			{Name: "Term", Products: []string{"Term Shield"}},
		}}},
	)
}

type serverOptions struct {
	pdf     *preview.PDFRenderer
	printer printer.Printer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, serverOptions{})
}

func newTestServerWith(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	if opts.pdf == nil {
		opts.pdf = preview.NewPDFRenderer("")
	}
	if opts.printer == nil {
		opts.printer = printer.NewNullPrinter()
	}
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	db, err := database.NewSQLiteDB(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedDefaultData(db, config.AdminConfig{
		EmpCode: adminCode, Name: "Back Office", Password: password,
	}))

	cfg := &config.Config{}
	cfg.App.Name = "ecs-receipts-test"
	cfg.Jobs.IdempotencyTTL = time.Hour

	dir := testDirectory()
	jwt := utils.NewJWTManager("test-secret", time.Hour)
	userRepo := repository.NewUserRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	pdf := opts.pdf
	authService := service.NewAuthService(userRepo, jwt)
	userService := service.NewUserService(userRepo, repository.NewRoleRepository(db))
	receiptService := service.NewReceiptService(repository.NewReceiptRepository(db), pdf, nil)
	investorService := service.NewInvestorService(repository.NewInvestorRepository(db), dir)
	wizardService := service.NewWizardService(service.WizardDeps{
		Directory: dir,
		Receipts:  receiptService,
		PDF:       pdf,
		Store:     preview.NewMemoryStore(),
		IdleTTL:   time.Hour,
		Users:     authService,
	})

	_, err = userService.CreateUser(context.Background(), &service.CreateUserInput{
		EmpCode: employeeCode, Name: "Jane Doe", Branch: "Mumbai", Password: password,
	})
	require.NoError(t, err)

	h := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService, wizardService),
		User:     handler.NewUserHandler(userService),
		Receipt:  handler.NewReceiptHandler(receiptService, service.NewExportService(receiptService)),
		Stats:    handler.NewStatsHandler(service.NewStatsService(repository.NewStatsRepository(db))),
		Customer: handler.NewCustomerHandler(investorService),
		Catalog:  handler.NewCatalogHandler(dir),
		Wizard:   handler.NewWizardHandler(wizardService),
		Printer:  handler.NewPrinterHandler(service.NewPrinterService(opts.printer, receiptService, 0)),
	}
	router := routes.Setup(h, &routes.Deps{
		JWTManager:      jwt,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     middleware.NewUserRateLimiter(1000, time.Minute),
	})
	return &testServer{t: t, router: router, wizards: wizardService}
}

func (s *testServer) do(method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(code string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"emp_code": code, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &out)
	require.NotEmpty(s.t, out.Token)
	return out.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ecs-receipts-test")
}

func TestAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"emp_code": employeeCode, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"emp_code": "!", "password": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	token := s.login(employeeCode)
	w = s.do(http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		EmpCode string `json:"emp_code"`
	}
	decode(t, w, &me)
	assert.Equal(t, employeeCode, me.EmpCode)

	// employees cannot manage users
	w = s.do(http.MethodGet, "/api/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCatalog(t *testing.T) {
	s := newTestServer(t)
	token := s.login(employeeCode)

	w := s.do(http.MethodGet, "/api/catalog/employees/ecs497", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var emp map[string]string
	decode(t, w, &emp)
	assert.Equal(t, "Jane Doe", emp["employeeName"])

	w = s.do(http.MethodGet, "/api/catalog/employees/NOPE", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/catalog/issuers?category=mf", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var issuers []string
	decode(t, w, &issuers)
	assert.Equal(t, []string{"ABC Mutual Fund"}, issuers)

	w = s.do(http.MethodGet, "/api/catalog/issuers?category=GOLD", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodGet, "/api/catalog/schemes?category=INS&issuer=Secure+Life&ins_category=Term", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var products []string
	decode(t, w, &products)
	assert.Equal(t, []string{"Term Shield"}, products)
}

func TestReceipts_CreateListAndReplay(t *testing.T) {
	s := newTestServer(t)
	token := s.login(employeeCode)

	body := gin.H{
		"empCode":          employeeCode,
		"employeeName":     "Jane Doe",
		"investorId":       "1001",
		"investorName":     "Ravi Kumar",
		"product_category": "FD",
		"issuerCompany":    "REC Limited",
		"investmentAmount": 75000,
	}
	first := s.do(http.MethodPost, "/api/receipts", token, body, middleware.IdempotencyKeyHeader, "abc-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	var created struct {
		ID        string `json:"id"`
		ReceiptNo string `json:"receiptNo"`
		Status    string `json:"status"`
	}
	decode(t, first, &created)
	assert.NotEmpty(t, created.ReceiptNo)
	assert.Equal(t, "pending", created.Status)

	replay := s.do(http.MethodPost, "/api/receipts", token, body, middleware.IdempotencyKeyHeader, "abc-1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))

	w := s.do(http.MethodGet, "/api/receipts?category=fd", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Pagination.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, created.ID, page.Items[0].ID)

	// only the back office deletes
	w = s.do(http.MethodDelete, "/api/receipts/"+created.ID, token, gin.H{"reason": "typo"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := s.login(adminCode)
	w = s.do(http.MethodDelete, "/api/receipts/"+created.ID, admin, gin.H{"reason": "typo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/receipts/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/api/receipts/not-a-uuid", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceipts_Export(t *testing.T) {
	s := newTestServer(t)
	token := s.login(employeeCode)

	w := s.do(http.MethodPost, "/api/receipts", token, gin.H{
		"empCode": employeeCode, "investorId": "1002", "product_category": "MF", "investmentAmount": 1000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/receipts/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "1", w.Header().Get("X-Total-Count"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Receipts")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestWizard_FullFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login(employeeCode)

	var state struct {
		StepName    string `json:"step_name"`
		CanContinue bool   `json:"can_continue"`
		LastSavedID string `json:"last_saved_id"`
	}

	w := s.do(http.MethodPost, "/api/wizard/back", token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, "/api/wizard/employee", token, gin.H{"emp_code": ""})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/wizard/continue", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPut, "/api/wizard/employee", token, gin.H{"emp_code": "ecs497"})
	require.Equal(t, http.StatusOK, w.Code)
	var emp struct {
		Match struct {
			Found bool   `json:"found"`
			Name  string `json:"name"`
		} `json:"match"`
	}
	decode(t, w, &emp)
	assert.True(t, emp.Match.Found)
	assert.Equal(t, "Jane Doe", emp.Match.Name)

	w = s.do(http.MethodPost, "/api/wizard/continue", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.Equal(t, "investor", strings.ToLower(state.StepName))

	w = s.do(http.MethodGet, "/api/wizard/investors?q=ravi", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []receipt.InvestorInfo
	decode(t, w, &found)
	require.Len(t, found, 1)

	w = s.do(http.MethodPut, "/api/wizard/investor", token, gin.H{"investorId": "9999"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodPut, "/api/wizard/investor", token, gin.H{"investorId": "1001"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/wizard/continue", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPatch, "/api/wizard/product", token, gin.H{
		"category": "MF",
		"fields":   []gin.H{{"name": "issuer", "value": "Unknown AMC"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPatch, "/api/wizard/product", token, gin.H{
		"category": "MF",
		"fields": []gin.H{
			{"name": "issuer", "value": "ABC Mutual Fund"},
			{"name": "scheme", "value": "Growth Fund"},
			{"name": "investmentAmount", "value": "50000"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/wizard/preview.txt", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/wizard/continue", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/wizard/preview.txt", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ravi Kumar")

	w = s.do(http.MethodGet, "/api/wizard/preview.pdf", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, string(preview.StatusReady), w.Header().Get(handler.PreviewStatusHeader))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(http.MethodPost, "/api/wizard/save", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var saved struct {
		ID string `json:"id"`
	}
	decode(t, w, &saved)
	require.NotEmpty(t, saved.ID)

	w = s.do(http.MethodGet, "/api/wizard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &state)
	assert.Equal(t, saved.ID, state.LastSavedID)

	w = s.do(http.MethodGet, "/api/receipts/"+saved.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rec struct {
		EmpCode          string  `json:"empCode"`
		InvestorName     string  `json:"investorName"`
		SchemeName       string  `json:"schemeName"`
		InvestmentAmount float64 `json:"investmentAmount"`
	}
	decode(t, w, &rec)
	assert.Equal(t, employeeCode, rec.EmpCode)
	assert.Equal(t, "Ravi Kumar", rec.InvestorName)
	assert.Equal(t, "Growth Fund", rec.SchemeName)
	assert.Equal(t, 50000.0, rec.InvestmentAmount)
}

func TestStats(t *testing.T) {
	s := newTestServer(t)
	token := s.login(employeeCode)

	w := s.do(http.MethodPost, "/api/receipts", token, gin.H{
		"empCode": employeeCode, "investorId": "1001", "product_category": "MF", "investmentAmount": 1200,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/stats/summary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		TotalReceipts int64   `json:"totalReceipts"`
		TotalAmount   float64 `json:"totalAmount"`
	}
	decode(t, w, &summary)
	assert.Equal(t, int64(1), summary.TotalReceipts)
	assert.Equal(t, 1200.0, summary.TotalAmount)
}

type recordingPrinter struct {
	mu      sync.Mutex
	tickets [][]byte
}

func (p *recordingPrinter) Print(_ context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickets = append(p.tickets, append([]byte(nil), data...))
	return nil
}

func (p *recordingPrinter) IsConnected(context.Context) bool { return true }
func (p *recordingPrinter) Kind() string                    { return "network" }

func (s *testServer) createReceipt(token, empCode string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/receipts", token, gin.H{
		"receiptNo":        "ECS-20250314-4321",
		"empCode":          empCode,
		"investorId":       "1001",
		"investorName":     "Ravi Kumar",
		"product_category": "MF",
		"issuerCompany":    "ABC Mutual Fund",
		"schemeName":       "Growth Fund",
		"investmentAmount": 50000,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	decode(s.t, w, &created)
	return created.ID
}

func TestReceipts_PDF(t *testing.T) {
	s := newTestServer(t)
	token := s.login(employeeCode)
	admin := s.login(adminCode)

	own := s.createReceipt(token, employeeCode)
	other := s.createReceipt(admin, "ECS510")

	w := s.do(http.MethodGet, "/api/receipts/"+own+"/pdf", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(http.MethodGet, "/api/receipts/"+other+"/pdf", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/receipts/"+other+"/pdf", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReceipts_PDFAssetsMissing(t *testing.T) {
	s := newTestServerWith(t, serverOptions{
		pdf: preview.NewPDFRenderer(filepath.Join(t.TempDir(), "missing-logo.png")),
	})
	token := s.login(employeeCode)
	id := s.createReceipt(token, employeeCode)

	w := s.do(http.MethodGet, "/api/receipts/"+id+"/pdf", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	env := decode(t, w, nil)
	assert.False(t, env.Success)
	assert.Equal(t, preview.ErrNotAvailable.Error(), env.Message)
}

func TestReceipts_PrintWithoutPrinter(t *testing.T) {
	s := newTestServer(t)
	token := s.login(employeeCode)
	id := s.createReceipt(token, employeeCode)

	w := s.do(http.MethodPost, "/api/receipts/"+id+"/print", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReceipts_Print(t *testing.T) {
	p := &recordingPrinter{}
	s := newTestServerWith(t, serverOptions{printer: p})
	token := s.login(employeeCode)
	admin := s.login(adminCode)

	id := s.createReceipt(token, employeeCode)
	other := s.createReceipt(admin, "ECS510")

	w := s.do(http.MethodPost, "/api/receipts/"+id+"/print", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/receipts/"+other+"/print", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	p.mu.Lock()
	defer p.mu.Unlock()
	require.Len(t, p.tickets, 1)
	ticket := p.tickets[0]
	assert.True(t, bytes.HasPrefix(ticket, []byte{0x1B, 0x40}), "ticket starts with ESC @")
	assert.Contains(t, string(ticket), "ECS-20250314-4321")
	assert.Contains(t, string(ticket), "Ravi Kumar")
}

func TestReceipts_PageSize(t *testing.T) {
	s := newTestServer(t)
	token := s.login(employeeCode)
	for i := 0; i < 3; i++ {
		s.createReceipt(token, employeeCode)
	}

	var page struct {
		Items      []json.RawMessage `json:"items"`
		Pagination struct {
			PerPage    int   `json:"per_page"`
			Total      int64 `json:"total"`
			TotalPages int   `json:"total_pages"`
		} `json:"pagination"`
	}
	for _, query := range []string{"size=2", "per_page=2", "size=2&per_page=50"} {
		w := s.do(http.MethodGet, "/api/receipts?"+query, token, nil)
		require.Equal(t, http.StatusOK, w.Code, query)
		decode(t, w, &page)
		assert.Len(t, page.Items, 2, query)
		assert.Equal(t, 2, page.Pagination.PerPage, query)
		assert.Equal(t, int64(3), page.Pagination.Total, query)
		assert.Equal(t, 2, page.Pagination.TotalPages, query)
	}
}

func TestLogoutClosesWizard(t *testing.T) {
	s := newTestServer(t)
	token := s.login(employeeCode)

	w := s.do(http.MethodPut, "/api/wizard/employee", token, gin.H{"emp_code": employeeCode})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodPost, "/api/wizard/continue", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.wizards.Active())

	w = s.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, s.wizards.Active())

	token = s.login(employeeCode)
	w = s.do(http.MethodGet, "/api/wizard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var state struct {
		StepName string `json:"step_name"`
	}
	decode(t, w, &state)
	assert.Equal(t, "employee", strings.ToLower(state.StepName))
}
