package guidance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/artifact"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/scorer"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/service"
	"github.com/loan-guidance/loan-guidance-backend/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examplePayload = `{
	"monthly_income": 5000,
	"loan_amount": 50000,
	"interest_rate": 5.5,
	"loan_term_months": 36,
	"credit_score": 720,
	"age": 30,
	"borrower_type": "business",
	"sector_data": {"business": {"years": 5, "type": "retail"}},
	"payment_history": []
}`

func init() {
	gin.SetMode(gin.TestMode)
}

func fixedClock() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }

func setupRouter(sc scorer.Scorer) *gin.Engine {
	svc := service.NewGuidanceService(sc, time.Second, observability.Discard(), service.WithClock(fixedClock))

	r := gin.New()
	NewHandler(svc, observability.Discard()).Register(r)
	return r
}

func builtinScorer(t *testing.T) scorer.Scorer {
	t.Helper()
	store := artifact.NewStore(artifact.BuiltinSource{}, false, observability.Discard())
	require.NoError(t, store.Load(context.Background()))
	return scorer.NewLocalScorer(store)
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func detailFields(resp ErrorResponse) []string {
	out := make([]string, 0, len(resp.Details))
	for _, d := range resp.Details {
		out = append(out, d.Field)
	}
	return out
}

func TestPredict_ExamplePayload(t *testing.T) {
	r := setupRouter(builtinScorer(t))

	for _, path := range []string{"/predict", "/analyze-loan"} {
		t.Run(path, func(t *testing.T) {
			w := postJSON(r, path, examplePayload)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp PredictResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

			assert.Equal(t, "success", resp.Status)
			assert.Equal(t, "builtin-1.0.0", resp.ModelVersion)
			assert.Equal(t, domain.Summary{LoanAmount: 50000, TermMonths: 36, MonthlyIncome: 5000}, resp.RequestSummary)
			assert.Equal(t, domain.RiskLow, resp.Guidance.RiskAssessment.RiskLevel)
			assert.Len(t, resp.Guidance.PaymentPlan.PaymentSchedule, 36)
			assert.Equal(t, "2024-01-01", resp.Guidance.PaymentPlan.PaymentSchedule[0].DueDate)
		})
	}
}

func TestPredict_IdenticalInputIdenticalOutput(t *testing.T) {
	r := setupRouter(builtinScorer(t))

	first := postJSON(r, "/predict", examplePayload)
	second := postJSON(r, "/analyze-loan", examplePayload)

	require.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestPredict_ValidationErrors(t *testing.T) {
	r := setupRouter(builtinScorer(t))

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{
			name:   "missing credit score",
			body:   strings.Replace(examplePayload, `"credit_score": 720,`, "", 1),
			fields: []string{"credit_score"},
		},
		{
			name:   "wrong type",
			body:   strings.Replace(examplePayload, `"credit_score": 720`, `"credit_score": "excellent"`, 1),
			fields: []string{"credit_score"},
		},
		{
			name:   "out of range",
			body:   strings.Replace(examplePayload, `"age": 30`, `"age": 12`, 1),
			fields: []string{"age"},
		},
		{
			name:   "unknown borrower type",
			body:   strings.Replace(examplePayload, `"borrower_type": "business"`, `"borrower_type": "pirate"`, 1),
			fields: []string{"borrower_type"},
		},
		{
			name:   "malformed json",
			body:   `{"monthly_income": 5000,`,
			fields: []string{"body"},
		},
		{
			name:   "empty body",
			body:   ``,
			fields: []string{"body"},
		},
		{
			name:   "array instead of object",
			body:   `[]`,
			fields: []string{"body"},
		},
		{
			name: "every missing field is listed",
			body: `{}`,
			fields: []string{
				"monthly_income", "loan_amount", "interest_rate", "loan_term_months",
				"credit_score", "age", "borrower_type", "sector_data",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, "/predict", tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

			resp := decodeError(t, w)
			assert.Equal(t, "ValidationError", resp.Type)
			assert.Equal(t, tt.fields, detailFields(resp))
			for _, d := range resp.Details {
				assert.NotEmpty(t, d.Message)
			}
		})
	}
}

func TestPredict_ListsTypeAndMissingFieldErrorsTogether(t *testing.T) {
	r := setupRouter(builtinScorer(t))

	w := postJSON(r, "/predict", `{"credit_score": "abc", "loan_amount": "x", "age": 12}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	resp := decodeError(t, w)
	assert.Equal(t, "ValidationError", resp.Type)
	assert.ElementsMatch(t, []string{
		"credit_score", "loan_amount", "age",
		"monthly_income", "interest_rate", "loan_term_months", "borrower_type", "sector_data",
	}, detailFields(resp))
}

func TestPredict_HugeAmountsAreRejected(t *testing.T) {
	r := setupRouter(builtinScorer(t))

	w := postJSON(r, "/predict", strings.Replace(examplePayload, `"loan_amount": 50000`, `"loan_amount": 1e308`, 1))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Equal(t, []string{"loan_amount"}, detailFields(decodeError(t, w)))
}

func TestPredict_ModelNotLoaded(t *testing.T) {
	store := artifact.NewStore(artifact.FileSource{Path: "/missing/model.json"}, false, observability.Discard())
	require.Error(t, store.Load(context.Background()))
	r := setupRouter(scorer.NewLocalScorer(store))

	w := postJSON(r, "/predict", examplePayload)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "DependencyError", resp.Type)
	assert.Empty(t, resp.Details)
	assert.NotContains(t, w.Body.String(), "risk_score")
}

func TestPredict_RemoteScorerFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
		status  int
	}{
		{
			name: "upstream error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "model crashed", http.StatusInternalServerError)
			},
			timeout: time.Second,
			status:  http.StatusBadGateway,
		},
		{
			name: "upstream garbage",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("{\"risk\": "))
			},
			timeout: time.Second,
			status:  http.StatusBadGateway,
		},
		{
			name: "upstream too slow",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(200 * time.Millisecond)
			},
			timeout: 20 * time.Millisecond,
			status:  http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := setupRouter(scorer.NewRemoteScorer(srv.URL, tt.timeout))
			w := postJSON(r, "/predict", examplePayload)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, "DependencyError", decodeError(t, w).Type)
		})
	}
}

type brokenAssessor struct{}

func (brokenAssessor) Assess(context.Context, *domain.LoanApplicationRequest) (*service.Result, error) {
	return nil, errors.New("unexpected")
}

func TestPredict_UnexpectedErrorIs500(t *testing.T) {
	r := gin.New()
	NewHandler(brokenAssessor{}, observability.Discard()).Register(r)

	w := postJSON(r, "/predict", examplePayload)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "InternalError", decodeError(t, w).Type)
}

func TestRegister_RunsMiddlewareOnBothRoutes(t *testing.T) {
	calls := 0
	r := gin.New()
	NewHandler(brokenAssessor{}, observability.Discard()).Register(r, func(c *gin.Context) {
		calls++
		c.AbortWithStatus(http.StatusTooManyRequests)
	})

	assert.Equal(t, http.StatusTooManyRequests, postJSON(r, "/predict", examplePayload).Code)
	assert.Equal(t, http.StatusTooManyRequests, postJSON(r, "/analyze-loan", examplePayload).Code)
	assert.Equal(t, 2, calls)
}
