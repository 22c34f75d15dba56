package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunValidate(t *testing.T) {
	var out bytes.Buffer
	path := writeFile(t, "model.json", `{"version":"v9","risk_model":{"intercept":0,
		"features":[{"name":"credit_score","mean":680,"std":80,"weight":-1}]},
		"thresholds":{"low":0.3,"high":0.7},"default_sector_risk":0.5}`)

	require.NoError(t, RunValidate(&out, []string{path}))
	assert.Contains(t, out.String(), "version=v9 features=1")

	bad := writeFile(t, "bad.json", `{"version":"v9","risk_model":{"features":[{"name":"shoe_size","std":1}]},"thresholds":{"low":0.3,"high":0.7}}`)
	assert.Error(t, RunValidate(&out, []string{bad}))
	assert.Error(t, RunValidate(&out, nil))
}

func TestRunAssess(t *testing.T) {
	var out bytes.Buffer
	req := writeFile(t, "req.json", `{"monthly_income": 5000, "loan_amount": 50000, "interest_rate": 5.5,
		"loan_term_months": 36, "credit_score": 720, "age": 30, "borrower_type": "business",
		"sector_data": {"business": {"years": 5, "type": "retail"}}, "start_date": "2024-01-01"}`)

	require.NoError(t, RunAssess(&out, []string{"builtin", req}))
	assert.Contains(t, out.String(), "Low Risk")
	assert.Contains(t, out.String(), "builtin-1.0.0")
	assert.Contains(t, out.String(), `"payment_schedule"`)
}

func TestRunAssess_InvalidRequest(t *testing.T) {
	var out bytes.Buffer
	req := writeFile(t, "req.json", `{"monthly_income": "lots"}`)

	err := RunAssess(&out, []string{"builtin", req})
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "monthly_income", verr.Fields[0].Field)
}
