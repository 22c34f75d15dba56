package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
)

const maxResponseBytes = 4 << 20

// RemoteScorer delegates scoring to an external model service over HTTP.
type RemoteScorer struct {
	baseURL     string
	httpClient  *http.Client
	lastVersion atomic.Value
}

// NewRemoteScorer creates a client for the model service at baseURL.
func NewRemoteScorer(baseURL string, timeout time.Duration) *RemoteScorer {
	return &RemoteScorer{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *RemoteScorer) Name() string { return "remote" }

// Assess posts the application to /v1/assess.
func (s *RemoteScorer) Assess(ctx context.Context, app domain.LoanApplication) (*domain.Assessment, error) {
	jsonData, err := json.Marshal(app)
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("marshal application: %w", err))
	}

	url := fmt.Sprintf("%s/v1/assess", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, unavailable(s.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, unavailable(s.Name(), fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, badResponse(s.Name(), fmt.Errorf("model service returned status %d: %s", resp.StatusCode, truncate(body, 200)))
	}

	var assessment domain.Assessment
	if err := json.Unmarshal(body, &assessment); err != nil {
		return nil, badResponse(s.Name(), fmt.Errorf("decode response: %w", err))
	}
	if err := checkAssessment(&assessment); err != nil {
		return nil, badResponse(s.Name(), err)
	}

	s.lastVersion.Store(assessment.ModelVersion)
	return &assessment, nil
}

// Status probes /health on the model service.
func (s *RemoteScorer) Status(ctx context.Context) Status {
	st := Status{Source: s.baseURL, Version: s.ModelVersion()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return st
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return st
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return st
	}
	st.Loaded = true

	var health struct {
		ModelVersion string `json:"model_version"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&health); err == nil && health.ModelVersion != "" {
		st.Version = health.ModelVersion
		s.lastVersion.Store(health.ModelVersion)
	}
	return st
}

// ModelVersion is the version reported by the last successful assessment
// or health probe.
func (s *RemoteScorer) ModelVersion() string {
	v, _ := s.lastVersion.Load().(string)
	return v
}

func checkAssessment(a *domain.Assessment) error {
	risk := a.Guidance.RiskAssessment
	switch {
	case a.ModelVersion == "":
		return errors.New("response has no model_version")
	case risk.RiskLevel != domain.RiskLow && risk.RiskLevel != domain.RiskModerate && risk.RiskLevel != domain.RiskHigh:
		return fmt.Errorf("unknown risk level %q", risk.RiskLevel)
	case risk.RiskScore < 0 || risk.RiskScore > 1:
		return fmt.Errorf("risk score %v outside [0,1]", risk.RiskScore)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
