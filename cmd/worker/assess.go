package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/artifact"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/domain"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/scorer"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/service"
	"github.com/loan-guidance/loan-guidance-backend/internal/observability"
)

// RunAssess scores a request file offline. The artifact argument is a path
// or "builtin".
func RunAssess(w io.Writer, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: assess <artifact.json|builtin> <request.json>")
	}

	var src artifact.Source = artifact.BuiltinSource{}
	if args[0] != "builtin" {
		src = artifact.FileSource{Path: args[0]}
	}

	ctx := context.Background()
	store := artifact.NewStore(src, false, observability.Discard())
	if err := store.Load(ctx); err != nil {
		return err
	}

	body, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}
	req, err := domain.DecodeRequest(body)
	if err != nil {
		return err
	}

	svc := service.NewGuidanceService(scorer.NewLocalScorer(store), 10*time.Second, observability.Discard())
	res, err := svc.Assess(ctx, req)
	if err != nil {
		return err
	}

	risk := res.Assessment.Guidance.RiskAssessment
	fmt.Fprintf(w, "%s (score %.4f, model %s)\n", risk.RiskLevel, risk.RiskScore, res.Assessment.ModelVersion)
	if len(risk.KeyFactors) > 0 {
		factors := make([]string, 0, len(risk.KeyFactors))
		for _, f := range risk.KeyFactors {
			factors = append(factors, f.Factor)
		}
		fmt.Fprintf(w, "Key factors: %s\n", strings.Join(factors, ", "))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Assessment.Guidance)
}
