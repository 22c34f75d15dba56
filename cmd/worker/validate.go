package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/artifact"
)

// RunValidate checks a model artifact file before it is uploaded.
func RunValidate(w io.Writer, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: validate <artifact.json>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	a, err := artifact.Parse(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "OK %s: version=%s features=%d sectors=%d thresholds=%.2f/%.2f\n",
		args[0], a.Version, len(a.RiskModel.Features), len(a.Sectors), a.Thresholds.Low, a.Thresholds.High)
	return nil
}
