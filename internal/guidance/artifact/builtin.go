package artifact

import (
	"context"
	_ "embed"
)

//go:embed builtin_model.json
var builtinModel []byte

// Builtin returns the model shipped with the binary. It is used when no
// artifact can be fetched from the configured source.
func Builtin() *Artifact {
	a, err := Parse(builtinModel)
	if err != nil {
		panic("builtin model artifact is invalid: " + err.Error())
	}
	return a
}

// BuiltinSource serves the embedded artifact.
type BuiltinSource struct{}

func (BuiltinSource) Name() string { return "builtin" }

func (BuiltinSource) Fetch(_ context.Context, _ string) (*Fetched, error) {
	return &Fetched{Data: builtinModel, ETag: "builtin"}, nil
}
