package codegen

import (
	"bytes"

	"github.com/tipy-lang/tipc/pkg/config"
	"github.com/tipy-lang/tipc/pkg/ir"
)

// Backend turns an IR program into target assembly.
type Backend interface {
	// GenerateIR renders the backend's intermediate text (for --dump-ir).
	GenerateIR(prog *ir.Program, cfg *config.Config) (string, error)
	// Generate produces assembly for the configured target.
	Generate(prog *ir.Program, cfg *config.Config) (*bytes.Buffer, error)
}
