package taylor

import "github.com/rs/zerolog"

// Package logger; silent unless configured by the embedding
// application. Run-level conditions (step limit, parsed fallback) are
// reported here exactly once per run.
var logger = zerolog.Nop()

// SetLogger installs the logger used for run-level warnings.
func SetLogger(l zerolog.Logger) { logger = l }
