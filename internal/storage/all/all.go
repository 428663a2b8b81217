// Package all wires the built-in storage backends into the driver registry.
//
// It exists purely for side effects: a blank import runs the init functions
// of each backend package, which register their factories with storage.Open.
// Importing it makes "sqlite" and "postgres" available at runtime while the
// rest of the application stays backend-agnostic.
package all

import (
	_ "github.com/ElGTahur/pokemon-tcg-analysis/internal/storage/postgres"
	_ "github.com/ElGTahur/pokemon-tcg-analysis/internal/storage/sqlite"
)
