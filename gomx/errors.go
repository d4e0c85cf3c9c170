package gomx

import "errors"

// Errors
var (
	ErrBadRange        = errors.New("subset rank parameter out of range")
	ErrBadFormat       = errors.New("bad indicator encoding")
	ErrInvalidMatroid  = errors.New("basis exchange axiom violated")
	ErrExcluded        = errors.New("catalog combination is excluded")
	ErrNotFound        = errors.New("no entry at requested index")
	ErrSearchBudget    = errors.New("canonize search budget exhausted")
	ErrBadCatalogParam = errors.New("bad catalog param")
	ErrNilMatroid      = errors.New("nil matroid")
	ErrRankMismatch    = errors.New("subset size does not match matroid rank")
)
