package libmx

import (
	"github.com/alecthomas/participle/v2"
	"github.com/matroid-systems/gomx/gomx"
	"github.com/pkg/errors"
)

// BasisExpr is a textual basis list, e.g. "{0,1},{0,2},{1,2}".
type BasisExpr struct {
	Bases []*BasisTerm `(@@ (","? @@)*)?`
}

type BasisTerm struct {
	Elems []int64 `"{" (@Int (","? @Int)*)? "}"`
}

var parseBasisExpr = participle.MustBuild[BasisExpr]()

// ParseMatroid parses a basis list expression into a Matroid over (n, r).
//
// Per the advisory validation policy, no axiom checking is performed here;
// callers accepting untrusted input must call Validate on the result.
func ParseMatroid(expr string, n, r int) (*gomx.Matroid, error) {
	ast, err := parseBasisExpr.ParseString("", expr)
	if err != nil {
		return nil, errors.Wrapf(gomx.ErrBadFormat, "bad basis expression: %v", err)
	}

	m, err := gomx.NewMatroid(n, r)
	if err != nil {
		return nil, err
	}

	for _, term := range ast.Bases {
		sub := gomx.Subset(0)
		for _, elem := range term.Elems {
			if elem < 0 || elem >= int64(n) {
				return nil, errors.Wrapf(gomx.ErrBadRange, "element %d not in {0..%d}", elem, n-1)
			}
			sub |= gomx.SingleElem(int(elem))
		}
		if err := m.AddBasis(sub); err != nil {
			return nil, err
		}
	}
	return m, nil
}
