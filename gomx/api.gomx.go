package gomx

// OnMatroidHit is a callback channel used to return Matroids meeting a set of
// selection criteria. Ownership of a Matroid travels through the channel.
type OnMatroidHit chan<- *Matroid

// CatalogAdder accepts matroids into a canonical catalog.
type CatalogAdder interface {

	// Tries to add the given matroid's isomorphism class to this catalog.
	// If true is returned, the class was not present and was added.
	TryAddMatroid(m *Matroid) bool
}

// Catalog wraps a database of canonical matroid representatives.
type Catalog interface {
	CatalogAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumClasses returns the number of isomorphism classes stored for (n,r).
	// Out of bounds parameters return 0.
	NumClasses(n, r int) int64

	// Select fires the given channel with each stored Matroid that meets the
	// selection criteria, in ascending canonical order within each (n,r).
	Select(sel MatroidSelector, onHit OnMatroidHit)

	Close() error
}

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs then closes this context.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed.
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a Catalog.
type CatalogOpts struct {
	DbPathName string // omit for an in-memory db
	ReadOnly   bool   // open in read-only mode
	GroundMax  int32  // largest ground set size this catalog will hold
}

// MatroidSelector bounds which stored matroids Select visits.
type MatroidSelector struct {
	MinGround int // smallest ground set size to visit (0 means 1)
	MaxGround int // largest ground set size to visit (0 means GroundMax)
	Rank      int // if non-zero, visit only matroids of this rank
}

// DefaultSelector selects every matroid in a catalog.
var DefaultSelector = MatroidSelector{}

// PrintOpts specifies what is emitted when printing a matroid.
type PrintOpts struct {
	Label     string // prefix label
	Indicator bool   // if set, prints the basis indicator string
	Bases     bool   // if set, prints the basis subsets
}

var DefaultPrintOpts = PrintOpts{
	Indicator: true,
}
