package libmx

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matroid-systems/gomx/gomx"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

type indexKey struct {
	n, r int
	tag  string
}

// Combinations whose catalogs are too large to ship; requests for them fail
// up front rather than producing an empty load.
var gExcluded = map[indexKey]struct{}{
	{12, 3, "all"}:          {},
	{12, 3, "unorientable"}: {},
}

// IsExcluded returns true if the (n, r, tag) catalog is declared excluded.
func IsExcluded(n, r int, tag string) bool {
	_, excluded := gExcluded[indexKey{n, r, tag}]
	return excluded
}

// Index is a loaded, read-only (n, r, tag) catalog: an ordered collection of
// canonical representatives addressable by a zero-based index. Once loaded it
// is an immutable snapshot, safe for unsynchronized concurrent lookups.
type Index struct {
	N   int
	R   int
	Tag string

	// Provenance carries the file's leading '#' comment lines (source URL,
	// citation, update history). Opaque to the parser.
	Provenance []string

	tab  *gomx.RankTable
	reps []gomx.Indicator
}

// LoadIndex parses a RevLex database stream for (n, r, tag).
//
// Each non-comment, non-blank line is "<decimal index>: <indicator>". Indices
// must be 0-based, contiguous, and strictly increasing, with the indicators in
// non-decreasing canonical order. Any malformed line aborts the whole load.
func LoadIndex(src io.Reader, n, r int, tag string) (*Index, error) {
	if IsExcluded(n, r, tag) {
		return nil, errors.Wrapf(gomx.ErrExcluded, "(n=%d, r=%d, tag=%q) is too large to ship", n, r, tag)
	}
	tab, err := gomx.GetRankTable(n, r)
	if err != nil {
		return nil, err
	}

	x := &Index{
		N:   n,
		R:   r,
		Tag: tag,
		tab: tab,
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case len(line) == 0:
			continue
		case line[0] == '#':
			x.Provenance = append(x.Provenance, strings.TrimSpace(line[1:]))
			continue
		}

		idxStr, indStr, found := strings.Cut(line, ":")
		if !found {
			return nil, errors.Wrapf(gomx.ErrBadFormat, "line %d: missing ':' separator", lineNum)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(idxStr))
		if err != nil {
			return nil, errors.Wrapf(gomx.ErrBadFormat, "line %d: bad entry index %q", lineNum, idxStr)
		}
		if idx != len(x.reps) {
			return nil, errors.Wrapf(gomx.ErrBadFormat,
				"line %d: entry index %d out of order (want %d)", lineNum, idx, len(x.reps))
		}

		ind, err := gomx.ParseIndicator(strings.TrimSpace(indStr), n, r)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNum)
		}
		if len(x.reps) > 0 && x.reps[len(x.reps)-1].Compare(ind) > 0 {
			return nil, errors.Wrapf(gomx.ErrBadFormat,
				"line %d: indicator sorts below the preceding entry", lineNum)
		}
		x.reps = append(x.reps, ind)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read failed at line %d", lineNum)
	}

	return x, nil
}

// LoadIndexFile loads the RevLex database at the given path, releasing the
// file handle on all exit paths.
func LoadIndexFile(pathname string, n, r int, tag string) (*Index, error) {
	if IsExcluded(n, r, tag) {
		return nil, errors.Wrapf(gomx.ErrExcluded, "(n=%d, r=%d, tag=%q) is too large to ship", n, r, tag)
	}

	file, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	x, err := LoadIndex(file, n, r, tag)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %q", pathname)
	}
	klog.V(2).Infof("loaded %d representatives from %q", x.Len(), pathname)
	return x, nil
}

// Len returns the number of representatives in this Index.
func (x *Index) Len() int {
	return len(x.reps)
}

// RepAt returns the canonical representative at the given index.
func (x *Index) RepAt(i int) (gomx.Indicator, error) {
	if i < 0 || i >= len(x.reps) {
		return gomx.Indicator{}, errors.Wrapf(gomx.ErrNotFound, "index %d of %d entries", i, len(x.reps))
	}
	return x.reps[i], nil
}

// Lookup decodes the matroid stored at the given index.
func (x *Index) Lookup(i int) (*gomx.Matroid, error) {
	rep, err := x.RepAt(i)
	if err != nil {
		return nil, err
	}
	return gomx.NewMatroidFromIndicator(rep, x.N, x.R)
}

// Stream yields the stored matroids in ascending representative order. Each
// call starts a fresh enumeration; halt the stream to stop partway.
func (x *Index) Stream() *gomx.MatroidStream {
	next := gomx.NewMatroidStream()

	go func() {
		for _, rep := range x.reps {
			m, err := gomx.NewMatroidFromIndicator(rep, x.N, x.R)
			if err != nil {
				panic(err) // reps were length-checked at load
			}
			if !next.TryPush(m) {
				break
			}
		}
		next.Close()
	}()

	return next
}
