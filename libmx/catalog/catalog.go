package catalog

import (
	"runtime"

	"github.com/dgraph-io/badger/v4"
	"github.com/matroid-systems/gomx/gomx"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey => CatalogState

	n (byte), r (byte), canonical indicator LSM ([]byte)  => indicator text
		...

The LSM encoding of an indicator preserves canonical order under unsigned
byte comparison, so a prefix walk of (n, r) visits isomorphism classes in
ascending canonical order with no sort step.

***/

var gCatalogStateKey = []byte{0x00, 0x00, 0x01}

// catalog is a db wrapper for a canonical matroid catalog.
type catalog struct {
	ctx        gomx.CatalogContext
	readOnly   bool
	stateDirty bool
	state      CatalogState
	db         *badger.DB
}

func OpenCatalog(ctx gomx.CatalogContext, opts gomx.CatalogOpts) (gomx.Catalog, error) {
	if opts.GroundMax <= 0 {
		opts.GroundMax = 12
	}
	if opts.GroundMax > gomx.MaxGroundSize {
		return nil, errors.Wrapf(gomx.ErrBadCatalogParam, "GroundMax %d exceeds %d", opts.GroundMax, gomx.MaxGroundSize)
	}

	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gomx.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, the catalog ctx is considered blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state.MajorVers = 2024
		cat.state.MinorVers = 1
		cat.state.GroundMax = opts.GroundMax
		cat.state.NumClasses = make([]uint64, (opts.GroundMax+1)*(opts.GroundMax+1))
	}

	if err == nil {
		if cat.state.MajorVers != 2024 || cat.state.MinorVers != 1 {
			err = errors.New("catalog version is incompatible")
		} else if opts.GroundMax > cat.state.GroundMax {
			err = errors.New("catalog's GroundMax is below the requested GroundMax")
		}
	}

	if err != nil {
		cat.Close()
		return nil, err
	}

	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err == nil {
			item.Value(func(val []byte) error {
				return cat.state.Unmarshal(val)
			})
		}
		return err
	})
}

func (cat *catalog) flushState() {
	if cat.stateDirty && !cat.readOnly {
		err := cat.db.Update(func(txn *badger.Txn) error {
			stateBuf, err := cat.state.Marshal()
			if err != nil {
				return err
			}
			return txn.Set(gCatalogStateKey, stateBuf)
		})
		if err != nil {
			panic(err)
		}
		cat.stateDirty = false
	}
}

func (cat *catalog) Close() error {
	cat.flushState()
	if cat.db != nil {
		cat.db.Close()
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return nil
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) classIdx(n, r int) int {
	if n < 1 || r < 1 || int32(n) > cat.state.GroundMax || r > n {
		return -1
	}
	return n*(int(cat.state.GroundMax)+1) + r
}

func (cat *catalog) NumClasses(n, r int) int64 {
	ci := cat.classIdx(n, r)
	if ci < 0 {
		return 0
	}
	return int64(cat.state.NumClasses[ci])
}

// formClassKey appends the (n, r, canonical rep) LSM key for a matroid class.
func formClassKey(key []byte, n, r int, rep gomx.Indicator) []byte {
	key = append(key, byte(n), byte(r))
	key = rep.AppendLSM(key)
	return key
}

// TryAddMatroid canonicalizes m and adds its isomorphism class if not already present.
//
// If true is returned, the class was not present and was added.
func (cat *catalog) TryAddMatroid(m *gomx.Matroid) bool {
	if cat.readOnly {
		klog.Warningf("TryAddMatroid called on read-only catalog")
		return false
	}
	ci := cat.classIdx(m.GroundSize(), m.Rank())
	if ci < 0 {
		return false
	}

	rep, err := m.Canonize(gomx.CanonizeOpts{})
	if err != nil {
		return false
	}

	var keyBuf, valBuf [256]byte
	classKey := formClassKey(keyBuf[:0], m.GroundSize(), m.Rank(), rep)

	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	_, err = txn.Get(classKey)
	if err != badger.ErrKeyNotFound {
		if err != nil {
			panic(err)
		}
		return false
	}

	// Alloc a scrap buf since we can't use the stack for commit bufs
	obuf := make([]byte, 0, len(classKey)+rep.Count())
	obuf = append(obuf, classKey...)
	val := rep.AppendTo(valBuf[:0])
	obuf = append(obuf, val...)

	err = txn.Set(obuf[:len(classKey)], obuf[len(classKey):])
	if err == nil {
		err = txn.Commit()
	}
	if err != nil {
		panic(err)
	}

	cat.state.NumClasses[ci]++
	cat.stateDirty = true
	return true
}

func loadAndPushMatroid(item *badger.Item, n, r int, onHit gomx.OnMatroidHit) error {
	err := item.Value(func(val []byte) error {
		m, err := gomx.DecodeMatroid(string(val), n, r)
		if err != nil {
			return err
		}
		onHit <- m
		return nil
	})
	if err != nil {
		panic(err)
	}
	return err
}

// Select calls onHit with all stored matroids matching the given selector,
// in ascending canonical order within each (n, r).
func (cat *catalog) Select(sel gomx.MatroidSelector, onHit gomx.OnMatroidHit) {
	minGround := sel.MinGround
	if minGround < 1 {
		minGround = 1
	}
	maxGround := sel.MaxGround
	if maxGround == 0 || int32(maxGround) > cat.state.GroundMax {
		maxGround = int(cat.state.GroundMax)
	}

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   300,
	})
	defer it.Close()

	minKey := [1]byte{byte(minGround)}
	for it.Seek(minKey[:]); it.Valid(); it.Next() {
		curItem := it.Item()
		curKey := curItem.Key()

		// Stop when the ground size is over the max
		if int(curKey[0]) > maxGround {
			break
		}
		n, r := int(curKey[0]), int(curKey[1])
		if sel.Rank != 0 && r != sel.Rank {
			continue
		}
		loadAndPushMatroid(curItem, n, r, onHit)
	}
}
