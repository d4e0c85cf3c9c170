package main

import (
	"flag"
	"os"

	"github.com/matroid-systems/gomx/gomx"
	"github.com/matroid-systems/gomx/libmx"
	"github.com/plan-systems/klog"
)

var (
	groundSize = flag.Int("n", 4, "ground set size")
	rank       = flag.Int("r", 2, "matroid rank")
	tag        = flag.String("tag", "all", "catalog tag (e.g. all, unorientable)")
	verify     = flag.Bool("verify", false, "validate every entry and check canonical idempotence")
	rebuild    = flag.String("rebuild", "", "canonicalize + dedupe the input and write a fresh database file here")
)

func main() {

	flag.Set("logtostderr", "true")
	flag.Set("v", "2")

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	flag.Parse()

	pathname := flag.Arg(0)
	if pathname == "" {
		klog.Errorf("usage: gomx [-n N -r R -tag TAG] [-verify] [-rebuild OUT] <database-file>")
		os.Exit(2)
	}

	x, err := libmx.LoadIndexFile(pathname, *groundSize, *rank, *tag)
	if err != nil {
		klog.Fatalf("load failed: %v", err)
	}
	klog.Infof("(n=%d, r=%d, %q): %d isomorphism classes", x.N, x.R, x.Tag, x.Len())

	if *verify {
		verifyIndex(x)
	}
	if *rebuild != "" {
		rebuildIndex(x, *rebuild)
	}

	klog.Flush()
}

func verifyIndex(x *libmx.Index) {
	for i := 0; i < x.Len(); i++ {
		m, err := x.Lookup(i)
		if err != nil {
			klog.Fatalf("entry %d: %v", i, err)
		}
		if err = m.Validate(); err != nil {
			klog.Fatalf("entry %d: %v", i, err)
		}
		rep, err := m.Canonize(gomx.CanonizeOpts{})
		if err != nil {
			klog.Fatalf("entry %d: %v", i, err)
		}
		stored, _ := x.RepAt(i)
		if !rep.Equal(stored) {
			klog.Fatalf("entry %d is not canonical: stored %s, canonical %s", i, stored, rep)
		}
	}
	klog.Infof("verified %d entries", x.Len())
}

func rebuildIndex(x *libmx.Index, outPath string) {
	b, err := libmx.NewIndexBuilder(x.N, x.R, x.Tag)
	if err != nil {
		klog.Fatalf("%v", err)
	}
	b.Provenance = x.Provenance

	for m := range x.Stream().Outlet {
		if _, err := b.AddMatroid(m); err != nil {
			klog.Fatalf("%v", err)
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		klog.Fatalf("%v", err)
	}
	defer out.Close()

	if err = b.WriteTo(out); err != nil {
		klog.Fatalf("%v", err)
	}
	klog.Infof("wrote %d classes to %q", b.NumClasses(), outPath)
}
