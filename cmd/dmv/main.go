// Package main implements the dmv CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sleepymurph/dmv/internal/progress"
	"github.com/sleepymurph/dmv/internal/reporoot"
	"github.com/sleepymurph/dmv/pkg/constants"
	"github.com/sleepymurph/dmv/pkg/dag"
	"github.com/sleepymurph/dmv/pkg/fstransfer"
	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/objectstore"
	"github.com/sleepymurph/dmv/pkg/walker"
	"github.com/sleepymurph/dmv/pkg/workdir"
)

// runWithProgress spawns the one intentional background goroutine in this
// program: a ticker that renders counter to stderr while fn runs. total is
// the expected unit count, or 0 if unknown.
func runWithProgress(label string, total uint64, fn func(counter *progress.Counter) error) error {
	counter := progress.NewCounter(label, total)
	watcherDone := make(chan struct{})
	go func() {
		progress.WatchStderr(os.Stderr, counter)
		close(watcherDone)
	}()

	err := fn(counter)
	counter.Finish()
	<-watcherDone
	return err
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = initCommand()
	case "hash-object":
		err = hashObjectCommand(os.Args[2:])
	case "show-object":
		err = showObjectCommand(os.Args[2:])
	case "parents":
		err = parentsCommand()
	case "ls-files":
		err = lsFilesCommand(os.Args[2:])
	case "extract-object":
		err = extractObjectCommand(os.Args[2:])
	case "cache-status":
		err = cacheStatusCommand(os.Args[2:])
	case "status":
		err = statusCommand(os.Args[2:])
	case "commit":
		err = commitCommand(os.Args[2:])
	case "log":
		err = logCommand(os.Args[2:])
	case "branch":
		err = branchCommand(os.Args[2:])
	case "show-ref":
		err = showRefCommand()
	case "fsck":
		err = fsckCommand()
	case "checkout":
		err = checkoutCommand(os.Args[2:])
	case "merge-base":
		err = mergeBaseCommand(os.Args[2:])
	case "merge":
		err = mergeCommand(os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`dmv - content-addressed version control

Usage:
  dmv <command> [arguments]

Commands:
  init                          create hidden directory, empty object store
  hash-object <path>            hash file/tree; print hash and path
  show-object [-t|--cbor] <rev> print full object, just type code, or CBOR
  parents                       print current parent hashes
  ls-files [--long|--stat] [<rev>]  list files in a tree
  extract-object <rev> <path>   materialize a tree or blob to path
  cache-status [--rebuild] <path>   print (or force-recompute) cache state
  status [-i] [<rev1> [<rev2>]] diff working tree or two revisions
  commit -m <message>           create commit, advance branch
  log [--hash-only]             print history
  branch [<name> [<rev>]]       list / create / move branches
  show-ref                      print all refs
  fsck                          verify all object hashes
  checkout <rev>                replace working tree
  merge-base <rev>...           print common ancestor
  merge <rev>...                three-way merge into working tree
`)
}

// findLayout ascends from the current directory to the repository root.
func findLayout() (reporoot.Layout, error) {
	return reporoot.FindFromWD()
}

func openWorkDir() (*workdir.WorkDir, error) {
	layout, err := findLayout()
	if err != nil {
		return nil, err
	}
	return workdir.Open(layout)
}

func openObjectStore() (*objectstore.Store, error) {
	layout, err := findLayout()
	if err != nil {
		return nil, err
	}
	return objectstore.Open(layout.HiddenDir)
}

func initCommand() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	layout := reporoot.Layout{
		WorkingRoot: wd,
		HiddenDir:   filepath.Join(wd, constants.HiddenDirName),
	}
	w, err := workdir.Init(layout)
	if err != nil {
		return err
	}
	return w.FlushState()
}

func hashObjectCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: hash-object <path>")
	}
	path := args[0]
	w, err := openWorkDir()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	var total uint64
	if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
		total = uint64(info.Size())
	}

	var hash objectkey.Key
	err = runWithProgress("hashing "+path, total, func(counter *progress.Counter) error {
		var err error
		hash, err = w.Transfer.HashPath(objectkey.Key{}, abs, counter)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", hash, path)
	return nil
}

func showObjectCommand(args []string) error {
	typeOnly := false
	cborOut := false
	var rest []string
	for _, a := range args {
		if a == "-t" {
			typeOnly = true
		} else if a == "--cbor" {
			cborOut = true
		} else {
			rest = append(rest, a)
		}
	}
	if len(rest) < 1 {
		return fmt.Errorf("usage: show-object [-t|--cbor] <rev>")
	}
	store, err := openObjectStore()
	if err != nil {
		return err
	}
	hash, err := store.FindObject(objectstore.ParseRevSpec(rest[0]))
	if err != nil {
		return err
	}
	handle, err := store.OpenObject(hash)
	if err != nil {
		return err
	}
	if typeOnly {
		fmt.Println(handle.Header().Type)
		return nil
	}
	if cborOut {
		obj, err := handle.ReadContent()
		if err != nil {
			return err
		}
		data, err := dag.EncodeCBOR(obj)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
	if handle.Header().Type == dag.TypeBlob {
		fmt.Printf("blob %d bytes\n", handle.Header().ContentSize)
		return nil
	}
	obj, err := handle.ReadContent()
	if err != nil {
		return err
	}
	fmt.Print(dag.Describe(obj))
	return nil
}

func parentsCommand() error {
	w, err := openWorkDir()
	if err != nil {
		return err
	}
	for _, parent := range w.Parents() {
		fmt.Println(parent)
	}
	return nil
}

type lsFilesOp struct {
	store *objectstore.Store
	long  bool
	stat  bool
}

func (op *lsFilesOp) ShouldDescend(path string, node objectstore.WalkNode) bool {
	return node.IsTree()
}
func (op *lsFilesOp) PreDescend(path string, node objectstore.WalkNode) error { return nil }
func (op *lsFilesOp) NoDescend(path string, node objectstore.WalkNode) (struct{}, error) {
	switch {
	case op.stat:
		size, err := op.store.ContentSize(node)
		if err != nil {
			return struct{}{}, err
		}
		fmt.Printf("%8d %s\n", size, path)
	case op.long:
		fmt.Printf("%s %s %s\n", node.Hash, node.Type, path)
	default:
		fmt.Println(path)
	}
	return struct{}{}, nil
}
func (op *lsFilesOp) PostDescend(path string, node objectstore.WalkNode, children walker.ChildMap[struct{}]) (struct{}, error) {
	return struct{}{}, nil
}

func lsFilesCommand(args []string) error {
	long := false
	stat := false
	var rest []string
	for _, a := range args {
		switch a {
		case "-v", "--long":
			long = true
		case "--stat":
			stat = true
		default:
			rest = append(rest, a)
		}
	}

	var store *objectstore.Store
	var hash objectkey.Key
	if len(rest) > 0 {
		s, err := openObjectStore()
		if err != nil {
			return err
		}
		h, err := s.FindObject(objectstore.ParseRevSpec(rest[0]))
		if err != nil {
			return err
		}
		store, hash = s, h
	} else {
		w, err := openWorkDir()
		if err != nil {
			return err
		}
		head, ok := w.Head()
		if !ok {
			return fmt.Errorf("no commit specified and no parent commit")
		}
		if subtree, ok := w.Subtree(); ok {
			sub, found, err := w.Objects.LookupTreePath(head, subtree)
			if err != nil {
				return err
			}
			if found {
				head = sub
			}
		}
		store, hash = w.Objects, head
	}

	op := &lsFilesOp{store: store, long: long, stat: stat}
	_, err := walker.Walk[objectkey.Key, objectstore.WalkNode, struct{}](store, store, op, hash)
	return err
}

func extractObjectCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: extract-object <rev> <path>")
	}
	w, err := openWorkDir()
	if err != nil {
		return err
	}
	hash, err := w.Objects.FindObject(objectstore.ParseRevSpec(args[0]))
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(args[1])
	if err != nil {
		return err
	}

	var total uint64
	if node, err := w.Objects.LookupNode(hash); err == nil && !node.IsTree() {
		if size, err := w.Objects.ContentSize(node); err == nil {
			total = size
		}
	}

	return runWithProgress("extracting "+args[0], total, func(counter *progress.Counter) error {
		return w.Transfer.ExtractObject(hash, abs, counter)
	})
}

func cacheStatusCommand(args []string) error {
	rebuild := false
	var rest []string
	for _, a := range args {
		if a == "--rebuild" {
			rebuild = true
		} else {
			rest = append(rest, a)
		}
	}
	if len(rest) < 1 {
		return fmt.Errorf("usage: cache-status [--rebuild] <path>")
	}
	path := rest[0]
	w, err := openWorkDir()
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if rebuild {
		dir := filepath.Dir(abs)
		w.Transfer.Files.Cache.Rebuild(dir)
		cache, err := w.Transfer.Files.Cache.For(dir)
		if err != nil {
			return err
		}
		if err := cache.Remove(filepath.Base(abs)); err != nil {
			return err
		}
		hash, err := w.Transfer.Files.HashFile(abs, w.Objects, nil)
		if err != nil {
			return err
		}
		fmt.Printf("rebuilt %s %s\n", hash, path)
		return nil
	}

	node, err := w.Transfer.Files.LookupNode(abs)
	if err != nil {
		return err
	}
	if node.Hash != nil {
		fmt.Printf("cached %s %s\n", *node.Hash, path)
	} else {
		fmt.Printf("not cached %s\n", path)
	}
	return nil
}

func statusCommand(args []string) error {
	showIgnored := false
	var rest []string
	for _, a := range args {
		if a == "-i" || a == "--ignored" {
			showIgnored = true
		} else {
			rest = append(rest, a)
		}
	}

	w, err := openWorkDir()
	if err != nil {
		return err
	}

	switch len(rest) {
	case 0:
		return w.Status(os.Stdout, showIgnored)
	case 1:
		rev := objectstore.ParseRevSpec(rest[0])
		if rev.Path == "" {
			if subtree, ok := w.Subtree(); ok {
				rev.Path = subtree
			}
		}
		from, err := w.Objects.FindObject(rev)
		if err != nil {
			return err
		}
		return w.StatusAgainst(os.Stdout, from, showIgnored)
	case 2:
		from, err := w.Objects.FindObject(objectstore.ParseRevSpec(rest[0]))
		if err != nil {
			return err
		}
		to, err := w.Objects.FindObject(objectstore.ParseRevSpec(rest[1]))
		if err != nil {
			return err
		}
		tree, err := fstransfer.TreeDiff(w.Objects, from, to)
		if err != nil {
			return err
		}
		fstransfer.PrintTree(os.Stdout, "", tree, showIgnored)
		return nil
	default:
		return fmt.Errorf("usage: status [-i] [<rev1> [<rev2>]]")
	}
}

func commitCommand(args []string) error {
	var message string
	for i := 0; i < len(args); i++ {
		if args[i] == "-m" && i+1 < len(args) {
			message = args[i+1]
			i++
		}
	}
	if message == "" {
		return fmt.Errorf("usage: commit -m <message>")
	}
	w, err := openWorkDir()
	if err != nil {
		return err
	}
	branch, hash, err := w.Commit(message)
	if err != nil {
		return err
	}
	if branch == "" {
		branch = "<detached head>"
	}
	fmt.Printf("%s is now %s\n", branch, hash)
	return nil
}

func logCommand(args []string) error {
	hashOnly := false
	for _, a := range args {
		if a == "--hash-only" {
			hashOnly = true
		}
	}
	w, err := openWorkDir()
	if err != nil {
		return err
	}
	return w.Log(os.Stdout, hashOnly)
}

func branchCommand(args []string) error {
	w, err := openWorkDir()
	if err != nil {
		return err
	}
	switch len(args) {
	case 0:
		current, _ := w.Branch()
		for name := range w.Objects.Refs() {
			if name == current {
				fmt.Print("* ")
			} else {
				fmt.Print("  ")
			}
			fmt.Println(name)
		}
		return nil
	case 1:
		_, err := w.UpdateRefToHead(args[0])
		if err != nil {
			return err
		}
		return w.Checkout(objectstore.RevSpec{RevName: args[0]})
	default:
		_, commit, _, err := w.Objects.Lookup(objectstore.ParseRevSpec(args[1]))
		if err != nil {
			return err
		}
		return w.Objects.UpdateRef(args[0], commit)
	}
}

func showRefCommand() error {
	store, err := openObjectStore()
	if err != nil {
		return err
	}
	for name, hash := range store.Refs() {
		fmt.Printf("%s %s\n", hash, name)
	}
	return nil
}

func fsckCommand() error {
	store, err := openObjectStore()
	if err != nil {
		return err
	}
	report, err := store.Fsck()
	if err != nil {
		return err
	}

	if len(report.Mismatches) > 0 {
		lastDigest, hadLast, err := store.LastFsckDigest()
		if err != nil {
			return err
		}
		if hadLast && lastDigest == report.ReportDigest {
			fmt.Printf("%d corrupt objects, unchanged since last fsck\n", len(report.Mismatches))
		} else {
			for _, m := range report.Mismatches {
				fmt.Printf("Corrupt object %s: expected %s, actual %s\n", m.Path, m.ExpectedKey, m.ActualKey)
			}
		}
	}
	if err := store.RecordFsckDigest(report.ReportDigest); err != nil {
		return err
	}

	for _, objType := range []dag.ObjectType{dag.TypeBlob, dag.TypeChunkedBlob, dag.TypeTree, dag.TypeCommit} {
		ts, ok := report.Stats[objType]
		if !ok {
			continue
		}
		fmt.Printf("%-4s count=%d mean=%.1f stddev=%.1f\n", objType, ts.Count, ts.Mean, ts.StdDev)
	}

	if len(report.Mismatches) == 0 {
		fmt.Println("All objects OK")
		return nil
	}
	return fmt.Errorf("repository has corrupt objects")
}

func checkoutCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: checkout <rev>")
	}
	w, err := openWorkDir()
	if err != nil {
		return err
	}
	return w.Checkout(objectstore.ParseRevSpec(args[0]))
}

func mergeBaseCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: merge-base <rev>...")
	}
	store, err := openObjectStore()
	if err != nil {
		return err
	}
	var hashes []objectkey.Key
	for _, a := range args {
		h, err := store.FindObject(objectstore.ParseRevSpec(a))
		if err != nil {
			return err
		}
		hashes = append(hashes, h)
	}
	ancestor, ok, err := store.FindCommonAncestor(hashes...)
	if err != nil {
		return err
	}
	if ok {
		fmt.Println(ancestor)
	}
	return nil
}

func conflictKey(k *objectkey.Key) string {
	if k == nil {
		return "<absent>"
	}
	return k.String()
}

func mergeCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: merge <rev>...")
	}
	w, err := openWorkDir()
	if err != nil {
		return err
	}
	var revs []objectstore.RevSpec
	for _, a := range args {
		revs = append(revs, objectstore.ParseRevSpec(a))
	}

	var conflicts []fstransfer.Conflict
	err = runWithProgress("merging", 0, func(counter *progress.Counter) error {
		var err error
		conflicts, err = w.Merge(revs, counter)
		return err
	})
	if err != nil {
		return err
	}
	for _, c := range conflicts {
		fmt.Fprintf(os.Stderr, "conflict: %s ancestor=%s theirs=%s ours=%s\n",
			c.Path, conflictKey(c.Ancestor), conflictKey(c.Theirs), conflictKey(c.Ours))
	}
	return nil
}
