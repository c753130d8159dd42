// Command binhashctl is a small demonstration CLI driving a binhash
// table through its public operations from the shell: create a table,
// insert/lookup/delete keys, print bin-occupancy stats, and force a
// rebuild. It exists to exercise the library end to end, not as a
// production key-value store.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"github.com/tailscale/hujson"

	"binhash"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut *os.File) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "create":
		return cmdCreate(out, errOut, rest)
	case "insert":
		return cmdInsert(out, errOut, rest)
	case "lookup":
		return cmdLookup(out, errOut, rest)
	case "delete":
		return cmdDelete(out, errOut, rest)
	case "stats":
		return cmdStats(out, errOut, rest)
	case "rebuild":
		return cmdRebuild(out, errOut, rest)
	case "-h", "--help", "help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "binhashctl: unknown command %q\n", cmd)
		printUsage(errOut)
		return 1
	}
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "Usage: binhashctl <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  create   --config=<path>  describe a table built from config")
	fmt.Fprintln(w, "  insert   --config=<path> --key=N --word=N...")
	fmt.Fprintln(w, "  lookup   --config=<path> --key=N")
	fmt.Fprintln(w, "  delete   --config=<path> --key=N")
	fmt.Fprintln(w, "  stats    --config=<path>")
	fmt.Fprintln(w, "  rebuild  --config=<path> --ratio=0.5")
}

// configFlag registers the --config flag shared by every subcommand and
// resolves the effective binhash.Config, following the same
// defaults-then-file precedence the rest of the example pack's CLI
// tooling uses for its own config files.
func configFlag(fs *flag.FlagSet) func() (binhash.Config, error) {
	path := fs.String("config", "", "path to a JSON-with-comments config file (optional)")
	return func() (binhash.Config, error) {
		return loadConfig(*path)
	}
}

func loadConfig(path string) (binhash.Config, error) {
	cfg := binhash.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return binhash.Config{}, fmt.Errorf("binhashctl: reading config %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return binhash.Config{}, fmt.Errorf("binhashctl: invalid JSONC in %s: %w", path, err)
	}

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return binhash.Config{}, fmt.Errorf("binhashctl: invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func openTable(errOut *os.File, cfg binhash.Config) (*binhash.Table, int) {
	t, err := binhash.New(cfg)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return nil, 1
	}
	return t, 0
}

func cmdCreate(out, errOut *os.File, args []string) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	getConfig := configFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := getConfig()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	t, code := openTable(errOut, cfg)
	if code != 0 {
		return code
	}
	defer t.Destroy()

	fmt.Fprintf(out, "created table: bins=%d depth=%d keys=%d\n", t.Bins(), cfg.Depth, t.Keys())
	return 0
}

func cmdInsert(out, errOut *os.File, args []string) int {
	fs := flag.NewFlagSet("insert", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	getConfig := configFlag(fs)
	key := fs.Uint32("key", 0, "key to insert")
	words := fs.UintSlice("word", nil, "payload words (repeatable), count must match the config's data width")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := getConfig()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	t, code := openTable(errOut, cfg)
	if code != 0 {
		return code
	}
	defer t.Destroy()

	value := make([]uint32, len(*words))
	for i, w := range *words {
		value[i] = uint32(w)
	}

	if !t.Insert(*key, value) {
		fmt.Fprintf(errOut, "insert refused for key %d\n", *key)
		return 1
	}
	fmt.Fprintf(out, "inserted key %d\n", *key)
	return 0
}

func cmdLookup(out, errOut *os.File, args []string) int {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	getConfig := configFlag(fs)
	key := fs.Uint32("key", 0, "key to look up")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := getConfig()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	t, code := openTable(errOut, cfg)
	if code != 0 {
		return code
	}
	defer t.Destroy()

	v, ok := t.Lookup(*key)
	if !ok {
		fmt.Fprintf(out, "key %d: not found\n", *key)
		return 1
	}
	fmt.Fprintf(out, "key %d: %v\n", *key, v)
	return 0
}

func cmdDelete(out, errOut *os.File, args []string) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	getConfig := configFlag(fs)
	key := fs.Uint32("key", 0, "key to delete")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := getConfig()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	t, code := openTable(errOut, cfg)
	if code != 0 {
		return code
	}
	defer t.Destroy()

	if !t.Delete(*key) {
		fmt.Fprintf(errOut, "key %d not present\n", *key)
		return 1
	}
	fmt.Fprintf(out, "deleted key %d\n", *key)
	return 0
}

func cmdStats(out, errOut *os.File, args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	getConfig := configFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := getConfig()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	t, code := openTable(errOut, cfg)
	if code != 0 {
		return code
	}
	defer t.Destroy()

	fmt.Fprintln(out, t.Stats().String())
	return 0
}

func cmdRebuild(out, errOut *os.File, args []string) int {
	fs := flag.NewFlagSet("rebuild", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	getConfig := configFlag(fs)
	ratio := fs.Float64("ratio", 0.5, "target fill ratio")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := getConfig()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	t, code := openTable(errOut, cfg)
	if code != 0 {
		return code
	}
	defer t.Destroy()

	if err := t.Rebuild(*ratio); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	fmt.Fprintf(out, "rebuilt: bins=%d\n", t.Bins())
	return 0
}
