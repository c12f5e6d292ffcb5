// Command validate checks region world files before they are deployed to a
// regions directory. For each .json, .yaml or .yml file it checks:
//   - the file parses and names a world
//   - region ids are present, unique ignoring case and free of whitespace
//   - every cuboid has min <= max on each axis
//   - entry and exit flags are either allow or deny
//
// Overlapping regions are legal and reported as warnings; --strict turns
// them into failures.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/raidstone/wgevents/guard/config"
	"github.com/raidstone/wgevents/guard/entry"
)

var errValidationFailed = errors.New("some world files have errors")

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

// validateWorldFile loads and validates a single world file
func validateWorldFile(path string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
	}

	def, err := config.LoadWorldFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	global := false
	denied := 0
	for _, r := range def.Regions {
		if r.IsGlobal() {
			global = true
		}
		for _, flag := range []string{entry.FlagEntry, entry.FlagExit} {
			v, ok := r.Flags[flag]
			if !ok {
				continue
			}
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "allow":
			case "deny":
				denied++
			default:
				result.Valid = false
				result.Errors = append(result.Errors, fmt.Sprintf("Region %s: %s flag must be allow or deny, got %q", r.ID, flag, v))
			}
		}
	}

	for _, pair := range config.Overlaps(def) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Regions %s and %s overlap", pair[0], pair[1]))
	}

	if result.Valid {
		result.Info = append(result.Info, fmt.Sprintf("✓ World: %s", def.World))
		result.Info = append(result.Info, fmt.Sprintf("✓ Regions: %d", len(def.Regions)))
		if global {
			result.Info = append(result.Info, "✓ Global region defined")
		}
		if denied > 0 {
			result.Info = append(result.Info, fmt.Sprintf("✓ Deny flags: %d", denied))
		}
	}

	return result
}

// collectFiles expands directories into the world files they contain
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && config.IsWorldFile(e.Name()) {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func printResult(w io.Writer, result ValidationResult) {
	fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

	if result.Valid {
		fmt.Fprintln(w, "✅ VALID")
		for _, info := range result.Info {
			fmt.Fprintln(w, "  "+info)
		}
	} else {
		fmt.Fprintln(w, "❌ INVALID")
		for _, err := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+err)
		}
	}
	for _, warn := range result.Warnings {
		fmt.Fprintln(w, "  ⚠ "+warn)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		paths = []string{cmd.String("dir")}
	}

	files, err := collectFiles(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no world files found in %s", strings.Join(paths, ", "))
	}

	out := cmd.Writer
	allValid := true
	for _, file := range files {
		result := validateWorldFile(file)
		if cmd.Bool("strict") && len(result.Warnings) > 0 {
			result.Valid = false
			result.Errors = append(result.Errors, result.Warnings...)
			result.Warnings = nil
		}
		if !result.Valid {
			allValid = false
		}
		printResult(out, result)
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		fmt.Fprintln(out, "❌ Some world files have errors")
		return errValidationFailed
	}
	fmt.Fprintln(out, "✅ All world files are valid!")
	return nil
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate region world files",
		ArgsUsage: "[file or directory...]",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Usage:   "regions directory used when no paths are given",
				Value:   "regions",
				Sources: cli.EnvVars("REGIONS_DIR"),
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "treat overlapping regions as errors",
			},
		},
		Action: run,
	}
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
