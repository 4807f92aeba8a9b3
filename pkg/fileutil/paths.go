package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const outputSuffix = "_virtuoso_steps.json"

func isPattern(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

func isRegularFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// ExpandInputs turns the command line arguments into a list of source files.
// An argument naming an existing file is taken literally even when it holds
// glob metacharacters. Other glob patterns (including ** segments) are
// expanded to regular files in lexical order; remaining literal paths are kept
// as given so a missing file surfaces as a read error later. Duplicates are
// dropped, first occurrence wins.
func ExpandInputs(args []string) ([]string, error) {
	var result []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}

	for _, arg := range args {
		if !isPattern(arg) || isRegularFile(arg) {
			add(arg)
			continue
		}

		if !doublestar.ValidatePattern(filepath.ToSlash(arg)) {
			return nil, fmt.Errorf("invalid glob pattern %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", arg)
		}
		slices.Sort(matches)
		for _, m := range matches {
			add(m)
		}
	}

	return result, nil
}

// OutputPathFor names the steps file for input inside outputDir:
// tests/Test_Login.py -> <outputDir>/Test_Login_virtuoso_steps.json.
func OutputPathFor(input, outputDir string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.HasPrefix(outputDir, "s3://") {
		return strings.TrimSuffix(outputDir, "/") + "/" + stem + outputSuffix
	}
	return filepath.Join(outputDir, stem+outputSuffix)
}
