package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	playground "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"latex-speech/internal/logger"
	"latex-speech/internal/types"
)

// MaxPatternFileSize caps how much YAML a single pattern file may hold.
const MaxPatternFileSize = 1024 * 1024

// patternFile is the YAML document shape of a pattern definition file.
type patternFile struct {
	Patterns []Definition `yaml:"patterns" validate:"required,dive"`
}

var defValidator = playground.New(playground.WithRequiredStructEnabled())

// LoadFile reads one YAML pattern file and constructs every pattern in it.
// The whole file is rejected on the first malformed definition; use Lint for
// a per-definition report.
func LoadFile(path string) ([]*Pattern, error) {
	defs, err := readDefinitions(path)
	if err != nil {
		return nil, err
	}

	patterns := make([]*Pattern, 0, len(defs))
	for _, def := range defs {
		p, err := New(def)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}

	logger.Info("pattern file loaded",
		logger.String("path", path),
		logger.Int("patterns", len(patterns)))
	return patterns, nil
}

// LoadDir loads every .yaml/.yml file under dir (sorted by name, for a
// deterministic store order) and returns the combined pattern list.
func LoadDir(dir string) ([]*Pattern, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to read pattern directory", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	var patterns []*Pattern
	for _, f := range files {
		loaded, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, loaded...)
	}

	if len(patterns) == 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"no patterns found", dir, nil)
	}
	return patterns, nil
}

// LintIssue is one problem found while linting a pattern file.
type LintIssue struct {
	PatternID string
	Err       error
}

// Lint reads a pattern file and reports every malformed definition instead
// of stopping at the first, for tooling that wants the full picture.
func Lint(path string) ([]*Pattern, []LintIssue, error) {
	defs, err := readDefinitions(path)
	if err != nil {
		return nil, nil, err
	}

	var (
		patterns []*Pattern
		issues   []LintIssue
	)
	seen := map[string]struct{}{}
	for _, def := range defs {
		if _, dup := seen[def.ID]; dup && def.ID != "" {
			issues = append(issues, LintIssue{
				PatternID: def.ID,
				Err: types.NewAppErrorWithDetails(types.ErrPattern,
					"duplicate pattern id", def.ID, nil),
			})
			continue
		}
		seen[def.ID] = struct{}{}

		p, err := New(def)
		if err != nil {
			issues = append(issues, LintIssue{PatternID: def.ID, Err: err})
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns, issues, nil
}

// readDefinitions reads and structurally validates one YAML file.
func readDefinitions(path string) ([]Definition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to stat pattern file", err)
	}
	if info.Size() > MaxPatternFileSize {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			fmt.Sprintf("pattern file exceeds %d bytes", MaxPatternFileSize), path, nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to read pattern file", err)
	}

	var file patternFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"failed to parse pattern file", path, err)
	}

	if err := defValidator.Struct(file); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"pattern file failed structural validation", path, err)
	}

	return file.Patterns, nil
}
