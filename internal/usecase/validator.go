package usecase

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/naka-gawa/game-center/internal/domain"
	"github.com/naka-gawa/game-center/internal/report"
	"github.com/naka-gawa/game-center/internal/server"
	"github.com/naka-gawa/game-center/internal/store"
)

//go:embed schema/registry.schema.json
var registrySchema []byte

var (
	// readmeAIMarkers are the generic phrases a game README may use to
	// declare it was built with AI.
	readmeAIMarkers = []string{"built with", "ai", "copilot"}
	gridMarkers     = []string{"gameGrid", "game-grid"}
)

// Validator checks the repository layout against the registry.
type Validator struct {
	root   string
	out    io.Writer
	logger *zap.Logger
}

// NewValidator creates a Validator for the repository at root.
func NewValidator(root string, out io.Writer, logger *zap.Logger) *Validator {
	return &Validator{root: root, out: out, logger: logger}
}

// Run performs every check, printing one line per check and a summary.
// Checks are independent: a failure never prevents the remaining checks.
func (v *Validator) Run() *report.Tally {
	tally := report.New(v.out)
	tally.Section("🧪 Running Game Center Structure Tests")
	tally.Note("Repository root: %s", v.root)

	games := v.checkRegistry(tally)
	if games != nil {
		tally.Section("Testing game entries...")
		for i, entry := range games {
			v.checkGame(tally, i, entry)
		}
	}
	v.checkSite(tally)

	tally.Summary()
	return tally
}

// checkRegistry validates games.json and returns its games, or nil when the
// document has no games array.
func (v *Validator) checkRegistry(tally *report.Tally) []any {
	tally.Section("Testing games.json...")
	registryPath := filepath.Join(v.root, domain.RegistryFile)

	tally.Assert("games.json exists", exists(registryPath))

	var data []byte
	var doc map[string]any
	tally.Check("games.json is valid JSON", func() error {
		var err error
		if data, err = os.ReadFile(registryPath); err != nil {
			return err
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		return nil
	})

	games, ok := doc["games"].([]any)
	if !tally.Assert(`games.json has "games" array`, ok) {
		return nil
	}
	tally.Check("games.json matches registry schema", func() error {
		return validateSchema(data)
	})
	tally.Check("game ids are unique", func() error {
		seen := make(map[string]bool)
		var dups []string
		for _, entry := range games {
			id, _ := field(entry, "id").(string)
			if id != "" && seen[id] {
				dups = append(dups, id)
			}
			seen[id] = true
		}
		if len(dups) > 0 {
			return fmt.Errorf("duplicate ids %s", strings.Join(dups, ", "))
		}
		return nil
	})
	return games
}

func (v *Validator) checkGame(tally *report.Tally, index int, entry any) {
	id, _ := field(entry, "id").(string)
	if id == "" {
		id = "unknown"
	}
	prefix := fmt.Sprintf("Game %d (%s)", index+1, id)

	for _, name := range []string{"id", "name"} {
		s, _ := field(entry, name).(string)
		tally.Assert(fmt.Sprintf(`%s: has "%s" field`, prefix, name), strings.TrimSpace(s) != "")
	}
	for _, name := range []string{"description", "status", "path", "createdWith", "model"} {
		s, _ := field(entry, name).(string)
		tally.Assert(fmt.Sprintf(`%s: has "%s" field`, prefix, name), s != "")
	}

	_, isArray := field(entry, "prLinks").([]any)
	tally.Assert(prefix+`: has "prLinks" array`, isArray)

	prCountOK := true
	if obj, _ := entry.(map[string]any); obj != nil {
		if raw, present := obj["prCount"]; present {
			n, isNumber := raw.(float64)
			prCountOK = isNumber && n >= 0
		}
	}
	tally.Assert(prefix+`: has "prCount" field (number)`, prCountOK)

	gamePath, _ := field(entry, "path").(string)
	if gamePath != "" {
		model, _ := field(entry, "model").(string)
		v.checkGameFiles(tally, prefix, gamePath, model)
	}
}

func (v *Validator) checkGameFiles(tally *report.Tally, prefix, gamePath, model string) {
	dir := filepath.Join(v.root, filepath.FromSlash(gamePath))
	v.logger.Debug("checking game directory", zap.String("dir", dir))

	tally.Assert(fmt.Sprintf("%s: directory exists at %s", prefix, gamePath), isDir(dir))
	tally.Assert(prefix+": has "+server.IndexFile, isFile(filepath.Join(dir, server.IndexFile)))
	readmePath := filepath.Join(dir, "README.md")
	tally.Assert(prefix+": has README.md", isFile(readmePath))

	infoPath := filepath.Join(dir, domain.GameInfoFile)
	if exists(infoPath) {
		tally.Assert(prefix+": has game-info.yaml", isFile(infoPath))
		content, err := os.ReadFile(infoPath)
		if err != nil {
			tally.Fail(fmt.Sprintf("%s: Error reading game-info.yaml - %v", prefix, err))
		} else {
			text := string(content)
			tally.Assert(prefix+": game-info.yaml is readable", len(content) > 0)
			tally.Assert(prefix+": game-info.yaml has pull_requests section", strings.Contains(text, "pull_requests:"))
			tally.Assert(prefix+": game-info.yaml has stats section", strings.Contains(text, "stats:"))
			tally.Check(prefix+": game-info.yaml stats are consistent", func() error {
				info, err := store.DecodeGameInfo(content)
				if err != nil {
					return err
				}
				if !info.Consistent() {
					return fmt.Errorf("total_prs is %d but %d pull requests are listed", info.Stats.TotalPRs, len(info.PullRequests))
				}
				return nil
			})
		}
	}

	if exists(readmePath) {
		content, err := os.ReadFile(readmePath)
		if err != nil {
			tally.Fail(fmt.Sprintf("%s: Error reading README.md - %v", prefix, err))
			return
		}
		readme := strings.ToLower(string(content))
		mentions := containsAny(readme, readmeAIMarkers) || (model != "" && strings.Contains(readme, strings.ToLower(model)))
		tally.Assert(prefix+": README.md mentions AI/model", mentions)
	}
}

func (v *Validator) checkSite(tally *report.Tally) {
	tally.Section("Testing main files...")
	indexPath := filepath.Join(v.root, server.IndexFile)

	tally.Assert("index.html exists", exists(indexPath))

	index, readErr := os.ReadFile(indexPath)
	html := string(index)
	htmlCheck := func(desc string, ok func() bool) {
		tally.Check(desc, func() error {
			if readErr != nil {
				return readErr
			}
			if !ok() {
				return errors.New("marker not found")
			}
			return nil
		})
	}
	htmlCheck("index.html is valid HTML", func() bool {
		return strings.Contains(html, "<!DOCTYPE html>") && strings.Contains(html, "<html") && strings.Contains(html, "</html>")
	})
	htmlCheck("index.html loads games.json", func() bool {
		return strings.Contains(html, domain.RegistryFile)
	})
	htmlCheck("index.html has game grid element", func() bool {
		return containsAny(html, gridMarkers)
	})

	tally.Assert("README.md exists", exists(filepath.Join(v.root, "README.md")))
	tally.Assert("AGENTS.md exists", exists(filepath.Join(v.root, "AGENTS.md")))
	tally.Assert(".github/workflows directory exists", isDir(filepath.Join(v.root, ".github", "workflows")))
}

func validateSchema(doc []byte) error {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(registrySchema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return err
	}
	if !res.Valid() {
		var msgs []string
		for i, e := range res.Errors() {
			if i >= 5 {
				break
			}
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

func field(entry any, name string) any {
	obj, _ := entry.(map[string]any)
	return obj[name]
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func isFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
