package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/reqsift/internal/core/ports/driven"
	"github.com/custodia-labs/reqsift/internal/core/services"
	"github.com/custodia-labs/reqsift/internal/logger"
)

var _ driven.PromptStore = (*PromptStore)(nil)

const promptExt = ".txt"

var defaultPrompts = map[string]string{
	driven.PromptRequirementExtraction: services.DefaultExtractionPrompt,
}

// requiredPlaceholders lists what a custom template must keep. Without
// {{text}} the model would never see the document.
var requiredPlaceholders = map[string][]string{
	driven.PromptRequirementExtraction: {"{{text}}"},
}

const promptReadme = "# reqsift prompts\n\n" +
	"`requirement_extraction.txt` turns one chunk of document text into requirement records.\n" +
	"Edits are picked up on the next chunk; delete the file to restore the default.\n\n" +
	"Placeholders:\n\n" +
	"- `{{previous}}` requirements already extracted, as a JSON list\n" +
	"- `{{instruction}}` the optional user instruction\n" +
	"- `{{text}}` the chunk of document text (required)\n\n" +
	"The model must answer with a JSON list of objects with at least `feature` and `description`.\n"

// PromptStore reads prompt templates from ~/.reqsift/prompts.
//
// The directory is seeded with the built-in templates on first use.
// A file is re-read whenever its size or modification time changes, so a
// long-running server sees edits without restarting.
type PromptStore struct {
	dir      string
	seedOnce sync.Once

	mu    sync.Mutex
	cache map[string]cachedPrompt
}

type cachedPrompt struct {
	text    string
	modTime time.Time
	size    int64
}

// NewPromptStore does no I/O. An empty promptDir means ~/.reqsift/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".reqsift", "prompts")
	}
	return &PromptStore{dir: promptDir, cache: make(map[string]cachedPrompt)}, nil
}

// Load returns the template called name. Known names fall back to their
// built-in default when the file is missing, empty or unusable.
func (s *PromptStore) Load(name string) (string, error) {
	s.seedOnce.Do(s.seed)

	fallback, known := defaultPrompts[name]
	path := filepath.Join(s.dir, name+promptExt)

	info, err := os.Stat(path)
	if err != nil {
		if known {
			return fallback, nil
		}
		return "", fmt.Errorf("loading prompt %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[name]; ok && c.size == info.Size() && c.modTime.Equal(info.ModTime()) {
		return c.text, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if known {
			return fallback, nil
		}
		return "", fmt.Errorf("loading prompt %q: %w", name, err)
	}

	text := strings.TrimSpace(string(raw))
	if err := checkTemplate(name, text); err != nil {
		if !known {
			return "", err
		}
		logger.Warn("%s: %v; using the built-in prompt", path, err)
		text = fallback
	}

	s.cache[name] = cachedPrompt{text: text, modTime: info.ModTime(), size: info.Size()}
	return text, nil
}

// Reload drops cached templates.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]cachedPrompt)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

func checkTemplate(name, text string) error {
	if text == "" {
		return errors.New("prompt is empty")
	}
	var missing []string
	for _, p := range requiredPlaceholders[name] {
		if !strings.Contains(text, p) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("prompt is missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// seed writes the defaults and README that do not exist yet. Failures only
// cost the user the editable copies, so they are logged.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		logger.Warn("creating prompt directory: %v", err)
		return
	}
	files := map[string]string{"README.md": promptReadme}
	for name, content := range defaultPrompts {
		files[name+promptExt] = content
	}
	for name, content := range files {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			logger.Warn("writing %s: %v", path, err)
		}
	}
}
