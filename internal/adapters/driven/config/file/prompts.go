package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/navigator-cli/internal/core/ports/driven"
)

var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves LLM prompt templates from user-editable files,
// falling back to embedded defaults when a file is missing or broken.
// No I/O happens before the first Load: the prompt directory and the
// default files are created lazily.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// defaultPrompts contains embedded default prompts. These are used when
// user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptReasoning: `You are a research agent that answers questions by using the available tools.

**Research Query:** %s

**Current Context:**
%s

**Available Actions:**
%s

You have %d tool call(s) remaining before the final answer is forced.

**Your Task:**
Analyze the query and current context, then decide what to do next. Use this format:

THOUGHT: [your reasoning about what to do next]
ACTION: [one of: search_internal, web_search, finish]
ACTION_INPUT: [the query to use for the action]

**Decision rules (follow in order):**
1. If a tool already returned relevant results, use finish. Do not repeat a completed search.
2. Read the content previews above. If they answer the query, use finish immediately.
3. Before choosing search_internal, match the query topic against the knowledge base document names listed above.
4. Use web_search for current events, people, or topics the knowledge base does not cover.
5. When in doubt, finish with what you have rather than spending remaining budget.

Now, what should we do next?`,

	driven.PromptSynthesis: `You are a research assistant tasked with creating a comprehensive research brief.

**Research Query:** %s

%s

**Your Task:**
Synthesize the information from all sources into a well-structured research brief in Markdown format.

**Required Structure:**

# Research Brief: [the query]

## Summary
[2-3 sentences summarizing the key findings]

## Key Findings
[3-5 bullet points with the most important insights from the sources]

## Detailed Analysis
[2-3 paragraphs providing deeper analysis, comparisons, or explanations based on the sources]

## Sources
### Internal Knowledge Base
[List internal sources if used]

### External Web Sources
[List external sources with links if used]

## Reasoning Trace
[Brief numbered list of the steps taken]

**Guidelines:**
1. Synthesize information from ALL sources, don't just copy
2. Cite sources when making specific claims
3. Be objective and balanced
4. If sources conflict, acknowledge different perspectives
5. Keep language clear and accessible

Now, generate the research brief:`,
}

// NewPromptStore creates a file-based prompt store. An empty promptDir
// means ~/.navigator/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".navigator", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name: the cached
// copy when present, the on-disk file otherwise, and the embedded
// default when the file cannot be read. Unknown names error.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	if prompt, ok := s.cached(name); ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	if err != nil {
		if fallback, ok := defaultPrompts[name]; ok {
			return fallback, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}
	return s.remember(name, prompt), nil
}

func (s *PromptStore) cached(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prompt, ok := s.cache[name]
	return prompt, ok
}

// remember caches a loaded prompt; a concurrent loader's value wins.
func (s *PromptStore) remember(name, prompt string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[name]; ok {
		return existing
	}
	s.cache[name] = prompt
	return prompt
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and seeds default files,
// leaving files the user already edited untouched.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	path := filepath.Join(s.promptDir, name+".txt")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil // Already exists or stat error (ignore)
	}

	content := `# Navigator Prompts

This directory contains customisable prompts used by Navigator's research loop.

## Files

- ` + "`reasoning.txt`" + ` - Decides the next action at each research step
- ` + "`synthesis.txt`" + ` - Produces the final research brief

## Customisation

Edit any file to customise LLM behaviour. Changes take effect on the next
command.

## Format Placeholders

Prompts use Go fmt placeholders:
- ` + "`%s`" + ` - String (e.g., the query or formatted context)
- ` + "`%d`" + ` - Integer (e.g., remaining step budget)

Ensure customised prompts maintain placeholders in the correct positions.
The reasoning prompt must keep the THOUGHT/ACTION/ACTION_INPUT output
format; the loop parses those labels.
`
	return os.WriteFile(path, []byte(content), 0600)
}
