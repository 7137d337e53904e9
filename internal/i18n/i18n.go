// Package i18n resolves dotted display keys against embedded YAML catalogs.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"NewsSearchEngine/internal/ports"
)

// DefaultLanguage is used whenever a requested language has no catalog.
const DefaultLanguage = "en"

//go:embed translations/*.yaml
var catalogFS embed.FS

var placeholderExpr = regexp.MustCompile(`\{(\w+)\}`)

// Translator holds every catalog and the active language.
type Translator struct {
	mu       sync.RWMutex
	current  string
	catalogs map[string]map[string]any
}

var _ ports.Localizer = (*Translator)(nil)

// New loads the embedded catalogs with English active.
func New() (*Translator, error) {
	entries, err := catalogFS.ReadDir("translations")
	if err != nil {
		return nil, fmt.Errorf("read catalogs: %w", err)
	}

	catalogs := make(map[string]map[string]any, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		raw, err := catalogFS.ReadFile("translations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", name, err)
		}
		var catalog map[string]any
		if err := yaml.Unmarshal(raw, &catalog); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", name, err)
		}
		catalogs[strings.TrimSuffix(name, ".yaml")] = catalog
	}

	if _, ok := catalogs[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("catalog %q is missing", DefaultLanguage)
	}

	return &Translator{current: DefaultLanguage, catalogs: catalogs}, nil
}

var (
	defaultOnce       sync.Once
	defaultTranslator *Translator
)

// Default returns a shared English translator.
func Default() *Translator {
	defaultOnce.Do(func() {
		tr, err := New()
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded catalogs are broken: %v", err))
		}
		defaultTranslator = tr
	})
	return defaultTranslator
}

// ForLanguage returns a new translator with language active.
func ForLanguage(language string) (*Translator, error) {
	tr, err := New()
	if err != nil {
		return nil, err
	}
	tr.SetLanguage(language)
	return tr, nil
}

// SetLanguage activates language and reports whether it is supported.
// Unsupported codes activate DefaultLanguage.
func (t *Translator) SetLanguage(language string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.catalogs[language]; ok {
		t.current = language
		return true
	}
	t.current = DefaultLanguage
	return false
}

// Language returns the active language code.
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// Languages lists the codes that have a catalog, sorted.
func (t *Translator) Languages() []string {
	codes := make([]string, 0, len(t.catalogs))
	for code := range t.catalogs {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Keys returns every dotted key of a catalog, sorted.
func (t *Translator) Keys(language string) []string {
	var keys []string
	collectKeys(t.catalogs[language], "", &keys)
	sort.Strings(keys)
	return keys
}

// T resolves key in the active language. args are alternating name/value
// pairs filling {name} placeholders. Unresolved keys are returned as is.
func (t *Translator) T(key string, args ...any) string {
	t.mu.RLock()
	catalog := t.catalogs[t.current]
	t.mu.RUnlock()

	value, ok := lookup(catalog, key)
	if !ok {
		return key
	}
	if len(args) == 0 {
		return value
	}
	return format(value, args)
}

func lookup(catalog map[string]any, key string) (string, bool) {
	var node any = catalog
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return "", false
		}
		if node, ok = m[part]; !ok {
			return "", false
		}
	}
	s, ok := node.(string)
	return s, ok
}

// format leaves value untouched when a placeholder has no argument.
func format(value string, args []any) string {
	named := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		name, ok := args[i].(string)
		if !ok {
			continue
		}
		named[name] = fmt.Sprint(args[i+1])
	}

	for _, match := range placeholderExpr.FindAllStringSubmatch(value, -1) {
		if _, ok := named[match[1]]; !ok {
			return value
		}
	}

	return placeholderExpr.ReplaceAllStringFunc(value, func(token string) string {
		return named[token[1:len(token)-1]]
	})
}

func collectKeys(node map[string]any, prefix string, out *[]string) {
	for k, v := range node {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			collectKeys(child, full, out)
			continue
		}
		*out = append(*out, full)
	}
}
