// Package i18n resolves symbolic UI keys to locale-specific labels.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Key is a symbolic label identifier.
type Key string

const (
	ActionPushToBranch    Key = "ACTION$PUSH_TO_BRANCH"
	ActionPushCreatePR    Key = "ACTION$PUSH_CREATE_PR"
	ActionPushChangesToPR Key = "ACTION$PUSH_CHANGES_TO_PR"

	ChatInputPlaceholder Key = "CHAT$INPUT_PLACEHOLDER"
	ChatEmpty            Key = "CHAT$EMPTY"
	ChatEmptyHint        Key = "CHAT$EMPTY_HINT"
	ChatThinking         Key = "CHAT$THINKING"
	ChatAgentMissing     Key = "CHAT$AGENT_MISSING"
)

// Labeler looks up display strings for keys.
type Labeler interface {
	T(key Key) string
}

//go:embed locales/*.yaml
var localeFS embed.FS

// English is the base locale; every other catalog falls back to it.
var English = language.English

// supported is ordered so that index 0 is the matcher's default.
var supported = []language.Tag{
	language.English,
	language.German,
	language.French,
	language.Japanese,
	language.SimplifiedChinese,
}

var catalogFiles = map[language.Tag]string{
	language.English:           "en.yaml",
	language.German:            "de.yaml",
	language.French:            "fr.yaml",
	language.Japanese:          "ja.yaml",
	language.SimplifiedChinese: "zh-CN.yaml",
}

var matcher = language.NewMatcher(supported)

// Catalog maps keys to strings for one locale.
type Catalog map[Key]string

// Translator resolves keys against a chosen locale with English fallback.
type Translator struct {
	tag      language.Tag
	catalog  Catalog
	fallback Catalog
}

// New builds a Translator for the best supported match of locale.
// Empty or unparseable locales resolve to English.
func New(locale string) (*Translator, error) {
	fallback, err := loadCatalog(English)
	if err != nil {
		return nil, err
	}

	tag := Match(locale)
	if tag == English {
		return &Translator{tag: tag, catalog: fallback, fallback: fallback}, nil
	}
	catalog, err := loadCatalog(tag)
	if err != nil {
		return nil, err
	}
	return &Translator{tag: tag, catalog: catalog, fallback: fallback}, nil
}

// Match returns the supported locale closest to the given one.
// POSIX-style values such as "de_DE.UTF-8" are accepted.
func Match(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return English
	}
	requested, err := language.Parse(locale)
	if err != nil {
		return English
	}
	_, idx, conf := matcher.Match(requested)
	if conf == language.No {
		return English
	}
	return supported[idx]
}

// Locale returns the tag this translator resolved to.
func (t *Translator) Locale() language.Tag {
	return t.tag
}

// T returns the label for key, falling back to English and then to the key.
func (t *Translator) T(key Key) string {
	if s, ok := t.catalog[key]; ok && s != "" {
		return s
	}
	if s, ok := t.fallback[key]; ok && s != "" {
		return s
	}
	return string(key)
}

func loadCatalog(tag language.Tag) (Catalog, error) {
	name, ok := catalogFiles[tag]
	if !ok {
		return nil, fmt.Errorf("no catalog for locale %s", tag)
	}
	data, err := localeFS.ReadFile(path.Join("locales", name))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", name, err)
	}
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", name, err)
	}
	return catalog, nil
}
