// Package i18n provides the display strings for feedback messages and
// accessibility labels. The round engine only emits semantic outcomes;
// everything a player reads is looked up here.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the source locale every other catalog falls back to.
const BaseLocale = "en-US"

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle holds every locale catalog and the matcher used to negotiate them.
type Bundle struct {
	locales  map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
	messages *catalog.Builder
}

//go:embed locales/*.yaml
var embeddedLocales embed.FS

var defaultBundle = mustLoadEmbedded()

// Default returns the process-wide embedded bundle.
func Default() *Bundle {
	return defaultBundle
}

func mustLoadEmbedded() *Bundle {
	b, err := LoadFromFS(embeddedLocales)
	if err != nil {
		panic(fmt.Sprintf("load embedded locales: %v", err))
	}
	return b
}

// LoadFromFS loads locales/*.yaml from fsys. The base locale must be present.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	locales := map[string]map[string]string{}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		want := strings.TrimSuffix(path.Base(p), path.Ext(p))
		if file.Locale != want {
			return nil, fmt.Errorf("catalog %s: locale %q must match file name", p, file.Locale)
		}
		if _, exists := locales[file.Locale]; exists {
			return nil, fmt.Errorf("catalog %s: duplicate locale %q", p, file.Locale)
		}
		locales[file.Locale] = file.Messages
	}

	base, ok := locales[BaseLocale]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	b := &Bundle{
		locales:  locales,
		messages: catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale))),
	}

	// base first so the matcher falls back to it
	names := []string{BaseLocale}
	for name := range locales {
		if name != BaseLocale {
			names = append(names, name)
		}
	}
	sort.Strings(names[1:])

	for _, name := range names {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("parse locale tag %q: %w", name, err)
		}
		b.tags = append(b.tags, tag)
		for key, text := range base {
			if translated, ok := locales[name][key]; ok {
				text = translated
			}
			if err := b.messages.SetString(tag, key, text); err != nil {
				return nil, fmt.Errorf("register %s/%s: %w", name, key, err)
			}
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// Locales returns the supported locale identifiers, base locale first.
func (b *Bundle) Locales() []string {
	out := make([]string, 0, len(b.tags))
	for _, t := range b.tags {
		out = append(out, t.String())
	}
	return out
}

// Match negotiates the best supported tag for the given preferences, which
// may be plain tags or Accept-Language values.
func (b *Bundle) Match(prefs ...string) language.Tag {
	var wanted []language.Tag
	for _, p := range prefs {
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		wanted = append(wanted, tags...)
	}
	_, idx, conf := b.matcher.Match(wanted...)
	if conf == language.No {
		return b.tags[0]
	}
	return b.tags[idx]
}

// Messages returns every message for locale with base-locale fallback.
func (b *Bundle) Messages(locale string) map[string]string {
	tag := b.Match(locale)
	base := b.locales[BaseLocale]
	exact := b.locales[tag.String()]

	out := make(map[string]string, len(base))
	for key, text := range base {
		if translated, ok := exact[key]; ok {
			text = translated
		}
		out[key] = text
	}
	return out
}

// Localizer formats messages for one negotiated locale.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
	known   map[string]string
}

// Localizer returns a formatter for the best match of prefs.
func (b *Bundle) Localizer(prefs ...string) *Localizer {
	tag := b.Match(prefs...)
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b.messages)),
		known:   b.locales[BaseLocale],
	}
}

// Locale is the negotiated locale.
func (l *Localizer) Locale() string { return l.tag.String() }

// Text formats key with args. Unknown keys are returned as is.
func (l *Localizer) Text(key string, args ...any) string {
	if _, ok := l.known[key]; !ok {
		return key
	}
	return l.printer.Sprintf(key, args...)
}
