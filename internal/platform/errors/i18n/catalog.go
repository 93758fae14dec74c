// Package i18n renders user-facing messages for engine error codes.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from the errors
// package to avoid an import cycle).
type Code = string

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string

	mu       sync.Mutex
	compiled map[Code]*template.Template
}

var supported = []language.Tag{
	language.AmericanEnglish, // en-US, first entry is the fallback
}

var matcher = language.NewMatcher(supported)

var catalogs = map[string]*Catalog{
	BaseLocale: NewCatalog(BaseLocale, enUS),
}

// GetCatalog returns the catalog best matching the requested locale.
// Unknown or empty locales fall back to en-US.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		return catalogs[BaseLocale]
	}
	tag, _ := language.MatchStrings(matcher, requested)
	if c, ok := catalogs[tag.String()]; ok {
		return c
	}
	return catalogs[BaseLocale]
}

// NewCatalog builds a catalog from a code-to-template map.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	return &Catalog{
		locale:   locale,
		messages: messages,
		compiled: map[Code]*template.Template{},
	}
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
// Templates are executed even with nil metadata so variables without
// values render as empty strings.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	raw, ok := c.messages[code]
	if !ok {
		return code
	}

	tmpl, err := c.compile(code, raw)
	if err != nil {
		return raw
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return raw
	}
	return buf.String()
}

func (c *Catalog) compile(code Code, raw string) (*template.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tmpl, ok := c.compiled[code]; ok {
		return tmpl, nil
	}
	tmpl, err := template.New(code).Option("missingkey=zero").Parse(raw)
	if err != nil {
		return nil, err
	}
	c.compiled[code] = tmpl
	return tmpl, nil
}
