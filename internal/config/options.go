package config

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Options holds every Engine-level configuration flag spec §4.1
// enumerates. It is the Go-native encoding of what the source treats as
// a loose bag of constructor/builder flags; here it is one YAML-loadable
// struct, the way the teacher's internal/config centralizes trait and
// operator tables as package-level data instead of scattering them
// through call sites.
type Options struct {
	// Strict: unknown variables, methods, and constructors fail instead
	// of evaluating to null.
	Strict bool `yaml:"strict"`
	// Safe: an unresolved safe LHS (e.g. a?.b) yields null without error.
	Safe bool `yaml:"safe"`
	// Silent: failures are logged, not thrown.
	Silent bool `yaml:"silent"`
	// Cancellable: propagate a cancel signal as a visible failure.
	// Defaults to Strict && !Silent when left unset by LoadOptions (the
	// zero value is indistinguishable from an explicit false, so callers
	// constructing Options by hand should set this explicitly).
	Cancellable bool `yaml:"cancellable"`
	// Debug: attach source info to errors.
	Debug bool `yaml:"debug"`
	// Lexical / LexicalShade: enforce lexical declaration and shadow
	// rules.
	Lexical      bool `yaml:"lexical"`
	LexicalShade bool `yaml:"lexicalShade"`
	// ConstCapture: captured symbols become immutable inside the lambda.
	ConstCapture bool `yaml:"constCapture"`
	// Antish: enable the "a.b.c" dotted-context-key fallback.
	Antish bool `yaml:"antish"`
	// StackOverflow is the max nested-evaluation depth handed to the
	// interpreter; 0 selects the interpreter's built-in limit of 2000.
	// There is no unbounded setting.
	StackOverflow int `yaml:"stackOverflow"`
	// CacheSize / CacheThreshold bound the parsed-AST cache.
	CacheSize      int `yaml:"cacheSize"`
	CacheThreshold int `yaml:"cacheThreshold"`
	// CollectMode controls Script.Variables(): 0 dot-only, 1 adds
	// string/number constant index segments, 2 adds any constant index.
	CollectMode int `yaml:"collectMode"`
	// Charset names the source charset; informational only (Go source is
	// always read as UTF-8).
	Charset string `yaml:"charset"`
}

// DefaultOptions returns the defaults: StackOverflow 0 (the interpreter's
// built-in depth limit), a modest cache, dot-only variable collection,
// antish off, strict off (JEXL itself defaults to lenient evaluation).
func DefaultOptions() Options {
	return Options{
		Cancellable:    false,
		StackOverflow:  0,
		CacheSize:      512,
		CacheThreshold: 4096,
		CollectMode:    0,
		Charset:        "UTF-8",
	}
}

// LoadOptions parses a YAML document of Options fields, starting from
// DefaultOptions so a partial document only overrides what it mentions
// (spec §4.1's "enumerated options" list, made host-configurable without
// a Go builder call per field).
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	data, err := io.ReadAll(r)
	if err != nil {
		return Options{}, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, err
	}
	var explicit struct {
		Cancellable *bool `yaml:"cancellable"`
	}
	if err := yaml.Unmarshal(data, &explicit); err != nil {
		return Options{}, err
	}
	if explicit.Cancellable == nil {
		opts.Cancellable = opts.Strict && !opts.Silent
	}
	return opts, nil
}
