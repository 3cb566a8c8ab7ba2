package config

import (
	"strings"
	"testing"
)

func TestDefaultOptionsShipsLenientDefaults(t *testing.T) {
	opts := DefaultOptions()
	if opts.Strict || opts.Antish || opts.Lexical || opts.LexicalShade || opts.ConstCapture {
		t.Fatalf("DefaultOptions() = %+v, want every strictness flag off", opts)
	}
	if opts.StackOverflow != 0 {
		t.Fatalf("StackOverflow = %d, want 0 (the interpreter's built-in depth limit)", opts.StackOverflow)
	}
	if opts.CacheSize != 512 || opts.CacheThreshold != 4096 {
		t.Fatalf("got CacheSize=%d CacheThreshold=%d, want 512/4096", opts.CacheSize, opts.CacheThreshold)
	}
}

func TestLoadOptionsOverridesOnlyMentionedFields(t *testing.T) {
	opts, err := LoadOptions(strings.NewReader("strict: true\ncacheSize: 10\n"))
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if !opts.Strict {
		t.Fatalf("Strict = false, want true")
	}
	if opts.CacheSize != 10 {
		t.Fatalf("CacheSize = %d, want 10 (explicit override)", opts.CacheSize)
	}
	if opts.CacheThreshold != 4096 {
		t.Fatalf("CacheThreshold = %d, want 4096 (default preserved for an unmentioned field)", opts.CacheThreshold)
	}
}

func TestLoadOptionsEmptyDocumentKeepsDefaults(t *testing.T) {
	opts, err := LoadOptions(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if opts != DefaultOptions() {
		t.Fatalf("got %+v, want DefaultOptions()", opts)
	}
}
