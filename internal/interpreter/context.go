package interpreter

// Context is the host-provided name/value store an Interpreter consults
// once a name resolves to nothing in the current Frame chain or the
// builtin function table (spec §3 Context, §4.2.1). Hosts may implement
// additional optional capabilities (namespace resolution, pragma/
// annotation/module processing) on the same value; the interpreter only
// ever asks for this minimal set directly, the rest are consulted by
// internal/jexl.Engine through its own, wider Context interface — the
// two are structurally compatible, not textually related, the way Go
// interfaces usually compose.
type Context interface {
	Has(name string) bool
	Get(name string) (interface{}, bool)
	Set(name string, value interface{}) error
}
