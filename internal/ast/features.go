package ast

// Features is a bitset controlling which grammar productions the parser
// accepts. Engine.parse uses it both to restrict property-accessor
// synthesis (spec §4.1 PROPERTY_FEATURES) and as half of the ScriptCache
// key (spec §3 SourceKey).
type Features uint32

const (
	FeatureLoops Features = 1 << iota
	FeatureLambda
	FeatureMethodCall
	FeatureNewInstance
	FeatureAnnotation
	FeaturePragma
	FeatureScript // top-level statements allowed (vs. a single expression)
	FeatureSideEffect
	FeatureSideEffectGlobal
)

// AllFeatures is the default permissive set used for full scripts.
const AllFeatures Features = FeatureLoops | FeatureLambda | FeatureMethodCall |
	FeatureNewInstance | FeatureAnnotation | FeaturePragma | FeatureScript |
	FeatureSideEffect | FeatureSideEffectGlobal

// PropertyFeatures is the restricted set get/setProperty synthesis uses
// (spec §4.1, §9 Open Questions): no loops, no lambdas, no method calls,
// no top-level script statements — only reference/register navigation.
const PropertyFeatures Features = 0

func (f Features) Has(flag Features) bool { return f&flag != 0 }
