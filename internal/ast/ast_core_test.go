package ast

import "testing"

func TestCacheStoreLoadClear(t *testing.T) {
	var c Cache
	if c.Load() != nil {
		t.Fatalf("new Cache should start empty")
	}
	c.Store("hit")
	if c.Load() != "hit" {
		t.Fatalf("got %#v, want \"hit\"", c.Load())
	}
	c.Clear()
	if c.Load() != nil {
		t.Fatalf("got %#v after Clear, want nil", c.Load())
	}
}

func TestWalkVisitsEveryNodePreOrder(t *testing.T) {
	left := NewNumberLiteral(Info{}, "1", false)
	right := NewNumberLiteral(Info{}, "2", false)
	root := NewBinaryExpr(Info{}, "+", left, right)

	var visited []Node
	Walk(root, func(n Node) { visited = append(visited, n) })

	if len(visited) != 3 || visited[0] != root || visited[1] != left || visited[2] != right {
		t.Fatalf("got %d nodes in wrong order", len(visited))
	}
}

func TestFeaturesHasChecksBitset(t *testing.T) {
	f := FeatureLoops | FeatureLambda
	if !f.Has(FeatureLoops) || !f.Has(FeatureLambda) {
		t.Fatalf("Has() missed a flag present in the set")
	}
	if f.Has(FeatureNewInstance) {
		t.Fatalf("Has() reported a flag absent from the set")
	}
}

func TestPropertyFeaturesExcludesEverything(t *testing.T) {
	if PropertyFeatures.Has(FeatureLoops) || PropertyFeatures.Has(FeatureLambda) {
		t.Fatalf("PropertyFeatures should carry no grammar features")
	}
}

func TestBinaryExprConstantFoldingFlag(t *testing.T) {
	constLit := NewNumberLiteral(Info{}, "1", false)
	n := NewBinaryExpr(Info{}, "+", constLit, constLit)
	if !n.IsConstant() {
		t.Fatalf("BinaryExpr of two constant literals should itself be constant")
	}
}
