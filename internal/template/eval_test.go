package template

import "testing"

func render(t *testing.T, source string, ctx map[string]any) string {
	t.Helper()
	nodes, err := Compile(source, 0)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", source, err)
	}
	return Evaluate(nodes, ctx, NewRegistry(nil))
}

func TestEvaluate_Variable(t *testing.T) {
	got := render(t, "Hello {name}!", map[string]any{"name": "Ann"})
	if got != "Hello Ann!" {
		t.Errorf("got %q", got)
	}
}

func TestEvaluate_DottedPath(t *testing.T) {
	ctx := map[string]any{"user": map[string]any{"email": "a@b.c"}}
	if got := render(t, "{user.email}", ctx); got != "a@b.c" {
		t.Errorf("got %q", got)
	}
}

func TestEvaluate_MissingPathEmpty(t *testing.T) {
	if got := render(t, "a{missing}b", nil); got != "ab" {
		t.Errorf("got %q, want %q", got, "ab")
	}
	ctx := map[string]any{"user": map[string]any{}}
	if got := render(t, "[{user.phone}]", ctx); got != "[]" {
		t.Errorf("got %q, want %q", got, "[]")
	}
}

func TestEvaluate_NonMapLeafEmpty(t *testing.T) {
	ctx := map[string]any{"user": "scalar"}
	if got := render(t, "{user.email}", ctx); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestEvaluate_ZeroIsTruthy(t *testing.T) {
	// Numeric zero is a present value worth rendering; only absence,
	// false, empty text and empty lists are falsy.
	got := render(t, "{?count}yes{/count}", map[string]any{"count": 0})
	if got != "yes" {
		t.Errorf("got %q, want %q", got, "yes")
	}
}

func TestEvaluate_Falsy(t *testing.T) {
	cases := []struct {
		name string
		ctx  map[string]any
	}{
		{"absent", map[string]any{}},
		{"false", map[string]any{"v": false}},
		{"empty text", map[string]any{"v": ""}},
		{"empty list", map[string]any{"v": []any{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := render(t, "{?v}y{/v}{?!v}n{/v}", tc.ctx); got != "n" {
				t.Errorf("got %q, want %q", got, "n")
			}
		})
	}
}

func TestEvaluate_LoopScalars(t *testing.T) {
	ctx := map[string]any{"tags": []any{"a", "b"}}
	if got := render(t, "{#tags}#{.} {/tags}", ctx); got != "#a #b " {
		t.Errorf("got %q, want %q", got, "#a #b ")
	}
}

func TestEvaluate_LoopMappings(t *testing.T) {
	ctx := map[string]any{"items": []any{
		map[string]any{"name": "x", "qty": 2},
		map[string]any{"name": "y", "qty": 1},
	}}
	if got := render(t, "{#items}{name}={qty};{/items}", ctx); got != "x=2;y=1;" {
		t.Errorf("got %q", got)
	}
}

func TestEvaluate_LoopOverNonList(t *testing.T) {
	ctx := map[string]any{"name": "str"}
	if got := render(t, "{#name}x{/name}", ctx); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestEvaluate_LoopPositionHelpers(t *testing.T) {
	ctx := map[string]any{"xs": []any{1, 2, 3}}
	src := "{#xs}{?first}[{/first}{.}{?!last},{/last}{?last}]{/last}{/xs}"
	if got := render(t, src, ctx); got != "[1,2,3]" {
		t.Errorf("got %q, want %q", got, "[1,2,3]")
	}
}

func TestEvaluate_LoopItemShadowsParent(t *testing.T) {
	ctx := map[string]any{
		"name":  "outer",
		"items": []any{map[string]any{"name": "inner"}},
	}
	if got := render(t, "{#items}{name}{/items}/{name}", ctx); got != "inner/outer" {
		t.Errorf("got %q", got)
	}
}

func TestEvaluate_LoopHelpersShadowParent(t *testing.T) {
	// Position helpers win over parent keys of the same name inside the
	// loop body; the parent value is visible again outside.
	ctx := map[string]any{
		"index": "parent",
		"xs":    []any{"a", "b"},
	}
	if got := render(t, "{#xs}{index}{/xs}/{index}", ctx); got != "01/parent" {
		t.Errorf("got %q", got)
	}
}

func TestEvaluate_TypedSlices(t *testing.T) {
	ctx := map[string]any{"xs": []string{"p", "q"}}
	if got := render(t, "{#xs}{.}{/xs}", ctx); got != "pq" {
		t.Errorf("got %q", got)
	}
}

func TestEvaluate_UnknownFilterIdentity(t *testing.T) {
	ctx := map[string]any{"name": "Ann"}
	if got := render(t, "{name|definitely_not_a_filter}", ctx); got != "Ann" {
		t.Errorf("got %q, want %q", got, "Ann")
	}
}

func TestStringify(t *testing.T) {
	cases := []struct {
		v    any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{42, "42"},
		{int64(7), "7"},
		{3.5, "3.5"},
		{2.0, "2"},
		{true, "true"},
	}
	for _, tc := range cases {
		if got := Stringify(tc.v); got != tc.want {
			t.Errorf("Stringify(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestTruthy(t *testing.T) {
	truthy := []any{0, 0.0, "x", []any{1}, true, 42}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("Truthy(%v) = false, want true", v)
		}
	}
	falsy := []any{nil, false, "", []any{}, []string{}}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("Truthy(%v) = true, want false", v)
		}
	}
}
