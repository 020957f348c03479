package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/hydra-lens/internal/pysig"
	"github.com/mvp-joe/hydra-lens/internal/target"
)

func makeRef(params ...string) *target.Reference {
	ref := &target.Reference{
		Path:  "pkg.models.Net",
		Range: target.Range{Start: target.Position{Line: 1, Character: 12}, End: target.Position{Line: 1, Character: 26}},
	}
	for i, name := range params {
		ref.Parameters = append(ref.Parameters, target.Parameter{
			Name:     name,
			KeyRange: target.Range{Start: target.Position{Line: 2 + i, Character: 2}},
		})
	}
	return ref
}

func TestValidateParams(t *testing.T) {
	t.Parallel()

	sig := &pysig.Signature{
		Name: "Net",
		Params: []pysig.Param{
			{Name: "hidden"},
			{Name: "dropout", HasDefault: true},
		},
	}

	t.Run("all supplied and known", func(t *testing.T) {
		diags := ValidateParams(makeRef("hidden", "dropout"), sig)
		assert.Empty(t, diags)
	})

	t.Run("optional may be omitted", func(t *testing.T) {
		diags := ValidateParams(makeRef("hidden"), sig)
		assert.Empty(t, diags)
	})

	t.Run("unknown parameter", func(t *testing.T) {
		ref := makeRef("hidden", "hiden")
		diags := ValidateParams(ref, sig)
		require.Len(t, diags, 1)
		assert.Equal(t, CodeUnknownParameter, diags[0].Code)
		assert.Equal(t, SeverityError, diags[0].Severity)
		assert.Equal(t, ref.Parameters[1].KeyRange, diags[0].Range)
		assert.Contains(t, diags[0].Message, `"hiden"`)
	})

	t.Run("missing required parameter", func(t *testing.T) {
		ref := makeRef("dropout")
		diags := ValidateParams(ref, sig)
		require.Len(t, diags, 1)
		assert.Equal(t, CodeMissingRequiredParameter, diags[0].Code)
		assert.Equal(t, ref.Range, diags[0].Range)
		assert.Contains(t, diags[0].Message, `"hidden"`)
	})

	t.Run("name matching is case sensitive", func(t *testing.T) {
		diags := ValidateParams(makeRef("Hidden"), sig)
		require.Len(t, diags, 2)
		codes := []Code{diags[0].Code, diags[1].Code}
		assert.Contains(t, codes, CodeUnknownParameter)
		assert.Contains(t, codes, CodeMissingRequiredParameter)
	})

	t.Run("kwargs absorbs unknown names as hint", func(t *testing.T) {
		flexible := &pysig.Signature{
			Name: "Flexible",
			Params: []pysig.Param{
				{Name: "size"},
				{Name: "options", Kind: pysig.VariadicKeyword},
			},
		}
		diags := ValidateParams(makeRef("size", "anything"), flexible)
		require.Len(t, diags, 1)
		assert.Equal(t, CodeKwargsAbsorbed, diags[0].Code)
		assert.Equal(t, SeverityHint, diags[0].Severity)
	})

	t.Run("variadics are never required", func(t *testing.T) {
		variadic := &pysig.Signature{
			Name: "call",
			Params: []pysig.Param{
				{Name: "fn"},
				{Name: "args", Kind: pysig.VariadicPositional},
				{Name: "kwargs", Kind: pysig.VariadicKeyword},
			},
		}
		diags := ValidateParams(makeRef("fn"), variadic)
		assert.Empty(t, diags)
	})

	t.Run("implicit signature suppresses findings", func(t *testing.T) {
		implicit := &pysig.Signature{Name: "Marker", Implicit: true}
		diags := ValidateParams(makeRef("anything"), implicit)
		assert.Empty(t, diags)
	})

	t.Run("nil signature", func(t *testing.T) {
		assert.Empty(t, ValidateParams(makeRef("x"), nil))
	})
}

func TestFactories(t *testing.T) {
	t.Parallel()
	ref := makeRef()

	d := MalformedPath(ref)
	assert.Equal(t, CodeMalformedTargetPath, d.Code)
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, Source, d.Source)
	assert.Equal(t, ref.Range, d.Range)

	d = ModuleNotFound(ref, "pkg.models")
	assert.Equal(t, CodeModuleNotFound, d.Code)
	assert.Contains(t, d.Message, "pkg.models")

	d = SymbolNotFound(ref, "pkg.models", "Net")
	assert.Equal(t, CodeSymbolNotFound, d.Code)
	assert.Contains(t, d.Message, `"Net"`)

	d = InfraWarning(assert.AnError)
	assert.Equal(t, SeverityWarning, d.Severity)
	assert.Equal(t, CodeResolutionInfra, d.Code)
}

func TestSort(t *testing.T) {
	t.Parallel()

	diags := []Diagnostic{
		{Code: "c", Range: target.Range{Start: target.Position{Line: 5, Character: 0}}},
		{Code: "a", Range: target.Range{Start: target.Position{Line: 1, Character: 8}}},
		{Code: "b", Range: target.Range{Start: target.Position{Line: 1, Character: 2}}},
	}
	Sort(diags)
	assert.Equal(t, Code("b"), diags[0].Code)
	assert.Equal(t, Code("a"), diags[1].Code)
	assert.Equal(t, Code("c"), diags[2].Code)
}

func TestSeverityString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "hint", SeverityHint.String())
	assert.Equal(t, "unknown", Severity(0).String())
}
