package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension("fullStack")
	require.NoError(t, err)
	assert.Equal(t, FullStack, d)

	_, err = ParseDimension("FullStack")
	assert.Error(t, err)
}

func TestMergeKeepsBothSurfaces(t *testing.T) {
	search := Spec{Keyword: "react", Location: "Pune"}
	sidebar := Selections{
		Industry: {"it", "finance"},
		Location: {},
		JobType:  {"full-time"},
	}

	merged := Merge(search, sidebar)

	assert.Equal(t, Spec{
		Keyword:  "react",
		Location: "Pune",
		Industry: "it,finance",
		JobType:  "full-time",
	}, merged)

	// inputs are untouched
	assert.Len(t, search, 2)
	assert.Equal(t, []string{"it", "finance"}, sidebar[Industry])
}

func TestMergeSidebarOverridesActiveDimension(t *testing.T) {
	merged := Merge(Spec{Location: "Pune"}, Selections{Location: {"delhi", "mumbai"}})
	assert.Equal(t, "delhi,mumbai", merged.Get(Location))
}

func TestSpecHelpers(t *testing.T) {
	spec := Spec{Keyword: " go ", Salary: "", FullStack: "yes"}

	assert.Equal(t, "go", spec.Get(Keyword))
	assert.False(t, spec.Active(Salary))
	assert.Equal(t, 2, spec.ActiveCount())

	without := spec.Without(Keyword)
	assert.False(t, without.Active(Keyword))
	assert.True(t, spec.Active(Keyword))
}

func TestAlternatives(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, alternatives(" a, ,b ,"))
	assert.Empty(t, alternatives(" , "))
}
