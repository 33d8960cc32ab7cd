package dataset_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luusitalo/BalticFoodwebModel/dataset"
)

// TestNew_RowWidth fails fast on the first ragged row and names it.
func TestNew_RowWidth(t *testing.T) {
	rows := [][]dataset.Cell{
		{dataset.Present(1), dataset.Present(2)},
		{dataset.Present(3)},
	}
	_, err := dataset.New(rows, 2)
	require.ErrorIs(t, err, dataset.ErrRowWidth)
	assert.Contains(t, err.Error(), "row 1")
}

// TestCell_TagSemantics: the zero value is Missing, Present carries its
// value, and nothing ever compares against a sentinel number.
func TestCell_TagSemantics(t *testing.T) {
	var zero dataset.Cell
	assert.True(t, zero.IsMissing())

	v, ok := dataset.Present(-9999).Value() // a would-be sentinel is just data
	assert.True(t, ok)
	assert.Equal(t, -9999.0, v)

	_, ok = dataset.Missing.Value()
	assert.False(t, ok)
}

// TestFromRows converts a sentinel-encoded table into tags at the boundary.
func TestFromRows(t *testing.T) {
	d, err := dataset.FromRows([][]float64{
		{1.5, math.NaN()},
		{math.NaN(), 2.5},
	}, 2, func(x float64) bool { return math.IsNaN(x) })
	require.NoError(t, err)

	assert.Equal(t, 2, d.T())
	v, ok := d.At(0, 0).Value()
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
	assert.True(t, d.At(0, 1).IsMissing())
	assert.True(t, d.At(1, 0).IsMissing())
}

// TestReadCSV skips the header and maps empty/NA/NaN fields to Missing.
func TestReadCSV(t *testing.T) {
	src := strings.Join([]string{
		"herring,sprat,cod",
		"1.0,2.0,3.0",
		",NA,nan",
		"4.5,5.5,6.5",
	}, "\n")

	d, err := dataset.ReadCSV(strings.NewReader(src), 3)
	require.NoError(t, err)
	require.Equal(t, 3, d.T())

	for i := 0; i < 3; i++ {
		assert.True(t, d.At(1, i).IsMissing(), "column %d of the NA row", i)
	}
	v, ok := d.At(2, 2).Value()
	assert.True(t, ok)
	assert.Equal(t, 6.5, v)
}

// TestReadCSV_Failures: ragged rows raise the width error before any model
// machinery runs; junk fields report row and column.
func TestReadCSV_Failures(t *testing.T) {
	_, err := dataset.ReadCSV(strings.NewReader("a,b\n1.0\n"), 2)
	assert.ErrorIs(t, err, dataset.ErrRowWidth)

	_, err = dataset.ReadCSV(strings.NewReader("a,b\n1.0,bogus\n"), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0 col 1")
}

// TestMaskHidden blanks every column not in the observed set and leaves the
// original table untouched.
func TestMaskHidden(t *testing.T) {
	d, err := dataset.New([][]dataset.Cell{
		{dataset.Present(1), dataset.Present(2), dataset.Present(3)},
	}, 3)
	require.NoError(t, err)

	masked := d.MaskHidden([]int{0, 2})
	assert.False(t, masked.At(0, 0).IsMissing())
	assert.True(t, masked.At(0, 1).IsMissing())
	assert.False(t, masked.At(0, 2).IsMissing())

	// Source unchanged.
	assert.False(t, d.At(0, 1).IsMissing())
}
