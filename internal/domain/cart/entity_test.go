// internal/domain/cart/entity_test.go
package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	c, err := New("user-1", nil, testNow)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	_, err = New("  ", nil, testNow)
	assert.ErrorIs(t, err, ErrInvalidCart)
}

func TestNew_NormalizesLines(t *testing.T) {
	c, err := New("user-1", []Line{
		{ProductID: "p2", Qty: 1},
		{ProductID: " p1 ", Qty: 2},
		{ProductID: "p2", Qty: 5}, // duplicate: last write wins
		{ProductID: "", Qty: 3},   // dropped
	}, testNow)
	require.NoError(t, err)

	require.Len(t, c.Lines, 2)
	assert.Equal(t, "p1", c.Lines[0].ProductID, "sorted by productId")
	assert.Equal(t, "p2", c.Lines[1].ProductID)
	assert.Equal(t, 5, c.Lines[1].Qty)
}

func TestSetLine_AbsoluteQty(t *testing.T) {
	c, err := New("user-1", nil, testNow)
	require.NoError(t, err)

	require.NoError(t, c.SetLine("p1", "Teak Tray", 100, 2, testNow))
	require.NoError(t, c.SetLine("p1", "Teak Tray", 100, 7, testNow.Add(time.Minute)))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 7, c.Lines[0].Qty, "qty is absolute, not an increment")
}

func TestSetLine_PreservesAddedAt(t *testing.T) {
	c, err := New("user-1", nil, testNow)
	require.NoError(t, err)

	require.NoError(t, c.SetLine("p1", "Teak Tray", 100, 1, testNow))
	later := testNow.Add(time.Hour)
	require.NoError(t, c.SetLine("p1", "Teak Tray", 120, 3, later))

	assert.Equal(t, testNow, c.Lines[0].AddedAt)
	assert.Equal(t, later, c.Lines[0].UpdatedAt)
}

func TestSetLine_ZeroQtyRemoves(t *testing.T) {
	c, err := New("user-1", nil, testNow)
	require.NoError(t, err)

	require.NoError(t, c.SetLine("p1", "Teak Tray", 100, 2, testNow))
	require.NoError(t, c.SetLine("p1", "", 0, 0, testNow))
	assert.True(t, c.IsEmpty())
}

func TestSetLine_Validation(t *testing.T) {
	c, err := New("user-1", nil, testNow)
	require.NoError(t, err)
	assert.ErrorIs(t, c.SetLine("  ", "x", 1, 1, testNow), ErrInvalidLine)
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	c, err := New("user-1", []Line{{ProductID: "p1", Qty: 1}}, testNow)
	require.NoError(t, err)

	require.NoError(t, c.Remove("p9", testNow))
	assert.Len(t, c.Lines, 1)

	require.NoError(t, c.Remove("p1", testNow))
	assert.True(t, c.IsEmpty())
}

func TestClear(t *testing.T) {
	c, err := New("user-1", []Line{{ProductID: "p1", Qty: 1}}, testNow)
	require.NoError(t, err)

	c.Clear(testNow)
	assert.True(t, c.IsEmpty())
	c.Clear(testNow) // idempotent
	assert.True(t, c.IsEmpty())
}
