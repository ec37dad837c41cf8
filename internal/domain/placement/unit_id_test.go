package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargo-placement/internal/domain"
)

func TestParseUnitID_Valido(t *testing.T) {
	id, err := ParseUnitID(" 25010001/01/02 ")
	require.NoError(t, err)
	assert.Equal(t, UnitID{RequestNumber: "25010001", ItemTypeIndex: "01", UnitIndex: "02"}, id)
	assert.Equal(t, "25010001/01/02", id.String())
}

func TestParseUnitID_MalFormado(t *testing.T) {
	for _, raw := range []string{"", "R1", "R1/01", "R1/01/02/03", "R1//02", "/01/02"} {
		_, err := ParseUnitID(raw)
		require.Error(t, err, raw)
		de := domain.AsError(err)
		assert.Equal(t, domain.KindNotFound, de.Kind, raw)
		assert.Equal(t, domain.SegmentFormat, de.Segment, raw)
	}
}

func TestUnitIndexes_AnchoMinimoDos(t *testing.T) {
	assert.Equal(t, []string{"01", "02", "03"}, UnitIndexes(3))
	assert.Empty(t, UnitIndexes(0))

	idx := UnitIndexes(120)
	require.Len(t, idx, 120)
	assert.Equal(t, "001", idx[0])
	assert.Equal(t, "120", idx[119])
}

func TestIndexWidth(t *testing.T) {
	assert.Equal(t, 2, IndexWidth(1))
	assert.Equal(t, 2, IndexWidth(99))
	assert.Equal(t, 3, IndexWidth(100))
}

func TestSameIndex(t *testing.T) {
	assert.True(t, SameIndex("2", "02"))
	assert.True(t, SameIndex("010", "10"))
	assert.False(t, SameIndex("01", "02"))
	assert.True(t, SameIndex("A", "A"))
	assert.False(t, SameIndex("A", "01"))
}
