package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/cargo-placement/internal/domain"
	"github.com/jhoicas/cargo-placement/internal/domain/entity"
)

func TestValidateAddress_DentroDelLayout(t *testing.T) {
	w := &entity.Warehouse{DisplayID: "001", BlocksCount: 2, ShelvesPerBlock: 3, CellsPerShelf: 4}
	require.NoError(t, ValidateAddress(w, 1, 1, 1))
	require.NoError(t, ValidateAddress(w, 2, 3, 4))
}

func TestValidateAddress_NombraElComponente(t *testing.T) {
	w := &entity.Warehouse{DisplayID: "001", BlocksCount: 2, ShelvesPerBlock: 3, CellsPerShelf: 4}

	err := ValidateAddress(w, 3, 1, 1)
	require.Error(t, err)
	assert.Equal(t, domain.KindOutOfRange, domain.KindOf(err))
	assert.Contains(t, err.Error(), "bloque 3")
	assert.Contains(t, err.Error(), "1-2")

	err = ValidateAddress(w, 1, 4, 1)
	assert.Contains(t, err.Error(), "estante 4")

	err = ValidateAddress(w, 1, 1, 5)
	assert.Contains(t, err.Error(), "celda 5")
}

func TestValidateAddress_LayoutPorDefecto(t *testing.T) {
	w := &entity.Warehouse{DisplayID: "002"}
	require.NoError(t, ValidateAddress(w, entity.DefaultBlocks, entity.DefaultShelvesPerBlock, entity.DefaultCellsPerShelf))
	err := ValidateAddress(w, 1, 1, entity.DefaultCellsPerShelf+1)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
}
