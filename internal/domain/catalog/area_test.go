package catalog

import (
	"errors"
	"testing"

	"github.com/ceramica/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArea(t *testing.T) {
	a, err := NewArea("  Producción ", "taller")
	require.NoError(t, err)
	assert.Equal(t, "Producción", a.Name)
	assert.Equal(t, "PRODUCCION", a.NameKey)

	_, err = NewArea(" ", "")
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestNewSubarea(t *testing.T) {
	a, err := NewArea("Ventas", "")
	require.NoError(t, err)
	s, err := NewSubarea(a.ID, "Mayoreo", "")
	require.NoError(t, err)
	assert.Equal(t, a.ID, s.AreaID)
	assert.Equal(t, "MAYOREO", s.NameKey)

	require.NoError(t, s.Rename("Menudeo", "tiendas"))
	assert.Equal(t, "MENUDEO", s.NameKey)
	assert.Equal(t, "tiendas", s.Description)
}
