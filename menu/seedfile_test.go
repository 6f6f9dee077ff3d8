package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippedCatalogIsValid(t *testing.T) {
	f, err := LoadSeedFile("../catalog.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, f.Items)
	assert.NotEmpty(t, f.PaymentMethods)
	assert.Equal(t, []string{"Coffee", "Non-Coffee", "Pastry"}, Categories(f.Items))
}
