package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateWithFallback(t *testing.T) {
	require.NoError(t, Initialize("en"))

	assert.Equal(t, "Contract not found", T("en", KeyContractNotFound))
	assert.Equal(t, "Contrato no encontrado", T("es", KeyContractNotFound))
	// Missing in es, falls back to en.
	assert.Equal(t, "Contract created", T("es", KeyContractCreated))
	assert.Equal(t, "Invalid input", T("en", KeyValidationInvalid, "input"))
	assert.Equal(t, "missing.key", T("en", "missing.key"))
	assert.ElementsMatch(t, []string{"en", "es"}, GetSupportedLanguages())
}
