package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regscan/internal/domain"
	"regscan/internal/port"
)

func TestExtract_FixedTwoRowResult(t *testing.T) {
	e := NewExtractor()

	res, err := e.Extract(context.Background(), port.ExtractInput{ProductCodes: []string{"12345"}})
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.TotalFound)
	assert.InDelta(t, 0.95, res.Confidence, 1e-9)
	assert.Equal(t, domain.ProviderMock, res.Provider)
	assert.Equal(t, "12345", res.Items[0].ProductCode)
	assert.Equal(t, "123-45-67890", res.Items[0].BusinessRegNo)
	assert.Equal(t, "987-65-43210", res.Items[1].BusinessRegNo)
	assert.NotEmpty(t, res.CorrelationID)
}

func TestTestConnection(t *testing.T) {
	e := NewExtractor()
	model, err := e.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderMock, model)
}
