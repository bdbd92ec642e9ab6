package api_test

import (
	"encoding/json"
	"testing"

	"orderflow/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestLoad_ContractIsValid(t *testing.T) {
	doc, err := api.Load(t.Context())
	require.NoError(t, err)

	for _, path := range []string{
		"/api/v1/orders",
		"/api/v1/webhooks/delivery-status",
		"/api/v1/orders/{orderId}/tracking",
		"/api/v1/orders/{orderId}/delivery",
		"/api/v1/orders/{orderId}/delivery/cancel",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}

func TestRegisterSwagger_ServesJSON(t *testing.T) {
	require.NoError(t, api.RegisterSwagger(t.Context()))

	doc, err := swag.ReadDoc()
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "3.0.3", parsed["openapi"])
}
