// Package api embeds the OpenAPI contract served by the HTTP adapter.
package api

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/swaggo/swag"
)

//go:embed openapi.yaml
var Contract []byte

// Load parses and validates the embedded contract.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(Contract)
	if err != nil {
		return nil, fmt.Errorf("load openapi: %w", err)
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi: %w", err)
	}
	return doc, nil
}

type swaggerDoc struct {
	json string
}

func (d swaggerDoc) ReadDoc() string {
	return d.json
}

// RegisterSwagger publishes the contract as JSON to swag, which backs the
// /swagger/doc.json route served by echo-swagger.
func RegisterSwagger(ctx context.Context) error {
	doc, err := Load(ctx)
	if err != nil {
		return err
	}
	raw, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode openapi: %w", err)
	}
	swag.Register(swag.Name, swaggerDoc{json: string(raw)})
	return nil
}
