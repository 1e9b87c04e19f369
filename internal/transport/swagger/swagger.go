package swagger

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.yml"), // served at root by the router
	)
}

// ValidateDocument loads the OpenAPI document and validates it so a broken
// contract fails the server at startup instead of at the first request.
func ValidateDocument(ctx context.Context, path string) error {
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: true}
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return err
	}
	return doc.Validate(ctx)
}
