package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/salesdesk/internal"
	"github.com/frahmantamala/salesdesk/internal/transport"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// LoadOpenAPIRouter parses and validates an OpenAPI document and builds a
// router that matches requests on their full path.
func LoadOpenAPIRouter(ctx context.Context, raw []byte) (routers.Router, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return legacy.NewRouter(doc)
}

// OpenAPIValidator rejects requests whose parameters or body do not match
// the documented operation. Requests for undocumented routes pass through.
// Authentication is left to the Tenant middleware.
func OpenAPIValidator(router routers.Router, lg *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		MultiError:         false,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				base.WriteError(w, internal.NewValidationError(requestErrorMessage(err), internal.ErrCodeValidationFailed).WithCause(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requestErrorMessage(err error) string {
	switch e := err.(type) {
	case *openapi3filter.RequestError:
		if e.Parameter != nil {
			return fmt.Sprintf("invalid parameter %q", e.Parameter.Name)
		}
		if e.RequestBody != nil {
			return "request body does not match the schema"
		}
		return e.Error()
	default:
		return "request does not match the API description"
	}
}
