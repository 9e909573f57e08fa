package example

import (
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/starius/errshape"
	"github.com/starius/errshape/respond"
)

func GetRoutes(s INotes) []errshape.Route {
	return []errshape.Route{
		{Method: http.MethodPost, Path: "/v1/login", Handler: errshape.Method(&s, "Login")},
		{Method: http.MethodPost, Path: "/v1/notes/create", Handler: errshape.Method(&s, "Create"), Transport: authTransport},
		{Method: http.MethodPost, Path: "/v1/notes/get", Handler: errshape.Method(&s, "Get"), Transport: authTransport},
		{Method: http.MethodPost, Path: "/v1/notes/archive", Handler: errshape.Method(&s, "Archive"), Transport: authTransport},
		{Method: http.MethodPost, Path: "/v1/fail", Handler: errshape.Method(&s, "Fail")},
	}
}

// OpenAPI describes routes. Every operation gets the standard error payload
// as its default response.
func OpenAPI(routes []errshape.Route) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "Notes",
			Version: "1.0.0",
		},
		Paths: openapi3.Paths{},
	}
	for _, route := range routes {
		item := doc.Paths[route.Path]
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths[route.Path] = item
		}
		op := openapi3.NewOperation()
		op.OperationID = strings.ReplaceAll(strings.TrimPrefix(route.Path, "/"), "/", "_")
		op.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Success."))
		item.SetOperation(route.Method, op)
	}
	respond.AddToOpenAPI(doc)
	return doc
}
