package respond

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	// SchemaName is the name of the payload schema in OpenAPI components.
	SchemaName = "ErrorPayload"

	// ResponseName is the name of the error response in OpenAPI components.
	ResponseName = "Error"
)

// PayloadSchema describes Payload.
func PayloadSchema() *openapi3.Schema {
	code := openapi3.NewSchema()
	code.Nullable = true
	code.Description = "Application defined error code."

	schema := openapi3.NewObjectSchema().
		WithProperty("status", openapi3.NewBoolSchema().WithEnum(false)).
		WithProperty("message", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()).WithMinItems(1)).
		WithProperty("code", code).
		WithProperty("error_id", openapi3.NewStringSchema().WithMinLength(1))
	schema.Required = []string{"status", "message"}
	schema.Description = "Standard error payload."
	return schema
}

var payloadSchema = PayloadSchema()

// ValidatePayload checks the JSON form of p against PayloadSchema.
func ValidatePayload(p *Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payloadSchema.VisitJSON(value)
}

// AddToOpenAPI registers the payload schema and the error response in doc
// and makes the error response the default response of every operation.
func AddToOpenAPI(doc *openapi3.T) {
	if doc.Components == nil {
		doc.Components = &openapi3.Components{}
	}
	if doc.Components.Schemas == nil {
		doc.Components.Schemas = openapi3.Schemas{}
	}
	if doc.Components.Responses == nil {
		doc.Components.Responses = openapi3.Responses{}
	}

	schemaRef := openapi3.NewSchemaRef("#/components/schemas/"+SchemaName, payloadSchema)
	doc.Components.Schemas[SchemaName] = openapi3.NewSchemaRef("", payloadSchema)

	response := openapi3.NewResponse().
		WithDescription("Error response.").
		WithJSONSchemaRef(schemaRef)
	doc.Components.Responses[ResponseName] = &openapi3.ResponseRef{Value: response}

	for _, item := range doc.Paths {
		for _, op := range item.Operations() {
			if op.Responses == nil {
				op.Responses = openapi3.Responses{}
			}
			op.Responses["default"] = &openapi3.ResponseRef{
				Ref:   "#/components/responses/" + ResponseName,
				Value: response,
			}
		}
	}
}
