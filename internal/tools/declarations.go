package tools

import (
	"riabuilder/internal/gemini"
)

// Declarations renders the full catalogue as Gemini function declarations,
// in catalogue order.
func (r *Registry) Declarations() []gemini.Tool {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	decls := make([]gemini.FunctionDeclaration, 0, len(all))
	for _, tool := range all {
		decls = append(decls, gemini.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  schemaToParameters(tool.Schema),
		})
	}
	return []gemini.Tool{{FunctionDeclarations: decls}}
}

// schemaToParameters converts a ToolSchema to the OBJECT parameter schema
// the Gemini API expects.
func schemaToParameters(schema ToolSchema) map[string]interface{} {
	if len(schema.Properties) == 0 {
		return nil
	}

	props := make(map[string]interface{}, len(schema.Properties))
	for name, p := range schema.Properties {
		prop := map[string]interface{}{
			"type":        p.Type,
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		if p.Items != nil {
			prop["items"] = map[string]interface{}{"type": p.Items.Type}
		}
		props[name] = prop
	}

	params := map[string]interface{}{
		"type":       "OBJECT",
		"properties": props,
	}
	if len(schema.Required) > 0 {
		params["required"] = schema.Required
	}
	return params
}
