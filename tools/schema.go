package tools

import "voicecoach/core"

// Schema renders a tool's parameters as a JSON-schema object.
func Schema(tool core.LLMTool) map[string]any {
	properties := make(map[string]any, len(tool.Parameters))
	required := make([]string, 0, len(tool.Parameters))

	for _, param := range tool.Parameters {
		prop := map[string]any{
			"type":        schemaType(param.Type),
			"description": param.Description,
		}
		if param.Example != "" {
			prop["examples"] = []any{param.Example}
		}
		if len(param.Enum) > 0 {
			enum := make([]any, len(param.Enum))
			for i, v := range param.Enum {
				enum[i] = v
			}
			prop["enum"] = enum
		}
		properties[param.Name] = prop

		if param.Required {
			required = append(required, param.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func schemaType(t core.LLMParamterType) string {
	switch t {
	case core.LLMParameterTypeInteger:
		return "number"
	case core.LLMParameterTypeBoolean:
		return "boolean"
	case core.LLMParameterTypeObject:
		return "object"
	default:
		return "string"
	}
}
