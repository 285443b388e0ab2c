package backend

import "strings"

// Model aliases - convenient shorthands, users can pass full ids directly.
// Each variant gets its own table because the providers name the same
// Anthropic models differently: bare ids on the direct API, prefixed ids
// on Bedrock, @-versioned ids on Vertex.
var modelAliases = map[Provider]map[string]string{
	ProviderAnthropic: {
		"haiku":  "claude-haiku-4-5-20251001",
		"sonnet": "claude-sonnet-4-5-20250929",
		"opus":   "claude-opus-4-6",
	},
	ProviderBedrock: {
		"haiku":  "anthropic.claude-haiku-4-5-20251001-v1:0",
		"sonnet": "anthropic.claude-sonnet-4-5-20250929-v1:0",
		"opus":   "anthropic.claude-opus-4-6-v1:0",
	},
	ProviderVertex: {
		"haiku":  "claude-haiku-4-5@20251001",
		"sonnet": "claude-sonnet-4-5@20250929",
		"opus":   "claude-opus-4-6",
	},
}

// resolveModel expands shorthand aliases for the given variant, passing
// through unknown names unchanged.
func resolveModel(model string, provider Provider) string {
	if aliases, ok := modelAliases[provider]; ok {
		if resolved, ok := aliases[strings.ToLower(model)]; ok {
			return resolved
		}
	}
	return model
}
