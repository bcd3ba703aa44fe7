package standardize

// Legacy records overloaded the "type" field with the question format
// ("multiple_choice"/"short_answer") instead of the structural kind.
// MigrateLegacyTypes rewrites that historical encoding into
// "questionType" and resets "type" to the structural value "card",
// recursing over arrays and nested objects. It runs before
// standardization so classification only ever sees structural types.
func MigrateLegacyTypes(v any) any {
	switch node := v.(type) {
	case []any:
		for i := range node {
			node[i] = MigrateLegacyTypes(node[i])
		}
		return node
	case map[string]any:
		if t, ok := node["type"].(string); ok {
			if t == "multiple_choice" || t == "short_answer" {
				if _, has := node["questionType"]; !has {
					node["questionType"] = t
				}
				node["type"] = "card"
			}
		}
		for k, child := range node {
			switch child.(type) {
			case []any, map[string]any:
				node[k] = MigrateLegacyTypes(child)
			}
		}
		return node
	default:
		return v
	}
}
