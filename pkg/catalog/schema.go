package catalog

// baseProperties are the fields every roast_<domain> tool shares:
// pagination, model selection, context, verbose, force_refresh,
// context_id and resume.
func baseProperties() map[string]interface{} {
	return map[string]interface{}{
		"clis": map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string", "enum": []string{"claude", "codex", "gemini"}},
			"description": "CLI critics to fan out to. Defaults to every available CLI.",
		},
		"models": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"claude": map[string]interface{}{"type": "string", "description": "Model override for the claude CLI."},
				"codex":  map[string]interface{}{"type": "string", "description": "Model override for the codex CLI."},
				"gemini": map[string]interface{}{"type": "string", "description": "Model override for the gemini CLI."},
			},
			"description": "Per-CLI model overrides, e.g. {\"claude\": \"opus\"}.",
		},
		"context": map[string]interface{}{
			"type":        "string",
			"description": "Additional free-form context appended to the analysis prompt.",
		},
		"verbose": map[string]interface{}{
			"type":        "boolean",
			"description": "Include a per-CLI execution summary (status and run time) in the response in addition to the synthesis.",
			"default":     false,
		},
		"force_refresh": map[string]interface{}{
			"type":        "boolean",
			"description": "Bypass the response cache and re-run the analysis.",
			"default":     false,
		},
		"context_id": map[string]interface{}{
			"type":        "string",
			"description": "A context ID returned from a previous call, used to resume or paginate a prior analysis.",
		},
		"resume": map[string]interface{}{
			"type":        "boolean",
			"description": "Continue a previous conversation named by context_id with a new prompt in the primary argument.",
			"default":     false,
		},
		"limit_tokens": map[string]interface{}{
			"type":        "integer",
			"description": "Maximum tokens to return in this page of the response.",
		},
		"offset": map[string]interface{}{
			"type":        "integer",
			"description": "Character offset into the cached response to resume pagination from.",
		},
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Caller-chosen session ID to stream progress events to via GET /mcp. Defaults to an anonymous session.",
		},
	}
}

// hintSchemas describes every optional domain hint field, keyed by field
// name so each DomainSpec can pull in only the hints it declares.
var hintSchemas = map[string]map[string]interface{}{
	"depth": {
		"type":        "string",
		"enum":        []string{"shallow", "normal", "deep"},
		"description": "How thoroughly to walk the target tree.",
	},
	"commitRange": {
		"type":        "string",
		"description": "Git revision range to limit history analysis to, e.g. \"HEAD~50..HEAD\".",
	},
	"includeDevDeps": {
		"type":        "boolean",
		"description": "Include development-only dependencies in the critique.",
	},
	"runCoverage": {
		"type":        "boolean",
		"description": "Run the project's coverage tool before critiquing gaps.",
	},
	"resources": {
		"type":        "string",
		"description": "Resources (budget, headcount, time) available to execute the idea.",
	},
	"timeline": {
		"type":        "string",
		"description": "Target timeline for the idea.",
	},
	"scale": {
		"type":        "string",
		"description": "Expected scale (users, throughput, data volume).",
	},
	"constraints": {
		"type":        "string",
		"description": "Hard constraints the design must satisfy.",
	},
	"deployment": {
		"type":        "string",
		"description": "Target deployment environment.",
	},
	"field": {
		"type":        "string",
		"description": "Research field or discipline.",
	},
	"claims": {
		"type":        "string",
		"description": "Central claims the research makes.",
	},
	"data": {
		"type":        "string",
		"description": "Data or evidence backing the research.",
	},
	"assets": {
		"type":        "string",
		"description": "Assets the system must protect.",
	},
	"threatModel": {
		"type":        "string",
		"description": "Assumed threat model or adversary capability.",
	},
	"compliance": {
		"type":        "string",
		"description": "Compliance regimes the system must satisfy.",
	},
	"users": {
		"type":        "string",
		"description": "Target user segment.",
	},
	"competition": {
		"type":        "string",
		"description": "Known competitors or alternatives.",
	},
	"metrics": {
		"type":        "string",
		"description": "Success metrics for the product.",
	},
	"sla": {
		"type":        "string",
		"description": "Target service-level objectives.",
	},
	"budget": {
		"type":        "string",
		"description": "Budget constraints for the infrastructure.",
	},
}

// buildSchema merges a domain's primary argument and hint fields into the
// shared base schema, producing the full JSON Schema object for the tool's
// inputSchema.
func buildSchema(d DomainSpec) map[string]interface{} {
	props := baseProperties()

	primaryDesc := "Text content to critique."
	if d.PrimaryArgKind == ArgKindPath {
		primaryDesc = "Filesystem path to the target of the analysis."
	}
	props[d.PrimaryArgField] = map[string]interface{}{
		"type":        "string",
		"description": primaryDesc,
	}

	for _, hint := range d.HintFields {
		if s, ok := hintSchemas[hint]; ok {
			props[hint] = s
		}
	}

	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   []string{d.PrimaryArgField},
	}
}
