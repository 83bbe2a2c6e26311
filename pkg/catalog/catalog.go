// Package catalog builds the fixed-at-startup set of roast_<domain> tools.
//
// The generator is mechanical: a table of domain × primary-arg ×
// hint-fields, merged into a shared base schema. There is no per-domain Go
// type and nothing here is clever — the catalog's value is organizational,
// not algorithmic.
package catalog

// ArgKind distinguishes the two shapes a domain's primary argument can take.
type ArgKind string

const (
	// ArgKindPath marks a primary arg that names a filesystem path.
	ArgKindPath ArgKind = "path"
	// ArgKindText marks a primary arg that carries free-form text content.
	ArgKindText ArgKind = "text"
)

// DomainSpec describes one of the 11 roast_<domain> tools before schema
// expansion.
type DomainSpec struct {
	ID              string
	PrimaryArgField string
	PrimaryArgKind  ArgKind
	AnalysisType    string
	Description     string
	// HintFields names the optional domain-specific fields (depth,
	// commitRange, includeDevDeps, ...) this domain exposes, drawn from the
	// shared hintSchemas table.
	HintFields []string
}

// ToolConfig is the immutable, built-at-startup description of one MCP tool.
// Name is unique across the catalog; CacheKeyFields is always a superset of
// {PrimaryArgField}.
type ToolConfig struct {
	Name            string
	DomainID        string
	Description     string
	PrimaryArgField string
	PrimaryArgKind  ArgKind
	CacheKeyFields  []string
	AnalysisType    string
	Schema          map[string]interface{}
}

// domains is the fixed list of 11 critique domains this server exposes. Order is
// stable and drives ListTools ordering.
var domains = []DomainSpec{
	{
		ID: "codebase", PrimaryArgField: "targetPath", PrimaryArgKind: ArgKindPath,
		AnalysisType: "codebase", Description: "Brutally critique a codebase for correctness, maintainability, and design quality.",
		HintFields: []string{"depth"},
	},
	{
		ID: "file_structure", PrimaryArgField: "targetPath", PrimaryArgKind: ArgKindPath,
		AnalysisType: "file_structure", Description: "Critique the organization and layout of a project's directory structure.",
		HintFields: []string{"depth"},
	},
	{
		ID: "dependencies", PrimaryArgField: "targetPath", PrimaryArgKind: ArgKindPath,
		AnalysisType: "dependencies", Description: "Critique a project's dependency choices, versions, and supply-chain posture.",
		HintFields: []string{"includeDevDeps"},
	},
	{
		ID: "git_history", PrimaryArgField: "targetPath", PrimaryArgKind: ArgKindPath,
		AnalysisType: "git_history", Description: "Critique the commit history of a repository for hygiene and process smells.",
		HintFields: []string{"commitRange"},
	},
	{
		ID: "test_coverage", PrimaryArgField: "targetPath", PrimaryArgKind: ArgKindPath,
		AnalysisType: "test_coverage", Description: "Critique a project's test suite for coverage gaps and quality.",
		HintFields: []string{"runCoverage"},
	},
	{
		ID: "idea", PrimaryArgField: "idea", PrimaryArgKind: ArgKindText,
		AnalysisType: "idea", Description: "Brutally critique a product or technical idea.",
		HintFields: []string{"resources", "timeline", "scale", "constraints"},
	},
	{
		ID: "architecture", PrimaryArgField: "architecture", PrimaryArgKind: ArgKindText,
		AnalysisType: "architecture", Description: "Critique a proposed system architecture for scalability and operability.",
		HintFields: []string{"scale", "constraints", "deployment"},
	},
	{
		ID: "research", PrimaryArgField: "research", PrimaryArgKind: ArgKindText,
		AnalysisType: "research", Description: "Critique a research proposal or write-up for rigor and novelty.",
		HintFields: []string{"field", "claims", "data"},
	},
	{
		ID: "security", PrimaryArgField: "system", PrimaryArgKind: ArgKindText,
		AnalysisType: "security", Description: "Critique a system design or description for security weaknesses.",
		HintFields: []string{"assets", "threatModel", "compliance"},
	},
	{
		ID: "product", PrimaryArgField: "product", PrimaryArgKind: ArgKindText,
		AnalysisType: "product", Description: "Critique a product plan for market fit and execution risk.",
		HintFields: []string{"users", "competition", "metrics"},
	},
	{
		ID: "infrastructure", PrimaryArgField: "infrastructure", PrimaryArgKind: ArgKindText,
		AnalysisType: "infrastructure", Description: "Critique an infrastructure or deployment plan for reliability and cost.",
		HintFields: []string{"sla", "budget", "deployment"},
	},
}

// Build produces the full []ToolConfig catalog, one entry per domain, in the
// fixed order of domains. It is called once at startup; the result is
// treated as immutable thereafter.
func Build() []ToolConfig {
	out := make([]ToolConfig, 0, len(domains))
	for _, d := range domains {
		out = append(out, ToolConfig{
			Name:            "roast_" + d.ID,
			DomainID:        d.ID,
			Description:     d.Description,
			PrimaryArgField: d.PrimaryArgField,
			PrimaryArgKind:  d.PrimaryArgKind,
			CacheKeyFields:  cacheKeyFields(d),
			AnalysisType:    d.AnalysisType,
			Schema:          buildSchema(d),
		})
	}
	return out
}

// cacheKeyFields is always the primary arg plus the domain hints that
// meaningfully change the resulting analysis; models and pagination fields
// never participate in the cache key.
func cacheKeyFields(d DomainSpec) []string {
	fields := make([]string, 0, len(d.HintFields)+1)
	fields = append(fields, d.PrimaryArgField)
	fields = append(fields, d.HintFields...)
	return fields
}

// ByName indexes a catalog by tool name for O(1) lookup in the tool handler.
func ByName(tools []ToolConfig) map[string]ToolConfig {
	m := make(map[string]ToolConfig, len(tools))
	for _, t := range tools {
		m[t.Name] = t
	}
	return m
}
