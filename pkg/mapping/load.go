package mapping

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and validates a mapping file. Validation failures are
// fatal by design: a malformed table must halt the run before any record
// is processed.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Err: err}
	}
	return Load(data)
}

// Load parses and validates mapping configuration from YAML bytes.
func Load(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, &LoadError{FilePath: "(inline)", Err: err}
	}

	config.applyDefaults()
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills the permissive defaults the resolvers rely on.
func (c *Config) applyDefaults() {
	if c.DefaultType == "" {
		c.DefaultType = "Task"
	}
	if c.GlobalStates == nil {
		c.GlobalStates = map[string]string{}
	}
	if _, ok := c.GlobalStates["open"]; !ok {
		c.GlobalStates["open"] = "New"
	}
	if _, ok := c.GlobalStates["closed"]; !ok {
		c.GlobalStates["closed"] = "Done"
	}
	for i := range c.CustomFields {
		if c.CustomFields[i].TargetField == "" && c.CustomFields[i].Fallback == "" {
			c.CustomFields[i].Fallback = FallbackSkip
		}
	}
}

// normalize lowercases every case-insensitive key so lookups need no
// per-call folding.
func (c *Config) normalize() {
	c.DefaultProject = strings.ToLower(c.DefaultProject)

	c.GlobalStates = lowerKeys(c.GlobalStates)
	c.LabelTypes = lowerKeys(c.LabelTypes)
	c.Users = lowerKeys(c.Users)

	projects := make(map[string]ProjectStateTable, len(c.Projects))
	for projectKey, table := range c.Projects {
		normalized := make(ProjectStateTable, len(table))
		for workItemType, states := range table {
			normalized[workItemType] = TypeStateTable(lowerKeys(map[string]ColumnTable(states)))
		}
		projects[strings.ToLower(projectKey)] = normalized
	}
	c.Projects = projects
}

func lowerKeys[V any](in map[string]V) map[string]V {
	if in == nil {
		return nil
	}
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Validate checks the mapping tables for structural problems, returning
// a ValidationError listing every one found.
func (c *Config) Validate() error {
	var errs []string

	if c.DefaultType == "" {
		errs = append(errs, "default_type must not be empty")
	}

	for state, target := range c.GlobalStates {
		if target == "" {
			errs = append(errs, fmt.Sprintf("global_states[%q] has an empty target state", state))
		}
	}

	for i, rule := range c.TypePrefixes {
		if rule.Prefix == "" {
			errs = append(errs, fmt.Sprintf("type_prefixes[%d] has an empty prefix", i))
		}
		if rule.Type == "" {
			errs = append(errs, fmt.Sprintf("type_prefixes[%d] (%q) has an empty type", i, rule.Prefix))
		}
	}

	for label, workItemType := range c.LabelTypes {
		if workItemType == "" {
			errs = append(errs, fmt.Sprintf("label_types[%q] has an empty type", label))
		}
	}

	for projectKey, table := range c.Projects {
		for workItemType, states := range table {
			for sourceState, columns := range states {
				if len(columns) == 0 {
					errs = append(errs, fmt.Sprintf(
						"projects[%s][%s][%s] has no column entries", projectKey, workItemType, sourceState))
				}
				for column, target := range columns {
					if target == "" {
						errs = append(errs, fmt.Sprintf(
							"projects[%s][%s][%s][%q] has an empty target state",
							projectKey, workItemType, sourceState, column))
					}
				}
			}
		}
	}

	for i, rule := range c.PriorityLabels {
		if rule.Label == "" {
			errs = append(errs, fmt.Sprintf("priority_labels[%d] has an empty label", i))
		}
		if rule.Priority < 1 || rule.Priority > 4 {
			errs = append(errs, fmt.Sprintf("priority_labels[%d] (%q) priority %d out of range 1-4",
				i, rule.Label, rule.Priority))
		}
	}

	for i, rule := range c.CustomFields {
		if rule.SourceField == "" {
			errs = append(errs, fmt.Sprintf("custom_fields[%d] has an empty source_field", i))
		}
		if rule.TargetField == "" {
			switch rule.Fallback {
			case FallbackSkip, FallbackTags, FallbackComment:
			default:
				errs = append(errs, fmt.Sprintf("custom_fields[%d] (%q) has invalid fallback %q",
					i, rule.SourceField, rule.Fallback))
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
