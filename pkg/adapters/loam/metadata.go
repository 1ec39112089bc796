package loam

// TemplateMetadata is the front matter of a template document.
//
//	---
//	kind: todo
//	name: Order a laptop
//	tags: [it]
//	fields:
//	  due_on_day: 2
//	---
//	Markdown body, stored as the template content.
type TemplateMetadata struct {
	Kind string   `json:"kind" mapstructure:"kind"`
	Name string   `json:"name" mapstructure:"name"`
	Tags []string `json:"tags" mapstructure:"tags"`

	// Fields holds the kind specific fields (due_on_day, category, time...).
	Fields map[string]any `json:"fields" mapstructure:"fields"`
}
