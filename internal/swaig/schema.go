package swaig

// Schema is the JSON schema of a tool's arguments. Only the object shape
// the platform accepts is modelled.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Minimum     *int   `json:"minimum,omitempty"`
	Maximum     *int   `json:"maximum,omitempty"`
}

// Object builds an object schema. required may be empty.
func Object(props map[string]Property, required ...string) Schema {
	if props == nil {
		props = map[string]Property{}
	}
	if required == nil {
		required = []string{}
	}
	return Schema{Type: "object", Properties: props, Required: required}
}

func String(description string) Property {
	return Property{Type: "string", Description: description}
}

// Integer builds an integer property bounded to [min, max].
func Integer(description string, min, max int) Property {
	return Property{Type: "integer", Description: description, Minimum: &min, Maximum: &max}
}
