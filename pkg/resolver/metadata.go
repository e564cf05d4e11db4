package resolver

// Field is one resolved descriptor value.
type Field struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// Metadata is the ordered set of resolved fields.
type Metadata []Field

// Get returns the value of the named field.
func (m Metadata) Get(name string) (string, bool) {
	for _, f := range m {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Map returns the fields keyed by name.
func (m Metadata) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, f := range m {
		out[f.Name] = f.Value
	}
	return out
}
