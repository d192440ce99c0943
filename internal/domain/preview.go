package domain

// PreviewField is one titled entry of a command preview.
type PreviewField struct {
	Key   string
	Value string
}

// Preview is an ordered mapping of preview titles to values.
type Preview []PreviewField

// Add appends a field and returns the extended preview.
func (p Preview) Add(key, value string) Preview {
	return append(p, PreviewField{Key: key, Value: value})
}

// Get returns the value stored under key.
func (p Preview) Get(key string) (string, bool) {
	for _, f := range p {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Keys returns the field titles in order.
func (p Preview) Keys() []string {
	keys := make([]string, len(p))
	for i, f := range p {
		keys[i] = f.Key
	}
	return keys
}
