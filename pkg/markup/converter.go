// Package markup abstracts the markdown-to-work-item-markup conversion
// the patch builder applies to issue bodies and comments. The real
// converter is an external collaborator; this package defines the seam
// and a passthrough used when the target accepts markdown as-is.
package markup

// Converter renders source tracker markdown into the target system's
// markup. Implementations must be pure: same input, same output.
type Converter interface {
	ToMarkup(text string) string
}

// Passthrough returns the input unchanged.
type Passthrough struct{}

// NewPassthrough creates a no-op converter.
func NewPassthrough() Converter {
	return &Passthrough{}
}

// ToMarkup implements the Converter interface.
func (p *Passthrough) ToMarkup(text string) string {
	return text
}

// MockConverter wraps converted text in markers so tests can assert the
// converter ran.
type MockConverter struct {
	Prefix string
	Calls  []string
}

// NewMockConverter creates a mock converter with a visible prefix.
func NewMockConverter() *MockConverter {
	return &MockConverter{Prefix: "converted:"}
}

// ToMarkup implements the Converter interface.
func (m *MockConverter) ToMarkup(text string) string {
	m.Calls = append(m.Calls, text)
	return m.Prefix + text
}
