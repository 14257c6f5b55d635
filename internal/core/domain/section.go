package domain

// Section is one titled unit of a segmented document.
// The JSON keys match the serialized intermediate form shared between the
// segmentation step and the insertion step.
type Section struct {
	// MainTitle is the most recent top-level heading, or empty if none preceded.
	MainTitle string `json:"main title"`

	// SectionTitle is the second-level heading that opened this section.
	// Never empty for an emitted section.
	SectionTitle string `json:"section title"`

	// Content is the trimmed body text up to the next heading.
	Content string `json:"content"`
}

// Field returns the section text that feeds the given vector field.
func (s Section) Field(field VectorField) string {
	switch field {
	case FieldMainTitle:
		return s.MainTitle
	case FieldSectionTitle:
		return s.SectionTitle
	case FieldContent:
		return s.Content
	default:
		return ""
	}
}
