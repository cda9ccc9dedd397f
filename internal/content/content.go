// Package content holds the read-only course hierarchy records used to find which model
// the viewer should show: course, semester, section, topic, model.
package content

// Course is the top of the hierarchy.
type Course struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
}

// Semester belongs to a course.
type Semester struct {
	ID       int64  `json:"id"`
	CourseID int64  `json:"course"`
	Name     string `json:"name"`
}

// Section belongs to a semester.
type Section struct {
	ID         int64  `json:"id"`
	SemesterID int64  `json:"semester"`
	Name       string `json:"name"`
}

// Topic belongs to a section and groups the models studied together.
type Topic struct {
	ID        int64  `json:"id"`
	SectionID int64  `json:"section"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
}

// Model is a 3D asset. FileURL points at the binary glTF the viewer loads; an empty
// FileURL means the viewer shows its placeholder.
type Model struct {
	ID          int64  `json:"id"`
	TopicID     int64  `json:"topic"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	FileURL     string `json:"file"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// HasAsset reports whether the model points at a loadable asset.
func (m Model) HasAsset() bool { return m.FileURL != "" }
