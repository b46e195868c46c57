package domain

// College is a listed college on the platform.
type College struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Location string `json:"location,omitempty"`
}
