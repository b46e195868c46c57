package domain

import (
	"encoding/json"
	"fmt"
)

// Resource is an embedded record for a saved or purchased study resource
// (a past paper or a set of notes).
type Resource struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Subject string `json:"subject,omitempty"`
	College string `json:"college,omitempty"`
	Price   int64  `json:"price,omitempty"`
	FileURL string `json:"fileUrl,omitempty"`
}

// ResourceRef is a polymorphic reference to a resource: the backend returns
// either a bare identifier string or a fully embedded record. ID is always
// set; Resource is non-nil only when the record was embedded.
type ResourceRef struct {
	ID       string
	Resource *Resource
}

// UnmarshalJSON accepts either a JSON string (bare identifier) or an object
// (embedded record).
func (r *ResourceRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		r.Resource = nil
		return nil
	}

	var res Resource
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("resource ref is neither id nor record: %w", err)
	}
	if res.ID == "" {
		return fmt.Errorf("embedded resource record has no id")
	}
	r.ID = res.ID
	r.Resource = &res
	return nil
}

// MarshalJSON writes the embedded record when present, else the bare id.
func (r ResourceRef) MarshalJSON() ([]byte, error) {
	if r.Resource != nil {
		return json.Marshal(r.Resource)
	}
	return json.Marshal(r.ID)
}

// SavedCollection holds the user's saved and purchased resources, exactly as
// acknowledged by the backend's last successful fetch.
type SavedCollection struct {
	SavedPYQs      []ResourceRef `json:"savedPYQs"`
	SavedNotes     []ResourceRef `json:"savedNotes"`
	PurchasedPYQs  []ResourceRef `json:"purchasedPYQs"`
	PurchasedNotes []ResourceRef `json:"purchasedNotes"`
}

// EmptySavedCollection returns a collection with all lists non-nil and empty.
func EmptySavedCollection() SavedCollection {
	return SavedCollection{
		SavedPYQs:      []ResourceRef{},
		SavedNotes:     []ResourceRef{},
		PurchasedPYQs:  []ResourceRef{},
		PurchasedNotes: []ResourceRef{},
	}
}
