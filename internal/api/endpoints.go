package api

// Endpoints builds URLs for the platform backend's endpoint groups. It does
// string composition only; all request logic lives on the Client.
type Endpoints struct {
	base string
}

// NewEndpoints creates an endpoint builder rooted at base (no trailing slash).
func NewEndpoints(base string) Endpoints {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return Endpoints{base: base}
}

// Auth group.

func (e Endpoints) Login() string       { return e.base + "/api/auth/login" }
func (e Endpoints) Logout() string      { return e.base + "/api/auth/logout" }
func (e Endpoints) CurrentUser() string { return e.base + "/api/auth/user" }

// User group.

func (e Endpoints) Profile() string  { return e.base + "/api/user/profile" }
func (e Endpoints) Activity() string { return e.base + "/api/user/activity" }

// College group.

func (e Endpoints) Colleges() string           { return e.base + "/api/colleges" }
func (e Endpoints) College(slug string) string { return e.base + "/api/colleges/" + slug }
func (e Endpoints) CollegePYQs(slug string) string {
	return e.base + "/api/pyqs/college/" + slug
}

// Saved-data group.

func (e Endpoints) SavedData() string { return e.base + "/api/saved-data" }

// Payment group.

func (e Endpoints) OrderStatus(orderID string) string {
	return e.base + "/api/payment/order/" + orderID
}

// Contact group.

func (e Endpoints) Contact() string { return e.base + "/api/contact-us" }
