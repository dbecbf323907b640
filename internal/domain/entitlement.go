package domain

// PurchasedCourse is a course the current identity owns, as returned by the
// backend's entitlement listing. The set of purchased courses for a session is
// keyed by ID and replaced wholesale on every refresh; consumers rely on
// membership only, never on ordering.
type PurchasedCourse struct {
	ID          string  `json:"_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Instructor  string  `json:"instructor"`
	Videos      []Video `json:"videos,omitempty"`
}
