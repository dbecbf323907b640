package domain

import "errors"

var ErrCourseNotFound = errors.New("course not found")

// Video is a single lesson video as the backend course API returns it
type Video struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Course is a catalog entry from the backend course API. ID is the backend's
// opaque identifier and is the only key ever sent back to the backend.
type Course struct {
	ID          string  `json:"_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Instructor  string  `json:"instructor"`
	Videos      []Video `json:"videos,omitempty"`
}
