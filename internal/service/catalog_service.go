package service

import (
	"context"
	"strconv"

	"learnhub-web/internal/backend"
	"learnhub-web/internal/domain"
	"learnhub-web/internal/session"
)

const placeholderImage = "/placeholder.svg?height=200&width=300"

// placeholderLessons stands in when the backend returns a course without
// videos, so the detail page always has content to render.
var placeholderLessons = []Lesson{
	{ID: 1, Title: "Introduction to the course", Duration: "15:30", IsPreview: true},
	{ID: 2, Title: "Getting Started", Duration: "22:45"},
	{ID: 3, Title: "Core Concepts", Duration: "35:20"},
	{ID: 4, Title: "Advanced Techniques", Duration: "28:15"},
}

// Lesson is a single content item of the detail view. Link is withheld unless
// the lesson is playable for the requesting session.
type Lesson struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Duration  string `json:"duration,omitempty"`
	Link      string `json:"link,omitempty"`
	IsPreview bool   `json:"is_preview"`
	Playable  bool   `json:"playable"`
}

// CourseSummary is a catalog listing entry
type CourseSummary struct {
	ID          string  `json:"id"`
	DisplayID   int64   `json:"display_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Instructor  string  `json:"instructor"`
	Lessons     int     `json:"lessons"`
}

// CourseDetail is the course page view: the course plus its lessons resolved
// against the requesting session's entitlements.
type CourseDetail struct {
	ID          string   `json:"id"`
	DisplayID   int64    `json:"display_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	Instructor  string   `json:"instructor"`
	Purchased   bool     `json:"purchased"`
	Lessons     []Lesson `json:"lessons"`
}

// CatalogService builds view models from the backend catalog and the session
// store. It holds no state of its own: playability is recomputed per request
// from the latest entitlement snapshot.
type CatalogService struct {
	api   backend.CourseAPI
	store *session.Store
}

// NewCatalogService creates a new catalog service
func NewCatalogService(api backend.CourseAPI, store *session.Store) *CatalogService {
	return &CatalogService{
		api:   api,
		store: store,
	}
}

// ListCourses fetches and formats the public catalog.
func (s *CatalogService) ListCourses(ctx context.Context) ([]CourseSummary, error) {
	courses, err := s.api.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		image := c.Image
		if image == "" {
			image = placeholderImage
		}
		lessons := len(c.Videos)
		if lessons == 0 {
			lessons = len(placeholderLessons)
		}
		summaries = append(summaries, CourseSummary{
			ID:          c.ID,
			DisplayID:   DisplayID(c.ID),
			Title:       c.Title,
			Description: c.Description,
			Price:       c.Price,
			Image:       image,
			Instructor:  c.Instructor,
			Lessons:     lessons,
		})
	}
	return summaries, nil
}

// GetCourse resolves one course for the given session. The backend exposes the
// catalog as a single list, so the lookup filters by opaque id. A nil session
// is a logged-out visitor: only previews are playable.
func (s *CatalogService) GetCourse(ctx context.Context, courseID string, sess *domain.Session) (*CourseDetail, error) {
	courses, err := s.api.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range courses {
		if c.ID != courseID {
			continue
		}

		purchased := sess.LoggedIn() && s.store.HasPurchased(sess.Token, c.ID)

		image := c.Image
		if image == "" {
			image = placeholderImage
		}

		return &CourseDetail{
			ID:          c.ID,
			DisplayID:   DisplayID(c.ID),
			Title:       c.Title,
			Description: c.Description,
			Price:       c.Price,
			Image:       image,
			Instructor:  c.Instructor,
			Purchased:   purchased,
			Lessons:     formatLessons(c.Videos, purchased),
		}, nil
	}

	return nil, domain.ErrCourseNotFound
}

// formatLessons turns backend videos into gated lessons. The first video is
// the course's free preview; everything else requires entitlement. A lesson
// that is not playable for this session has its link stripped.
func formatLessons(videos []domain.Video, purchased bool) []Lesson {
	if len(videos) == 0 {
		lessons := make([]Lesson, len(placeholderLessons))
		copy(lessons, placeholderLessons)
		for i := range lessons {
			lessons[i].Playable = lessons[i].IsPreview || purchased
		}
		return lessons
	}

	lessons := make([]Lesson, 0, len(videos))
	for i, v := range videos {
		lesson := Lesson{
			ID:        i + 1,
			Title:     v.Title,
			IsPreview: i == 0,
		}
		lesson.Playable = lesson.IsPreview || purchased
		if lesson.Playable {
			lesson.Link = v.Link
		}
		lessons = append(lessons, lesson)
	}
	return lessons
}

// DisplayID maps the backend's opaque id to a short numeric id by reading its
// trailing 6 characters as hex. Presentation only: the opaque id remains the
// key for every backend call. Unparseable ids map to 0.
func DisplayID(id string) int64 {
	tail := id
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	n, err := strconv.ParseInt(tail, 16, 64)
	if err != nil {
		return 0
	}
	return n
}
