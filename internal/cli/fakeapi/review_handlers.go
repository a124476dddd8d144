package fakeapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// ReviewRequest represents a create-or-update review request
type ReviewRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
}

// reviewsWhere returns matching reviews ordered by ID. Caller holds s.mu.
func (s *Server) reviewsWhere(match func(*review) bool) []review {
	out := []review{}
	for _, r := range s.reviews {
		if match(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// refreshRating recomputes a book's aggregates. Caller holds s.mu.
func (s *Server) refreshRating(bookID int64) {
	b, ok := s.books[bookID]
	if !ok {
		return
	}
	var sum float64
	var n int64
	for _, r := range s.reviews {
		if r.BookID == bookID {
			sum += r.Rating
			n++
		}
	}
	b.ReviewCount = n
	b.AvgRating = 0
	if n > 0 {
		b.AvgRating = sum / float64(n)
	}
}

func (s *Server) bookReviews(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.books[id]; !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, s.reviewsWhere(func(r *review) bool { return r.BookID == id }))
}

func (s *Server) myReviewForBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	mine := s.reviewsWhere(func(r *review) bool { return r.BookID == id && r.UserID == u.ID })
	if len(mine) == 0 {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, mine[0])
}

func (s *Server) myReviews(c *gin.Context) {
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	mine := s.reviewsWhere(func(r *review) bool { return r.UserID == u.ID })
	for i := range mine {
		mine[i].Book = s.books[mine[i].BookID]
	}
	c.JSON(http.StatusOK, mine)
}

func (s *Server) saveReview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.books[id]; !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}

	now := time.Now().UTC().Format("2006-01-02T15:04:05")
	var saved *review
	for _, r := range s.reviews {
		if r.BookID == id && r.UserID == u.ID {
			saved = r
		}
	}
	if saved == nil {
		saved = &review{ID: s.id(), BookID: id, UserID: u.ID, UserName: u.Name, CreatedAt: now}
		s.reviews[saved.ID] = saved
	}
	saved.Text = req.Text
	saved.Rating = float64(req.Rating)
	saved.UpdatedAt = now
	s.refreshRating(id)

	c.JSON(http.StatusOK, saved)
}

func (s *Server) deleteReview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.reviews[id]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if r.UserID != u.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own reviews"})
		return
	}
	delete(s.reviews, id)
	s.refreshRating(r.BookID)

	c.Status(http.StatusOK)
}
