package fakeapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// findFavourite returns the user's favourite for a book. Caller holds s.mu.
func (s *Server) findFavourite(userID, bookID int64) *favourite {
	for _, f := range s.favourites {
		if f.UserID == userID && f.Book.ID == bookID {
			return f
		}
	}
	return nil
}

// addFavouriteLocked favourites a book once. Caller holds s.mu.
func (s *Server) addFavouriteLocked(userID int64, b *book) *favourite {
	if f := s.findFavourite(userID, b.ID); f != nil {
		return f
	}
	f := &favourite{ID: s.id(), UserID: userID, Book: b, CreatedAt: time.Now().UTC().Format("2006-01-02T15:04:05")}
	s.favourites[f.ID] = f
	return f
}

func (s *Server) myFavourites(c *gin.Context) {
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	favs := []favourite{}
	for _, f := range s.favourites {
		if f.UserID == u.ID {
			favs = append(favs, *f)
		}
	}
	sort.Slice(favs, func(i, j int) bool { return favs[i].ID < favs[j].ID })
	c.JSON(http.StatusOK, favs)
}

func (s *Server) checkFavourite(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, s.findFavourite(u.ID, id) != nil)
}

func (s *Server) addFavourite(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.books[id]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}
	c.JSON(http.StatusOK, s.addFavouriteLocked(u.ID, b))
}

func (s *Server) removeFavourite(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.findFavourite(u.ID, id); f != nil {
		delete(s.favourites, f.ID)
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) toggleFavourite(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.books[id]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}
	if f := s.findFavourite(u.ID, id); f != nil {
		delete(s.favourites, f.ID)
	} else {
		s.addFavouriteLocked(u.ID, b)
	}
	c.Status(http.StatusOK)
}
