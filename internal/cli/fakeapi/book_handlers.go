package fakeapi

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// sortedBooks returns the catalog ordered by ID. Caller holds s.mu.
func (s *Server) sortedBooks() []*book {
	books := make([]*book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (s *Server) searchBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 0 || size < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid paging parameters"})
		return
	}
	year, _ := strconv.Atoi(c.Query("year"))

	s.mu.Lock()
	defer s.mu.Unlock()

	matches := []book{}
	for _, b := range s.sortedBooks() {
		if t := c.Query("title"); t != "" && !containsFold(b.Title, t) {
			continue
		}
		if a := c.Query("author"); a != "" && !containsFold(b.Author, a) {
			continue
		}
		if g := c.Query("genre"); g != "" && !containsFold(b.Genres, g) {
			continue
		}
		if year != 0 && b.Year != year {
			continue
		}
		matches = append(matches, *b)
	}

	start := page * size
	if start > len(matches) {
		start = len(matches)
	}
	end := start + size
	if end > len(matches) {
		end = len(matches)
	}

	c.JSON(http.StatusOK, gin.H{
		"content":       matches[start:end],
		"totalPages":    (len(matches) + size - 1) / size,
		"totalElements": len(matches),
		"number":        page,
		"size":          size,
	})
}

func (s *Server) getBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, exists := s.books[id]
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) topRated(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	books := s.sortedBooks()
	sort.SliceStable(books, func(i, j int) bool { return books[i].AvgRating > books[j].AvgRating })
	if len(books) > 5 {
		books = books[:5]
	}
	c.JSON(http.StatusOK, books)
}

func (s *Server) aiRecommendations(c *gin.Context) {
	u := currentUser(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	genres := map[string]bool{}
	for _, f := range s.favourites {
		if f.UserID != u.ID {
			continue
		}
		for _, g := range strings.Split(f.Book.Genres, ",") {
			if g = strings.TrimSpace(g); g != "" {
				genres[strings.ToLower(g)] = true
			}
		}
	}

	recs := []gin.H{}
	if genres["fantasy"] {
		recs = append(recs, gin.H{"title": "The Name of the Wind", "author": "Patrick Rothfuss"})
	}
	if genres["science fiction"] || genres["sci-fi"] {
		recs = append(recs, gin.H{"title": "Hyperion", "author": "Dan Simmons"})
	}
	if len(recs) == 0 {
		recs = append(recs, gin.H{"title": "Pride and Prejudice", "author": "Jane Austen"})
	}
	c.JSON(http.StatusOK, recs)
}

// importBooks reads a CSV with a title,author,year,genres,description,coverUrl header
func (s *Server) importBooks(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable upload"})
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV header is missing"})
		return
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	field := func(rec []string, name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	imported := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed CSV: " + err.Error()})
			return
		}
		title, author := field(rec, "title"), field(rec, "author")
		if title == "" || author == "" {
			continue
		}
		year, _ := strconv.Atoi(field(rec, "year"))
		b := &book{
			ID:          s.id(),
			Title:       title,
			Author:      author,
			Year:        year,
			Genres:      field(rec, "genres"),
			Description: field(rec, "description"),
			CoverURL:    field(rec, "coverUrl"),
		}
		s.books[b.ID] = b
		imported++
	}

	c.JSON(http.StatusOK, gin.H{"imported": imported})
}
