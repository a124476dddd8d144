// Package fakeapi is an in-memory implementation of the book-review REST API.
// It exists so the CLI can be exercised end to end without the real backend.
package fakeapi

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type user struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash []byte
	IsAdmin      bool
}

type book struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Year        int     `json:"year,omitempty"`
	Genres      string  `json:"genres,omitempty"`
	CoverURL    string  `json:"coverUrl,omitempty"`
	Description string  `json:"description,omitempty"`
	AvgRating   float64 `json:"avgRating,omitempty"`
	ReviewCount int64   `json:"reviewCount"`
}

type review struct {
	ID        int64   `json:"id"`
	BookID    int64   `json:"-"`
	UserID    int64   `json:"-"`
	Rating    float64 `json:"rating"`
	Text      string  `json:"text"`
	UserName  string  `json:"userName"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	Book      *book   `json:"book,omitempty"`
}

type favourite struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"-"`
	Book      *book  `json:"book"`
	CreatedAt string `json:"createdAt"`
}

// Server represents the fake HTTP API
type Server struct {
	router *gin.Engine
	secret []byte

	mu         sync.Mutex
	nextID     int64
	users      map[string]*user // by email
	tokens     map[string]int64 // live token -> user ID
	books      map[int64]*book
	reviews    map[int64]*review
	favourites map[int64]*favourite
	hits       map[string]int // "METHOD /route" -> count
}

// New creates an empty fake API
func New() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:     []byte("fakeapi-secret"),
		users:      map[string]*user{},
		tokens:     map[string]int64{},
		books:      map[int64]*book{},
		reviews:    map[int64]*review{},
		favourites: map[int64]*favourite{},
		hits:       map[string]int{},
	}
	s.setupRouter()
	return s
}

// Handler returns the HTTP handler to mount in an httptest server
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := gin.New()
	r.Use(gin.Recovery(), s.countHits())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/auth/signup", s.signup)
	r.POST("/auth/login", s.login)
	r.POST("/auth/logout", s.logout)

	r.GET("/books", s.searchBooks)
	r.GET("/books/:id", s.getBook)
	r.GET("/reviews/book/:id", s.bookReviews)
	r.GET("/recommendations/top-rated", s.topRated)

	authed := r.Group("/", s.jwtAuthMiddleware())
	authed.GET("/reviews/my", s.myReviews)
	authed.GET("/reviews/book/:id/my", s.myReviewForBook)
	authed.POST("/reviews/book/:id", s.saveReview)
	authed.DELETE("/reviews/:id", s.deleteReview)

	authed.GET("/favourites/my", s.myFavourites)
	authed.GET("/favourites/book/:id/check", s.checkFavourite)
	authed.POST("/favourites/book/:id", s.addFavourite)
	authed.DELETE("/favourites/book/:id", s.removeFavourite)
	authed.PUT("/favourites/book/:id/toggle", s.toggleFavourite)

	authed.GET("/recommendations/ai", s.aiRecommendations)
	authed.POST("/admin/books/import", s.adminOnlyMiddleware(), s.importBooks)

	s.router = r
}

func (s *Server) countHits() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.mu.Lock()
		s.hits[c.Request.Method+" "+c.FullPath()]++
		s.mu.Unlock()
	}
}

// Hits returns how often a route was called, e.g. Hits("GET /books/:id")
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// AddUser registers an account directly
func (s *Server) AddUser(name, email, password string, isAdmin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = &user{ID: s.id(), Name: name, Email: email, PasswordHash: hashPassword(password), IsAdmin: isAdmin}
}

// AddBook adds a catalog entry and returns its ID
func (s *Server) AddBook(title, author string, year int, genres string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &book{ID: s.id(), Title: title, Author: author, Year: year, Genres: genres}
	s.books[b.ID] = b
	return b.ID
}

// RevokeAllTokens makes every issued token answer 401, as after a key rotation
func (s *Server) RevokeAllTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]int64{}
}

// BookCount returns the size of the catalog
func (s *Server) BookCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

// TokenFor issues a live token for a registered user, as a login would
func (s *Server) TokenFor(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return "", fmt.Errorf("no user %s", email)
	}
	return s.issueToken(u)
}
