// Package testutil provides shared helpers for tests: an in-memory fake of
// the CampEase backend API hosted on httptest, with seed helpers and
// failure knobs. Unit tests that only need one or two endpoints should
// prefer hand-written mocks; the fake backend is for exercising the real
// wire path end to end.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Server is an in-memory fake CampEase backend.
// All exported methods are safe for concurrent use — the client under test
// may poll from a background goroutine while the test mutates seeds.
type Server struct {
	// URL is the base URL of the running httptest server.
	URL string

	httpSrv *httptest.Server

	mu            sync.Mutex
	users         map[string]seedUser // keyed by email
	tokens        map[string]string   // token → email
	bookings      map[string][]map[string]any
	notifications []map[string]any
	failPaths     map[string]bool
	softFailAuth  bool
	requests      map[string]int
}

type seedUser struct {
	password string
	user     map[string]any
}

// NewServer starts a fake backend and registers its shutdown with t.Cleanup.
func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		users:     make(map[string]seedUser),
		tokens:    make(map[string]string),
		bookings:  map[string][]map[string]any{"campsite": nil, "activity": nil, "equipment": nil},
		failPaths: make(map[string]bool),
		requests:  make(map[string]int),
	}

	r := chi.NewRouter()
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/register", s.handleRegister)
	r.Get("/profile", s.handleProfile)
	r.Get("/bookings", s.handleBookings("campsite"))
	r.Get("/activity-bookings", s.handleBookings("activity"))
	r.Get("/equipment-bookings", s.handleBookings("equipment"))
	r.Post("/bookings/{id}/cancel", s.handleCancel)
	r.Get("/notifications/unread-count", s.handleUnreadCount)
	r.Get("/notifications", s.handleNotifications)
	r.Put("/notifications/read-all", s.handleReadAll)
	r.Put("/notifications/{id}/read", s.handleMarkRead)
	r.Delete("/notifications/{id}", s.handleDelete)

	s.httpSrv = httptest.NewServer(r)
	s.URL = s.httpSrv.URL
	t.Cleanup(s.httpSrv.Close)
	return s
}

// ---- seed helpers ----------------------------------------------------------

// SeedUser registers an account. Returns the user ID.
func (s *Server) SeedUser(email, password, name, role string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.users[email] = seedUser{
		password: password,
		user: map[string]any{
			"id": id, "email": email, "name": name, "role": role,
		},
	}
	return id
}

// SeedCampsiteBooking adds a campsite booking entry in the backend's wire
// shape. Returns the booking ID.
func (s *Server) SeedCampsiteBooking(name string, checkIn, checkOut time.Time, guests int, price float64, status string) string {
	id := uuid.NewString()
	s.SeedRawBooking("campsite", map[string]any{
		"_id":        id,
		"campsite":   map[string]any{"name": name},
		"checkIn":    checkIn.Format(time.RFC3339),
		"checkOut":   checkOut.Format(time.RFC3339),
		"guests":     guests,
		"totalPrice": price,
		"status":     status,
	})
	return id
}

// SeedActivityBooking adds an activity booking entry. Returns the booking ID.
func (s *Server) SeedActivityBooking(title string, date time.Time, slot string, participants int, price float64, status string) string {
	id := uuid.NewString()
	s.SeedRawBooking("activity", map[string]any{
		"id":           id,
		"activity":     map[string]any{"title": title},
		"date":         date.Format(time.RFC3339),
		"timeSlot":     slot,
		"participants": participants,
		"totalPrice":   price,
		"status":       status,
	})
	return id
}

// SeedEquipmentBooking adds an equipment rental entry. Returns the booking ID.
func (s *Server) SeedEquipmentBooking(name string, start, end time.Time, quantity int, price float64, status string) string {
	id := uuid.NewString()
	s.SeedRawBooking("equipment", map[string]any{
		"_id":        id,
		"equipment":  map[string]any{"name": name},
		"startDate":  start.Format(time.RFC3339),
		"endDate":    end.Format(time.RFC3339),
		"quantity":   quantity,
		"totalPrice": price,
		"status":     status,
	})
	return id
}

// SeedRawBooking adds an arbitrary wire-shape entry for a kind — useful for
// malformed-payload tests.
func (s *Server) SeedRawBooking(kind string, raw map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[kind] = append(s.bookings[kind], raw)
}

// SeedNotification adds a notification. Returns its ID.
func (s *Server) SeedNotification(title, message, category string, read bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.notifications = append(s.notifications, map[string]any{
		"_id":       id,
		"title":     title,
		"message":   message,
		"category":  category,
		"isRead":    read,
		"createdAt": time.Now().UTC().Format(time.RFC3339),
	})
	return id
}

// ---- failure knobs ---------------------------------------------------------

// FailPath makes every request to the given path return HTTP 500 until
// called again with fail=false.
func (s *Server) FailPath(path string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPaths[path] = fail
}

// SoftFailProfile makes GET /profile answer HTTP 200 with success=false —
// the backend's way of reporting an invalid session without a 401.
func (s *Server) SoftFailProfile(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.softFailAuth = v
}

// RevokeToken invalidates a previously issued token.
func (s *Server) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// Requests returns how many times the given path has been hit.
func (s *Server) Requests(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

// UnreadCount reports the fake backend's current unread notification count.
func (s *Server) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadLocked()
}

func (s *Server) unreadLocked() int {
	n := 0
	for _, notif := range s.notifications {
		if read, _ := notif["isRead"].(bool); !read {
			n++
		}
	}
	return n
}

// ---- handlers --------------------------------------------------------------

// gate records the request, applies failure knobs, and (when authed is true)
// checks the bearer token. Returns false if the response has been written.
func (s *Server) gate(w http.ResponseWriter, r *http.Request, authed bool) bool {
	s.mu.Lock()
	s.requests[r.URL.Path]++
	fail := s.failPaths[r.URL.Path]
	s.mu.Unlock()

	if fail {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return false
	}
	if authed && s.bearerEmail(r) == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "unauthorized"})
		return false
	}
	return true
}

func (s *Server) bearerEmail(r *http.Request) string {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token]
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, false) {
		return
	}
	var body struct{ Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad request"})
		return
	}

	s.mu.Lock()
	u, ok := s.users[body.Email]
	if !ok || u.password != body.Password {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "invalid credentials"})
		return
	}
	token := "tok-" + uuid.NewString()
	s.tokens[token] = body.Email
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"user": u.user, "token": token},
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, false) {
		return
	}
	var body struct{ Name, Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad request"})
		return
	}

	s.mu.Lock()
	if _, exists := s.users[body.Email]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "email already registered"})
		return
	}
	user := map[string]any{
		"id": uuid.NewString(), "email": body.Email, "name": body.Name, "role": "user",
	}
	s.users[body.Email] = seedUser{password: body.Password, user: user}
	token := "tok-" + uuid.NewString()
	s.tokens[token] = body.Email
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    map[string]any{"user": user, "token": token},
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, true) {
		return
	}

	s.mu.Lock()
	soft := s.softFailAuth
	u := s.users[s.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]]
	s.mu.Unlock()

	if soft {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "session invalid"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": u.user})
}

func (s *Server) handleBookings(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.gate(w, r, true) {
			return
		}
		s.mu.Lock()
		data := append([]map[string]any{}, s.bookings[kind]...)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
	}
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, true) {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings["campsite"] {
		if b["_id"] == id || b["id"] == id {
			b["status"] = "cancelled"
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "booking not found"})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, true) {
		return
	}
	s.mu.Lock()
	count := s.unreadLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "unreadCount": count})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, true) {
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"

	s.mu.Lock()
	var matched []map[string]any
	// Newest first.
	for i := len(s.notifications) - 1; i >= 0; i-- {
		n := s.notifications[i]
		if read, _ := n["isRead"].(bool); unreadOnly && read {
			continue
		}
		matched = append(matched, n)
	}
	s.mu.Unlock()

	total := len(matched)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"notifications": matched[start:end],
		"totalCount":    total,
	})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, true) {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifications {
		if n["_id"] == id {
			n["isRead"] = true
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "notification not found"})
}

func (s *Server) handleReadAll(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, true) {
		return
	}
	s.mu.Lock()
	for _, n := range s.notifications {
		n["isRead"] = true
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.gate(w, r, true) {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n["_id"] == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "notification not found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
