// Package testbackend is an in-memory Taskraum backend for tests.
//
// It speaks the same cookie-session protocol as the real server: login sets
// "access" and "refresh" cookies, /api routes require a valid access cookie,
// and POST /auth/refresh trades a refresh cookie for a new pair. Tests can
// expire access tokens, revoke refresh tokens, and hold refresh calls open.
package testbackend

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type user struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Surname  *string `json:"surname"`
	password string
}

type project struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"ownerId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	seq         int
}

type task struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"projectId"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Order       *int    `json:"order"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
	AssigneeID  *string `json:"assigneeId"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
	seq         int
}

// Backend is a fake Taskraum API server.
type Backend struct {
	mu       sync.Mutex
	users    map[string]*user // by email
	access   map[string]string
	refresh  map[string]string
	projects map[string]*project
	tasks    map[string]*task
	seq      int

	refreshCalls atomic.Int64
	calls        sync.Map // path -> *atomic.Int64

	refreshHook atomic.Pointer[func()]
	router      chi.Router
}

// New creates an empty backend.
func New() *Backend {
	b := &Backend{
		users:    make(map[string]*user),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		projects: make(map[string]*project),
		tasks:    make(map[string]*task),
	}
	b.router = b.routes()
	return b
}

// Handler returns the HTTP handler serving the API.
func (b *Backend) Handler() http.Handler {
	return b.router
}

func (b *Backend) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(b.countCalls)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", b.handleRegister)
		r.Post("/login", b.handleLogin)
		r.Post("/refresh", b.handleRefresh)
		r.Post("/logout", b.handleLogout)
		r.Get("/me", b.handleMe)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(b.requireAccess)

		r.Get("/projects", b.handleListProjects)
		r.Post("/projects", b.handleCreateProject)
		r.Get("/projects/{id}", b.handleGetProject)
		r.Put("/projects/{id}", b.handleUpdateProject)
		r.Delete("/projects/{id}", b.handleDeleteProject)

		r.Get("/projects/{id}/tasks", b.handleListTasks)
		r.Post("/projects/{id}/tasks", b.handleCreateTask)
		r.Put("/tasks/{id}", b.handleUpdateTask)
		r.Delete("/tasks/{id}", b.handleDeleteTask)

		r.Put("/me", b.handleUpdateProfile)
		r.Put("/me/password", b.handleChangePassword)
	})
	return r
}

// AddUser registers an account directly.
func (b *Backend) AddUser(email, password, name string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := &user{ID: uuid.NewString(), Email: email, Name: name, password: password}
	b.users[email] = u
	return u.ID
}

// ExpireAccess invalidates every access token; refresh tokens stay valid.
func (b *Backend) ExpireAccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = make(map[string]string)
}

// RevokeRefresh invalidates every refresh token.
func (b *Backend) RevokeRefresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh = make(map[string]string)
}

// RefreshCalls returns how many times POST /auth/refresh was hit.
func (b *Backend) RefreshCalls() int {
	return int(b.refreshCalls.Load())
}

// Calls returns how many requests hit path.
func (b *Backend) Calls(path string) int {
	if v, ok := b.calls.Load(path); ok {
		return int(v.(*atomic.Int64).Load())
	}
	return 0
}

// OnRefresh installs fn to run at the start of every refresh call, before
// the refresh is decided. Tests use it to hold refreshes open.
func (b *Backend) OnRefresh(fn func()) {
	b.refreshHook.Store(&fn)
}

func (b *Backend) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, _ := b.calls.LoadOrStore(r.URL.Path, new(atomic.Int64))
		v.(*atomic.Int64).Add(1)
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := b.userFromCookie(r, "access", b.access)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		r.Header.Set("X-Test-User", uid)
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) userFromCookie(r *http.Request, name string, tokens map[string]string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	uid, ok := tokens[c.Value]
	return uid, ok
}

// issue creates a fresh token pair for uid. Callers hold b.mu.
func (b *Backend) issue(w http.ResponseWriter, uid string) {
	acc, ref := uuid.NewString(), uuid.NewString()
	b.access[acc] = uid
	b.refresh[ref] = uid
	http.SetCookie(w, &http.Cookie{Name: "access", Value: acc, Path: "/", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: "refresh", Value: ref, Path: "/", HttpOnly: true})
}

func (b *Backend) userByID(uid string) *user {
	for _, u := range b.users {
		if u.ID == uid {
			return u
		}
	}
	return nil
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name, Surname, Email, Password string
	}
	if !decode(w, r, &in) {
		return
	}
	if in.Email == "" || len(in.Password) < 8 {
		writeError(w, http.StatusBadRequest, "invalid registration")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[in.Email]; exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	surname := in.Surname
	u := &user{ID: uuid.NewString(), Email: in.Email, Name: in.Name, Surname: &surname, password: in.Password}
	b.users[in.Email] = u
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[in.Email]
	if !ok || u.password != in.Password {
		writeError(w, http.StatusUnauthorized, "Bad credentials")
		return
	}
	b.issue(w, u.ID)
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	b.refreshCalls.Add(1)
	if hook := b.refreshHook.Load(); hook != nil {
		(*hook)()
	}

	uid, ok := b.userFromCookie(r, "refresh", b.refresh)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Missing refresh token")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.issue(w, uid)
	writeJSON(w, http.StatusOK, b.userByID(uid))
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: "access", Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: "refresh", Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusOK)
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := b.userFromCookie(r, "access", b.access)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.userByID(uid))
}

func (b *Backend) handleListProjects(w http.ResponseWriter, r *http.Request) {
	uid := r.Header.Get("X-Test-User")
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "ACTIVE"
	}

	b.mu.Lock()
	content := make([]*project, 0)
	for _, p := range b.projects {
		if p.OwnerID == uid && p.Status == status {
			content = append(content, p)
		}
	}
	b.mu.Unlock()

	sort.Slice(content, func(i, j int) bool { return content[i].seq > content[j].seq })
	writeJSON(w, http.StatusOK, map[string]any{
		"content":       content,
		"totalElements": len(content),
		"totalPages":    1,
		"number":        0,
		"size":          len(content),
	})
}

func (b *Backend) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title       string
		Description *string
	}
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeError(w, http.StatusBadRequest, "title must not be blank")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	now := timestamp()
	p := &project{
		ID: uuid.NewString(), OwnerID: r.Header.Get("X-Test-User"), Title: in.Title,
		Description: in.Description, Status: "ACTIVE", CreatedAt: now, UpdatedAt: now, seq: b.seq,
	}
	b.projects[p.ID] = p
	writeJSON(w, http.StatusCreated, p)
}

func (b *Backend) ownedProject(w http.ResponseWriter, r *http.Request, id string) *project {
	p, ok := b.projects[id]
	if !ok || p.OwnerID != r.Header.Get("X-Test-User") {
		writeError(w, http.StatusNotFound, "Project not found")
		return nil
	}
	return p
}

func (b *Backend) handleGetProject(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p := b.ownedProject(w, r, chi.URLParam(r, "id")); p != nil {
		writeJSON(w, http.StatusOK, p)
	}
}

func (b *Backend) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Title       *string
		Description *string
		Status      *string
	}
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.ownedProject(w, r, chi.URLParam(r, "id"))
	if p == nil {
		return
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	b.seq++
	p.seq = b.seq
	p.UpdatedAt = timestamp()
	writeJSON(w, http.StatusOK, p)
}

func (b *Backend) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("force") != "true" {
		w.WriteHeader(http.StatusConflict)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.ownedProject(w, r, chi.URLParam(r, "id"))
	if p == nil {
		return
	}
	delete(b.projects, p.ID)
	for id, t := range b.tasks {
		if t.ProjectID == p.ID {
			delete(b.tasks, id)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleListTasks(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	b.mu.Lock()
	p := b.ownedProject(w, r, chi.URLParam(r, "id"))
	if p == nil {
		b.mu.Unlock()
		return
	}
	out := make([]*task, 0)
	for _, t := range b.tasks {
		if t.ProjectID == p.ID && t.Status == status {
			out = append(out, t)
		}
	}
	b.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	writeJSON(w, http.StatusOK, out)
}

type taskBody struct {
	Title       string
	Description *string
	Status      *string
	DueDate     *string
	Order       *int
	Priority    *string
	AssigneeID  *string
}

func (tb taskBody) apply(t *task) {
	t.Title = tb.Title
	t.Description = tb.Description
	if tb.Status != nil {
		t.Status = *tb.Status
	}
	t.DueDate = nil
	if tb.DueDate != nil {
		d := *tb.DueDate + "T00:00:00Z"
		t.DueDate = &d
	}
	if tb.Order != nil {
		t.Order = tb.Order
	}
	t.Priority = tb.Priority
	t.AssigneeID = tb.AssigneeID
	t.UpdatedAt = timestamp()
}

func (b *Backend) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in taskBody
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeError(w, http.StatusBadRequest, "title must not be blank")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.ownedProject(w, r, chi.URLParam(r, "id"))
	if p == nil {
		return
	}
	b.seq++
	t := &task{ID: uuid.NewString(), ProjectID: p.ID, Status: "TODO", CreatedAt: timestamp(), seq: b.seq}
	in.apply(t)
	b.tasks[t.ID] = t
	writeJSON(w, http.StatusCreated, t)
}

func (b *Backend) ownedTask(w http.ResponseWriter, r *http.Request) *task {
	t, ok := b.tasks[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Task not found")
		return nil
	}
	if p, ok := b.projects[t.ProjectID]; !ok || p.OwnerID != r.Header.Get("X-Test-User") {
		writeError(w, http.StatusNotFound, "Task not found")
		return nil
	}
	return t
}

func (b *Backend) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var in taskBody
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		writeError(w, http.StatusBadRequest, "title must not be blank")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.ownedTask(w, r)
	if t == nil {
		return
	}
	in.apply(t)
	writeJSON(w, http.StatusOK, t)
}

func (b *Backend) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.ownedTask(w, r)
	if t == nil {
		return
	}
	delete(b.tasks, t.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in struct{ Name, Surname, Email *string }
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.userByID(r.Header.Get("X-Test-User"))
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Surname != nil {
		u.Surname = in.Surname
	}
	if in.Email != nil && *in.Email != u.Email {
		delete(b.users, u.Email)
		u.Email = *in.Email
		b.users[u.Email] = u
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *Backend) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var in struct{ CurrentPassword, NewPassword string }
	if !decode(w, r, &in) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	u := b.userByID(r.Header.Get("X-Test-User"))
	if u.password != in.CurrentPassword {
		writeError(w, http.StatusBadRequest, "current password is wrong")
		return
	}
	u.password = in.NewPassword
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"status":  status,
		"error":   http.StatusText(status),
		"message": msg,
	})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
