// Package filestoretest provides an in-memory file server that speaks the
// /files REST routes, for tests.
package filestoretest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/HaiFongPan/minas-cli/internal/vpath"
)

// Request is one request seen by the server.
type Request struct {
	Method string
	// Path is the escaped request path as sent on the wire.
	Path  string
	Query string
}

type failure struct {
	status int
	body   string
}

type node struct {
	name     string
	dir      bool
	data     []byte
	children []*node
}

// Server is an httptest server backed by an in-memory tree. Children keep
// insertion order so listing order is stable.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	root     *node
	requests []Request
	failures map[string]failure
}

// NewServer starts a server with an empty root directory.
func NewServer() *Server {
	s := &Server{
		root:     &node{dir: true},
		failures: make(map[string]failure),
	}

	r := mux.NewRouter().UseEncodedPath().SkipClean(true)
	r.Use(s.record)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	files := r.PathPrefix("/files").Subrouter()
	files.HandleFunc("/upload/{path:.*}", s.handleUpload).Methods(http.MethodPost)
	files.HandleFunc("/download/{path:.*}", s.handleContent(true)).Methods(http.MethodGet)
	files.HandleFunc("/stream/{path:.*}", s.handleContent(false)).Methods(http.MethodGet)
	files.HandleFunc("/delete/{path:.*}", s.handleDelete).Methods(http.MethodDelete)
	files.HandleFunc("/delete-dir/{path:.*}", s.handleDeleteDir).Methods(http.MethodDelete)
	files.HandleFunc("/mkdir/{path:.*}", s.handleMkdir).Methods(http.MethodPost)
	files.HandleFunc("/rename/{path:.*}", s.handleRename).Methods(http.MethodPost)
	files.HandleFunc("/{path:.*}", s.handleList).Methods(http.MethodGet)

	s.Server = httptest.NewServer(r)
	return s
}

// Fail makes the next request to route ("upload", "list", "mkdir", ...)
// answer with status and body.
func (s *Server) Fail(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, body: body}
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// ResetRequests forgets recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// MkdirAll creates path and any missing parents.
func (s *Server) MkdirAll(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mkdirAll(path)
}

// PutFile stores data at path, creating parent folders.
func (s *Server) PutFile(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parent := s.mkdirAll(vpath.Parent(path))
	name := vpath.Base(path)
	if existing := child(parent, name); existing != nil {
		existing.data = data
		return
	}
	parent.children = append(parent.children, &node{name: name, data: data})
}

// Exists reports whether path is present.
func (s *Server) Exists(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(path) != nil
}

// ReadFile returns the content stored at path.
func (s *Server) ReadFile(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.lookup(path)
	if n == nil || n.dir {
		return nil, false
	}
	return n.data, true
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// takeFailure consumes an injected failure for route.
func (s *Server) takeFailure(w http.ResponseWriter, route string) bool {
	f, ok := s.failures[route]
	if !ok {
		return false
	}
	delete(s.failures, route)
	w.WriteHeader(f.status)
	io.WriteString(w, f.body)
	return true
}

func pathVar(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, err := vpath.Decode(mux.Vars(r)["path"])
	if err != nil {
		detail(w, http.StatusBadRequest, "Invalid path")
		return "", false
	}
	return strings.Trim(p, "/"), true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	path, ok := pathVar(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.takeFailure(w, "list") {
		return
	}

	n := s.lookup(path)
	if n == nil || !n.dir {
		detail(w, http.StatusNotFound, "Path not found!")
		return
	}

	type entry struct {
		Name  string `json:"name"`
		IsDir bool   `json:"is_dir"`
		Size  *int64 `json:"size"`
	}
	entries := make([]entry, 0, len(n.children))
	for _, c := range n.children {
		e := entry{Name: c.name, IsDir: c.dir}
		if !c.dir {
			size := int64(len(c.data))
			e.Size = &size
		}
		entries = append(entries, e)
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	dir, ok := pathVar(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		detail(w, http.StatusUnprocessableEntity, "Missing file field")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		detail(w, http.StatusBadRequest, "Unreadable upload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.takeFailure(w, "upload") {
		return
	}

	parent := s.mkdirAll(dir)
	if child(parent, header.Filename) != nil {
		detail(w, http.StatusConflict, "File already exists!")
		return
	}
	parent.children = append(parent.children, &node{name: header.Filename, data: data})
	writeJSON(w, http.StatusOK, map[string]interface{}{"filename": header.Filename, "size": len(data)})
}

func (s *Server) handleContent(attachment bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, ok := pathVar(w, r)
		if !ok {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		route := "stream"
		if attachment {
			route = "download"
		}
		if s.takeFailure(w, route) {
			return
		}

		n := s.lookup(path)
		if n == nil || n.dir {
			detail(w, http.StatusNotFound, "File not found")
			return
		}
		if attachment {
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, n.name))
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(n.data)))
		w.WriteHeader(http.StatusOK)
		w.Write(n.data)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	path, ok := pathVar(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.takeFailure(w, "delete") {
		return
	}

	n := s.lookup(path)
	if n == nil || n.dir {
		detail(w, http.StatusNotFound, "File not found")
		return
	}
	s.remove(path)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": path})
}

func (s *Server) handleDeleteDir(w http.ResponseWriter, r *http.Request) {
	path, ok := pathVar(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.takeFailure(w, "delete-dir") {
		return
	}

	if path == "" {
		detail(w, http.StatusForbidden, "Forbidden")
		return
	}
	n := s.lookup(path)
	if n == nil || !n.dir {
		detail(w, http.StatusNotFound, "Directory not found")
		return
	}
	recursive := r.URL.Query().Get("recursive")
	if len(n.children) > 0 && recursive != "1" && recursive != "true" {
		detail(w, http.StatusConflict, "Directory not empty. Use ?recursive=1 to force delete.")
		return
	}
	s.remove(path)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": path})
}

func (s *Server) handleMkdir(w http.ResponseWriter, r *http.Request) {
	parentPath, ok := pathVar(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.takeFailure(w, "mkdir") {
		return
	}

	if name == "" || strings.Contains(name, "/") {
		detail(w, http.StatusBadRequest, "Invalid name")
		return
	}
	parent := s.lookup(parentPath)
	if parent == nil || !parent.dir {
		detail(w, http.StatusNotFound, "Path not found!")
		return
	}
	if child(parent, name) != nil {
		detail(w, http.StatusConflict, "Directory already exists")
		return
	}
	parent.children = append(parent.children, &node{name: name, dir: true})
	writeJSON(w, http.StatusOK, map[string]string{"created": name})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	path, ok := pathVar(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.takeFailure(w, "rename") {
		return
	}

	if name == "" || strings.Contains(name, "/") {
		detail(w, http.StatusBadRequest, "Invalid name")
		return
	}
	n := s.lookup(path)
	if n == nil || path == "" {
		detail(w, http.StatusNotFound, "Path not found!")
		return
	}
	parent := s.lookup(vpath.Parent(path))
	if child(parent, name) != nil {
		detail(w, http.StatusConflict, "Destination already exists")
		return
	}
	n.name = name
	writeJSON(w, http.StatusOK, map[string]string{"renamed": vpath.Child(vpath.Parent(path), name)})
}

func (s *Server) lookup(path string) *node {
	n := s.root
	if path == "" {
		return n
	}
	for _, seg := range strings.Split(path, "/") {
		if n == nil || !n.dir {
			return nil
		}
		n = child(n, seg)
	}
	return n
}

func (s *Server) mkdirAll(path string) *node {
	n := s.root
	if path == "" {
		return n
	}
	for _, seg := range strings.Split(path, "/") {
		c := child(n, seg)
		if c == nil {
			c = &node{name: seg, dir: true}
			n.children = append(n.children, c)
		}
		n = c
	}
	return n
}

func (s *Server) remove(path string) {
	parent := s.lookup(vpath.Parent(path))
	if parent == nil {
		return
	}
	name := vpath.Base(path)
	for i, c := range parent.children {
		if c.name == name {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			return
		}
	}
}

func child(n *node, name string) *node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
