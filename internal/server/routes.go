package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /health", s.handleHealth)

	// Session auth.
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/me", s.handleMe)

	// Blogs.
	mux.HandleFunc("GET /api/blog/getBlog", s.handleListBlogs)
	mux.HandleFunc("POST /api/blog/createBlog", s.handleCreateBlog)
	mux.HandleFunc("PUT /api/blog/updateBlog/{id}", s.handleUpdateBlog)
	mux.HandleFunc("DELETE /api/blog/deleteBlog/{id}", s.handleDeleteBlog)

	// Cover images.
	mux.HandleFunc("GET /api/blog/images/{key...}", s.handleGetImage)

	// User provisioning.
	mux.HandleFunc("GET /api/admin/users", s.handleAdminListUsers)
	mux.HandleFunc("POST /api/admin/users", s.handleAdminCreateUser)
	mux.HandleFunc("PATCH /api/admin/users/{email}", s.handleAdminSetUserDisabled)
	mux.HandleFunc("DELETE /api/admin/users/{email}", s.handleAdminDeleteUser)

	// Article helpers.
	mux.HandleFunc("POST /api/gemini/summary", s.handleSummary)
	mux.HandleFunc("POST /api/gemini/autofill", s.handleAutofill)

	return mux
}
