// internal/server/router.go
//
// 本檔負責 HTTP 路由註冊，與 handler.go 分離：
//   - handler.go 定義「如何處理請求」
//   - router.go 定義「請求如何被導向」與中介層順序
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Router 建立並回傳整個 HTTP 處理鏈。
// 所有端點同時掛在根路徑與 /api/v1 之下。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", s.health)
	r.Mount("/api/v1", s.v1())
	r.Mount("/", s.v1())
	return r
}

func (s *Server) v1() chi.Router {
	r := chi.NewRouter()

	r.Post("/accounts", s.register)
	r.Post("/login", s.login)

	// 帳戶子操作：皆需 X-Account-PIN
	r.Route("/accounts/{number}", func(r chi.Router) {
		r.Use(s.requirePIN)
		r.Get("/", s.account)
		r.Get("/transactions", s.transactions)
		r.Post("/deposit", s.deposit)
		r.Post("/withdraw", s.withdraw)
		r.Post("/transfer", s.transfer)
		r.Put("/pin", s.changePIN)
	})
	return r
}
