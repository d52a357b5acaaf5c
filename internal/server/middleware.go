// internal/server/middleware.go

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"jmbank/internal/bank"
	"jmbank/internal/logger"
)

const (
	headerRequestID = "X-Request-ID"
	headerPIN       = "X-Account-PIN"
)

// NewLoginLimiter 建立以記憶體保存的登入失敗計數器：window 時間內最多 attempts 次失敗。
func NewLoginLimiter(attempts int64, window time.Duration) *limiter.Limiter {
	return limiter.New(memory.NewStore(), limiter.Rate{Period: window, Limit: attempts})
}

// requestLogger 為每個請求產生 request id，回寫於 X-Request-ID，
// 並把帶有 request id 的 logger 放入 context，請求結束時記錄狀態與耗時。
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		reqLog := s.log.With(
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		w.Header().Set(headerRequestID, requestID)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(logger.ToContext(r.Context(), reqLog)))

		reqLog.Info("request completed",
			slog.Int("status", ww.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	})
}

// requirePIN 要求 X-Account-PIN 與路徑中帳號的 PIN 相符。
// 帳號不存在回 404；PIN 缺少或不符回 401。
func (s *Server) requirePIN(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		number := chi.URLParam(r, "number")
		a, ok := s.reg.IsAccountNumberTaken(number)
		if !ok {
			writeErr(w, bank.ErrNotFound, http.StatusNotFound)
			return
		}
		if pin := r.Header.Get(headerPIN); pin == "" || pin != a.PIN {
			logger.FromContext(r.Context()).Warn("pin check failed", slog.String("accountNumber", number))
			writeErr(w, errWrongPIN, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
