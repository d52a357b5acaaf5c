// internal/logger/logger.go

// Package logger 依執行環境建立 slog.Logger，並提供在 context 中傳遞 logger 的工具。
package logger

import (
	"io"
	"log/slog"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// New 依環境選擇輸出格式：
//   - local：人類可讀的文字格式，含 debug。
//   - dev：JSON，含 debug。
//   - prod：JSON，info 以上。
//
// 未知的環境視為 local。
func New(env string, w io.Writer) *slog.Logger {
	switch env {
	case EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case EnvProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// Discard 回傳不輸出任何內容的 logger，供測試使用。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
