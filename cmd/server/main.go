// cmd/server/main.go

// 本服務提供帳戶註冊、登入、存提款、轉帳與 PIN 變更等 RESTful API。
// 此檔案負責讀取設定、初始化模組（logger, storage, bank, server），
// 並啟動 HTTP 伺服器；收到 SIGINT/SIGTERM 時優雅關閉並做最後一次保存。

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"jmbank/internal/bank"
	"jmbank/internal/config"
	"jmbank/internal/logger"
	"jmbank/internal/server"
	"jmbank/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	log := logger.New(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	store := storage.NewFileStore(cfg.DataFile)
	log.Info("starting bank server",
		slog.String("env", cfg.Env),
		slog.String("addr", cfg.HTTPAddr),
		slog.String("data_file", store.Path()),
	)

	// 啟動時載入備份檔；不存在或損壞時以空（或部分）清單啟動
	reg := bank.NewRegistry(store, log)

	s := server.NewServer(reg, server.NewLoginLimiter(cfg.LoginAttempts, cfg.LoginWindow), log)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.Router(),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-sigChan
	log.Info("got signal to shutdown server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("stopping server error", slog.String("error", err.Error()))
	}

	if err := reg.Persist(); err != nil {
		log.Error("final persist failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info("server stopped")
}
