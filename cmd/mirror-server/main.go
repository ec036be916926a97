package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"bangumi/internal/bangumi"
	"bangumi/internal/logger"
	"bangumi/pkg/utils"
)

// Serves a directory written by export-mirror, usable as BANGUMI_MIRROR_URL.
func main() {
	var (
		dir  = flag.String("dir", "data/mirror", "mirror directory")
		addr = flag.String("addr", ":9000", "listen address")
	)
	flag.Parse()

	cfg, err := utils.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mirror-server: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "mirror-server: create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           bangumi.NewMirrorRouter(*dir, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("mirror-server listening", logger.String("addr", *addr), logger.String("dir", *dir))
	if err := srv.ListenAndServe(); err != nil {
		log.Error("mirror-server stopped", logger.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}
