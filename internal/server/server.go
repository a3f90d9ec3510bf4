// SPDX-License-Identifier: EPL-2.0

// Package server hosts the cleanup pipeline behind a small single-user web
// page. The page is the trigger and the display; status changes reach it
// over a websocket.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"text/template"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ik5/audclean/decode"
	"github.com/ik5/audclean/internal/config"
	"github.com/ik5/audclean/internal/logging"
	"github.com/ik5/audclean/pipeline"
	"github.com/ik5/audclean/transcode"
	"github.com/sirupsen/logrus"
)

//go:embed static
var staticFiles embed.FS

const artifactRoute = "/artifacts/"

// Assets cached by the service worker.
var offlineAssets = []string{
	"/",
	"/static/app.js",
	"/static/style.css",
	"/static/icon.svg",
	"/manifest.json",
}

// Stages are the pipeline stages the server runs.
type Stages struct {
	Decoder  pipeline.Decoder
	Capturer pipeline.Capturer
	Encoder  pipeline.Encoder
}

type Server struct {
	cfg    config.ServerConfig
	log    logrus.FieldLogger
	hub    *Hub
	store  *ArtifactStore
	runner *pipeline.Runner
	router *gin.Engine
	sw     []byte
}

func New(cfg config.ServerConfig, stages Stages, log logrus.FieldLogger) (*Server, error) {
	log = logging.Component(log, "server")
	s := &Server{
		cfg:   cfg,
		log:   log,
		hub:   NewHub(log),
		store: NewArtifactStore(cfg.ArtifactTTL, artifactRoute),
	}
	s.runner = pipeline.NewRunner(stages.Decoder, stages.Capturer, stages.Encoder, pipeline.Options{
		Display:   s.hub,
		Publisher: s.store,
		Logger:    log,
		Report:    true,
	})

	sw, err := renderServiceWorker(cfg.CacheVersion)
	if err != nil {
		return nil, err
	}
	s.sw = sw

	router, err := s.setupRouter()
	if err != nil {
		return nil, err
	}
	s.router = router
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router }
func (s *Server) Hub() *Hub             { return s.hub }
func (s *Server) Store() *ArtifactStore { return s.store }

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.Addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) sweep(ctx context.Context) {
	interval := max(s.cfg.ArtifactTTL/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.store.Sweep(); n > 0 {
				s.log.WithField("count", n).Debug("expired artifacts removed")
			}
		}
	}
}

func (s *Server) setupRouter() (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, err
	}
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/", s.embedded("static/index.html", "text/html; charset=utf-8"))
	router.GET("/manifest.json", s.embedded("static/manifest.json", "application/manifest+json"))
	router.GET("/sw.js", func(c *gin.Context) {
		c.Header("Cache-Control", "no-cache")
		c.Data(http.StatusOK, "application/javascript; charset=utf-8", s.sw)
	})
	router.GET("/ws", func(c *gin.Context) {
		s.hub.ServeHTTP(c.Writer, c.Request)
	})

	api := router.Group("/api")
	api.GET("/formats", s.formats)
	api.POST("/process", s.process)

	router.GET(artifactRoute+":id", s.download)
	router.DELETE(artifactRoute+":id", s.revoke)
	return router, nil
}

func (s *Server) embedded(name, contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := staticFiles.ReadFile(name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load " + name})
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start),
		}).Debug("request")
	}
}

func (s *Server) formats(c *gin.Context) {
	out := make([]gin.H, 0, len(transcode.Formats()))
	for _, f := range transcode.Formats() {
		out = append(out, gin.H{"format": f, "mimeType": f.MIMEType()})
	}
	c.JSON(http.StatusOK, gin.H{"formats": out})
}

func (s *Server) process(c *gin.Context) {
	if s.runner.Busy() {
		c.JSON(http.StatusConflict, gin.H{"error": pipeline.ErrBusy.Error()})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("upload exceeds %d bytes", s.cfg.MaxUploadBytes),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format, err := transcode.ParseFormat(c.PostForm("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := pipeline.Request{Format: format}
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		input, err := readUpload(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.Input = input
	case errors.Is(err, http.ErrMissingFile):
		// the runner reports the missing file to the display
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	art, err := s.runner.Run(c.Request.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, pipeline.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, pipeline.ErrNoInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": pipeline.TextNoInput})
		return
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "stage": pipeline.StageOf(err)})
		return
	}

	link, ok := s.store.Current()
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "artifact was not published"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link.URL, "filename": art.Filename, "mimeType": art.MIMEType})
}

func readUpload(fh *multipart.FileHeader) (decode.Input, error) {
	f, err := fh.Open()
	if err != nil {
		return decode.Input{}, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return decode.Input{}, fmt.Errorf("reading upload: %w", err)
	}
	return decode.Input{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (s *Server) download(c *gin.Context) {
	art, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	c.Data(http.StatusOK, art.MIMEType, art.Data)
}

func (s *Server) revoke(c *gin.Context) {
	if !s.store.Revoke(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "artifact not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func renderServiceWorker(version string) ([]byte, error) {
	src, err := staticFiles.ReadFile("static/sw.js.tmpl")
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("sw.js").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parsing service worker: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		CacheName string
		Assets    []string
	}{
		CacheName: "audclean-" + version,
		Assets:    offlineAssets,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering service worker: %w", err)
	}
	return buf.Bytes(), nil
}
