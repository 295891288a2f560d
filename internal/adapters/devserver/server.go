// Package devserver serves build output over HTTP and pushes live reload signals to browsers.
package devserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/swig/internal/core/domain"
	"go.trai.ch/swig/internal/core/ports"
	"go.trai.ch/zerr"
)

const shutdownTimeout = 5 * time.Second

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// Server implements ports.DevServer. Every Start binds a separate listener; Reload
// reaches the clients of all of them.
type Server struct {
	logger ports.Logger

	mu        sync.Mutex
	instances []*instance
	wg        sync.WaitGroup
	errs      []error
}

type instance struct {
	addr       net.Addr
	hub        *hub
	metrics    *metrics
	liveReload bool
}

// NewServer creates a Server that reports through logger.
func NewServer(logger ports.Logger) *Server {
	return &Server{logger: logger}
}

// Start binds 127.0.0.1 on spec.Port and serves spec.Root until ctx is cancelled.
// Port 0 picks a free port; Addrs reports it.
func (s *Server) Start(ctx context.Context, root string, spec domain.ServeSpec) error {
	dir := spec.Root
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	address := fmt.Sprintf("127.0.0.1:%d", spec.Port)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrServerStartFailed, err.Error()), "addr", address)
	}

	inst := &instance{addr: ln.Addr(), metrics: newMetrics(), liveReload: spec.LiveReload}
	inst.hub = newHub(func(n int) { inst.metrics.clients.Set(float64(n)) })

	srv := &http.Server{
		Handler:           s.router(inst, dir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.instances = append(s.instances, inst)
	s.mu.Unlock()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.record(zerr.With(zerr.Wrap(err, "dev server stopped"), "addr", inst.addr.String()))
		}
	}()
	go func() {
		defer s.wg.Done()
		<-ctx.Done()
		inst.hub.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.record(zerr.Wrap(err, "dev server shutdown"))
		}
	}()

	s.logger.Info(fmt.Sprintf("serving %s at http://%s", dir, inst.addr))
	return nil
}

// Wait blocks until every started server has shut down.
func (s *Server) Wait() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.errs...)
}

// Reload tells every live reload client that path changed.
func (s *Server) Reload(changed string) {
	s.mu.Lock()
	instances := append([]*instance(nil), s.instances...)
	s.mu.Unlock()

	msg := Message{Command: "reload", Path: changed, LiveCSS: true}
	for _, inst := range instances {
		if !inst.liveReload {
			continue
		}
		if sent := inst.hub.broadcast(msg); sent > 0 {
			inst.metrics.reloads.Inc()
		}
	}
}

// Addrs returns the bound addresses of the started servers.
func (s *Server) Addrs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.instances))
	for i, inst := range s.instances {
		out[i] = inst.addr.String()
	}
	return out
}

func (s *Server) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *Server) router(inst *instance, dir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), inst.metrics.middleware())

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(inst.metrics.registry, promhttp.HandlerOpts{})))
	if inst.liveReload {
		upgrader := websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		}
		r.GET("/livereload", func(c *gin.Context) {
			conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
			if err != nil {
				s.logger.Warn(fmt.Sprintf("live reload upgrade failed: %v", err))
				return
			}
			if err := inst.hub.add(conn); err != nil {
				_ = conn.Close()
				return
			}
			defer inst.hub.remove(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		})
		r.GET("/livereload.js", func(c *gin.Context) {
			c.Data(http.StatusOK, "application/javascript; charset=utf-8", []byte(clientScript))
		})
	}
	r.NoRoute(staticHandler(dir, inst.liveReload))
	return r
}

// staticHandler serves files below dir. HTML responses get the live reload script
// injected when enabled.
func staticHandler(dir string, liveReload bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusMethodNotAllowed)
			return
		}
		rel := path.Clean("/" + c.Request.URL.Path)
		full := filepath.Join(dir, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err == nil && info.IsDir() {
			full = filepath.Join(full, "index.html")
			info, err = os.Stat(full)
		}
		if err != nil || info.IsDir() {
			c.String(http.StatusNotFound, "404 page not found")
			return
		}

		ext := strings.ToLower(filepath.Ext(full))
		if !liveReload || (ext != ".html" && ext != ".htm") {
			c.File(full)
			return
		}
		body, err := os.ReadFile(full)
		if err != nil {
			c.String(http.StatusInternalServerError, err.Error())
			return
		}
		contentType := mime.TypeByExtension(ext)
		if contentType == "" {
			contentType = "text/html; charset=utf-8"
		}
		c.Data(http.StatusOK, contentType, injectScript(body))
	}
}

// injectScript places the live reload script tag before the last </body>, or appends it.
func injectScript(body []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(body), []byte("</body>"))
	if idx < 0 {
		return append(append([]byte{}, body...), scriptTag...)
	}
	out := make([]byte, 0, len(body)+len(scriptTag))
	out = append(out, body[:idx]...)
	out = append(out, scriptTag...)
	return append(out, body[idx:]...)
}
