package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeffypooo/sysstat/internal/config"
	"github.com/jeffypooo/sysstat/internal/metrics"
	"github.com/jeffypooo/sysstat/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	lvl := cfg.Level()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(lvl)

	samplerLog := log.New("metrics")
	samplerLog.SetLevel(lvl)
	sampler := metrics.NewSampler(metrics.SamplerConfig{
		CPUWindow: cfg.CPUWindow,
		Logger:    samplerLog,
	})
	newServer(sampler, cfg).routes(e)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	e.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Fatal(err)
	}
}

// server owns the single Sampler shared by every handler.
type server struct {
	sampler  *metrics.Sampler
	interval time.Duration
	registry *prometheus.Registry
}

func newServer(sampler *metrics.Sampler, cfg config.Config) *server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewExporter(sampler, 5*time.Second))
	return &server{
		sampler:  sampler,
		interval: cfg.StreamInterval,
		registry: reg,
	}
}

func (s *server) routes(e *echo.Echo) {
	e.Use(middleware.Recover())
	e.GET("/", s.rootHandler)
	e.GET("/api/stats", s.apiStatsHandler)
	e.GET("/api/stats/sse", s.apiStatsSSEHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

func (s *server) rootHandler(c echo.Context) error {
	interval, err := s.parseInterval(c)
	if err != nil {
		return c.String(http.StatusBadRequest, fmt.Sprintf("Invalid interval: %v", err))
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return web.Index(config.FormatInterval(interval)).Render(c.Request().Context(), c.Response())
}

// parseInterval reads the optional interval query parameter, falling back to
// the configured stream interval.
func (s *server) parseInterval(c echo.Context) (time.Duration, error) {
	q := c.QueryParam("interval")
	if q == "" {
		return s.interval, nil
	}
	return config.ParseInterval(q)
}

func (s *server) apiStatsHandler(c echo.Context) error {
	sample, err := s.sampler.Sample(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("Error getting stats: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, sample)
}

func (s *server) apiStatsSSEHandler(c echo.Context) error {
	c.Logger().Infof("SSE request received from %s", c.Request().RemoteAddr)

	interval, err := s.parseInterval(c)
	if err != nil {
		return c.String(http.StatusBadRequest, fmt.Sprintf("Invalid interval: %v", err))
	}

	resp := c.Response()
	resp.Header().Set("Content-Type", "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.Header().Set("Access-Control-Allow-Origin", "*")

	fmt.Fprintf(resp.Writer, "event: connected\ndata: Connected to stats stream\n\n")
	resp.Flush()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	for u := range s.sampler.Stream(ctx, interval) {
		if err := writeUpdate(ctx, resp, u); err != nil {
			c.Logger().Infof("Stopping stream: %v", err)
			return nil
		}
	}
	c.Logger().Info("Client disconnected")
	return nil
}

// writeUpdate writes one sample, or an error event if sampling failed.
// It only returns an error when the stream itself is unusable.
func writeUpdate(ctx context.Context, resp *echo.Response, u metrics.Update) error {
	if u.Err != nil {
		if _, err := fmt.Fprintf(resp.Writer, "event: error\ndata: %s\n\n", u.Err.Error()); err != nil {
			return err
		}
		resp.Flush()
		return nil
	}

	var buf strings.Builder
	if err := web.StatsDisplay(u.Sample).Render(ctx, &buf); err != nil {
		return err
	}
	html := strings.ReplaceAll(buf.String(), "\n", " ")
	if _, err := fmt.Fprintf(resp.Writer, "event: stats\ndata: %s\n\n", html); err != nil {
		return err
	}
	resp.Flush()
	return nil
}
