package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lab1702/actionserver/sim"
	"github.com/lab1702/actionserver/transport"
	"github.com/lab1702/actionserver/zone"
)

func main() {
	port := flag.String("port", "8080", "HTTP server port")
	zoneX := flag.Int("zone-x", 0, "grid X coordinate this process simulates")
	zoneY := flag.Int("zone-y", 0, "grid Y coordinate this process simulates")
	flag.Parse()

	square := zone.GridSquare{X: int32(*zoneX), Y: int32(*zoneY)}
	log.Printf("starting actionserver for zone (%d,%d) on port %s", square.X, square.Y, *port)

	registry := prometheus.NewRegistry()
	ws := sim.NewWorldSimulation(sim.Config{
		MetricsRegistry: registry,
		OutboundWorkers: 4,
		OutboundQueue:   256,
	})

	ctx, cancel := context.WithCancel(context.Background())
	ws.SetAssignedSquare(ctx, square)

	hub := transport.NewHub(ws)
	hubDone := make(chan struct{})
	go hub.Run(hubDone)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowCredentials: false,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/ws", hub.ServeWebSocket)
	r.Get("/zone/fps", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte(strconv.FormatFloat(ws.GetServerFps(), 'f', 2, 64)))
	})

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed to start: %v", err)
		}
	}()
	log.Printf("actionserver listening on :%s", *port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("shutting down (signal: %v)...", sig)

	close(hubDone)
	cancel()
	ws.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown error: %v", err)
	}

	log.Println("actionserver stopped")
}
