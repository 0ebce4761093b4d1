package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"

	"github.com/emrgen/shortpage/internal/analytics"
	"github.com/emrgen/shortpage/internal/cache"
	"github.com/emrgen/shortpage/internal/compress"
	"github.com/emrgen/shortpage/internal/config"
	"github.com/emrgen/shortpage/internal/jobs"
	"github.com/emrgen/shortpage/internal/queue"
	"github.com/emrgen/shortpage/internal/render"
	"github.com/emrgen/shortpage/internal/service"
	"github.com/emrgen/shortpage/internal/store"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Server represents the server
type Server struct {
	httpPort string
}

// NewServer creates a new server
func NewServer(httpPort string) *Server {
	return &Server{
		httpPort: httpPort,
	}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.httpPort); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// Start wires the store, cache, recorder, resolver and jobs together and
// serves HTTP until the process is signaled.
func Start(httpPort string) error {
	httpPort = ":" + httpPort

	cnf := config.LoadConfig()
	db := config.GetDb(cnf)

	blockStore := store.NewGormStore(db)
	if err := blockStore.Migrate(); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	var blockCache cache.BlockCache = cache.NewNop()
	if cnf.RedisAddr != "" {
		client, err := cache.NewRedisClient(cnf.RedisAddr, cnf.RedisPassword, cnf.RedisDB)
		if err != nil {
			return err
		}
		blockCache = cache.NewRedisBlockCache(client, compress.FromName(cnf.Compression), cnf.CacheTTL)
	}

	sink := analytics.NewStoreSink(blockStore)
	var clickQueue queue.ClickQueue
	if cnf.KafkaBrokers != "" {
		q, err := queue.NewKafkaClickQueue(cnf.KafkaBrokers, cnf.KafkaTopic)
		if err != nil {
			return err
		}
		clickQueue = q
		sink = analytics.SinkFunc(q.Publish)
	}

	recorder := analytics.NewRecorder(sink, cnf.ClickBuffer)

	registry := render.NewRegistry()
	resolver := service.NewResolver(blockStore, blockCache, registry, recorder, cnf.ResolveTimeout)
	blocks := service.NewBlockService(blockStore, blockCache)

	executor := jobs.NewTaskExecutor([]jobs.CronJob{
		jobs.NewClickPruner(cnf.PruneSchedule, cnf.ClickRetention, blockStore),
		jobs.NewCacheRefresh(cnf.RefreshSchedule, blockStore, blockCache),
	})
	executor.Run()

	if cnf.AdminToken == "" {
		logrus.Warn("ADMIN_TOKEN is empty, the admin api is disabled")
	}

	mux := newRouter(resolver, blocks, cnf.AdminToken)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // All origins are allowed
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PUT"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Admin-Token"},
		AllowCredentials: true,
	})

	restServer := &http.Server{
		Addr:    httpPort,
		Handler: c.Handler(mux),
	}

	// make sure to wait for the server to stop before exiting
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting http server on: ", httpPort)
		if err := restServer.Serve(listener); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting http server: %v", err)
			}
		}
		logrus.Infof("http server stopped")
	}()

	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	if err := restServer.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error stopping http server: %v", err)
	}

	executor.Stop()
	recorder.Close()
	if clickQueue != nil {
		clickQueue.Close()
	}

	wg.Wait()

	return nil
}
