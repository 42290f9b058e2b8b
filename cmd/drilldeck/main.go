package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drilldeck/backend"
	"drilldeck/backend/gcpbackend"
	"drilldeck/backend/membackend"
	"drilldeck/config"
	"drilldeck/dblayer"
	"drilldeck/dbtypes"
	"drilldeck/feed"
	"drilldeck/fetchcache"
	"drilldeck/healthz"
	"drilldeck/httpmetrics"
	"drilldeck/notifier"
	"drilldeck/session"
	"drilldeck/webui"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/golang/glog"
	"github.com/sendgrid/sendgrid-go"
)

var (
	debugListen = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.")
	uiListen    = flag.String("ui-listen", "127.0.0.1:8000", "Server address:port for ui endpoint.")
	configPath  = flag.String("config", "drilldeck.yaml", "Path to the backend configuration file.")
)

func main() {
	flag.Parse()

	glog.Infof("flags:")
	glog.Infof("debug-listen: %v", *debugListen)
	glog.Infof("ui-listen: %v", *uiListen)
	glog.Infof("config: %v", *configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := do(ctx); err != nil {
		glog.Exitf("Error: %v", err)
	}
}

func do(ctx context.Context) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("while loading config: %w", err)
	}

	var (
		identity backend.Identity
		docs     backend.DocStore
		files    backend.FileStore
		blobs    webui.BlobSource
	)
	switch cfg.Backend {
	case "gcp":
		fstore, err := firestore.NewClient(ctx, cfg.DataProject)
		if err != nil {
			return fmt.Errorf("while creating FireStore client: %w", err)
		}

		gcs, err := storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("while creating storage client: %w", err)
		}

		gcpIdentity, err := gcpbackend.NewIdentity(ctx, fstore, cfg.SessionTokenPath)
		if err != nil {
			return fmt.Errorf("while resuming identity session: %w", err)
		}

		identity = gcpIdentity
		docs = gcpbackend.NewDocStore(fstore)
		files = gcpbackend.NewFileStore(gcs, cfg.StorageBucket)
	case "mem":
		memFiles := membackend.NewFileStore()
		identity = membackend.NewIdentity()
		docs = membackend.NewDocStore()
		files = memFiles
		blobs = memFiles
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	db := dblayer.New(docs, files, dblayer.Policy{
		RejectDuplicateLikes: cfg.RejectDuplicateLikes,
		RejectQuizRetakes:    cfg.RejectQuizRetakes,
	})

	cache := fetchcache.New()
	resolver := session.NewResolver(identity, docs)

	// Prime the signed-in user once at start so the first page render
	// doesn't pay for the resolution.
	current, err := resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("while resolving signed-in user: %w", err)
	}
	cache.Set(webui.UserCacheKey, current)

	// The post feed listener keeps the cached post list current for every
	// page render.
	postFeed := feed.New(docs)
	stopFeed, err := postFeed.Subscribe(ctx, func(posts []*dbtypes.Post) {
		cache.Set(webui.PostsCacheKey, posts)
	})
	if err != nil {
		return fmt.Errorf("while subscribing to post feed: %w", err)
	}
	defer stopFeed()

	if cfg.SendgridAPIKey != "" {
		digests := notifier.New(db, sendgrid.NewSendClient(cfg.SendgridAPIKey), cfg.DigestFromAddress, 1*time.Hour)
		go func() {
			if err := digests.Run(ctx); err != nil {
				glog.Errorf("Ticket digest notifier died: %v", err)
			}
		}()
	}

	health := healthz.New()

	debugServeMux := http.NewServeMux()
	debugServeMux.Handle("/healthz", health)
	debugServeMux.Handle("/readyz", health)
	debugServeMux.HandleFunc("/debug/pprof/", pprof.Index)
	debugServeMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	debugServeMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	debugServeMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	debugServeMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	debugServer := &http.Server{
		Addr:    *debugListen,
		Handler: debugServeMux,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	ui := webui.New(identity, db, resolver, cache)
	if blobs != nil {
		ui.SetBlobSource(blobs)
	}

	uiServeMux := http.NewServeMux()
	ui.Register(uiServeMux)

	metrics := httpmetrics.New(uiServeMux)
	metrics.RegisterMetrics()

	uiServer := &http.Server{
		Addr:    *uiListen,
		Handler: metrics,

		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		if err := debugServer.ListenAndServe(); err != nil {
			glog.Fatalf("Debug server died: %v", err)
		}
	}()

	go func() {
		if err := uiServer.ListenAndServe(); err != nil {
			glog.Fatalf("UI server died: %v", err)
		}
	}()

	health.SetReady(true)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh

	glog.Flush()

	return nil
}
