package main

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adampresley/adamgokit/awsconfig"
	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/retrier"
	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/mediaentity/cmd/galleryd/internal/configuration"
	"github.com/adampresley/mediaentity/cmd/galleryd/internal/galleryapi"
	"github.com/adampresley/mediaentity/cmd/galleryd/internal/processing"
	"github.com/adampresley/mediaentity/pkg/services"
	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
)

var (
	Version string = "development"
	appName string = "galleryd"

	//go:embed sql-migrations
	sqlMigrationsFs embed.FS

	config configuration.Config

	/* Services */
	archiveService        services.ArchiveServicer
	db                    *sqlz.DB
	galleryService        services.GalleryServicer
	imageStorage          services.S3ImageStorage
	pendingStackProcessor processing.PendingStackProcessor
	processorService      services.ProcessorServicer

	/* Controllers */
	galleryController galleryapi.GalleryHandlers
)

func main() {
	var (
		err error
	)

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("awsEndpointUrl", config.AwsEndpointUrl),
		slog.String("awsRegion", config.AwsRegion),
		slog.String("variantWidths", config.VariantWidths),
	)

	slog.Debug("setting up...")

	shutdownCtx, cancel := context.WithCancel(context.Background())

	/*
	 * Setup services
	 */
	binds.Register("sqlite", binds.BindByDriver("sqlite3"))
	if db, err = sqlz.Connect("sqlite", config.DSN); err != nil {
		panic(err)
	}

	migrateDatabase()

	awsConfig := &awsconfig.Config{
		Endpoint:        config.AwsEndpointUrl,
		Region:          config.AwsRegion,
		AccessKeyID:     config.AwsAccessKeyId,
		SecretAccessKey: config.AwsSecretAccessKey,
	}

	retrier.Retry(func() error {
		if err = awsConfig.Load(); err != nil {
			slog.Error("failed to load AWS config. trying again", "error", err)
			return err
		}

		return nil
	})

	if err != nil {
		panic(err)
	}

	s3Client, err := s3.NewClient(awsConfig)

	if err != nil {
		panic(err)
	}

	imageStorage = services.NewS3ImageStorage(services.S3ImageStorageConfig{
		Bucket:   config.AwsBucket,
		S3Client: s3Client,
	})

	if err = imageStorage.EnsureBucket(config.AwsRegion); err != nil {
		slog.Error("error ensuring bucket exists. aborting", "bucket", config.AwsBucket, "error", err)
		os.Exit(1)
	}

	galleryService = services.NewGalleryService(services.GalleryServiceConfig{
		DB: db,
	})

	processorService = services.NewProcessorService(services.ProcessorServiceConfig{
		MaxWorkers:     config.MaxProcessWorkers,
		Storage:        imageStorage,
		VariantsFolder: config.VariantsFolder,
		VariantWidths:  config.VariantWidthList(),
	})

	archiveService = services.NewArchiveService(services.ArchiveServiceConfig{
		Storage: imageStorage,
	})

	pendingStackProcessor = processing.NewPendingStackProcessorService(processing.PendingStackProcessorConfig{
		GalleryService:   galleryService,
		ProcessorService: processorService,
		ShutdownCtx:      shutdownCtx,
	})

	/*
	 * Setup controllers
	 */
	galleryController = galleryapi.NewGalleryController(galleryapi.GalleryControllerConfig{
		ArchiveService:   archiveService,
		GalleryService:   galleryService,
		ProcessorService: processorService,
		Storage:          imageStorage,
		VariantsFolder:   config.VariantsFolder,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	requestLoggingMiddleware := newRequestLoggingMiddleware([]string{"/heartbeat"})
	middlewares := []mux.MiddlewareFunc{requestLoggingMiddleware}

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /galleries", HandlerFunc: galleryController.ListGalleries, Middlewares: middlewares},
		{Path: "GET /galleries/{id}", HandlerFunc: galleryController.GetGallery, Middlewares: middlewares},
		{Path: "PUT /galleries/{id}", HandlerFunc: galleryController.PutGallery, Middlewares: middlewares},
		{Path: "PUT /galleries/{id}/order", HandlerFunc: galleryController.SortGallery, Middlewares: middlewares},
		{Path: "DELETE /galleries/{id}/stacks/{stackid}", HandlerFunc: galleryController.DeleteStack, Middlewares: middlewares},
		{Path: "GET /galleries/{id}/stacks/{stackid}/original", HandlerFunc: galleryController.GetOriginalVariant, Middlewares: middlewares},
		{Path: "GET /galleries/{id}/stacks/{stackid}/objects", HandlerFunc: galleryController.ListStackObjects, Middlewares: middlewares},
		{Path: "GET /galleries/{id}/stacks/{stackid}/download", HandlerFunc: galleryController.DownloadStack, Middlewares: middlewares},
		{Path: "POST /galleries/{id}/stacks/{stackid}/process", HandlerFunc: galleryController.ProcessStack, Middlewares: middlewares},
	}

	routerConfig := mux.RouterConfig{
		Address:          config.Host,
		Debug:            Version == "development",
		HttpWriteTimeout: 60,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Start the pending stack processor job
	 */
	setupPendingStackProcessor(shutdownCtx)

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	cancel()
	mux.Shutdown(httpServer)
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

func setupLogger(config *configuration.Config, version string) {
	level := slog.LevelInfo

	switch strings.ToLower(config.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}).WithAttrs([]slog.Attr{
		slog.String("version", version),
	})

	slog.SetDefault(slog.New(h))
}

func migrateDatabase() {
	var (
		err  error
		dirs []fs.DirEntry
		b    []byte
	)

	if dirs, err = sqlMigrationsFs.ReadDir("sql-migrations"); err != nil {
		panic(err)
	}

	for _, d := range dirs {
		if d.IsDir() {
			continue
		}

		if strings.HasPrefix(d.Name(), "commit") {
			if b, err = fs.ReadFile(sqlMigrationsFs, filepath.Join("sql-migrations", d.Name())); err != nil {
				panic(err)
			}

			if err = runSqlScript(b); err != nil {
				if !isIgnorableError(err) {
					panic(err)
				}
			}
		}
	}
}

func runSqlScript(script []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	_, err := db.Exec(ctx, string(script))
	return err
}

func isIgnorableError(err error) bool {
	if strings.Contains(err.Error(), "duplicate column") {
		return true
	}

	return false
}

func setupPendingStackProcessor(shutdownCtx context.Context) {
	if config.ProcessIntervalMinutes <= 0 {
		slog.Info("pending stack processor disabled")
		return
	}

	interval := time.Duration(config.ProcessIntervalMinutes) * time.Minute
	go runPendingStackProcessor(shutdownCtx, interval, pendingStackProcessor)
}

/*
runPendingStackProcessor processes pending stacks right away and then on every
tick until shutdownCtx is done. Ticks that arrive during a run are dropped.
*/
func runPendingStackProcessor(shutdownCtx context.Context, interval time.Duration, processor processing.PendingStackProcessor) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		processor.ProcessPending()
		slog.Info("pending stack processor finished.")

		select {
		case <-shutdownCtx.Done():
			return

		case <-ticker.C:
		}
	}
}
