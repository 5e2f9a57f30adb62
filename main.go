package main

import (
	"mime"
	"net/http"
	"path"

	"github.com/joho/godotenv"

	"github.com/yumyai/otuview/internal/util"
	"github.com/yumyai/otuview/logger"
	mydb "github.com/yumyai/otuview/pkg/db"
	"github.com/yumyai/otuview/pkg/handler"
	"github.com/yumyai/otuview/pkg/middle"
	"go.uber.org/zap"
)

const VERSION = "0.1.0"

func main() {

	// Try load env before the logger so OTUVIEW_LOG_LEVEL is honoured
	dotenvErr := godotenv.Load()

	if err := logger.InitLogger(logger.ParseLevel(util.GetEnv("OTUVIEW_LOG_LEVEL", "info"))); err != nil {
		panic(err)
	}

	defer logger.Sync() // Make sure that the buffered is flushed.

	if dotenvErr != nil {
		logger.Warn("No .env found, using local environment")
	}

	otuview_data := util.GetEnv("OTUVIEW_DATA", "./data")
	addr := util.GetEnv("OTUVIEW_ADDR", "0.0.0.0:8080")

	db_dir := path.Join(otuview_data, "db")
	if err := util.EnsureDir(db_dir); err != nil {
		logger.Fatal("Cannot create data directory", zap.String("dir", db_dir), zap.Error(err))
	}

	otuview_sqlite := path.Join(db_dir, "analyses.db")

	// Connect to db
	analyses, err := mydb.Open(otuview_sqlite)
	if err != nil {
		logger.Fatal("Cannot open database", zap.String("DB_LOC", otuview_sqlite), zap.Error(err))
	}
	defer analyses.Close()

	dbctx := &handler.DBContext{
		Analyses: analyses,
	}
	handler.Version = VERSION

	logger.Info("Start:", zap.String("Version", VERSION))
	logger.Info("Open database on", zap.String("DB_LOC", otuview_sqlite))

	mux := handler.NewRouter(dbctx)
	setupStaticFiles(mux)

	// Apply middleware
	base := logger.L()
	app := middle.Chain(mux, middle.RequestIDMiddleware(base), middle.LoggingMiddleware(base))

	logger.Info("Server starting on", zap.String("addr", addr))
	httpErr := http.ListenAndServe(addr, app)
	if httpErr != nil {
		logger.Error("Error starting server:", zap.String("error message", httpErr.Error()))
	}
}

// Manually add static for all route that use this
func setupStaticFiles(mux *http.ServeMux) {
	_ = mime.AddExtensionType(".js", "text/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	fs := http.FileServer(http.Dir("./static/"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", fs))
}
