package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/chronolog/chronolog-api/config"
	"github.com/chronolog/chronolog-api/db"
	"github.com/chronolog/chronolog-api/geo"
	"github.com/chronolog/chronolog-api/handlers"
	applog "github.com/chronolog/chronolog-api/logger"
	mw "github.com/chronolog/chronolog-api/middleware"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bdb := db.Setup(cfg)
	defer bdb.Close()

	if err := db.CreateTables(context.Background(), bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	geocoder := geo.NewNominatimClient(cfg.NominatimBaseURL, 10*time.Second)
	elevation := geo.NewCachedElevationClient(
		geo.NewElevationClient(cfg.OpenElevationBaseURL, 10*time.Second), 512)

	h := handlers.New(bdb, cfg.JWTKey(), geocoder, elevation, cfg.WeatherWindowBuffer)

	e := echo.New()
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		AllowCredentials: true,
	}))

	// Public
	e.POST("/api/signin", h.Signin)

	// Protected – require valid JWT in Authorization header
	api := e.Group("/api", mw.JWT(cfg.JWTKey()))

	api.GET("/bullets", h.Bullets)
	api.GET("/bullets/:id", h.GetBullet)

	api.GET("/cartridges", h.Cartridges)
	api.POST("/cartridges", h.CreateCartridge)
	api.PUT("/cartridges/:id", h.UpdateCartridge)
	api.DELETE("/cartridges/:id", h.DeleteCartridge)

	api.GET("/rifles", h.Rifles)
	api.POST("/rifles", h.CreateRifle)
	api.PUT("/rifles/:id", h.UpdateRifle)
	api.DELETE("/rifles/:id", h.DeleteRifle)

	api.GET("/ranges", h.Ranges)
	api.GET("/ranges/submissions", h.RangeSubmissions)
	api.POST("/ranges/submissions", h.SubmitRange)
	api.PUT("/ranges/submissions/:id", h.UpdateRangeSubmission)

	api.POST("/chrono/upload", h.UploadChrono)
	api.GET("/chrono/sessions", h.ChronoSessions)
	api.GET("/chrono/sessions/:id/measurements", h.ChronoMeasurements)
	api.DELETE("/chrono/sessions/:id", h.DeleteChronoSession)

	api.POST("/weather/upload", h.UploadWeather)
	api.GET("/weather/sources", h.WeatherSources)
	api.PUT("/weather/sources/:id", h.RenameWeatherSource)
	api.GET("/weather/sources/:id/measurements", h.WeatherMeasurements)
	api.DELETE("/weather/sources/:id", h.DeleteWeatherSource)

	api.POST("/dope/sessions", h.CreateDopeSession)
	api.GET("/dope/sessions", h.DopeSessions)
	api.GET("/dope/sessions/:id", h.GetDopeSession)
	api.PUT("/dope/sessions/:id", h.UpdateDopeSession)
	api.DELETE("/dope/sessions/:id", h.DeleteDopeSession)

	// Admin
	admin := api.Group("/admin", mw.RequireAdmin())
	admin.POST("/bullets", h.CreateBullet)
	admin.PUT("/bullets/:id", h.UpdateBullet)
	admin.DELETE("/bullets/:id", h.DeleteBullet)
	admin.PUT("/ranges/submissions/:id/review", h.ReviewRangeSubmission)
	admin.GET("/users", h.Users)
	admin.PUT("/users/:id/roles", h.SetUserRoles)
	admin.DELETE("/users/:id", h.DeleteUser)

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
