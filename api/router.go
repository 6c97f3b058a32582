// Package api contains all endpoints available
package api

import (
	"time"

	"myfuture/api/config"
	"myfuture/api/db"
	"myfuture/api/internal/auth"
	"myfuture/api/internal/service"
	"myfuture/api/middleware"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Auth   *auth.Service
	Mailer service.Mailer
}

func NewRouter() (*API, error) {
	a := &API{
		Mailer: service.ConsoleMailer{},
	}

	conn, err := db.New()
	if err != nil {
		return nil, err
	}
	a.DB = conn

	makeLogger()

	authCfg := config.Auth()
	verifier := service.NewGoogleTokenVerifier(
		viper.GetString("google.tokeninfo_url"),
		viper.GetString("google.client_id"),
	)
	a.Auth = auth.NewService(db.NewUserDirectory(conn), verifier, authCfg)

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("cors.allow_origins"),
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	jwt := middleware.NewJWTMiddleware(conn, authCfg.JWTSecret)
	verified := middleware.NewVerifiedMiddleware()

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	public := main.Group("/public")
	{
		// GET /api/public/careers 	-> Static career list
		public.GET("/careers", a.PublicCareers)

		// GET /api/public/fields 	-> Static study field list
		public.GET("/fields", a.PublicFields)

		// GET /api/public/trends 	-> Static trend list
		public.GET("/trends", a.PublicTrends)
	}

	authGroup := main.Group("/auth")
	{
		// POST /api/auth/register 		-> Creates an unverified account, mails a verification link
		authGroup.POST("/register", a.AuthRegister)

		// GET /api/auth/verify-email 		-> Consumes a verification token
		authGroup.GET("/verify-email", a.AuthVerifyEmail)

		// POST /api/auth/login 		-> Returns a bearer access token
		authGroup.POST("/login", a.AuthLogin)

		// POST /api/auth/forgot-password 	-> Mails a reset link, always answers neutrally
		authGroup.POST("/forgot-password", a.AuthForgotPassword)

		// POST /api/auth/reset-password 	-> Consumes a reset token
		authGroup.POST("/reset-password", a.AuthResetPassword)

		// POST /api/auth/google 		-> Google sign-in, links or creates the account
		authGroup.POST("/google", a.AuthGoogle)

		// GET /api/auth/me 			-> Returns the authenticated account
		authGroup.GET("/me", jwt, a.AuthMe)
	}

	orientations := main.Group("/orientations", jwt, verified)
	{
		// POST /api/orientations 	-> Creates an orientation for the current user
		orientations.POST("", a.OrientationCreate)

		// GET /api/orientations/me 	-> Lists the current user's orientations
		orientations.GET("/me", a.OrientationFetch)
	}

	results := main.Group("/results", jwt, verified)
	{
		// POST /api/results 		-> Stores a result for the current user
		results.POST("", a.ResultCreate)

		// GET /api/results/me 		-> Lists the current user's results
		results.GET("/me", a.ResultFetch)
	}

	service.TokenCleanup(time.Hour, conn)

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()

	level, err := zapcore.ParseLevel(viper.GetString("app.log_level"))
	if err == nil {
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
