package router

import (
	"net/http"
	"time"

	"mindcare-go/internal/config"
	"mindcare-go/internal/crisis"
	"mindcare-go/internal/handlers"
	"mindcare-go/internal/scoring"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// DefaultRateLimit is the per-client request budget per minute for rate limited routes.
const DefaultRateLimit = 30

// ManualDialMessage accompanies every throttled response.
const ManualDialMessage = "If you need help now, call or text 988, or dial your local emergency number."

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

// rateLimitHandler answers a throttled request with the emergency resources,
// so hitting the limit never leaves a client without a way to reach help.
func rateLimitHandler(manager *crisis.Manager) func(*gin.Context, ratelimit.Info) {
	return func(c *gin.Context, info ratelimit.Info) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many requests, try again later",
			"retry_after": time.Until(info.ResetTime).Round(time.Second).String(),
			"message":     ManualDialMessage,
			"resources":   manager.GetEmergencyResources(""),
		})
	}
}

// Setup builds the API engine. settings is consulted on every provider
// request, so a reloaded provider secret applies at once. The rate limit and
// trusted proxies are read once here. RateLimit is requests per minute per
// client on the analysis routes; zero or less uses DefaultRateLimit.
func Setup(log *zap.Logger, settings func() config.ServerConfig, scorer *scoring.Scorer, manager *crisis.Manager) *gin.Engine {
	cfg := settings()

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error("Invalid trusted proxies, trusting none", zap.Strings("trusted_proxies", cfg.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: uint(rateLimit),
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: rateLimitHandler(manager),
		KeyFunc:      keyFunc,
	})
	providerSecret := func() []byte {
		return []byte(settings().ProviderSecret)
	}

	assessmentHandler := handlers.NewAssessmentHandler(log, scorer)
	crisisHandler := handlers.NewCrisisHandler(log, manager)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/assessment/score", limiter, assessmentHandler.Score)

		crisisRoutes := api.Group("/crisis")
		{
			crisisRoutes.POST("/detect", limiter, crisisHandler.Detect)
			crisisRoutes.GET("/report", limiter, ProviderAuth(log, providerSecret), crisisHandler.Report)
			crisisRoutes.POST("/follow-up", limiter, crisisHandler.FollowUp)

			// Responding to a crisis and reaching a helpline are never rate limited.
			crisisRoutes.POST("/respond", crisisHandler.Respond)
			crisisRoutes.GET("/resources", crisisHandler.Resources)
			crisisRoutes.POST("/call", crisisHandler.Call)
			crisisRoutes.POST("/text", crisisHandler.Text)
		}
	}

	return router
}
