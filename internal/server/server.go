package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"

	"github.com/Marco3041/linkedin-clone/internal/bootstrap"
	"github.com/Marco3041/linkedin-clone/internal/config"
	"github.com/Marco3041/linkedin-clone/internal/middleware"
	"github.com/Marco3041/linkedin-clone/pkg/ratelimiter"
	"github.com/Marco3041/linkedin-clone/pkg/storage"

	chatHttp "github.com/Marco3041/linkedin-clone/internal/modules/chat/delivery/http"
	chatService "github.com/Marco3041/linkedin-clone/internal/modules/chat/service"

	feedHttp "github.com/Marco3041/linkedin-clone/internal/modules/feed/delivery/http"
	feedRepo "github.com/Marco3041/linkedin-clone/internal/modules/feed/repository"
	feedService "github.com/Marco3041/linkedin-clone/internal/modules/feed/service"

	groupHttp "github.com/Marco3041/linkedin-clone/internal/modules/group/delivery/http"
	groupService "github.com/Marco3041/linkedin-clone/internal/modules/group/service"

	jobHttp "github.com/Marco3041/linkedin-clone/internal/modules/job/delivery/http"
	jobService "github.com/Marco3041/linkedin-clone/internal/modules/job/service"

	mediaHttp "github.com/Marco3041/linkedin-clone/internal/modules/media/delivery/http"
	mediaService "github.com/Marco3041/linkedin-clone/internal/modules/media/service"

	membershipService "github.com/Marco3041/linkedin-clone/internal/modules/membership/service"

	networkHttp "github.com/Marco3041/linkedin-clone/internal/modules/network/delivery/http"
	networkService "github.com/Marco3041/linkedin-clone/internal/modules/network/service"

	notiHttp "github.com/Marco3041/linkedin-clone/internal/modules/notification/delivery/http"
	notifRepo "github.com/Marco3041/linkedin-clone/internal/modules/notification/repository"
	notifService "github.com/Marco3041/linkedin-clone/internal/modules/notification/service"

	profileHttp "github.com/Marco3041/linkedin-clone/internal/modules/profile/delivery/http"
	profileService "github.com/Marco3041/linkedin-clone/internal/modules/profile/service"

	searchHttp "github.com/Marco3041/linkedin-clone/internal/modules/search/delivery/http"
	searchService "github.com/Marco3041/linkedin-clone/internal/modules/search/service"

	seedingService "github.com/Marco3041/linkedin-clone/internal/modules/seeding/service"

	userHttp "github.com/Marco3041/linkedin-clone/internal/modules/user/delivery/http"
	userService "github.com/Marco3041/linkedin-clone/internal/modules/user/service"

	viewHttp "github.com/Marco3041/linkedin-clone/internal/modules/view/delivery/http"
	viewService "github.com/Marco3041/linkedin-clone/internal/modules/view/service"
)

const (
	mediaCleanupInterval = 12 * time.Hour
	mediaOrphanAge       = 24 * time.Hour
)

type Server struct {
	engine *gin.Engine
	infra  *bootstrap.Infra
	hub    *viewService.Hub
	stop   context.CancelFunc
}

func NewServer(ctx context.Context, cfg *config.Config, infra *bootstrap.Infra) (*Server, error) {
	store := infra.Store

	authSvc, err := newAuthService(ctx, cfg, infra)
	if err != nil {
		return nil, err
	}

	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient = meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	} else {
		log.Println("⚠️ MEILISEARCH_HOST not set, post search scans the store")
	}
	searchSvc := searchService.NewSearchService(meiliClient, store)

	var mediaStorage storage.MediaStorage
	mediaStorage, err = storage.NewCloudinary(storage.CloudinaryConfig{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	})
	if err != nil {
		log.Printf("⚠️ Media uploads disabled: %v", err)
		mediaStorage = nil
	}
	mediaSvc := mediaService.NewMediaService(store, mediaStorage)
	mediaHandler := mediaHttp.NewMediaHandler(mediaSvc)

	membershipSvc := membershipService.NewMembershipService(store)
	seedingSvc := seedingService.NewSeedingService(store, cfg.SeedStrict)

	notificationSvc := notifService.NewNotificationService(notifRepo.NewNotificationRepository(store))
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc)

	limiter := ratelimiter.New(infra.Redis)
	feedSvc := feedService.NewFeedService(feedRepo.NewPostRepository(store), store, membershipSvc, limiter, cfg.RateLimitPost, searchSvc)
	feedHandler := feedHttp.NewFeedHandler(feedSvc)

	chatHandler := chatHttp.NewChatHandler(chatService.NewChatService(store))
	groupHandler := groupHttp.NewGroupHandler(groupService.NewGroupService(store, membershipSvc))
	jobHandler := jobHttp.NewJobHandler(jobService.NewJobService(store, notificationSvc))
	networkHandler := networkHttp.NewNetworkHandler(networkService.NewNetworkService(store, membershipSvc))
	profileHandler := profileHttp.NewProfileHandler(profileService.NewProfileService(store, mediaSvc))
	searchHandler := searchHttp.NewSearchHandler(searchSvc)

	hub := viewService.NewHub()
	viewHandler := viewHttp.NewViewHandler(viewService.Deps{
		Store:   store,
		Seeding: seedingSvc,
		Auth:    authSvc,
	}, hub, checkOrigin(cfg.AllowedOrigins))

	authHandler := userHttp.NewAuthHandler(authSvc, hub.SignOut)

	workerCtx, stop := context.WithCancel(context.Background())
	if mediaStorage != nil {
		go runMediaCleanup(workerCtx, mediaSvc)
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz"},
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": hub.Count()})
	})

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.SignUp)
		auth.POST("/signin", authHandler.SignIn)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/signout", authHandler.SignOut)
		protected.GET("/me", authHandler.Me)

		// Profile routes
		protected.GET("/profile", profileHandler.GetCurrentProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
		protected.GET("/profile/:user_id", profileHandler.GetProfile)

		// Feed routes
		protected.GET("/posts", feedHandler.GetFeed)
		protected.POST("/posts", feedHandler.CreatePost)
		protected.POST("/posts/:post_id/like", feedHandler.ToggleLike)
		protected.GET("/posts/:post_id/comments", feedHandler.GetComments)
		protected.POST("/posts/:post_id/comments", feedHandler.AddComment)
		protected.GET("/search/posts", searchHandler.SearchPosts)

		// Network routes
		protected.GET("/network", networkHandler.GetNetwork)
		protected.POST("/users/:user_id/connect", networkHandler.Connect)

		// Groups and jobs
		protected.GET("/groups", groupHandler.ListGroups)
		protected.POST("/groups/:group_id/join", groupHandler.Join)
		protected.GET("/jobs", jobHandler.ListJobs)
		protected.POST("/jobs/:job_id/apply", jobHandler.Apply)

		// Messaging routes
		protected.POST("/messages", chatHandler.SendMessage)
		protected.GET("/messages/connections", chatHandler.GetConnections)
		protected.GET("/messages/channel/:peer_id", chatHandler.GetTranscript)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.POST("/media", mediaHandler.Upload)

		// Live screens
		protected.GET("/ws", viewHandler.HandleWebSocket)
	}

	return &Server{
		engine: router,
		infra:  infra,
		hub:    hub,
		stop:   stop,
	}, nil
}

func newAuthService(ctx context.Context, cfg *config.Config, infra *bootstrap.Infra) (userService.AuthService, error) {
	if cfg.AuthDriver == config.AuthFirebase {
		client, err := infra.Firebase.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase auth client: %w", err)
		}
		log.Println("✅ Firebase Auth enabled")
		return userService.NewFirebaseAuthService(client, infra.Store), nil
	}
	revoked := userService.NewRevocationList(infra.Redis)
	return userService.NewLocalAuthService(infra.Store, revoked, cfg.JWTSecret, cfg.JWTTTL), nil
}

func runMediaCleanup(ctx context.Context, svc mediaService.MediaService) {
	ticker := time.NewTicker(mediaCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Println("🧹 Running orphan media cleanup...")
			removed, err := svc.CleanupOrphans(ctx, mediaOrphanAge)
			if err != nil {
				log.Printf("❌ Error cleaning up orphan media: %v", err)
				continue
			}
			log.Printf("✅ Orphan media cleanup completed, %d removed", removed)
		}
	}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Close ends every view session and stops background workers.
func (s *Server) Close() {
	s.stop()
	s.hub.CloseAll()
}

func origins(allowed string) []string {
	var out []string
	for _, o := range strings.Split(allowed, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = []string{"http://localhost:3000"}
	}
	return out
}

// checkOrigin accepts websocket upgrades from the CORS origins and from
// clients that send no Origin header.
func checkOrigin(allowed string) func(r *http.Request) bool {
	set := make(map[string]struct{})
	for _, o := range origins(allowed) {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		_, ok := set[u.Scheme+"://"+u.Host]
		return ok
	}
}

func setupCORS(router *gin.Engine, allowed string) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins(allowed),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
