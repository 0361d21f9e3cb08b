package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalaconnect/kalaconnect-backend/api/controllers"
	"github.com/kalaconnect/kalaconnect-backend/api/middleware"
	aisvc "github.com/kalaconnect/kalaconnect-backend/internal/ai"
	conversationsvc "github.com/kalaconnect/kalaconnect-backend/internal/conversations"
	mediasvc "github.com/kalaconnect/kalaconnect-backend/internal/media"
	productsvc "github.com/kalaconnect/kalaconnect-backend/internal/products"
	purchasesvc "github.com/kalaconnect/kalaconnect-backend/internal/purchases"
	"github.com/kalaconnect/kalaconnect-backend/pkg/config"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
)

// Services bundles everything the router serves.
type Services struct {
	Products      productsvc.Service
	Conversations conversationsvc.Service
	Purchases     purchasesvc.Service
	Media         mediasvc.Service
	AI            aisvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	pingers map[string]controllers.Pinger,
	services Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public surface: browsing needs no account, and the processor
		// callback authenticates by network, not by user token.
		r.Get("/products", controllers.ListProducts(services.Products, logg))
		r.Get("/products/{productID}", controllers.GetProduct(services.Products, logg))
		r.Post("/media-callback", controllers.MediaCallback(services.Media, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Post("/products", controllers.CreateProduct(services.Products, logg))

			r.Get("/conversations", controllers.ListConversations(services.Conversations, logg))
			r.Get("/messages/{conversationID}", controllers.ListMessages(services.Conversations, logg))
			r.Post("/send-message", controllers.SendMessage(services.Conversations, logg))

			r.Post("/purchase", controllers.CreatePurchase(services.Purchases, logg))
			r.Get("/purchases", controllers.ListPurchases(services.Purchases, logg))

			r.Route("/ai", func(r chi.Router) {
				r.Post("/generate-story", controllers.GenerateStory(services.AI, logg))
				r.Post("/transcribe-audio", controllers.TranscribeAudio(services.AI, logg))
				r.Post("/process-image", controllers.ProcessImage(services.AI, logg))
				r.Post("/generate-market-insights", controllers.GenerateMarketInsights(services.AI, logg))
				r.Post("/seo-optimize", controllers.OptimizeSEO(services.AI, logg))
				r.Post("/generate-email-campaign", controllers.GenerateEmailCampaign(services.AI, logg))
			})
		})
	})

	return r
}
