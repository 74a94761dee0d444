package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sampleloop/sampleloop-backend/api/controllers"
	"github.com/sampleloop/sampleloop-backend/api/middleware"
	"github.com/sampleloop/sampleloop-backend/internal/conversions"
	"github.com/sampleloop/sampleloop-backend/internal/displays"
	"github.com/sampleloop/sampleloop-backend/internal/fulfillment"
	"github.com/sampleloop/sampleloop-backend/internal/inventory"
	"github.com/sampleloop/sampleloop-backend/internal/notifications"
	"github.com/sampleloop/sampleloop-backend/internal/orgs"
	"github.com/sampleloop/sampleloop-backend/internal/points"
	"github.com/sampleloop/sampleloop-backend/internal/products"
	"github.com/sampleloop/sampleloop-backend/internal/receiving"
	"github.com/sampleloop/sampleloop-backend/internal/stores"
	"github.com/sampleloop/sampleloop-backend/pkg/config"
	"github.com/sampleloop/sampleloop-backend/pkg/logger"
)

// Services bundles everything the router wires into controllers.
type Services struct {
	Inventory     inventory.Service
	Receiving     receiving.Service
	Displays      displays.Service
	Fulfillment   fulfillment.Service
	Notifications notifications.Service
	Orgs          orgs.Service
	Stores        stores.Service
	Products      products.Service
	Points        points.Service
	Conversions   conversions.Recorder
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cacheP controllers.Pinger,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cacheP))
	})

	r.Handle("/metrics", promhttp.Handler())

	// QR entry point: unauthenticated by design, a display sticker is the
	// only credential a scanner has.
	r.Get("/d/{displayId}", controllers.DisplayRoute(svcs.Displays, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orgs", func(r chi.Router) {
			r.Post("/", controllers.CreateOrg(svcs.Orgs, logg))
			r.Get("/{orgId}", controllers.GetOrg(svcs.Orgs, logg))
			r.Get("/{orgId}/config", controllers.GetOrgConfig(svcs.Orgs, logg))
			r.Get("/{orgId}/stores", controllers.ListOrgStores(svcs.Stores, logg))
			r.Get("/{orgId}/products", controllers.ListOrgProducts(svcs.Products, logg))
			r.Get("/{orgId}/displays", controllers.ListOrgDisplays(svcs.Displays, logg))
			r.Get("/{orgId}/conversions", controllers.ListOrgConversions(svcs.Conversions, logg))
		})

		r.Route("/stores", func(r chi.Router) {
			r.Post("/", controllers.RegisterStore(svcs.Stores, logg))
			r.Get("/{storeId}", controllers.GetStore(svcs.Stores, logg))
			r.Get("/{storeId}/orders", controllers.ListPendingOrders(svcs.Receiving, logg))
			r.Get("/{storeId}/intents", controllers.ListPendingIntents(svcs.Fulfillment, logg))

			r.Route("/{storeId}/stock/{sku}", func(r chi.Router) {
				r.Get("/", controllers.GetStock(svcs.Inventory, logg))
				r.Get("/ledger", controllers.ListLedger(svcs.Inventory, logg))
				r.Get("/verify", controllers.VerifyLedger(svcs.Inventory, logg))
				r.Post("/adjust", controllers.AdjustStock(svcs.Inventory, logg))
				r.Post("/samples", controllers.RedeemSample(svcs.Inventory, logg))
			})

			r.Route("/{storeId}/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(svcs.Products, logg))
			r.Get("/{sku}", controllers.GetProduct(svcs.Products, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.PlaceOrder(svcs.Receiving, logg))
			r.Post("/{orderId}/receive", controllers.ReceiveOrder(svcs.Receiving, logg))
		})
		r.Post("/receiving/{token}", controllers.ReceiveByToken(svcs.Receiving, logg))

		r.Route("/displays", func(r chi.Router) {
			r.Post("/", controllers.CreateDisplayBatch(svcs.Displays, logg))
			r.Post("/sold", controllers.MarkDisplaysSold(svcs.Displays, logg))
			r.Get("/{displayId}", controllers.GetDisplay(svcs.Displays, logg))
			r.Post("/{displayId}/activate", controllers.ActivateDisplay(svcs.Displays, logg))
			r.Post("/{displayId}/reset", controllers.ResetDisplay(svcs.Displays, logg))
			r.Post("/{displayId}/deactivate", controllers.DeactivateDisplay(svcs.Displays, logg))
		})

		r.Route("/intents", func(r chi.Router) {
			r.Post("/", controllers.CreateIntent(svcs.Fulfillment, logg))
			r.Get("/{intentId}", controllers.GetIntent(svcs.Fulfillment, logg))
			r.Post("/{intentId}/fulfill", controllers.FulfillIntent(svcs.Fulfillment, logg))
			r.Post("/{intentId}/cancel", controllers.CancelIntent(svcs.Fulfillment, logg))
		})

		r.Route("/staff/{staffId}/points", func(r chi.Router) {
			r.Get("/", controllers.StaffPointsBalance(svcs.Points, logg))
			r.Get("/history", controllers.StaffPointsHistory(svcs.Points, logg))
		})
	})

	return r
}
