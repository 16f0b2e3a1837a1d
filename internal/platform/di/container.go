// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"

	"storefront/internal/adapters/in/http/middleware"
	"storefront/internal/adapters/in/http/shop"
	shopHandler "storefront/internal/adapters/in/http/shop/handler"
	fsout "storefront/internal/adapters/out/firestore"
	razorpayout "storefront/internal/adapters/out/razorpay"
	sendgridout "storefront/internal/adapters/out/sendgrid"
	shiprocketout "storefront/internal/adapters/out/shiprocket"
	usecase "storefront/internal/application/usecase"
	appcfg "storefront/internal/infra/config"
	firestoreinfra "storefront/internal/infra/firestore"
	"storefront/internal/infra/secrets"
	"storefront/internal/platform/metrics"
)

// Container owns external clients and the wired application services.
//
// Firestore is strict (boot fails without it); Firebase Auth, Secret Manager
// and the SendGrid notifier are best-effort (warn + continue), so local runs
// work without GCP credentials.
type Container struct {
	Config    *appcfg.Config
	ProjectID string

	Firestore    *firestoreinfra.ClientWrapper
	FirebaseApp  *firebase.App
	FirebaseAuth *firebaseauth.Client
	Secrets      *secrets.Provider

	Metrics *metrics.CheckoutMetrics

	CartUC     *usecase.CartUsecase
	PricingUC  *usecase.PricingUsecase
	CheckoutUC *usecase.CheckoutUsecase
}

// NewContainer initializes clients and wires the checkout stack.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}

	projectID := resolveProjectID(cfg)
	if projectID == "" {
		return nil, errors.New("di: projectID is empty (set FIRESTORE_PROJECT_ID or GOOGLE_CLOUD_PROJECT)")
	}

	c := &Container{
		Config:    cfg,
		ProjectID: projectID,
	}

	// 1) Firestore (strict)
	fsw, err := firestoreinfra.NewClient(ctx, projectID, cfg.FirestoreCredentialsFile)
	if err != nil {
		return nil, err
	}
	c.Firestore = fsw

	// 2) Secret Manager (best-effort)
	if sp, spErr := secrets.New(ctx, projectID); spErr != nil {
		log.Printf("[di] WARN secret manager unavailable: %v (using env credentials)", spErr)
	} else {
		c.Secrets = sp
	}

	// 3) Firebase Auth (best-effort)
	{
		fbApp, fbErr := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID})
		if fbErr != nil {
			log.Printf("[di] WARN firebase app init failed: %v (auth disabled)", fbErr)
		} else {
			c.FirebaseApp = fbApp
			authClient, aErr := fbApp.Auth(ctx)
			if aErr != nil {
				log.Printf("[di] WARN firebase auth init failed: %v (auth disabled)", aErr)
			} else {
				c.FirebaseAuth = authClient
				log.Printf("[di] OK firebase auth initialized")
			}
		}
	}

	// 4) Gateway credentials: Secret Manager first, env fallback
	razorpaySecret := secrets.Resolve(ctx, c.Secrets, "razorpay-key-secret", "RAZORPAY_KEY_SECRET")
	shiprocketToken := secrets.Resolve(ctx, c.Secrets, "shiprocket-token", "SHIPROCKET_TOKEN")
	sendgridKey := secrets.Resolve(ctx, c.Secrets, "sendgrid-api-key", "SENDGRID_API_KEY")

	// 5) Outbound adapters
	fsClient := fsw.Client
	cartRepo := fsout.NewCartRepositoryFS(fsClient)
	sagaRepo := fsout.NewSagaRepositoryFS(fsClient)
	catalogQ := fsout.NewCatalogQueryFS(fsClient)
	couponRepo := fsout.NewCouponRepositoryFS(fsClient)
	userQ := fsout.NewUserQueryFS(fsClient)

	payments := razorpayout.New(cfg.RazorpayBaseURL, cfg.RazorpayKeyID, razorpaySecret)
	shipments := shiprocketout.New(cfg.ShiprocketBaseURL, shiprocketToken)

	var notifier usecase.CompletionNotifier
	if n := sendgridout.New(sendgridKey, cfg.MailFromName, cfg.MailFromEmail, userQ); n != nil {
		notifier = n
		log.Printf("[di] OK sendgrid notifier initialized")
	} else {
		log.Printf("[di] sendgrid notifier not configured (SENDGRID_API_KEY empty)")
	}

	// 6) Usecases
	c.Metrics = metrics.NewCheckoutMetrics()

	c.CartUC = usecase.NewCartUsecase(cartRepo)
	c.PricingUC = usecase.NewPricingUsecase(cartRepo, catalogQ, couponRepo, cfg.Currency)
	c.CheckoutUC = usecase.NewCheckoutUsecase(
		sagaRepo,
		c.PricingUC,
		cartRepo,
		payments,
		shipments,
		userQ,
		notifier,
	)
	c.CheckoutUC.SetMetrics(c.Metrics)

	return c, nil
}

// RouterDeps builds the shopper-facing handler set. When Firebase Auth is
// available all shopper routes require a verified ID token.
func (c *Container) RouterDeps() shop.Deps {
	cart := shopHandler.NewCartHandler(c.CartUC)
	checkout := shopHandler.NewCheckoutHandler(c.CheckoutUC)

	if c.FirebaseAuth != nil {
		auth := &middleware.UserAuthMiddleware{FirebaseAuth: c.FirebaseAuth}
		cart = auth.Handler(cart)
		checkout = auth.Handler(checkout)
	} else {
		log.Printf("[di] WARN shopper routes served WITHOUT auth (firebase unavailable)")
	}

	return shop.Deps{
		Cart:     cart,
		Checkout: checkout,
		Metrics:  metrics.Handler(),
	}
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Firestore != nil {
		_ = c.Firestore.Close()
	}
	if c.Secrets != nil {
		_ = c.Secrets.Close()
	}
	return nil
}

func resolveProjectID(cfg *appcfg.Config) string {
	if cfg != nil {
		if v := strings.TrimSpace(cfg.FirestoreProjectID); v != "" {
			return v
		}
	}

	for _, k := range []string{
		"FIRESTORE_PROJECT_ID",
		"GCP_PROJECT_ID",
		"GOOGLE_CLOUD_PROJECT",
		"FIREBASE_PROJECT_ID",
	} {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}

	return ""
}
