// internal/infra/config/config.go
package config

import "os"

// Config holds all environment-driven settings for the service.
type Config struct {
	Port string

	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	// Razorpay hosted-checkout credentials. Secret may arrive via Secret
	// Manager (see infra/secrets) instead of the environment.
	RazorpayBaseURL   string
	RazorpayKeyID     string
	RazorpayKeySecret string

	// Shiprocket API token. Empty base URL means the production API.
	ShiprocketBaseURL string
	ShiprocketToken   string

	// SendGrid completion mail. Empty API key disables the notifier.
	SendGridAPIKey string
	MailFromName   string
	MailFromEmail  string

	Currency string
}

// Load reads the environment and returns a Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "storefront-dev")

	return &Config{
		Port: getenvDefault("PORT", "8080"),

		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		RazorpayBaseURL:   os.Getenv("RAZORPAY_BASE_URL"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),

		ShiprocketBaseURL: os.Getenv("SHIPROCKET_BASE_URL"),
		ShiprocketToken:   os.Getenv("SHIPROCKET_TOKEN"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFromName:   getenvDefault("MAIL_FROM_NAME", "Storefront"),
		MailFromEmail:  getenvDefault("MAIL_FROM_EMAIL", "orders@storefront.example"),

		Currency: getenvDefault("CHECKOUT_CURRENCY", "INR"),
	}
}

// GetFirestoreProjectID returns the Firestore/GCP project ID.
func (c *Config) GetFirestoreProjectID() string {
	return c.FirestoreProjectID
}

// GetFirebaseProjectID returns the project ID used for Firebase Auth.
func (c *Config) GetFirebaseProjectID() string {
	return c.FirebaseProjectID
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
