package constants

import "time"

var CacheTTL = struct {
	QRImage          time.Duration
	ShareSuggestions time.Duration
}{
	QRImage:          24 * time.Hour,
	ShareSuggestions: 6 * time.Hour,
}

var CacheKeys = struct {
	QRImage          string
	ShareSuggestions string
}{
	QRImage:          "card:qr:%s",
	ShareSuggestions: "card:share:suggestions:%s",
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var ShareConfig = struct {
	Message            string
	WhatsAppBaseURL    string
	SMSScheme          string
	LinkedInShareURL   string
	SuggestionTimeout  time.Duration
	MaxPromptFieldRune int
}{
	Message:            "Check out my digital business card: ",
	WhatsAppBaseURL:    "https://wa.me/",
	SMSScheme:          "sms:",
	LinkedInShareURL:   "https://www.linkedin.com/sharing/share-offsite/?url=",
	SuggestionTimeout:  15 * time.Second,
	MaxPromptFieldRune: 300,
}

var QRDefaults = struct {
	Size             int
	Margin           int
	Level            string
	Foreground       string
	Background       string
	DownloadFilename string
	MaxSize          int
	MaxMargin        int
}{
	Size:             300,
	Margin:           2,
	Level:            "H",
	Foreground:       "#007a3d",
	Background:       "#FFFFFF",
	DownloadFilename: "card-qr.png",
	MaxSize:          2048,
	MaxMargin:        64,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour,
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var WarmUpConfig = struct {
	MaxGoroutines int
	Timeout       time.Duration
}{
	MaxGoroutines: 4,
	Timeout:       30 * time.Second,
}
