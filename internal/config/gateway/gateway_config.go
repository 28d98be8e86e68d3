package gateway

// GatewayConfig holds HTTP server settings.
type GatewayConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port" validate:"gt=0,lte=65535"`
	AppURL    string `json:"appUrl"`    // public base URL of the web views
	PublicDir string `json:"publicDir"` // static assets, served at /
	ViewsDir  string `json:"viewsDir"`  // web-view html pages
}

func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Host:      "0.0.0.0",
		Port:      5000,
		PublicDir: "public",
		ViewsDir:  "views",
	}
}
