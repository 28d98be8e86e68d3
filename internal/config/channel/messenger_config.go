package channel

// MessengerConfig holds the Facebook Messenger page settings.
type MessengerConfig struct {
	PageAccessToken  string   `json:"pageAccessToken" validate:"required"`
	VerifyToken      string   `json:"verifyToken" validate:"required"`
	GraphAPIURL      string   `json:"graphApiUrl" validate:"required,url"`
	TextLimit        int      `json:"textLimit" validate:"gt=0"`
	MessagesDelayMs  int      `json:"messagesDelayMs" validate:"gte=0"`
	SubscribeDelayMs int      `json:"subscribeDelayMs" validate:"gte=0"`
	TimeoutMs        int      `json:"timeoutMs" validate:"gt=0"`
	AllowFrom        []string `json:"allowFrom"`
}

func DefaultMessengerConfig() MessengerConfig {
	return MessengerConfig{
		GraphAPIURL:      "https://graph.facebook.com/v2.6",
		TextLimit:        640,
		MessagesDelayMs:  200,
		SubscribeDelayMs: 3000,
		TimeoutMs:        10000,
		AllowFrom:        []string{},
	}
}
