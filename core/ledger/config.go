package ledger

// Config holds configuration for the ledger node connection.
type Config struct {
	// Endpoint is the base URL of the ledger query API.
	Endpoint string `mapstructure:"endpoint" default:"http://localhost:8980"`
	// FeedEndpoint is the websocket URL of the live transfer feed.
	FeedEndpoint string `mapstructure:"feed_endpoint" default:"ws://localhost:8981/feed"`
	// Token is the API token sent with every request.
	Token string `mapstructure:"token" default:""`
	// TimeoutSeconds bounds every query to the ledger.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"10"`
}
