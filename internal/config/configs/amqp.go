package configs

// AMQP configures the connection to the minting service.
type AMQP struct {
	// URL is empty to run without a broker; mint requests are then only
	// logged and results arrive through the HTTP callback.
	URL           string `env:"URL"`
	Exchange      string `env:"EXCHANGE" envDefault:"crowdfund"`
	RequestKey    string `env:"REQUEST_ROUTING_KEY" envDefault:"mint.requested"`
	ResultKey     string `env:"RESULT_ROUTING_KEY" envDefault:"mint.completed"`
	ResultQueue   string `env:"RESULT_QUEUE" envDefault:"crowdfund.mint.results"`
	PrefetchCount int    `env:"PREFETCH_COUNT" envDefault:"16"`
}
