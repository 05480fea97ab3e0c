package cfg

type Command string

const (
	CommandAggregate  Command = "aggregate"
	CommandSendDigest Command = "send-digest"
	CommandServe      Command = "serve"
	CommandMigrate    Command = "migrate"
)

type Cfg struct {
	Command Command

	// Storage
	DBPath   string
	FeedsDir string

	// HTTP
	Port         string
	BaseUrl      string
	APIAccessKey string

	// Generation service
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	SummaryLimit   int
	SummaryRPM     int
	SummaryTimeout int // seconds

	// Email delivery
	ResendAPIKey  string
	ResendBaseURL string
	FromEmail     string
	BatchSize     int
	DigestLimit   int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
