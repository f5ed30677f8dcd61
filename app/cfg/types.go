package cfg

type Cfg struct {
	// Application configuration
	WatchesDir        string
	OutputDir         string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string
	PageSize          int
	Once              bool

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
