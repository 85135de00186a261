package config

type Mode string

const (
	ModeDebug   Mode = "debug"
	ModeRelease Mode = "release"
)

type Config struct {
	Host   string `envconfig:"HOST"`
	Port   string `envconfig:"PORT"`
	Domain string `envconfig:"DOMAIN"`
	Prefix string `envconfig:"PREFIX"`
	Mode   Mode   `envconfig:"MODE"`
	Mysql  Mysql
	Redis  Redis
	JWT    JWT
	Log    Log    `mapstructure:"Log"`
	Sentry Sentry `mapstructure:"Sentry"`
	OTel   OTel   `mapstructure:"OTel"`
	S3     S3
	Lock   Lock   `mapstructure:"Lock"`
	Notify Notify `mapstructure:"Notify"`
	Cors   Cors   `mapstructure:"Cors"`
}

type S3 struct {
	Endpoint        string `mapstructure:"endpoint"`
	BaseURL         string `mapstructure:"base_url"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	AccessKey       string `mapstructure:"access_key" envconfig:"ACCESS_KEY"`
	SecretAccessKey string `mapstructure:"secret_key" envconfig:"SECRET_KEY"`
	Prefix          string `mapstructure:"prefix"`
	UsePathStyle    bool   `mapstructure:"path_style"`
}

type Mysql struct {
	Host     string `envconfig:"HOST"`
	Port     string `envconfig:"PORT"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	DBName   string `envconfig:"DB_NAME"`
}

type Redis struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password" envconfig:"PASSWORD"`
	DB       int    `mapstructure:"db"`
}

type JWT struct {
	AccessSecret string `envconfig:"ACCESS_SECRET"`
	AccessExpire int64  `envconfig:"ACCESS_EXPIRE"` // 秒
}

type Log struct {
	FilePath   string `envconfig:"LOG_FILE_PATH" mapstructure:"file_path"`     // 日志文件路径
	Level      string `envconfig:"LOG_LEVEL" mapstructure:"level"`             // 日志级别：debug, info, warn, error
	MaxSize    int    `envconfig:"LOG_MAX_SIZE" mapstructure:"max_size"`       // 日志文件最大大小（MB）
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" mapstructure:"max_backups"` // 保留的旧日志文件数
	MaxAge     int    `envconfig:"LOG_MAX_AGE" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `envconfig:"LOG_COMPRESS" mapstructure:"compress"`       // 是否压缩旧日志文件
}

type Sentry struct {
	Dsn         string        `envconfig:"SENTRY_DSN" mapstructure:"dsn"`
	Environment string        `mapstructure:"environment"`
	SampleRate  float64       `mapstructure:"sample_rate"` // 性能追踪采样率
	Tracing     SentryTracing `mapstructure:"tracing"`
}

type SentryTracing struct {
	DBSlowThresholdMs    int64 `mapstructure:"db_slow_threshold_ms"`
	RedisSlowThresholdMs int64 `mapstructure:"redis_slow_threshold_ms"`
	TraceHTTPCalls       bool  `mapstructure:"trace_http_calls"`
}

type OTel struct {
	Enable      bool   `mapstructure:"enable"`
	ServiceName string `mapstructure:"service_name"`
	AgentHost   string `mapstructure:"agent_host"`
	AgentPort   string `mapstructure:"agent_port"`
}

// LockBackend 项目级互斥锁的实现方式
type LockBackend string

const (
	LockBackendRedis LockBackend = "redis"
	LockBackendLocal LockBackend = "local"
)

type Lock struct {
	Backend LockBackend `mapstructure:"backend"`
	TTLMs   int64       `mapstructure:"ttl_ms"`   // 锁自动过期时间
	WaitMs  int64       `mapstructure:"wait_ms"`  // 获取锁最长等待时间
	RetryMs int64       `mapstructure:"retry_ms"` // 重试间隔
}

type Notify struct {
	WebhookURL string `envconfig:"NOTIFY_WEBHOOK_URL" mapstructure:"webhook_url"` // 为空时不推送
	TimeoutMs  int64  `mapstructure:"timeout_ms"`
}

// Cors 跨域白名单，为空时拒绝所有跨域请求
type Cors struct {
	AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS" mapstructure:"allowed_origins"` // 支持 https://*.example.com
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAgeSec        int      `mapstructure:"max_age_sec"` // 预检结果缓存时间
}
