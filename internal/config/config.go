package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const defaultConfigFile = "config.yml"

type Config struct {
	Server   ServerConfig
	Postgres DBConfig
	Redis    RedisConfig
	S3       S3Config
	Logger   Logger
	Worker   WorkerConfig
	Pipeline PipelineConfig
	Stitch   StitchConfig
	OpenAI   OpenAIConfig
}

type ServerConfig struct {
	AppVersion   string
	Port         string `validate:"required"`
	Mode         string
	JwtSecretKey string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type WorkerConfig struct {
	WorkerCount      int     `validate:"gte=1"`
	MaxCPUUsage      float64 `validate:"gt=0,lte=100"`
	CheckInterval    time.Duration
	PollTimeout      time.Duration
	BusyRequeueDelay time.Duration
	TempDir          string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PgDriver string
	SSLMode  string
}

type RedisConfig struct {
	RedisAddr       string
	RedisPassword   string
	DB              int
	MinIdleConns    int
	PoolSize        int
	PoolTimeout     int
	TLS             bool
	JobQueueKey     string `validate:"required"`
	LeaseTTL        time.Duration
	CatalogCacheKey string
	CatalogCacheTTL time.Duration
}

type S3Config struct {
	Endpoint      string
	Region        string
	AccessKey     string
	SecretKey     string
	MediaBucket   string `validate:"required"`
	LibraryBucket string `validate:"required"`
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

// PipelineConfig holds the knobs of the job orchestrator and the content matcher.
type PipelineConfig struct {
	IntroPath                string
	OutroPath                string
	FrameOffsetRatio         float64 `validate:"gte=0,lt=1"`
	FallbackLocationTemplate string
	ScopeToCategory          bool
}

type StitchConfig struct {
	Width              int `validate:"gt=0"`
	Height             int `validate:"gt=0"`
	FrameRate          int `validate:"gt=0"`
	PixelFormat        string
	SampleRate         int `validate:"gt=0"`
	ChannelLayout      string
	VideoCodec         string
	AudioCodec         string
	SizeThresholdBytes int64 `validate:"gt=0"`
	Quality            EncodeProfile
	Compact            EncodeProfile
}

// EncodeProfile is one regime of the adaptive encoding policy.
type EncodeProfile struct {
	Preset       string
	CRF          int
	MaxBitrate   string
	BufferSize   string
	AudioBitrate string
}

type OpenAIConfig struct {
	APIKey             string
	BaseURL            string
	TranscriptionModel string
	AnalysisModel      string
	TimeoutSeconds     int
}

// ConfigPath returns the config file location, honouring CONFIG_PATH.
func ConfigPath() string {
	if p := strings.TrimSpace(os.Getenv("CONFIG_PATH")); p != "" {
		return p
	}
	return defaultConfigFile
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "Production")
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)

	v.SetDefault("postgres.pgDriver", "pgx")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslMode", "require")

	v.SetDefault("redis.redisAddr", ":6379")
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.poolTimeout", 5)
	v.SetDefault("redis.jobQueueKey", "video_jobs")
	v.SetDefault("redis.leaseTTL", 30*time.Minute)
	v.SetDefault("redis.catalogCacheKey", "library:catalog")
	v.SetDefault("redis.catalogCacheTTL", 5*time.Minute)

	v.SetDefault("logger.encoding", "json")
	v.SetDefault("logger.level", "info")

	v.SetDefault("worker.workerCount", 1)
	v.SetDefault("worker.maxCPUUsage", 80.0)
	v.SetDefault("worker.checkInterval", 10*time.Second)
	v.SetDefault("worker.pollTimeout", 5*time.Second)
	v.SetDefault("worker.busyRequeueDelay", 15*time.Second)
	v.SetDefault("worker.tempDir", os.TempDir())

	v.SetDefault("pipeline.introPath", "videos/intro.mp4")
	v.SetDefault("pipeline.outroPath", "videos/outro.mp4")
	v.SetDefault("pipeline.frameOffsetRatio", 0.5)
	v.SetDefault("pipeline.fallbackLocationTemplate", "fallback/%s.mp4")
	v.SetDefault("pipeline.scopeToCategory", true)

	v.SetDefault("stitch.width", 1280)
	v.SetDefault("stitch.height", 720)
	v.SetDefault("stitch.frameRate", 30)
	v.SetDefault("stitch.pixelFormat", "yuv420p")
	v.SetDefault("stitch.sampleRate", 44100)
	v.SetDefault("stitch.channelLayout", "stereo")
	v.SetDefault("stitch.videoCodec", "libx264")
	v.SetDefault("stitch.audioCodec", "aac")
	v.SetDefault("stitch.sizeThresholdBytes", int64(95*1024*1024))
	v.SetDefault("stitch.quality.preset", "veryfast")
	v.SetDefault("stitch.quality.crf", 23)
	v.SetDefault("stitch.quality.audioBitrate", "128k")
	v.SetDefault("stitch.compact.preset", "medium")
	v.SetDefault("stitch.compact.crf", 28)
	v.SetDefault("stitch.compact.maxBitrate", "2500k")
	v.SetDefault("stitch.compact.bufferSize", "5000k")
	v.SetDefault("stitch.compact.audioBitrate", "96k")

	v.SetDefault("openai.baseURL", "https://api.openai.com/v1")
	v.SetDefault("openai.transcriptionModel", "whisper-1")
	v.SetDefault("openai.analysisModel", "gpt-4o")
	v.SetDefault("openai.timeoutSeconds", 120)
}
