package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"clickboard/clicks/pkg/render"
	"clickboard/tools/httpclient"
	"clickboard/tools/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// DefaultClicksURL 点击数据接口的默认地址
const DefaultClicksURL = "https://my-fastapi.onrender.com/clicks"

// DefaultTrackerRedirectURL 点击埋点跳转的默认报名页
const DefaultTrackerRedirectURL = "https://yourcourse.com/signup"

// Config 应用配置结构
type Config struct {
	// 数据源与输出区域
	ClicksURL string
	TargetID  string

	// 服务器配置
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// 日志配置
	LogLevel string

	// 拉取配置
	FetchTimeout    time.Duration
	RefreshInterval time.Duration
	RefreshOnView   bool

	// 埋点追踪（内存版 /track_open、/track_click、/clicks）
	TrackerEnabled     bool
	TrackerRedirectURL string

	// 性能配置
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	lock        sync.Mutex
	log         *logger.Logger
	region      *render.Region
	renderer    *render.Renderer
	Application *application
}

// 应用服务

type application struct {
	server *gin.Engine
	lock   sync.Mutex
	root   gin.IRouter
}

var (
	cfg     *Config
	loadErr error
	once    sync.Once
)

// LoadConfig 加载进程级单例配置，首次失败后每次调用都返回同一个错误
func LoadConfig() (*Config, error) {
	once.Do(func() {
		cfg, loadErr = Load()
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return cfg, nil
}

// Load 读取 .env（可选）与环境变量，构建并校验一份新配置
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	c := &Config{
		ClicksURL: getEnv("CLICKS_URL", DefaultClicksURL),
		TargetID:  getEnv("CLICKS_TARGET_ID", "clicks"),
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		// 超时配置
		ReadTimeout:     getDurationEnv("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 40*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 5*time.Second),

		// 拉取配置
		FetchTimeout:    getDurationEnv("FETCH_TIMEOUT", 30*time.Second),
		RefreshInterval: getDurationEnv("REFRESH_INTERVAL", 0),
		RefreshOnView:   getBoolEnv("REFRESH_ON_VIEW", true),

		// 埋点追踪
		TrackerEnabled:     getBoolEnv("TRACKER_ENABLED", false),
		TrackerRedirectURL: getEnv("TRACKER_REDIRECT_URL", DefaultTrackerRedirectURL),

		// 连接池配置
		MaxIdleConns:        getIntEnv("MAX_IDLE_CONNS", 100),
		MaxIdleConnsPerHost: getIntEnv("MAX_IDLE_CONNS_PER_HOST", 10),
		IdleConnTimeout:     getDurationEnv("IDLE_CONN_TIMEOUT", 90*time.Second),

		Application: &application{},
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

func (a *application) GinServer() *gin.Engine {
	a.lock.Lock()
	defer a.lock.Unlock()

	if a.server == nil {
		a.server = gin.Default()
		a.server.Use(cors.Default())
	}

	return a.server
}

func (a *application) GinRootRouter() gin.IRouter {
	r := a.GinServer()

	a.lock.Lock()
	defer a.lock.Unlock()
	if a.root == nil {
		a.root = r.Group("app").Group("api").Group("v1")
	}

	return a.root
}

// Validate 验证配置
func (c *Config) Validate() error {
	u, err := url.Parse(c.ClicksURL)
	if err != nil {
		return fmt.Errorf("CLICKS_URL is invalid: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CLICKS_URL must be an absolute http(s) URL, got %q", c.ClicksURL)
	}
	if strings.TrimSpace(c.TargetID) == "" {
		return fmt.Errorf("CLICKS_TARGET_ID is required")
	}
	for name, d := range map[string]time.Duration{
		"READ_TIMEOUT":      c.ReadTimeout,
		"WRITE_TIMEOUT":     c.WriteTimeout,
		"SHUTDOWN_TIMEOUT":  c.ShutdownTimeout,
		"FETCH_TIMEOUT":     c.FetchTimeout,
		"REFRESH_INTERVAL":  c.RefreshInterval,
		"IDLE_CONN_TIMEOUT": c.IdleConnTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	// 页面访问会同步等待拉取，写超时必须覆盖整个拉取过程
	if c.RefreshOnView && c.WriteTimeout > 0 && (c.FetchTimeout == 0 || c.WriteTimeout <= c.FetchTimeout) {
		return fmt.Errorf("WRITE_TIMEOUT (%s) must exceed FETCH_TIMEOUT (%s) when REFRESH_ON_VIEW is enabled", c.WriteTimeout, c.FetchTimeout)
	}
	if c.TrackerEnabled {
		if u, err := url.Parse(c.TrackerRedirectURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("TRACKER_REDIRECT_URL must be an absolute URL, got %q", c.TrackerRedirectURL)
		}
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv 获取整数类型的环境变量
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv 获取布尔类型的环境变量
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDurationEnv 获取时间间隔类型的环境变量（秒）
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return time.Duration(intValue) * time.Second
		}
	}
	return defaultValue
}

// GetLogger 获取共享日志记录器
func (c *Config) GetLogger() *logger.Logger {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.loggerLocked()
}

func (c *Config) loggerLocked() *logger.Logger {
	if c.log == nil {
		c.log = logger.NewLogger(c.LogLevel)
	}
	return c.log
}

// GetRegion 获取页面上的输出区域
func (c *Config) GetRegion() *render.Region {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.regionLocked()
}

func (c *Config) regionLocked() *render.Region {
	if c.region == nil {
		c.region = render.NewRegion(c.TargetID)
	}
	return c.region
}

// GetRenderer 获取写入页面输出区域的 Renderer
func (c *Config) GetRenderer() *render.Renderer {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.renderer == nil {
		log := c.loggerLocked()
		c.renderer = render.New(c.ClicksURL, c.HTTPClient(), c.regionLocked(), log, render.WithLogger(log))
	}
	return c.renderer
}

// HTTPClient 按配置创建拉取用的客户端
func (c *Config) HTTPClient() httpclient.Doer {
	return httpclient.NewClient(httpclient.Options{
		Timeout:             c.FetchTimeout,
		MaxIdleConns:        c.MaxIdleConns,
		MaxIdleConnsPerHost: c.MaxIdleConnsPerHost,
		IdleConnTimeout:     c.IdleConnTimeout,
	})
}
