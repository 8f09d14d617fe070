package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config field-dashboard（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	Store struct {
		Backend    string // "excel" 或 "postgres"
		LogPath    string // Visit_Log.xlsx 路径
		MasterPath string // Master Data 工作簿路径
		PhotoDir   string // 照片存储目录
	}
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Database string
		SSLMode  string
	}
	Redis struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
	}
	Admin struct {
		Password string        // 共享口令（仅用于后台页面，不是安全边界）
		TokenTTL time.Duration // 后台会话 token 有效期
	}
	Backup struct {
		Enabled  bool
		URL      string // 远端对象存储上传地址
		Token    string // Bearer token（可选）
		Interval time.Duration
	}
	Location struct {
		Timeout time.Duration // 定位获取超时，超时回退为空坐标
	}
	Timezone string // 工单号/时间戳使用的统一时区
	Log      struct {
		Level  string
		Format string
	}
}

// GetDSN 获取数据库连接字符串
func (c *Config) GetDSN() string {
	return "host=" + c.Database.Host +
		" port=" + strconv.Itoa(c.Database.Port) +
		" user=" + c.Database.User +
		" password=" + c.Database.Password +
		" dbname=" + c.Database.Database +
		" sslmode=" + c.Database.SSLMode
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.Store.Backend = getEnv("STORE_BACKEND", "excel")
	cfg.Store.LogPath = getEnv("VISIT_LOG_PATH", "Visit_Log.xlsx")
	cfg.Store.MasterPath = getEnv("MASTER_DATA_PATH", "Master Data New.xlsx")
	cfg.Store.PhotoDir = getEnv("PHOTO_DIR", "Photos")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "fieldvisits")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Admin.Password = getEnv("ADMIN_PASSWORD", "noc123")
	cfg.Admin.TokenTTL = time.Duration(parseInt(getEnv("ADMIN_TOKEN_TTL_MIN", "60"), 60)) * time.Minute

	cfg.Backup.Enabled = getEnv("BACKUP_ENABLED", "false") == "true"
	cfg.Backup.URL = getEnv("BACKUP_URL", "")
	cfg.Backup.Token = getEnv("BACKUP_TOKEN", "")
	cfg.Backup.Interval = time.Duration(parseInt(getEnv("BACKUP_INTERVAL_MIN", "60"), 60)) * time.Minute

	cfg.Location.Timeout = time.Duration(parseInt(getEnv("LOCATION_TIMEOUT_SEC", "5"), 5)) * time.Second

	cfg.Timezone = getEnv("TIME_ZONE", "Pacific/Port_Moresby")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
