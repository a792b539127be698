package app

// 构建信息，发布时通过 -ldflags 注入。
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Config 存放应用级默认路径配置。
type Config struct {
	DBPath     string
	ConfigPath string
	ReportDir  string
}

// DefaultConfig 返回本地开发环境的默认配置。
func DefaultConfig() Config {
	return Config{
		DBPath:     "data/advisor.db",
		ConfigPath: "config/advisor.yaml",
		ReportDir:  "data/reports",
	}
}
