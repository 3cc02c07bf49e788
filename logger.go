package enriched

import (
	"log"
	"os"
)

// Logger 全局日志记录器
var Logger = log.New(os.Stderr, "[enriched] ", log.LstdFlags)

// SetLogger 设置自定义日志记录器，传入 nil 关闭日志
func SetLogger(logger *log.Logger) {
	Logger = logger
}
