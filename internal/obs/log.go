package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// Log output is one JSON document per line on stdout. The request middleware
// and the audit trail both write through Logger so their lines interleave
// without tearing.

var (
	loggerOnce sync.Once
	logger     *log.Logger
)

// Logger returns the process-wide line writer. Callers marshal their own
// payload; the logger adds nothing but the newline.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stdout, "", 0)
	})
	return logger
}

// LogRequest emits one access-log line. The middleware supplies request_id,
// method, path, status, duration_ms and remote; the timestamp and the line
// type are stamped here so every access line carries them.
func LogRequest(entry map[string]any) {
	if entry == nil {
		entry = make(map[string]any)
	}
	if _, ok := entry["ts"]; !ok {
		entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if _, ok := entry["type"]; !ok {
		entry["type"] = "http_request"
	}
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"type":"log_error","msg":"access log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}
