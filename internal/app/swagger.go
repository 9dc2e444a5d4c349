package app

import (
	"strings"

	"ems/internal/config"
)

const defaultSwaggerHost = "localhost:5000"

// SwaggerURL is where the API docs are served. SWAGGER_HOST may carry a
// scheme; bare hosts are assumed to be plain http.
func SwaggerURL(cfg *config.Config) string {
	host := strings.TrimRight(cfg.SwaggerHost, "/")
	if host == "" {
		host = defaultSwaggerHost
		if cfg.ServerPort != "" {
			host = "localhost:" + cfg.ServerPort
		}
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
