package customHttpClient

import (
	"net/http"
	"time"

	"github.com/nvaruna/RagChatServer/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// SharedClient is reused by the search tools and the summarizer so outbound
// calls keep their connections warm.
var SharedClient = &http.Client{
	Transport: customTransport,
	Timeout:   30 * time.Second,
}
