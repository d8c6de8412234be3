package server

import (
	nethttp "net/http"

	"go-referral/internal/conf"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server hosting the referral router.
func NewHTTPServer(c *conf.Server, router nethttp.Handler) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
	}
	if c.HTTP.Addr != "" {
		opts = append(opts, http.Address(c.HTTP.Addr))
	}
	if timeout := c.HTTP.Timeout.Std(0); timeout > 0 {
		opts = append(opts, http.Timeout(timeout))
	}
	srv := http.NewServer(opts...)
	srv.HandlePrefix("/", router)
	return srv
}
