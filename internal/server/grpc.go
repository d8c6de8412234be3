package server

import (
	"go-referral/internal/conf"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/grpc"
)

// NewGRPCServer new a gRPC server. It exists only for orchestrator health
// checks: it carries the kratos health and reflection services and no
// referral API. Referral operations are served over HTTP.
func NewGRPCServer(c *conf.Server) *grpc.Server {
	var opts = []grpc.ServerOption{
		grpc.Middleware(
			recovery.Recovery(),
		),
	}
	if c.GRPC.Addr != "" {
		opts = append(opts, grpc.Address(c.GRPC.Addr))
	}
	if timeout := c.GRPC.Timeout.Std(0); timeout > 0 {
		opts = append(opts, grpc.Timeout(timeout))
	}
	return grpc.NewServer(opts...)
}
