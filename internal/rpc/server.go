// Package rpc exposes the read-only query engine over gRPC, so query
// replicas can serve many concurrent clients without re-opening the index
// artifacts per request.
package rpc

import (
	"context"
	"io"

	"github.com/distlabel/coretree/internal/query"
)

// Server implements QueryServiceServer over a single loaded query.Engine.
type Server struct {
	Engine *query.Engine
}

// NewServer wraps engine for gRPC serving.
func NewServer(engine *query.Engine) *Server {
	return &Server{Engine: engine}
}

// Distance answers one distance query.
func (s *Server) Distance(ctx context.Context, req *DistanceRequest) (*DistanceReply, error) {
	d, err := s.Engine.Distance(int32(req.U), int32(req.V))
	if err != nil {
		return nil, err
	}
	return &DistanceReply{Distance: int64(d), Reachable: d < query.INF}, nil
}

// BatchDistance answers a stream of distance queries, one reply per request,
// in arrival order.
func (s *Server) BatchDistance(stream QueryService_BatchDistanceServer) error {
	for {
		req, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		d, err := s.Engine.Distance(int32(req.U), int32(req.V))
		if err != nil {
			return err
		}
		if err := stream.Send(&DistanceReply{Distance: int64(d), Reachable: d < query.INF}); err != nil {
			return err
		}
	}
}
