package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// Client is a thin wrapper over a gRPC connection to a query service,
// pinned to the gob content-subtype the hand-written codec registers under.
type Client struct {
	cc *grpc.ClientConn
}

// Dial connects to a query service at addr.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)
	cc, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc}, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.cc.Close()
}

// Distance issues a single Distance RPC.
func (c *Client) Distance(ctx context.Context, u, v int64) (*DistanceReply, error) {
	req := &DistanceRequest{U: u, V: v}
	reply := new(DistanceReply)
	err := c.cc.Invoke(ctx, "/coretree.QueryService/Distance", req, reply)
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// BatchDistance opens a BatchDistance bidirectional stream.
func (c *Client) BatchDistance(ctx context.Context) (QueryService_BatchDistanceClient, error) {
	stream, err := c.cc.NewStream(ctx, &queryServiceDesc.Streams[0], "/coretree.QueryService/BatchDistance")
	if err != nil {
		return nil, err
	}
	return &queryServiceBatchDistanceClient{stream}, nil
}

// QueryService_BatchDistanceClient is the client-side handle for the
// BatchDistance stream.
type QueryService_BatchDistanceClient interface {
	Send(*DistanceRequest) error
	Recv() (*DistanceReply, error)
	grpc.ClientStream
}

type queryServiceBatchDistanceClient struct {
	grpc.ClientStream
}

func (x *queryServiceBatchDistanceClient) Send(m *DistanceRequest) error {
	return x.ClientStream.SendMsg(m)
}

func (x *queryServiceBatchDistanceClient) Recv() (*DistanceReply, error) {
	m := new(DistanceReply)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
