// Copyright 2018 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grpc

import (
	"context"
	"errors"
	"net"

	"github.com/eam2011/bsp/pkg/crg"
	"github.com/eam2011/bsp/pkg/logger"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

const serviceName = protoPackage + ".ClockService"

type ClockRequest struct {
	Clock string
}

type FrequencyResponse struct {
	Clock string
	Hz    uint32
}

type ParentRequest struct {
	Clock  string
	Parent string
}

type ParentResponse struct {
	Clock  string
	Parent string
}

type DividerResponse struct {
	Clock string
	Ratio uint32
}

type EnableRequest struct {
	Clock  string
	Enable bool
}

type Empty struct{}

// ClockServiceServer is the remote subset of the clock tree API.
type ClockServiceServer interface {
	GetFrequency(context.Context, *ClockRequest) (*FrequencyResponse, error)
	GetParent(context.Context, *ClockRequest) (*ParentResponse, error)
	SetParent(context.Context, *ParentRequest) (*Empty, error)
	GetDivider(context.Context, *ClockRequest) (*DividerResponse, error)
	EnableClock(context.Context, *EnableRequest) (*Empty, error)
}

type clockServer struct {
	tree *crg.Guarded
}

var (
	log = logger.LogContainer.GetSimpleLogger()
	// Requests that change the tree are logged with fields so they can be
	// picked out of the JSON log file.
	audit = logger.LogContainer.GetLogger()
	lc    = &logger.LogContainer
)

// toStatus maps clock tree errors onto gRPC codes.
func toStatus(err error) error {
	c := codes.Unknown
	switch {
	case errors.Is(err, crg.ErrInvalidParameter):
		c = codes.InvalidArgument
	case errors.Is(err, crg.ErrNotFound):
		c = codes.NotFound
	case errors.Is(err, crg.ErrInvalidOperation):
		c = codes.FailedPrecondition
	case errors.Is(err, crg.ErrTimeout):
		c = codes.DeadlineExceeded
	}
	return status.Error(c, err.Error())
}

func (m *clockServer) GetFrequency(ctx context.Context, r *ClockRequest) (*FrequencyResponse, error) {
	n, err := crg.ParseName(r.Clock)
	if err != nil {
		return nil, toStatus(err)
	}
	hz, err := m.tree.GetFreq(n)
	if err != nil {
		return nil, toStatus(err)
	}
	audit.Debug("Remote frequency", lc.String("clock", n.String()), lc.Int("hz", int(hz)))
	return &FrequencyResponse{Clock: n.String(), Hz: hz}, nil
}

func (m *clockServer) GetParent(ctx context.Context, r *ClockRequest) (*ParentResponse, error) {
	n, err := crg.ParseName(r.Clock)
	if err != nil {
		return nil, toStatus(err)
	}
	p, err := m.tree.GetParent(n)
	if err != nil {
		return nil, toStatus(err)
	}
	return &ParentResponse{Clock: n.String(), Parent: p.String()}, nil
}

func (m *clockServer) SetParent(ctx context.Context, r *ParentRequest) (*Empty, error) {
	n, err := crg.ParseName(r.Clock)
	if err != nil {
		return nil, toStatus(err)
	}
	p, err := crg.ParseName(r.Parent)
	if err != nil {
		return nil, toStatus(err)
	}
	audit.Info("Remote set parent", lc.String("clock", n.String()), lc.String("parent", p.String()))
	if err := m.tree.SetParent(n, p); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

func (m *clockServer) GetDivider(ctx context.Context, r *ClockRequest) (*DividerResponse, error) {
	n, err := crg.ParseName(r.Clock)
	if err != nil {
		return nil, toStatus(err)
	}
	d, err := m.tree.GetClkDivider(n)
	if err != nil {
		return nil, toStatus(err)
	}
	return &DividerResponse{Clock: n.String(), Ratio: d}, nil
}

func (m *clockServer) EnableClock(ctx context.Context, r *EnableRequest) (*Empty, error) {
	n, err := crg.ParseName(r.Clock)
	if err != nil {
		return nil, toStatus(err)
	}
	state := 0
	if r.Enable {
		state = 1
	}
	audit.Info("Remote gate", lc.String("clock", n.String()), lc.Int("enable", state))
	if err := m.tree.ClockEnable(n, r.Enable); err != nil {
		return nil, toStatus(err)
	}
	return &Empty{}, nil
}

// unary builds the method descriptor for call. Requests and responses cross
// the wire as dynamic protobuf messages described by clockFile.
func unary[Req, Resp any, PReq interface {
	*Req
	wireMessage
}, PResp interface {
	*Resp
	wireMessage
}](method string, call func(ClockServiceServer, context.Context, PReq) (PResp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			req := PReq(new(Req))
			in := req.toWire()
			if err := dec(in); err != nil {
				return nil, err
			}
			req.fromWire(in)
			handler := func(ctx context.Context, r interface{}) (interface{}, error) {
				resp, err := call(srv.(ClockServiceServer), ctx, r.(PReq))
				if err != nil {
					return nil, err
				}
				return resp.toWire(), nil
			}
			if interceptor == nil {
				return handler(ctx, req)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + serviceName + "/" + method,
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}

var clockServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ClockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary[ClockRequest, FrequencyResponse]("GetFrequency", ClockServiceServer.GetFrequency),
		unary[ClockRequest, ParentResponse]("GetParent", ClockServiceServer.GetParent),
		unary[ParentRequest, Empty]("SetParent", ClockServiceServer.SetParent),
		unary[ClockRequest, DividerResponse]("GetDivider", ClockServiceServer.GetDivider),
		unary[EnableRequest, Empty]("EnableClock", ClockServiceServer.EnableClock),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}

func RegisterClockServiceServer(s *grpc.Server, srv ClockServiceServer) {
	s.RegisterService(&clockServiceDesc, srv)
}

// NewServer returns a gRPC server exporting tree with prometheus
// interceptors and reflection enabled.
func NewServer(tree *crg.Guarded) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.StreamInterceptor(grpc_prometheus.StreamServerInterceptor),
		grpc.UnaryInterceptor(grpc_prometheus.UnaryServerInterceptor),
	}
	gServ := grpc.NewServer(opts...)
	RegisterClockServiceServer(gServ, &clockServer{tree})
	grpc_prometheus.Register(gServ)
	reflection.Register(gServ)
	return gServ
}

// Serve runs the clock service on l until ctx is done.
func Serve(ctx context.Context, l net.Listener, tree *crg.Guarded) error {
	gServ := NewServer(tree)
	go func() {
		<-ctx.Done()
		gServ.GracefulStop()
	}()
	log.Infof("Clock service listening on %v", l.Addr())
	err := gServ.Serve(l)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
