// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grpc

import (
	"context"
	"fmt"

	"github.com/eam2011/bsp/pkg/crg"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client talks to a remote ClockService.
type Client struct {
	cc *grpc.ClientConn
}

func Dial(ctx context.Context, target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithInsecure()}, opts...)
	cc, err := grpc.DialContext(ctx, target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %v", target, err)
	}
	return &Client{cc}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// fromStatus turns a gRPC status back into the clock tree error it came
// from, so callers can keep using errors.Is.
func fromStatus(err error) error {
	s, ok := status.FromError(err)
	if !ok {
		return err
	}
	var base error
	switch s.Code() {
	case codes.InvalidArgument:
		base = crg.ErrInvalidParameter
	case codes.NotFound:
		base = crg.ErrNotFound
	case codes.FailedPrecondition:
		base = crg.ErrInvalidOperation
	case codes.DeadlineExceeded:
		base = crg.ErrTimeout
	case codes.Unknown:
		base = crg.ErrGeneric
	default:
		return err
	}
	return fmt.Errorf("remote: %s: %w", s.Message(), base)
}

func (c *Client) invoke(ctx context.Context, method string, in, out wireMessage) error {
	reply := out.toWire()
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in.toWire(), reply); err != nil {
		return fromStatus(err)
	}
	out.fromWire(reply)
	return nil
}

func (c *Client) GetFreq(ctx context.Context, clock string) (uint32, error) {
	var r FrequencyResponse
	if err := c.invoke(ctx, "GetFrequency", &ClockRequest{clock}, &r); err != nil {
		return 0, err
	}
	return r.Hz, nil
}

func (c *Client) GetParent(ctx context.Context, clock string) (string, error) {
	var r ParentResponse
	if err := c.invoke(ctx, "GetParent", &ClockRequest{clock}, &r); err != nil {
		return "", err
	}
	return r.Parent, nil
}

func (c *Client) SetParent(ctx context.Context, clock, parent string) error {
	return c.invoke(ctx, "SetParent", &ParentRequest{clock, parent}, &Empty{})
}

func (c *Client) GetClkDivider(ctx context.Context, clock string) (uint32, error) {
	var r DividerResponse
	if err := c.invoke(ctx, "GetDivider", &ClockRequest{clock}, &r); err != nil {
		return 0, err
	}
	return r.Ratio, nil
}

func (c *Client) ClockEnable(ctx context.Context, clock string, enable bool) error {
	return c.invoke(ctx, "EnableClock", &EnableRequest{clock, enable}, &Empty{})
}
