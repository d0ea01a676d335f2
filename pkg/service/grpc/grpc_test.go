// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grpc

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eam2011/bsp/pkg/crg"
	"github.com/eam2011/bsp/pkg/hardware/eam2011"
	"github.com/eam2011/bsp/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	pt "github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	rpb "google.golang.org/grpc/reflection/grpc_reflection_v1alpha"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

func newClient(t *testing.T) (*Client, *eam2011.RegisterFile) {
	t.Helper()
	r := eam2011.NewRegisterFile()
	g := crg.NewGuarded(crg.New(eam2011.OpenWithMemory(r)))
	l := bufconn.Listen(1 << 20)
	s := NewServer(g)
	go s.Serve(l)
	t.Cleanup(s.Stop)
	c, err := Dial(context.Background(), "bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return l.Dial()
		}))
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, r
}

func TestGetFrequency(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()
	hz, err := c.GetFreq(ctx, "apb")
	if err != nil {
		t.Fatalf("GetFreq: %v", err)
	}
	if hz != crg.FROSC_HZ {
		t.Errorf("Expected APB at %d Hz, got %d", crg.FROSC_HZ, hz)
	}
	if _, err := c.GetFreq(ctx, "NOPE_CLK"); !errors.Is(err, crg.ErrInvalidParameter) {
		t.Errorf("Expected ErrInvalidParameter, got %v", err)
	}
}

func TestSetParent(t *testing.T) {
	c, r := newClient(t)
	ctx := context.Background()
	if err := c.SetParent(ctx, "WORK_CLK", "SROSC_CLK"); err != nil {
		t.Fatalf("SetParent: %v", err)
	}
	if v := r.Get(eam2011.CRG_BASE + eam2011.CRG_WORK_CLK_SEL); v != eam2011.WORK_SRC_SROSC {
		t.Errorf("Expected work clock selector %d, got %d", eam2011.WORK_SRC_SROSC, v)
	}
	p, err := c.GetParent(ctx, "WORK_CLK")
	if err != nil || p != "SROSC_CLK" {
		t.Errorf("GetParent = %q, %v", p, err)
	}
	if err := c.SetParent(ctx, "BUS_CLK", "WORK_CLK"); !errors.Is(err, crg.ErrInvalidOperation) {
		t.Errorf("Expected ErrInvalidOperation, got %v", err)
	}
	if err := c.SetParent(ctx, "WORK_CLK", "APB_CLK"); !errors.Is(err, crg.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDividerAndGate(t *testing.T) {
	c, r := newClient(t)
	ctx := context.Background()
	r.Set(eam2011.CRG_BASE+eam2011.CRG_CLK_DIV0, 0x7)
	if d, err := c.GetClkDivider(ctx, "CPU_CORE_CLK"); err != nil || d != 8 {
		t.Errorf("GetClkDivider = %d, %v", d, err)
	}
	if err := c.ClockEnable(ctx, "GPIO_CLK", true); err != nil {
		t.Fatalf("ClockEnable: %v", err)
	}
	if v := r.Get(eam2011.CRG_BASE + eam2011.CRG_CLK_GATE0); v != 1<<4 {
		t.Errorf("Expected GPIO gate bit, got %#x", v)
	}
	if err := c.ClockEnable(ctx, "APB_CLK", true); !errors.Is(err, crg.ErrGeneric) {
		t.Errorf("Expected ErrGeneric, got %v", err)
	}
}

func TestToStatus(t *testing.T) {
	for _, tc := range []struct {
		err  error
		code codes.Code
	}{
		{crg.ErrInvalidParameter, codes.InvalidArgument},
		{crg.ErrNotFound, codes.NotFound},
		{crg.ErrInvalidOperation, codes.FailedPrecondition},
		{crg.ErrTimeout, codes.DeadlineExceeded},
		{crg.ErrGeneric, codes.Unknown},
	} {
		if c := status.Code(toStatus(tc.err)); c != tc.code {
			t.Errorf("toStatus(%v) = %v, want %v", tc.err, c, tc.code)
		}
		if err := fromStatus(toStatus(tc.err)); !errors.Is(err, tc.err) {
			t.Errorf("fromStatus round trip of %v gave %v", tc.err, err)
		}
	}
}

func TestServerMetrics(t *testing.T) {
	c, _ := newClient(t)
	if _, err := c.GetFreq(context.Background(), "FROSC_CLK"); err != nil {
		t.Fatal(err)
	}
	n, err := pt.GatherAndCount(prometheus.DefaultGatherer, "grpc_server_handled_total")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if n == 0 {
		t.Errorf("Expected grpc_server_handled_total series")
	}
}

func TestReflection(t *testing.T) {
	c, _ := newClient(t)
	stream, err := rpb.NewServerReflectionClient(c.cc).ServerReflectionInfo(context.Background())
	if err != nil {
		t.Fatalf("ServerReflectionInfo: %v", err)
	}
	defer stream.CloseSend()

	if err := stream.Send(&rpb.ServerReflectionRequest{
		MessageRequest: &rpb.ServerReflectionRequest_ListServices{ListServices: "*"},
	}); err != nil {
		t.Fatal(err)
	}
	resp, err := stream.Recv()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, s := range resp.GetListServicesResponse().GetService() {
		if s.GetName() == "eam2011.crg.ClockService" {
			found = true
		}
	}
	if !found {
		t.Errorf("ClockService not listed: %v", resp.GetListServicesResponse())
	}

	for _, sym := range []string{"eam2011.crg.ClockService", "eam2011.crg.ClockService.SetParent"} {
		if err := stream.Send(&rpb.ServerReflectionRequest{
			MessageRequest: &rpb.ServerReflectionRequest_FileContainingSymbol{FileContainingSymbol: sym},
		}); err != nil {
			t.Fatal(err)
		}
		resp, err := stream.Recv()
		if err != nil {
			t.Fatal(err)
		}
		if e := resp.GetErrorResponse(); e != nil {
			t.Fatalf("%s: %v", sym, e.GetErrorMessage())
		}
		fds := resp.GetFileDescriptorResponse().GetFileDescriptorProto()
		if len(fds) == 0 {
			t.Fatalf("%s: no file descriptor", sym)
		}
		var fd descriptorpb.FileDescriptorProto
		if err := proto.Unmarshal(fds[0], &fd); err != nil {
			t.Fatalf("%s: %v", sym, err)
		}
		if fd.GetName() != "eam2011/crg/clock.proto" || fd.GetPackage() != "eam2011.crg" {
			t.Errorf("%s: got file %q package %q", sym, fd.GetName(), fd.GetPackage())
		}
		if len(fd.GetService()) != 1 || len(fd.GetService()[0].GetMethod()) != 5 {
			t.Errorf("%s: unexpected services %v", sym, fd.GetService())
		}
	}
}

// A client that only knows the registered descriptors, like grpcurl, can
// call the service with the default proto codec.
func TestDynamicCall(t *testing.T) {
	c, _ := newClient(t)
	msg := func(name protoreflect.FullName) *dynamicpb.Message {
		d, err := protoregistry.GlobalFiles.FindDescriptorByName(name)
		if err != nil {
			t.Fatalf("FindDescriptorByName(%s): %v", name, err)
		}
		return dynamicpb.NewMessage(d.(protoreflect.MessageDescriptor))
	}
	in := msg("eam2011.crg.ClockRequest")
	in.Set(in.Descriptor().Fields().ByName("clock"), protoreflect.ValueOfString("FROSC_DIV4"))
	out := msg("eam2011.crg.FrequencyResponse")
	if err := c.cc.Invoke(context.Background(), "/eam2011.crg.ClockService/GetFrequency", in, out); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	fields := out.Descriptor().Fields()
	if hz := out.Get(fields.ByName("hz")).Uint(); hz != crg.FROSC_HZ/4 {
		t.Errorf("Expected %d Hz, got %d", crg.FROSC_HZ/4, hz)
	}
	if name := out.Get(fields.ByName("clock")).String(); name != "FROSC_DIV4_CLK" {
		t.Errorf("Expected FROSC_DIV4_CLK, got %q", name)
	}
}

func TestChangesLoggedWithFields(t *testing.T) {
	p := filepath.Join(t.TempDir(), "crg.log")
	if err := logger.SetLogFile(p); err != nil {
		t.Fatalf("SetLogFile: %v", err)
	}
	c, _ := newClient(t)
	ctx := context.Background()
	if err := c.SetParent(ctx, "WORK_CLK", "SROSC_CLK"); err != nil {
		t.Fatalf("SetParent: %v", err)
	}
	if err := c.ClockEnable(ctx, "SPI0_CLK", true); err != nil {
		t.Fatalf("ClockEnable: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{
		`"msg":"Remote set parent","clock":"WORK_CLK","parent":"SROSC_CLK"`,
		`"msg":"Remote gate","clock":"SPI0_CLK","enable":1`,
	} {
		if !strings.Contains(string(b), want) {
			t.Errorf("Expected %s in log, got %q", want, b)
		}
	}
}
