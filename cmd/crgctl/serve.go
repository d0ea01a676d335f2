// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eam2011/bsp/pkg/crg"
	"github.com/eam2011/bsp/pkg/metric"
	"github.com/eam2011/bsp/pkg/service/grpc"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveOpts = struct {
		metrics string
		grpc    string
		init    bool
	}{}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Export the clock tree over gRPC and prometheus",
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, done, err := openTree(true)
			if err != nil {
				return err
			}
			defer done()
			if serveOpts.init && !rootOpts.sim {
				if err := initTree(tree); err != nil {
					return err
				}
			}

			metricsAddr := conf.Metrics.Listen
			if serveOpts.metrics != "" {
				metricsAddr = serveOpts.metrics
			}
			grpcAddr := conf.GRPC.Listen
			if serveOpts.grpc != "" {
				grpcAddr = serveOpts.grpc
			}

			ml, err := net.Listen("tcp", metricsAddr)
			if err != nil {
				return err
			}
			gl, err := net.Listen("tcp", grpcAddr)
			if err != nil {
				ml.Close()
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, crg.NewGuarded(tree), ml, gl)
		},
	}
)

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveOpts.metrics, "metrics-listen", "", "Metrics listen address, overrides the configuration")
	f.StringVar(&serveOpts.grpc, "grpc-listen", "", "gRPC listen address, overrides the configuration")
	f.BoolVar(&serveOpts.init, "init", false, "Run the clock bring-up before serving")

	rootCmd.AddCommand(serveCmd)
}

// serve exports tree on the metrics and gRPC listeners until ctx is done.
// Both listeners are closed on return.
func serve(ctx context.Context, tree *crg.Guarded, ml, gl net.Listener) error {
	if err := metric.RegisterClocks(tree); err != nil {
		ml.Close()
		gl.Close()
		return err
	}

	mux := http.NewServeMux()
	metric.StartMetrics(mux)
	hs := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Metrics listening on %v", ml.Addr())
		if err := hs.Serve(ml); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return hs.Shutdown(sctx)
	})
	g.Go(func() error {
		return grpc.Serve(ctx, gl, tree)
	})
	return g.Wait()
}
