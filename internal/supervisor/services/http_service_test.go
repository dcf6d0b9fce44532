// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

func TestHTTPServerService_ServesAndShutsDown(t *testing.T) {
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":"healthy"}`)
		}),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(server, "127.0.0.1:0", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	addrCtx, addrCancel := context.WithTimeout(context.Background(), time.Second)
	defer addrCancel()
	addr, err := svc.Addr(addrCtx)
	if err != nil {
		t.Fatalf("Addr() error = %v", err)
	}

	resp, err := http.Get("http://" + addr.String() + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "healthy") {
		t.Errorf("body = %s", body)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestHTTPServerService_ListenError(t *testing.T) {
	t.Parallel()

	svc := NewHTTPServerService(&http.Server{ReadHeaderTimeout: time.Second}, "127.0.0.1:3000", 0)
	svc.listen = func(string, string) (net.Listener, error) {
		return nil, errors.New("address already in use")
	}

	err := svc.Serve(context.Background())
	if err == nil || !strings.Contains(err.Error(), "failed to listen on 127.0.0.1:3000") {
		t.Errorf("Serve() = %v", err)
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("default shutdown timeout = %v, want 10s", svc.shutdownTimeout)
	}
}

type failingServer struct {
	serveErr    error
	shutdownErr error
	stop        chan struct{}
}

func (f *failingServer) Serve(l net.Listener) error {
	defer l.Close()
	if f.serveErr != nil {
		return f.serveErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *failingServer) Shutdown(context.Context) error {
	close(f.stop)
	return f.shutdownErr
}

func TestHTTPServerService_Failures(t *testing.T) {
	t.Parallel()

	t.Run("serve error", func(t *testing.T) {
		t.Parallel()
		svc := NewHTTPServerService(&failingServer{serveErr: errors.New("boom"), stop: make(chan struct{})}, "127.0.0.1:0", time.Second)
		err := svc.Serve(context.Background())
		if err == nil || !strings.Contains(err.Error(), "http server failed: boom") {
			t.Errorf("Serve() = %v", err)
		}
	})

	t.Run("shutdown error", func(t *testing.T) {
		t.Parallel()
		svc := NewHTTPServerService(&failingServer{shutdownErr: errors.New("stuck"), stop: make(chan struct{})}, "127.0.0.1:0", time.Second)
		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
		defer waitCancel()
		if _, err := svc.Addr(waitCtx); err != nil {
			t.Fatalf("Addr() error = %v", err)
		}
		cancel()

		if err := <-errCh; err == nil || !strings.Contains(err.Error(), "shutdown failed: stuck") {
			t.Errorf("Serve() = %v", err)
		}
	})
}

func TestHTTPServerService_AddrCanceled(t *testing.T) {
	t.Parallel()

	svc := NewHTTPServerService(&failingServer{stop: make(chan struct{})}, "127.0.0.1:0", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Addr(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Addr() = %v, want context.Canceled", err)
	}
	if svc.String() != "http-server" {
		t.Errorf("String() = %q", svc.String())
	}
}
