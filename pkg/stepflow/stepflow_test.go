package stepflow

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RealZimboGuy/stepflow/internal/config"
	"github.com/RealZimboGuy/stepflow/internal/engine"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/domain"
)

func TestNewService_Memory(t *testing.T) {
	t.Setenv(config.DATABASE_TYPE, config.DATABASE_TYPE_MEMORY)
	svc, err := NewService(context.Background())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	defer svc.Close()

	ctx := context.Background()
	id, err := svc.Manager.CreateWorkflow(ctx, "Sample", []domain.Step{
		{Name: "A", Type: domain.StepTypeSendEmail, DependsOn: []string{}},
	})
	if err != nil {
		t.Fatalf("CreateWorkflow failed: %v", err)
	}
	rec, err := svc.Manager.RunWorkflow(ctx, id)
	if err != nil {
		t.Fatalf("RunWorkflow failed: %v", err)
	}
	if s, _ := rec.StatusOf("A"); s != domain.StepStatusSuccess {
		t.Errorf("Expected success, got %q", s)
	}
}

func TestNewService_Sqlite(t *testing.T) {
	t.Setenv(config.DATABASE_TYPE, config.DATABASE_TYPE_SQLLITE)
	t.Setenv(config.DATABASE_SQLLITE_FILE_NAME, filepath.Join(t.TempDir(), "stepflow.db"))

	svc, err := NewService(context.Background())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	defer svc.Close()

	if _, err := svc.Manager.RunWorkflow(context.Background(), "missing"); !errors.Is(err, engine.ErrWorkflowNotFound) {
		t.Errorf("Expected ErrWorkflowNotFound, got %v", err)
	}
}

func TestNewService_Misconfigured(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown type":       {config.DATABASE_TYPE: "ORACLE"},
		"postgres no url":    {config.DATABASE_TYPE: config.DATABASE_TYPE_POSTGRES},
		"mysql bad scheme":   {config.DATABASE_TYPE: config.DATABASE_TYPE_MYSQL, config.DATABASE_URL: "root@tcp(localhost)/db?parseTime=true"},
		"mysql no parseTime": {config.DATABASE_TYPE: config.DATABASE_TYPE_MYSQL, config.DATABASE_URL: "mysql://root@tcp(localhost)/db"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(config.DATABASE_URL, "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := NewService(context.Background()); err == nil {
				t.Error("Expected a configuration error")
			}
		})
	}
}

func TestStart_ServesUntilCancelled(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	t.Setenv(config.DATABASE_TYPE, config.DATABASE_TYPE_MEMORY)
	t.Setenv("HTTP_ADDR", addr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Start(ctx, nil) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		resp, err = http.Get("http://" + addr + "/api/workflows")
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		cancel()
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil && !strings.Contains(err.Error(), "context canceled") {
			t.Errorf("Start returned %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestListenAddr(t *testing.T) {
	tests := []struct {
		name     string
		httpAddr string
		port     string
		want     string
	}{
		{"default port", "", "", ":8080"},
		{"configured port", "", "9191", ":9191"},
		{"invalid port", "", "web", ":8080"},
		{"port out of range", "", "70000", ":8080"},
		{"explicit address", "127.0.0.1:7000", "9191", "127.0.0.1:7000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HTTP_ADDR", tt.httpAddr)
			t.Setenv(config.SERVER_WEB_PORT, tt.port)
			if got := listenAddr(); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
