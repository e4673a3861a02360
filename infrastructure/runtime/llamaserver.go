package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ragline/ragline/domain/chat"
	"github.com/ragline/ragline/internal/config"
)

const (
	startupTimeout = 2 * time.Minute
	startupPoll    = 250 * time.Millisecond
)

// LlamaServer runs a GGUF model by spawning a llama-server subprocess and
// speaking the OpenAI chat protocol to it over loopback.
type LlamaServer struct {
	cmd       *exec.Cmd
	client    *openai.Client
	modelPath string
	logger    *slog.Logger

	// exited is closed by the waiter goroutine when the subprocess ends.
	exited chan struct{}
}

// NewLlamaServerFactory returns a Factory that spawns llama-server processes.
func NewLlamaServerFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, modelPath string, cfg config.RuntimeConfig) (Runtime, error) {
		return startLlamaServer(ctx, modelPath, cfg, logger)
	}
}

func startLlamaServer(ctx context.Context, modelPath string, cfg config.RuntimeConfig, logger *slog.Logger) (*LlamaServer, error) {
	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("allocate port: %w", err)
	}

	args := []string{
		"-m", modelPath,
		"--host", "127.0.0.1",
		"--port", strconv.Itoa(port),
		"-c", strconv.Itoa(cfg.ContextSize()),
		"-b", strconv.Itoa(cfg.BatchSize()),
		"-t", strconv.Itoa(cfg.Threads()),
		"-ngl", strconv.Itoa(cfg.GPULayers()),
	}

	// The subprocess outlives the request context: it is tied to the cache
	// entry, not to the call that triggered the load.
	cmd := exec.Command(cfg.ServerBin(), args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", cfg.ServerBin(), err)
	}

	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	if err := waitReady(ctx, baseURL, exited); err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}

	clientCfg := openai.DefaultConfig("local")
	clientCfg.BaseURL = baseURL + "/v1"

	logger.Info("llama-server ready", "model", modelPath, "port", port)

	return &LlamaServer{
		cmd:       cmd,
		client:    openai.NewClientWithConfig(clientCfg),
		modelPath: modelPath,
		logger:    logger,
		exited:    exited,
	}, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := l.Addr().(*net.TCPAddr).Port
	return port, l.Close()
}

// waitReady polls the server's health endpoint until it answers, the process
// exits, or the startup deadline passes. Model loading dominates startup time
// and scales with file size, hence the generous deadline.
func waitReady(ctx context.Context, baseURL string, exited <-chan struct{}) error {
	deadline := time.After(startupTimeout)
	httpClient := &http.Client{Timeout: startupPoll}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-exited:
			return fmt.Errorf("llama-server exited during startup")
		case <-deadline:
			return fmt.Errorf("llama-server not ready after %s", startupTimeout)
		case <-time.After(startupPoll):
		}

		resp, err := httpClient.Get(baseURL + "/health")
		if err != nil {
			continue
		}
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			return nil
		}
	}
}

// Complete generates an answer for the message exchange.
func (s *LlamaServer) Complete(ctx context.Context, messages []chat.Message, sampling config.SamplingConfig) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       "local",
		Temperature: float32(sampling.Temperature()),
		TopP:        float32(sampling.TopP()),
		MaxTokens:   sampling.MaxTokens(),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role(),
			Content: m.Content(),
		})
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Close terminates the subprocess and waits for it to exit.
func (s *LlamaServer) Close() error {
	if s.cmd.Process == nil {
		return nil
	}
	if err := s.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("kill llama-server: %w", err)
	}
	<-s.exited
	s.logger.Info("llama-server stopped", "model", s.modelPath)
	return nil
}

var _ Runtime = (*LlamaServer)(nil)
