package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kluctl/go-embed-python/python"
)

// LocalConfig points a localProvider at an embedded Python runtime and a
// model-serving script supplied by the operator. Provisioning the actual
// model weights and the pip packages that load them is out of scope here;
// this wires the kluctl/go-embed-python runtime contract to whatever
// script and site-packages directory the caller configures.
type LocalConfig struct {
	// RuntimeDir holds the extracted embedded-Python distribution; reused
	// across runs when Persist is true.
	RuntimeDir string
	// SitePackagesDir is added to the interpreter's Python path via
	// AddPythonPath; it must already contain the embedding model and its
	// dependencies.
	SitePackagesDir string
	// ScriptPath is the Python HTTP server script to run under the
	// embedded interpreter.
	ScriptPath string
	// Port the script listens on.
	Port int
	// Persist keeps the extracted runtime on disk between processes.
	Persist bool
	// Model identifies the embedding model for metadata comparison.
	Model      string
	Dimensions int
}

type localProvider struct {
	cfg         LocalConfig
	cmd         *exec.Cmd
	client      *http.Client
	initialized bool
}

func newLocalProvider(cfg LocalConfig) (*localProvider, error) {
	if cfg.Port == 0 {
		cfg.Port = 8121
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 768
	}
	return &localProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Initialize starts the embedded-Python interpreter and the model-serving
// script, then waits for it to answer health checks.
func (p *localProvider) Initialize(ctx context.Context) error {
	if p.initialized {
		return nil
	}
	if p.cfg.SitePackagesDir == "" || p.cfg.ScriptPath == "" {
		return fmt.Errorf("embed: local provider requires SitePackagesDir and ScriptPath (model assets are provisioned externally)")
	}

	ep, err := python.NewEmbeddedPythonWithTmpDir(p.cfg.RuntimeDir, p.cfg.Persist)
	if err != nil {
		return fmt.Errorf("embed: create embedded python: %w", err)
	}
	ep.AddPythonPath(p.cfg.SitePackagesDir)

	cmd, err := ep.PythonCmd(p.cfg.ScriptPath)
	if err != nil {
		return fmt.Errorf("embed: build python command: %w", err)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("embed: start python server: %w", err)
	}
	p.cmd = cmd

	if err := p.waitForHealthy(ctx, 60*time.Second); err != nil {
		_ = p.cmd.Process.Kill()
		return fmt.Errorf("embed: server did not become healthy: %w", err)
	}
	p.initialized = true
	return nil
}

func (p *localProvider) isHealthy() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("http://127.0.0.1:%d/", p.cfg.Port), nil)
	resp, err := p.client.Do(req)
	if err == nil && resp.StatusCode == 200 {
		resp.Body.Close()
		return true
	}
	return false
}

func (p *localProvider) waitForHealthy(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for embedding server")
		case <-ticker.C:
			if p.isHealthy() {
				return nil
			}
		}
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
	Mode  string   `json:"mode"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (p *localProvider) Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error) {
	if !p.initialized {
		return nil, fmt.Errorf("embed: provider not initialized: call Initialize() first")
	}

	truncated := make([]string, len(texts))
	for i, t := range texts {
		truncated[i] = Truncate(t)
	}

	body, err := json.Marshal(embedRequest{Texts: truncated, Mode: string(mode)})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/embed", p.cfg.Port)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: server returned status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("embed: decode response: %w", err)
	}
	return out.Embeddings, nil
}

func (p *localProvider) Dimensions() int { return p.cfg.Dimensions }

func (p *localProvider) ModelID() string {
	if p.cfg.Model != "" {
		return p.cfg.Model
	}
	return filepath.Base(p.cfg.ScriptPath)
}

// Close stops the embedded interpreter's subprocess, SIGTERM first and
// SIGKILL after a grace period.
func (p *localProvider) Close() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return p.cmd.Process.Kill()
	}
}
