package docker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"
)

var ErrDockerUnavailable = errors.New("docker is not available")

type Container struct {
	ID       string
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

func (c *Container) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

type PostgresConfig struct {
	Version  string
	User     string
	Password string
	Database string
	Timeout  time.Duration
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Version:  "16",
		User:     "querygen",
		Password: "querygen",
		Database: "querygen",
		Timeout:  30 * time.Second,
	}
}

// Available reports whether the docker CLI can be found on PATH.
func Available() bool {
	_, err := exec.LookPath("docker")
	return err == nil
}

func StartPostgres(ctx context.Context, cfg PostgresConfig) (*Container, error) {
	if !Available() {
		return nil, ErrDockerUnavailable
	}

	port, err := findFreePort()
	if err != nil {
		return nil, fmt.Errorf("failed to find free port: %w", err)
	}

	cmd := exec.CommandContext(ctx, "docker", runArgs(cfg, port)...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to start container: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("failed to start container: %w", err)
	}

	container := &Container{
		ID:       strings.TrimSpace(string(output)),
		Host:     "localhost",
		Port:     port,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if err := waitForPostgres(ctx, container, timeout); err != nil {
		_ = StopContainer(context.Background(), container.ID)
		return nil, err
	}

	return container, nil
}

// WithPostgres starts a container, applies the given schema files in order
// and calls fn. The container is stopped when fn returns.
func WithPostgres(ctx context.Context, cfg PostgresConfig, schemaFiles []string, fn func(*Container) error) error {
	container, err := StartPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = StopContainer(context.Background(), container.ID)
	}()

	for _, path := range schemaFiles {
		if err := ExecuteSQLFile(ctx, container, path); err != nil {
			return err
		}
	}
	return fn(container)
}

func StopContainer(ctx context.Context, containerID string) error {
	cmd := exec.CommandContext(ctx, "docker", "stop", containerID)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	return nil
}

func runArgs(cfg PostgresConfig, port string) []string {
	return []string{
		"run", "-d",
		"--rm",
		"-e", fmt.Sprintf("POSTGRES_USER=%s", cfg.User),
		"-e", fmt.Sprintf("POSTGRES_PASSWORD=%s", cfg.Password),
		"-e", fmt.Sprintf("POSTGRES_DB=%s", cfg.Database),
		"-p", fmt.Sprintf("%s:5432", port),
		fmt.Sprintf("postgres:%s", cfg.Version),
	}
}

func waitForPostgres(ctx context.Context, container *Container, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cmd := exec.CommandContext(ctx, "docker", "exec", container.ID,
			"pg_isready", "-U", container.User, "-d", container.Database)

		if err := cmd.Run(); err == nil {
			return nil
		}

		time.Sleep(500 * time.Millisecond)
	}

	return fmt.Errorf("timeout waiting for postgres to be ready")
}

func ExecuteSQL(ctx context.Context, container *Container, sql string) error {
	cmd := exec.CommandContext(ctx, "docker", "exec", "-i", container.ID,
		"psql", "-U", container.User, "-d", container.Database, "-v", "ON_ERROR_STOP=1")

	cmd.Stdin = strings.NewReader(sql)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %s\n%w", string(output), err)
	}

	return nil
}

func ExecuteSQLFile(ctx context.Context, container *Container, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}
	if err := ExecuteSQL(ctx, container, string(data)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func findFreePort() (string, error) {
	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return "", err
	}
	defer func() { _ = listener.Close() }()

	addr := listener.Addr().(*net.TCPAddr)
	return fmt.Sprintf("%d", addr.Port), nil
}
