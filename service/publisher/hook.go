package publisher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viant/afs/url"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	rssh "github.com/viant/gosh/runner/ssh"
	"github.com/viant/scy/cred/secret"
	"golang.org/x/crypto/ssh"
)

// Hook runs shell commands after a publication completes, typically
// refreshing a web server cache or rebuilding an index on the publish host.
// Commands may reference the publication through $(target), $(latest) and
// $(pack), replaced with the corresponding result URLs before execution.
type Hook struct {
	// HostURL identifies where commands run, e.g. bash://localhost/ or
	// ssh://deploy.example.com/
	HostURL string `json:"hostURL,omitempty" yaml:"hostURL,omitempty"`

	// Credentials names a secret resource providing SSH credentials for
	// remote hosts
	Credentials string `json:"credentials,omitempty" yaml:"credentials,omitempty"`

	Directory    string            `json:"directory,omitempty" yaml:"directory,omitempty"`
	Env          map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Commands     []string          `json:"commands,omitempty" yaml:"commands,omitempty"`
	TimeoutMs    int               `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	AbortOnError *bool             `json:"abortOnError,omitempty" yaml:"abortOnError,omitempty"`
}

func (h *Hook) init() {
	if h.HostURL == "" {
		h.HostURL = "bash://localhost/"
	}
}

func (h *Hook) expand(command string, result *Result) string {
	replacer := strings.NewReplacer(
		"$(target)", result.TargetURL,
		"$(latest)", result.LatestURL,
		"$(pack)", result.PackURL,
	)
	return replacer.Replace(command)
}

func (s *Service) runHook(ctx context.Context, hook *Hook, request *Request, result *Result) error {
	hook.init()
	session, err := s.hookSession(ctx, hook)
	if err != nil {
		return fmt.Errorf("failed to open hook session: %w", err)
	}
	defer session.Close()

	if hook.Directory != "" {
		if _, _, err := session.Run(ctx, fmt.Sprintf("cd %s", hook.Directory)); err != nil {
			return fmt.Errorf("failed to change directory: %w", err)
		}
	}

	abortOnError := true
	if hook.AbortOnError != nil {
		abortOnError = *hook.AbortOnError
	}
	timeout := time.Duration(hook.TimeoutMs) * time.Millisecond
	if timeout == 0 {
		timeout = time.Minute
	}

	for _, command := range hook.Commands {
		command = hook.expand(command, result)
		stdout, status, err := session.Run(ctx, command, runner.WithTimeout(int(timeout.Milliseconds())))
		if err != nil && abortOnError {
			return fmt.Errorf("hook command %q failed: %w", command, err)
		}
		if status != 0 && abortOnError {
			return fmt.Errorf("hook command %q exited with status %d: %s", command, status, strings.TrimSpace(stdout))
		}
	}
	return nil
}

func (s *Service) hookSession(ctx context.Context, hook *Hook) (*gosh.Service, error) {
	var envOptions []runner.Option
	if len(hook.Env) > 0 {
		envOptions = append(envOptions, runner.WithEnvironment(hook.Env))
	}
	if url.Host(hook.HostURL) == "localhost" {
		return gosh.New(ctx, local.New(envOptions...))
	}
	config, err := s.sshConfig(ctx, hook)
	if err != nil {
		return nil, fmt.Errorf("failed to get SSH config: %w", err)
	}
	sshHost := url.Host(hook.HostURL)
	if !strings.Contains(sshHost, ":") {
		sshHost += ":22"
	}
	return gosh.New(ctx, rssh.New(sshHost, config, envOptions...))
}

func (s *Service) sshConfig(ctx context.Context, hook *Hook) (*ssh.ClientConfig, error) {
	credentials := hook.Credentials
	if credentials == "" {
		credentials = "localhost"
	}
	secrets := secret.New()
	generic, err := secrets.GetCredentials(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return generic.SSH.Config(ctx)
}
