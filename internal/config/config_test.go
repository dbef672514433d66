package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/battle-agent/internal/orchestrator"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"CODEC_ADDR", "AWS_REGION", "BATTLE_MODEL", "BATTLE_BACKEND"} {
		t.Setenv(k, "")
	}
	cfg, err := Load("", "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.Protocol() != orchestrator.ProtocolIO {
		t.Errorf("default protocol = %s", cfg.Protocol())
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "agent.yaml", `
backend: bedrock
model: claude_3_haiku
temperature: 0.3
prompt_algo: tot
log_dir: /tmp/battles
timeout: 15s
aws_region: eu-west-1
`)
	cfg, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != "bedrock" || cfg.Model != "claude_3_haiku" || cfg.Temperature != 0.3 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Protocol() != orchestrator.ProtocolToT || cfg.Timeout != 15*time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
	// untouched keys keep defaults
	if cfg.TraceDB != "battle_agent.db" {
		t.Errorf("trace_db = %q", cfg.TraceDB)
	}
	bc := cfg.BackendConfig()
	if bc.Kind != "bedrock" || bc.Region != "eu-west-1" {
		t.Errorf("backend config: %+v", bc)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "agent.yaml", "prompt_algo: cot\ntemperature: 0.2\n")
	t.Setenv("BATTLE_PROMPT_ALGO", "SC")
	t.Setenv("BATTLE_TEMPERATURE", "1.1")
	t.Setenv("BATTLE_TIMEOUT", "2s")

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Protocol() != orchestrator.ProtocolSC || cfg.Temperature != 1.1 || cfg.Timeout != 2*time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, ".env", "BATTLE_MODEL=llama3\nMY_KEY=sk-test\nBATTLE_API_KEY_ENV=MY_KEY\n")
	t.Cleanup(func() {
		os.Unsetenv("BATTLE_MODEL")
		os.Unsetenv("MY_KEY")
		os.Unsetenv("BATTLE_API_KEY_ENV")
	})

	cfg, err := Load("", env)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "llama3" {
		t.Errorf("model = %q", cfg.Model)
	}
	if got := cfg.BackendConfig().APIKey; got != "sk-test" {
		t.Errorf("api key = %q", got)
	}
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	if _, err := Load("", filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("missing .env should be ignored: %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"unknown backend", "backend: grpc-magic\n", nil},
		{"unknown protocol", "prompt_algo: minimax\n", nil},
		{"temperature range", "temperature: 3\n", nil},
		{"bad yaml", "backend: [\n", nil},
		{"bad env temperature", "", map[string]string{"BATTLE_TEMPERATURE": "hot"}},
		{"bad env timeout", "", map[string]string{"BATTLE_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, dir, "c.yaml", tt.yaml)
			if _, err := Load(path, ""); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), ""); err == nil {
		t.Error("expected error for missing config file")
	}
}
