package backend

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// #endregion imports

// #region request

// Request is one text-generation call.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// Generator is the text-generation capability the agent depends on.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// #endregion request

// #region errors

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("backend: empty response")

// StatusError is a non-success reply from an HTTP-style backend.
type StatusError struct {
	Backend string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s error: %d %s", e.Backend, e.Code, e.Body)
}

// #endregion errors

// #region config

const (
	KindOpenAI  = "openai"
	KindBedrock = "bedrock"
	KindCodec   = "codec"
)

// Config selects and configures one backend.
type Config struct {
	Kind      string
	Model     string
	BaseURL   string
	APIKey    string
	CodecAddr string
	Region    string
	Timeout   time.Duration
}

// New builds the backend named by cfg.Kind.
func New(ctx context.Context, cfg Config) (Generator, error) {
	log.Printf("[BACKEND] kind=%s model=%s", cfg.Kind, cfg.Model)
	switch cfg.Kind {
	case KindOpenAI:
		return NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout)
	case KindBedrock:
		return NewBedrock(ctx, cfg.Region, cfg.Model)
	case KindCodec:
		return NewCodec(cfg.CodecAddr, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Kind)
	}
}

// #endregion config
