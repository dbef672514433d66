package backend

// #region imports
import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #endregion imports

// GenerateMethod is the unary RPC served by the inference sidecar. Requests
// and replies are google.protobuf.Struct messages.
const GenerateMethod = "/battleagent.v1.TextService/Generate"

// #region client-struct

// Codec calls a local gRPC inference service.
type Codec struct {
	conn  *grpc.ClientConn
	cc    grpc.ClientConnInterface
	model string
}

// #endregion client-struct

// #region constructor

// NewCodec connects to the inference gRPC server.
func NewCodec(addr, model string) (*Codec, error) {
	if addr == "" {
		return nil, fmt.Errorf("codec: address not set")
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Codec{conn: conn, cc: conn, model: model}, nil
}

// NewCodecWithConn creates a Codec over an injected connection.
// Used for testing without a real server.
func NewCodecWithConn(cc grpc.ClientConnInterface, model string) *Codec {
	return &Codec{cc: cc, model: model}
}

// Close shuts down the gRPC connection.
func (c *Codec) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region generate

// Generate sends the prompts to the inference service.
func (c *Codec) Generate(ctx context.Context, req Request) (string, error) {
	in, err := structpb.NewStruct(map[string]any{
		"model":       c.model,
		"system":      req.System,
		"user":        req.User,
		"temperature": req.Temperature,
		"max_tokens":  req.MaxTokens,
		"json_mode":   req.JSONMode,
	})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}
	out := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, GenerateMethod, in, out); err != nil {
		return "", fmt.Errorf("generate rpc: %w", err)
	}
	text := out.GetFields()["text"].GetStringValue()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// #endregion generate
