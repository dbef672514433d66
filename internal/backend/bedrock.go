package backend

// #region imports
import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// #endregion imports

// #region family

// Family is one vendor's request/response body format on Bedrock.
type Family interface {
	Name() string
	Encode(req Request) ([]byte, error)
	Decode(body []byte) (string, error)
}

// Model is a catalogue entry: a Bedrock model ID and its body format.
type Model struct {
	ID     string
	Family Family
}

// Catalogue maps the configurable model keys to Bedrock models.
var Catalogue = map[string]Model{
	"claude_3_opus":   {"anthropic.claude-3-opus-20240229-v1:0", anthropicMessages{}},
	"claude_3_sonnet": {"anthropic.claude-3-sonnet-20240229-v1:0", anthropicMessages{}},
	"claude_3_haiku":  {"anthropic.claude-3-haiku-20240307-v1:0", anthropicMessages{}},
	"claude_2_1":      {"anthropic.claude-v2:1", anthropicText{}},
	"claude_2":        {"anthropic.claude-v2", anthropicText{}},
	"claude_instant":  {"anthropic.claude-instant-v1", anthropicText{}},
	"mistral_large":   {"mistral.mistral-large-2402-v1:0", mistral{instruct: true}},
	"mistral_8x7b":    {"mistral.mixtral-8x7b-instruct-v0:1", mistral{}},
	"mistral_7b":      {"mistral.mistral-7b-instruct-v0:2", mistral{}},
	"ai21_ultra":      {"ai21.j2-ultra-v1", ai21{}},
	"ai21_mid":        {"ai21.j2-mid-v1", ai21{}},
	"cohere_command":  {"cohere.command-text-v14", cohere{}},
	"cohere_light":    {"cohere.command-light-text-v14", cohere{}},
	"titan_express":   {"amazon.titan-text-express-v1", titan{}},
	"titan_lite":      {"amazon.titan-text-lite-v1", titan{}},
	"llama2_13b":      {"meta.llama2-13b-chat-v1", llama{}},
	"llama2_70b":      {"meta.llama2-70b-chat-v1", llama{}},
}

// ModelKeys lists the catalogue keys in sorted order.
func ModelKeys() []string {
	keys := make([]string, 0, len(Catalogue))
	for k := range Catalogue {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func maxTokens(req Request, def int) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return def
}

func firstText(texts []string, family string) (string, error) {
	if len(texts) == 0 || strings.TrimSpace(texts[0]) == "" {
		return "", fmt.Errorf("%s: %w", family, ErrEmptyResponse)
	}
	return texts[0], nil
}

// #endregion family

// #region anthropic

type anthropicMessages struct{}

func (anthropicMessages) Name() string { return "anthropic-messages" }

func (anthropicMessages) Encode(req Request) ([]byte, error) {
	type content struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	type message struct {
		Role    string    `json:"role"`
		Content []content `json:"content"`
	}
	return json.Marshal(struct {
		Version     string    `json:"anthropic_version"`
		MaxTokens   int       `json:"max_tokens"`
		System      string    `json:"system"`
		Temperature float64   `json:"temperature"`
		Messages    []message `json:"messages"`
	}{
		Version:     "bedrock-2023-05-31",
		MaxTokens:   maxTokens(req, 4096),
		System:      req.System,
		Temperature: req.Temperature,
		Messages:    []message{{Role: "user", Content: []content{{Type: "text", Text: req.User}}}},
	})
}

func (f anthropicMessages) Decode(body []byte) (string, error) {
	var out struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%s: %w", f.Name(), err)
	}
	texts := make([]string, len(out.Content))
	for i, c := range out.Content {
		texts[i] = c.Text
	}
	return firstText(texts, f.Name())
}

type anthropicText struct{}

func (anthropicText) Name() string { return "anthropic-text" }

func (anthropicText) Encode(req Request) ([]byte, error) {
	return json.Marshal(map[string]any{
		"prompt":               "\n\nHuman: " + req.System + req.User + "\n\nAssistant:",
		"max_tokens_to_sample": maxTokens(req, 4096),
		"temperature":          req.Temperature,
		"top_k":                250,
		"top_p":                0.5,
		"stop_sequences":       []string{},
	})
}

func (f anthropicText) Decode(body []byte) (string, error) {
	var out struct {
		Completion string `json:"completion"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%s: %w", f.Name(), err)
	}
	return firstText([]string{out.Completion}, f.Name())
}

// #endregion anthropic

// #region mistral

type mistral struct {
	instruct bool // wrap in [INST] markers
}

func (mistral) Name() string { return "mistral" }

func (m mistral) Encode(req Request) ([]byte, error) {
	prompt := req.System + req.User
	if m.instruct {
		prompt = "<s>[INST]" + req.System + " " + req.User + "[/INST]"
	}
	return json.Marshal(map[string]any{
		"prompt":      prompt,
		"max_tokens":  maxTokens(req, 4096),
		"temperature": req.Temperature,
		"top_p":       0.8,
	})
}

func (m mistral) Decode(body []byte) (string, error) {
	var out struct {
		Outputs []struct {
			Text string `json:"text"`
		} `json:"outputs"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%s: %w", m.Name(), err)
	}
	texts := make([]string, len(out.Outputs))
	for i, o := range out.Outputs {
		texts[i] = o.Text
	}
	return firstText(texts, m.Name())
}

// #endregion mistral

// #region ai21

type ai21 struct{}

func (ai21) Name() string { return "ai21" }

func (ai21) Encode(req Request) ([]byte, error) {
	return json.Marshal(map[string]any{
		"prompt":        req.System + req.User,
		"maxTokens":     maxTokens(req, 5147),
		"temperature":   req.Temperature,
		"stopSequences": []string{},
	})
}

func (f ai21) Decode(body []byte) (string, error) {
	var out struct {
		Completions []struct {
			Data struct {
				Text string `json:"text"`
			} `json:"data"`
		} `json:"completions"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%s: %w", f.Name(), err)
	}
	texts := make([]string, len(out.Completions))
	for i, c := range out.Completions {
		texts[i] = c.Data.Text
	}
	return firstText(texts, f.Name())
}

// #endregion ai21

// #region cohere

type cohere struct{}

func (cohere) Name() string { return "cohere" }

func (cohere) Encode(req Request) ([]byte, error) {
	return json.Marshal(map[string]any{
		"prompt":      req.System + req.User,
		"max_tokens":  maxTokens(req, 2048),
		"temperature": req.Temperature,
	})
}

func (f cohere) Decode(body []byte) (string, error) {
	var out struct {
		Generations []struct {
			Text string `json:"text"`
		} `json:"generations"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%s: %w", f.Name(), err)
	}
	texts := make([]string, len(out.Generations))
	for i, g := range out.Generations {
		texts[i] = g.Text
	}
	return firstText(texts, f.Name())
}

// #endregion cohere

// #region titan

type titan struct{}

func (titan) Name() string { return "titan" }

func (titan) Encode(req Request) ([]byte, error) {
	return json.Marshal(map[string]any{
		"inputText": req.System + req.User,
		"textGenerationConfig": map[string]any{
			"maxTokenCount": maxTokens(req, 4096),
			"stopSequences": []string{},
			"temperature":   req.Temperature,
			"topP":          1,
		},
	})
}

func (f titan) Decode(body []byte) (string, error) {
	var out struct {
		Results []struct {
			OutputText string `json:"outputText"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%s: %w", f.Name(), err)
	}
	texts := make([]string, len(out.Results))
	for i, r := range out.Results {
		texts[i] = r.OutputText
	}
	return firstText(texts, f.Name())
}

// #endregion titan

// #region llama

type llama struct{}

func (llama) Name() string { return "llama" }

func (llama) Encode(req Request) ([]byte, error) {
	return json.Marshal(map[string]any{
		"prompt":      req.System + req.User,
		"max_gen_len": maxTokens(req, 2048),
		"top_p":       0.9,
		"temperature": req.Temperature,
	})
}

func (f llama) Decode(body []byte) (string, error) {
	var out struct {
		Generation string `json:"generation"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%s: %w", f.Name(), err)
	}
	return firstText([]string{strings.TrimSpace(out.Generation)}, f.Name())
}

// #endregion llama

// #region client

// InvokeAPI is the slice of the Bedrock runtime client the backend uses.
type InvokeAPI interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Bedrock invokes one catalogue model through the Bedrock runtime.
type Bedrock struct {
	api   InvokeAPI
	model Model
}

// NewBedrock loads the default AWS credential chain for region and binds
// the catalogue model named by key.
func NewBedrock(ctx context.Context, region, key string) (*Bedrock, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewBedrockWithAPI(bedrockruntime.NewFromConfig(cfg), key)
}

// NewBedrockWithAPI binds a model to an injected runtime client.
// Used for testing without AWS credentials.
func NewBedrockWithAPI(api InvokeAPI, key string) (*Bedrock, error) {
	m, ok := Catalogue[key]
	if !ok {
		return nil, fmt.Errorf("unknown bedrock model %q (known: %s)", key, strings.Join(ModelKeys(), ", "))
	}
	return &Bedrock{api: api, model: m}, nil
}

// Generate encodes the request in the model family's format and decodes
// the reply text.
func (b *Bedrock) Generate(ctx context.Context, req Request) (string, error) {
	body, err := b.model.Family.Encode(req)
	if err != nil {
		return "", fmt.Errorf("encode %s body: %w", b.model.Family.Name(), err)
	}
	out, err := b.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.model.ID),
		Body:        body,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("invoke %s: %w", b.model.ID, err)
	}
	return b.model.Family.Decode(out.Body)
}

// #endregion client
