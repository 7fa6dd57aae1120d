package oracle

import (
	"context"
	"encoding/json"
	"fmt"

	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"

	"google.golang.org/genai"
)

// GenAIConfig selects the Gemini backend. A project switches the client to Vertex AI.
type GenAIConfig struct {
	APIKey          string
	Project         string
	Location        string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// GenAIOracle runs specialists on Gemini models through Vertex AI or the Gemini API
type GenAIOracle struct {
	client *genai.Client
	config GenAIConfig
	log    logger.Logger
}

// NewGenAIOracle creates the client for the configured backend
func NewGenAIOracle(ctx context.Context, config GenAIConfig, log logger.Logger) (*GenAIOracle, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.Project != "" {
		clientConfig = &genai.ClientConfig{
			Project:  config.Project,
			Location: config.Location,
			Backend:  genai.BackendVertexAI,
		}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GenAIOracle{
		client: client,
		config: config,
		log:    log.With("oracle", "genai", "model", config.Model),
	}, nil
}

// Complete implements usecase.Oracle
func (o *GenAIOracle) Complete(ctx context.Context, request usecase.OracleRequest) (usecase.OracleReply, error) {
	config := &genai.GenerateContentConfig{}
	if o.config.Temperature > 0 {
		temperature := o.config.Temperature
		config.Temperature = &temperature
	}
	if o.config.MaxOutputTokens > 0 {
		config.MaxOutputTokens = o.config.MaxOutputTokens
	}
	if request.Instructions != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: request.Instructions}},
		}
	}
	if len(request.Tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: genaiDeclarations(request.Tools)}}
	}

	result, err := o.client.Models.GenerateContent(ctx, o.config.Model, genaiContents(request), config)
	if err != nil {
		return usecase.OracleReply{}, fmt.Errorf("Gemini GenerateContent failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return usecase.OracleReply{}, fmt.Errorf("empty response from Gemini")
	}

	reply := usecase.OracleReply{ToolCalls: fromGenAICalls(result.FunctionCalls(), len(request.Exchanges))}
	if len(reply.ToolCalls) == 0 {
		reply.Text = result.Text()
	}

	o.log.Debug("Response received", "specialist", request.Config.Specialist(), "toolCalls", len(reply.ToolCalls))
	return reply, nil
}

// genaiContents maps the thread onto user/model turns followed by the tool exchanges of this turn
func genaiContents(request usecase.OracleRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(request.History)+2*len(request.Exchanges))
	for _, m := range request.History {
		role := "user"
		if m.IsFromAssistant() {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Text}},
		})
	}

	for _, e := range request.Exchanges {
		contents = append(contents,
			&genai.Content{
				Role: "model",
				Parts: []*genai.Part{{
					FunctionCall: &genai.FunctionCall{ID: e.Call.ID, Name: e.Call.Name, Args: e.Call.Args},
				}},
			},
			&genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{ID: e.Call.ID, Name: e.Call.Name, Response: outputMap(e.Output)},
				}},
			},
		)
	}
	return contents
}

// outputMap hands the JSON output over as an object, wrapping anything that is not one
func outputMap(output string) map[string]interface{} {
	var response map[string]interface{}
	if err := json.Unmarshal([]byte(output), &response); err != nil || response == nil {
		return map[string]interface{}{"output": output}
	}
	return response
}

// fromGenAICalls converts function calls. Gemini may omit call IDs, so missing ones are
// derived from the tool name and the call position within the turn.
func fromGenAICalls(calls []*genai.FunctionCall, offset int) []usecase.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	result := make([]usecase.ToolCall, 0, len(calls))
	for i, call := range calls {
		if call == nil {
			continue
		}
		id := call.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", call.Name, offset+i)
		}
		args := call.Args
		if args == nil {
			args = map[string]interface{}{}
		}
		result = append(result, usecase.ToolCall{ID: id, Name: call.Name, Args: args})
	}
	return result
}

func genaiDeclarations(definitions []usecase.ToolDefinition) []*genai.FunctionDeclaration {
	declarations := make([]*genai.FunctionDeclaration, 0, len(definitions))
	for _, def := range definitions {
		declaration := &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
		}
		if def.Parameters != nil && len(def.Parameters.Properties) > 0 {
			declaration.Parameters = convertPropertyToGenAISchema(def.Parameters)
		}
		declarations = append(declarations, declaration)
	}
	return declarations
}

func convertPropertyToGenAISchema(prop *usecase.Property) *genai.Schema {
	schema := &genai.Schema{
		Description: prop.Description,
	}
	if len(prop.Enum) > 0 {
		schema.Enum = prop.Enum
	}

	switch prop.Type {
	case "number":
		schema.Type = genai.TypeNumber
	case "integer":
		schema.Type = genai.TypeInteger
	case "boolean":
		schema.Type = genai.TypeBoolean
	case "array":
		schema.Type = genai.TypeArray
		if prop.Items != nil {
			schema.Items = convertPropertyToGenAISchema(prop.Items)
		}
	case "object":
		schema.Type = genai.TypeObject
		if len(prop.Properties) > 0 {
			schema.Properties = make(map[string]*genai.Schema, len(prop.Properties))
			for name, child := range prop.Properties {
				if child != nil {
					schema.Properties[name] = convertPropertyToGenAISchema(child)
				}
			}
		}
		schema.Required = prop.Required
	default:
		schema.Type = genai.TypeString
	}
	return schema
}
