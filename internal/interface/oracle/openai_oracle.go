package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAIOracle runs specialists through the OpenAI Responses API
type OpenAIOracle struct {
	client          openai.Client
	model           string
	maxOutputTokens int64
	log             logger.Logger
}

// NewOpenAIOracle creates an oracle bound to one model
func NewOpenAIOracle(apiKey, model string, maxOutputTokens int64, log logger.Logger) *OpenAIOracle {
	return &OpenAIOracle{
		client:          openai.NewClient(option.WithAPIKey(apiKey)),
		model:           model,
		maxOutputTokens: maxOutputTokens,
		log:             log.With("oracle", "openai", "model", model),
	}
}

// Complete implements usecase.Oracle
func (o *OpenAIOracle) Complete(ctx context.Context, request usecase.OracleRequest) (usecase.OracleReply, error) {
	params := responses.ResponseNewParams{
		Model: o.model,
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(flattenTranscript(request))},
	}
	if o.maxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(o.maxOutputTokens)
	}
	if len(request.Tools) > 0 {
		params.Tools = openAITools(request.Tools)
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return usecase.OracleReply{}, fmt.Errorf("OpenAI Responses API failed: %w", err)
	}
	if resp == nil {
		return usecase.OracleReply{}, fmt.Errorf("empty response from OpenAI Responses API")
	}

	var reply usecase.OracleReply
	for i := range resp.Output {
		item := &resp.Output[i]
		if item.Type != "function_call" {
			continue
		}
		fc := item.AsFunctionCall()
		args, err := parseArguments(fc.Arguments)
		if err != nil {
			o.log.Warn("Skipping function call with malformed arguments", "tool", fc.Name, "error", err)
			continue
		}
		id := fc.CallID
		if id == "" {
			id = fc.ID
		}
		reply.ToolCalls = append(reply.ToolCalls, usecase.ToolCall{ID: id, Name: fc.Name, Args: args})
	}
	if len(reply.ToolCalls) == 0 {
		reply.Text = resp.OutputText()
	}

	o.log.Debug("Response received", "assistant", request.Config.AssistantID, "toolCalls", len(reply.ToolCalls))
	return reply, nil
}

// flattenTranscript renders instructions, thread and tool exchanges as a single input
func flattenTranscript(request usecase.OracleRequest) string {
	var b strings.Builder
	if request.Instructions != "" {
		fmt.Fprintf(&b, "System: %s\n\n", request.Instructions)
	}
	for _, m := range request.History {
		if m.IsFromAssistant() {
			fmt.Fprintf(&b, "Assistant: %s\n\n", m.Text)
		} else {
			fmt.Fprintf(&b, "User: %s\n\n", m.Text)
		}
	}
	for _, e := range request.Exchanges {
		fmt.Fprintf(&b, "Function call %s (%s): %s\n\n", e.Call.Name, e.Call.ID, e.Call.ArgsJSON())
		fmt.Fprintf(&b, "Function output (%s): %s\n\n", e.Call.ID, e.Output)
	}
	return b.String()
}

func openAITools(definitions []usecase.ToolDefinition) []responses.ToolUnionParam {
	tools := make([]responses.ToolUnionParam, 0, len(definitions))
	for _, def := range definitions {
		tools = append(tools, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  openai.FunctionParameters(parametersSchema(def.Parameters)),
			},
		})
	}
	return tools
}

// parametersSchema always yields an object schema, even for tools without arguments
func parametersSchema(params *usecase.Property) map[string]interface{} {
	if params == nil {
		return map[string]interface{}{
			"type":       "object",
			"properties": map[string]interface{}{},
		}
	}
	schema := convertPropertyToSchema(params)
	if _, ok := schema["properties"]; !ok {
		schema["properties"] = map[string]interface{}{}
	}
	return schema
}

// convertPropertyToSchema recursively converts a Property to JSON schema form
func convertPropertyToSchema(prop *usecase.Property) map[string]interface{} {
	schema := map[string]interface{}{
		"type": prop.Type,
	}
	if prop.Description != "" {
		schema["description"] = prop.Description
	}
	if len(prop.Enum) > 0 {
		schema["enum"] = prop.Enum
	}
	if prop.Type == "array" && prop.Items != nil {
		schema["items"] = convertPropertyToSchema(prop.Items)
	}
	if prop.Type == "object" && prop.Properties != nil {
		properties := make(map[string]interface{}, len(prop.Properties))
		for name, child := range prop.Properties {
			if child != nil {
				properties[name] = convertPropertyToSchema(child)
			}
		}
		schema["properties"] = properties
		if len(prop.Required) > 0 {
			schema["required"] = prop.Required
		}
	}
	return schema
}

func parseArguments(raw string) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if strings.TrimSpace(raw) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, nil
}
