package utils

import (
	"regexp"
	"strings"

	"charter-concierge/internal/domain/entity"
)

var (
	handOverRe = regexp.MustCompile(`(?is)\[HAND_OVER:(\w+)]:(.*)`)
	handBackRe = regexp.MustCompile(`(?is)\[HAND_BACK]:(.*)`)
	metaRe     = regexp.MustCompile(`(?is)\[META:([^\]]+)]`)
)

// messageExtractor consumes one marker kind from text.
// ok is false when the marker is absent.
type messageExtractor func(text string) (parsed entity.ParsedMessage, ok bool)

var messageExtractors = []messageExtractor{
	extractHandOver,
	extractHandBack,
	extractMeta,
}

// ParseMessage splits an AI reply into client text, directive and metadata.
// Extractors run in order on the text left by the previous one; their data and meta are merged.
func ParseMessage(raw string) entity.ParsedMessage {
	result := entity.ParsedMessage{Text: raw}
	for _, extract := range messageExtractors {
		mapped, ok := extract(result.Text)
		if !ok {
			continue
		}
		result.Text = mapped.Text
		if mapped.Data != nil {
			if result.Data == nil {
				result.Data = &entity.MessageDirective{}
			}
			mergeDirective(result.Data, mapped.Data)
		}
		if mapped.Meta != nil {
			if result.Meta == nil {
				result.Meta = make(map[string]interface{}, len(mapped.Meta))
			}
			for key, value := range mapped.Meta {
				result.Meta[key] = value
			}
		}
	}
	return result
}

func mergeDirective(into, from *entity.MessageDirective) {
	if from.Operation != "" {
		into.Operation = from.Operation
	}
	if from.SwitchTo != "" {
		into.SwitchTo = from.SwitchTo
	}
}

func extractHandOver(text string) (entity.ParsedMessage, bool) {
	match := handOverRe.FindStringSubmatch(text)
	if match == nil {
		return entity.ParsedMessage{}, false
	}
	return entity.ParsedMessage{
		Text: strings.TrimSpace(match[2]),
		Data: &entity.MessageDirective{
			Operation: entity.OperationHandOver,
			SwitchTo:  strings.ToLower(strings.TrimSpace(match[1])),
		},
	}, true
}

func extractHandBack(text string) (entity.ParsedMessage, bool) {
	match := handBackRe.FindStringSubmatch(text)
	if match == nil {
		return entity.ParsedMessage{}, false
	}
	return entity.ParsedMessage{
		Text: strings.TrimSpace(match[1]),
		Data: &entity.MessageDirective{Operation: entity.OperationHandBack},
	}, true
}

func extractMeta(text string) (entity.ParsedMessage, bool) {
	loc := metaRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return entity.ParsedMessage{}, false
	}
	body := text[loc[2]:loc[3]]
	parsed := entity.ParsedMessage{
		Text: strings.TrimSpace(text[:loc[0]] + text[loc[1]:]),
	}

	meta := make(map[string]interface{})
	for _, pair := range strings.Split(body, "&") {
		parts := strings.Split(pair, "=")
		if len(parts) < 2 {
			continue
		}
		key, value := parts[0], parts[1]
		values := strings.Split(value, ",")
		if len(values) != 1 {
			list := make([]string, 0, len(values))
			for _, v := range values {
				list = append(list, strings.TrimSpace(v))
			}
			meta[key] = list
		} else {
			meta[key] = strings.TrimSpace(value)
		}
	}
	if len(meta) > 0 {
		parsed.Meta = meta
	}
	return parsed, true
}
