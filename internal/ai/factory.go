package ai

import (
	"encoding/json"
	"errors"

	"github.com/go-resty/resty/v2"
)

type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderGroq   Provider = "groq"
)

// providerAPI describes how to call one provider's text endpoint.
type providerAPI struct {
	baseURL      string
	defaultModel string
	path         func(model string) string
	authorize    func(req *resty.Request, apiKey string)
	body         func(model, prompt string) interface{}
	parse        func(body []byte) (string, error)
}

var providers = map[Provider]providerAPI{
	ProviderGemini: {
		baseURL:      "https://generativelanguage.googleapis.com/v1beta",
		defaultModel: "gemini-1.5-flash",
		path: func(model string) string {
			return "/models/" + model + ":generateContent"
		},
		authorize: func(req *resty.Request, apiKey string) {
			req.SetQueryParam("key", apiKey)
		},
		body:  geminiBody,
		parse: parseGemini,
	},
	ProviderOpenAI: chatCompletions("https://api.openai.com/v1", "gpt-4o-mini"),
	ProviderGroq:   chatCompletions("https://api.groq.com/openai/v1", "llama-3.1-8b-instant"),
}

func geminiBody(_, prompt string) interface{} {
	return map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
}

func parseGemini(body []byte) (string, error) {
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	var text string
	for _, p := range result.Candidates[0].Content.Parts {
		text += p.Text
	}
	return text, nil
}

// chatCompletions covers the OpenAI-compatible APIs.
func chatCompletions(baseURL, defaultModel string) providerAPI {
	return providerAPI{
		baseURL:      baseURL,
		defaultModel: defaultModel,
		path: func(string) string {
			return "/chat/completions"
		},
		authorize: func(req *resty.Request, apiKey string) {
			req.SetAuthToken(apiKey)
		},
		body: func(model, prompt string) interface{} {
			return map[string]interface{}{
				"model": model,
				"messages": []map[string]string{
					{"role": "user", "content": prompt},
				},
			}
		},
		parse: parseChatCompletion,
	}
}

func parseChatCompletion(body []byte) (string, error) {
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error.Message != "" {
		return "", errors.New(result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return result.Choices[0].Message.Content, nil
}
