package factory

import (
	"fmt"

	"cybot-be/pkg/llm"
	"cybot-be/pkg/llm/compat"
	"cybot-be/pkg/llm/ollama"
)

// NewLLMProvider builds the chat backend named by providerType. baseURL
// may be empty to use the provider's public endpoint.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "groq":
		if apiKey == "" {
			return nil, fmt.Errorf("groq provider requires an API key")
		}
		if baseURL == "" {
			baseURL = compat.GroqBaseURL
		}
		return compat.NewProvider("groq", apiKey, baseURL, modelName), nil
	case "huggingface":
		if baseURL == "" {
			baseURL = compat.HuggingFaceBaseURL
		}
		return compat.NewProvider("huggingface", apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
