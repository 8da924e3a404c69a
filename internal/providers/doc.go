// Package providers implements the Client interface for each supported LLM
// provider.
//
// Supported providers: OpenAI (GPT), Anthropic (Claude), Google (Gemini), and
// Ollama / LM Studio for local models through their OpenAI-compatible
// endpoint.
//
// Every call sends exactly one user message and returns the text of the
// first answer. Any failure, including an answer without text, surfaces as a
// *ModelError. Retries are off unless Options.MaxRetries is set, in which case
// only HTTP 429 responses are retried with exponential back-off.
//
// Use [New] to obtain a Client by provider name and model string.
package providers
