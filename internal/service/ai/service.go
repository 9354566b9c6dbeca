package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/darlyn-ai/darlyn/backend/internal/config"
)

// textSystemPrompt asks for markdown output. This is a prompt-level contract
// only; the renderer tolerates responses that ignore it.
const textSystemPrompt = `You are a helpful chatbot that provides informative and well-formatted responses to user questions.

Format your response with markdown where appropriate, including:
- Bold text
- Bullet points
- Hyperlinks
- Fenced code blocks`

const imageSystemPrompt = `You are an AI that can interpret images and answer questions about them.

You will be given a photo and a question about the photo. Answer the question to the best of your ability.`

// Service wraps the hosted chat model behind the two answering capabilities
// the orchestrator dispatches to.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the chat model from configuration and compiles the text
// answering chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{question}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		chain:     runnable,
	}, nil
}

// Answer runs the text capability for a single question.
func (s *Service) Answer(ctx context.Context, question string) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system":   textSystemPrompt,
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated response, length=%d", len(response.Content))
	return response.Content, nil
}

// AnswerImage runs the image capability: the photo travels as a multimodal
// image part carrying the data URI, alongside the question text.
func (s *Service) AnswerImage(ctx context.Context, photoDataURI, question string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(imageSystemPrompt),
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{
					Type: schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{
						URL: photoDataURI,
					},
				},
				{
					Type: schema.ChatMessagePartTypeText,
					Text: question,
				},
			},
		},
	}

	response, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to run image interpretation: %w", err)
	}

	log.Printf("[ai] generated image answer, length=%d", len(response.Content))
	return response.Content, nil
}
