package conversation_test

import (
	"context"
	"fmt"

	"github.com/Akshay-i95/edify-v3/edify/config"
	"github.com/Akshay-i95/edify-v3/edify/conversation"
	"github.com/Akshay-i95/edify-v3/edify/conversation/adapters"

	"github.com/rs/zerolog"
)

// Example wires the engine with the deterministic development embedder and
// runs one continuity decision.
func Example() {
	cfg := config.DefaultConversation()

	engine, err := conversation.NewEngine(conversation.EngineConfig{
		Config:   &cfg,
		Embedder: adapters.NewHashEmbedder(64),
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		panic(err)
	}

	history := []conversation.Message{
		{Role: conversation.RoleUser, Content: "What is formative assessment?"},
		{Role: conversation.RoleAssistant, Content: "Formative assessment is ongoing feedback used during learning to adjust teaching."},
	}

	result, err := engine.Detect(context.Background(), "tell me more", history)
	if err != nil {
		panic(err)
	}

	fmt.Println(result.IsFollowUp, result.Method)
	// Output: true pattern
}
