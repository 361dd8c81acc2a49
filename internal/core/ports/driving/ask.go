package driving

import "context"

// Answer is a generated answer together with the material it drew on.
type Answer struct {
	// Text is the generated answer.
	Text string

	// ReferencedURLs are the resource and video links from the retrieved
	// context, in manifest order.
	ReferencedURLs []string

	// Sources are the lesson titles of the retrieved context, deduplicated.
	Sources []string
}

// AskService answers student questions using retrieved course material.
type AskService interface {
	// Ask retrieves relevant material for question, generates an answer
	// grounded in it, and logs the exchange.
	Ask(ctx context.Context, question string) (Answer, error)
}
