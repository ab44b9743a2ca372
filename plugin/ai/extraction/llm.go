package extraction

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/memwallet/memwallet/plugin/markdown"
)

// Distiller extracts semantic tuples from conversation text with a
// model. Transcripts are normalized to plain text first so markdown
// markup from chat exports never leaks into tuple objects.
type Distiller struct {
	client ChatClient
}

func NewDistiller(client ChatClient) *Distiller {
	return &Distiller{client: client}
}

// ExtractTuples runs one distillation pass over the conversation.
func (d *Distiller) ExtractTuples(ctx context.Context, conversation string) ([]Tuple, error) {
	plain := markdown.Normalize(conversation)
	response, err := d.client.Complete(ctx, fmt.Sprintf(tuplePrompt, plain))
	if err != nil {
		return nil, errors.Wrap(err, "distill tuples")
	}
	tuples, err := parseTupleResponse(response)
	if err != nil {
		return nil, err
	}
	slog.Debug("distilled tuples from conversation", "count", len(tuples))
	return tuples, nil
}

// Extract distills tuples and categorizes them into card-ready items.
func (d *Distiller) Extract(ctx context.Context, conversation string) ([]Item, error) {
	tuples, err := d.ExtractTuples(ctx, conversation)
	if err != nil {
		return nil, err
	}
	return ItemsFromTuples(tuples), nil
}
