package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"audiobook/types"
)

const systemPrompt = `You are a precise assistant answering questions using ONLY the provided context.
If the answer is not in the context, say you don't know based on the document.
Be concise, accurate, and avoid speculation.`

// Answer retrieves evidence for the question, assembles a bounded context
// from the retrieved units and the session's recent turns, and asks the
// language model. When the model is quota-limited or unreachable the
// retrieved texts are returned verbatim as a degraded answer instead of
// failing the request. A successful (or degraded) answer is appended to
// the session's conversation log.
func (s *Service) Answer(ctx context.Context, sessionID, question string, topK int) (types.AnswerResult, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	units, err := s.Retrieve(ctx, question, topK)
	if err != nil {
		return types.AnswerResult{}, err
	}
	if len(units) == 0 {
		// Answering from no evidence would mean fabricating.
		return types.AnswerResult{}, types.ErrNoEvidence
	}

	conv := s.conversation(sessionID)
	units, turns := s.fitToBudget(question, units, conv.Recent(s.opts.HistoryWindow))
	prompt := buildPrompt(question, units, turns)

	degraded := false
	answer, err := s.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		if !errors.Is(err, types.ErrLLMQuotaExceeded) && !errors.Is(err, types.ErrLLMUnavailable) {
			return types.AnswerResult{}, err
		}
		s.logger.Warn("language model failed, returning retrieved text verbatim", "err", err)
		degraded = true
		answer = degradedAnswer(units)
	}

	sources := make([]types.Source, len(units))
	sourceIDs := make([]string, len(units))
	for i, u := range units {
		sources[i] = types.Source{
			UnitID:     u.ID,
			DocumentID: u.DocumentID,
			Index:      u.Index,
			Text:       u.Text,
			Score:      u.Score,
		}
		sourceIDs[i] = u.ID
	}

	result := types.AnswerResult{
		Answer:     answer,
		Sources:    sources,
		Confidence: units[0].Score,
		Degraded:   degraded,
		SessionID:  sessionID,
		Timestamp:  time.Now(),
	}

	conv.Append(types.ConversationTurn{
		Question:  question,
		Answer:    answer,
		Sources:   sourceIDs,
		Degraded:  degraded,
		Timestamp: result.Timestamp,
	})

	return result, nil
}

// fitToBudget trims the prompt inputs to the context token budget. Oldest
// turns go first, then the lowest-scored units; the top unit always stays.
func (s *Service) fitToBudget(question string, units []types.Unit, turns []types.ConversationTurn) ([]types.Unit, []types.ConversationTurn) {
	budget := s.opts.MaxContextTokens
	cost := func() int {
		return s.counter.Count(buildPrompt(question, units, turns))
	}

	for cost() > budget && len(turns) > 0 {
		turns = turns[1:]
	}
	for cost() > budget && len(units) > 1 {
		units = units[:len(units)-1]
	}
	return units, turns
}

func buildPrompt(question string, units []types.Unit, turns []types.ConversationTurn) string {
	var sb strings.Builder

	if len(turns) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, turn := range turns {
			sb.WriteString("User: ")
			sb.WriteString(turn.Question)
			sb.WriteString("\nAssistant: ")
			sb.WriteString(turn.Answer)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Context:\n")
	for i, u := range units {
		fmt.Fprintf(&sb, "[Chunk %d | source=%s | idx=%d]\n%s\n\n", i+1, u.DocumentID, u.Index, u.Text)
	}

	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

// degradedAnswer concatenates the retrieved texts, best match first.
func degradedAnswer(units []types.Unit) string {
	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}
	return strings.Join(texts, "\n\n")
}
