package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"failureguard/internal/llm"
	"failureguard/internal/logger"
	"failureguard/internal/models"
	"failureguard/internal/repository"
)

// Token budgets for the two completion calls.
const (
	retrievalMaxTokens = 300
	answerMaxTokens    = 500
)

const (
	retrievalSystemPrompt = "You are a document retrieval system. Extract only the most relevant sections " +
		"from the documents that relate to the question. Return only relevant excerpts."
	answerSystemPrompt = "You are an expert industrial maintenance technician assistant."
)

var errEmptyQuestion = errors.New("question must not be empty")

// Completer is a chat completion backend.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, maxTokens int) (string, error)
}

// AssistantService answers free-text questions using the live machine view
// and the maintenance documents as context.
type AssistantService struct {
	readings repository.ReadingStore
	docs     repository.DocumentRepo
	llm      Completer
	log      *logger.Logger
}

// NewAssistantService builds the assistant. A nil completer runs it in demo mode.
func NewAssistantService(readings repository.ReadingStore, docs repository.DocumentRepo, completer Completer, log *logger.Logger) *AssistantService {
	if log == nil {
		log = logger.Nop()
	}
	return &AssistantService{readings: readings, docs: docs, llm: completer, log: log}
}

// Ask first asks the model to pick relevant excerpts from the documents,
// then asks it to answer using those excerpts and the sensor view.
// Model failures are reported inside the answer, not as an error.
func (s *AssistantService) Ask(ctx context.Context, question string) (QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return QueryResult{}, errEmptyQuestion
	}

	view, err := s.readings.Latest(ctx)
	if err != nil {
		return QueryResult{}, fmt.Errorf("load readings: %w", err)
	}
	docs, err := s.docs.Load(ctx)
	if err != nil {
		return QueryResult{}, fmt.Errorf("load documents: %w", err)
	}

	names := make([]string, 0, len(docs))
	for name := range docs {
		names = append(names, name)
	}
	sort.Strings(names)
	result := QueryResult{Sources: names}

	if s.llm == nil {
		result.Answer = demoAnswer(view)
		return result, nil
	}

	sensorContext, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return QueryResult{}, fmt.Errorf("encode sensor context: %w", err)
	}

	var all strings.Builder
	for _, name := range names {
		fmt.Fprintf(&all, "\n--- %s ---\n%s\n", name, docs[name])
	}

	excerpts, err := s.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: retrievalSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf(
			"Question: %s\n\nDocuments:\n%s\n\nReturn only the most relevant sections.", question, all.String())},
	}, retrievalMaxTokens)
	if err != nil {
		s.log.Warnw("query_retrieval_failed", "err", err)
		result.Answer = "Assistant error: " + err.Error()
		return result, nil
	}

	answer, err := s.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: answerSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf(
			"LIVE SENSOR DATA:\n%s\n\nRELEVANT DOCUMENTATION:\n%s\n\nQUESTION: %s\n\n"+
				"Give a specific actionable answer based on sensor values and documentation.",
			sensorContext, excerpts, question)},
	}, answerMaxTokens)
	if err != nil {
		s.log.Warnw("query_answer_failed", "err", err)
		result.Answer = "Assistant error: " + err.Error()
		return result, nil
	}

	result.Answer = answer
	return result, nil
}

// demoAnswer summarises the anomalies without calling a model.
func demoAnswer(view models.MachineHealthView) string {
	var parts []string
	for _, id := range sortedIDs(view) {
		if r := view[id]; r.IsAnomaly {
			parts = append(parts, fmt.Sprintf("%s (score %.1f)", id, r.HealthScore))
		}
	}
	if len(parts) == 0 {
		return "Demo mode: no API key set. All machines are operating within thresholds."
	}
	return "Demo mode: no API key set. Machines with anomalies: " + strings.Join(parts, ", ") + "."
}
