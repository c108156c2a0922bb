package service

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/vtmai/celwrite/config"
	"github.com/vtmai/celwrite/internal/dto"
	"github.com/vtmai/celwrite/internal/task"
	"google.golang.org/api/option"
)

type geminiScoringService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

// NewGeminiScoringService builds the examiner backed by the Gemini API.
func NewGeminiScoringService(cfg *config.Config) (ScoringService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	model := client.GenerativeModel("gemini-1.5-flash")
	return &geminiScoringService{client: model, cfg: cfg}, nil
}

func (s *geminiScoringService) ScoreWriting(ctx context.Context, t task.Type, prompt, response string, wordCount int) (*dto.ScoringResult, error) {
	var b strings.Builder
	b.WriteString("You are a CELPIP Writing examiner. Evaluate the following writing response based on the CELPIP scoring rubric (bands 1-12).\n\n")
	b.WriteString("CELPIP Writing Band Descriptors:\n")
	b.WriteString("- Bands 10-12: Excellent command of English with minimal errors\n")
	b.WriteString("- Bands 7-9: Good command with some errors that don't impede communication\n")
	b.WriteString("- Bands 4-6: Adequate command with errors that may impede communication\n")
	b.WriteString("- Bands 1-3: Limited command with frequent errors that impede communication\n\n")
	b.WriteString("Scoring Criteria:\n")
	b.WriteString("1. Grammar (25%): Accuracy of grammar structures\n")
	b.WriteString("2. Vocabulary (25%): Range and appropriateness of vocabulary\n")
	b.WriteString("3. Coherence (25%): Logical organization and flow\n")
	b.WriteString("4. Task Relevance (25%): How well the response addresses the prompt\n\n")

	switch t {
	case task.Email:
		b.WriteString("The task is an email writing task. Judge tone, greeting/closing conventions and whether every requested point is addressed.\n\n")
	case task.Survey:
		b.WriteString("The task is a survey response task. Judge how completely each survey question is answered and whether opinions are supported with examples.\n\n")
	}

	fmt.Fprintf(&b, "Task Type: %s\nWord Count: %d\n\nPrompt:\n---\n%s\n---\n\nResponse:\n---\n%s\n---\n\n", t, wordCount, prompt, response)

	b.WriteString(`Format your evaluation strictly as:
Overall: [band 1-12]
Grammar: [band 1-12]
Vocabulary: [band 1-12]
Coherence: [band 1-12]
TaskRelevance: [band 1-12]
Feedback: [detailed constructive feedback in one paragraph]
Tips:
- [improvement tip]
- [improvement tip]
- [improvement tip]
`)

	resp, err := s.client.GenerateContent(ctx, genai.Text(b.String()))
	if err != nil {
		log.Error().Err(err).Str("taskType", t.String()).Msg("Gemini API error during scoring")
		return nil, fmt.Errorf("gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no content")
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			raw.WriteString(string(txt))
		}
	}
	if raw.Len() == 0 {
		return nil, fmt.Errorf("gemini returned no text content")
	}

	result, err := parseScoringResponse(raw.String())
	if err != nil {
		log.Warn().Err(err).Str("rawResponse", raw.String()).Msg("Failed to parse Gemini scoring response")
		return nil, fmt.Errorf("could not parse scoring response: %w", err)
	}
	return result, nil
}

// parseScoringResponse extracts the labelled bands, feedback paragraph and
// tip bullets from the model's plain-text reply.
func parseScoringResponse(raw string) (*dto.ScoringResult, error) {
	result := &dto.ScoringResult{}
	bands := map[string]*float64{
		"overall:":       &result.Overall,
		"grammar:":       &result.Grammar,
		"vocabulary:":    &result.Vocabulary,
		"coherence:":     &result.Coherence,
		"taskrelevance:": &result.TaskRelevance,
	}
	seen := 0
	inTips := false
	var feedback []string

	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		matched := false
		for prefix, target := range bands {
			if strings.HasPrefix(lower, prefix) {
				valStr := strings.TrimSpace(line[len(prefix):])
				if fields := strings.Fields(valStr); len(fields) > 0 {
					valStr = fields[0]
				}
				val, err := strconv.ParseFloat(valStr, 64)
				if err != nil {
					return nil, fmt.Errorf("could not parse %s value %q", strings.TrimSuffix(prefix, ":"), valStr)
				}
				*target = clampBand(val)
				seen++
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		switch {
		case strings.HasPrefix(lower, "feedback:"):
			inTips = false
			if text := strings.TrimSpace(line[len("feedback:"):]); text != "" {
				feedback = append(feedback, text)
			}
		case strings.HasPrefix(lower, "tips:"):
			inTips = true
		case inTips && strings.HasPrefix(line, "-"):
			if tip := strings.TrimSpace(strings.TrimPrefix(line, "-")); tip != "" {
				result.ImprovementTips = append(result.ImprovementTips, tip)
			}
		case !inTips && len(feedback) > 0:
			feedback = append(feedback, line)
		}
	}
	if seen < len(bands) {
		return nil, fmt.Errorf("response is missing %d of %d band scores", len(bands)-seen, len(bands))
	}
	result.Feedback = strings.Join(feedback, " ")
	return result, nil
}
