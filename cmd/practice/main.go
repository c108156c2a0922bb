package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vtmai/celwrite/config"
	"github.com/vtmai/celwrite/internal/dto"
	"github.com/vtmai/celwrite/internal/identity"
	"github.com/vtmai/celwrite/internal/localstore"
	"github.com/vtmai/celwrite/internal/logger"
	"github.com/vtmai/celwrite/internal/service"
	"github.com/vtmai/celwrite/internal/session"
	"github.com/vtmai/celwrite/internal/task"
)

func main() {
	logger.Init()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	guests, err := localstore.NewGuestStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open guest store")
	}
	drafts, err := localstore.NewFileDraftStore(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open draft store")
	}

	provider := identity.NewTokenProvider(cfg.JWTSecret, guestIDSource{guests}, cfg.Client.AuthToken)
	actor := provider.Current()

	api := newAPIClient(cfg.Client.APIBaseURL, cfg.Client.AuthToken)
	// Guest entitlement is kept locally; signed-in entitlement lives on the
	// server and is reached over the API instead.
	localEnt := service.NewEntitlementService(nil, guests)

	app := &practiceApp{
		cfg:      cfg,
		actor:    actor,
		api:      api,
		guests:   guests,
		drafts:   drafts,
		localEnt: localEnt,
		in:       bufio.NewScanner(os.Stdin),
	}
	app.in.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if err := app.run(); err != nil {
		log.Fatal().Err(err).Msg("Practice session failed")
	}
}

// guestIDSource adapts the guest store to the identity provider.
type guestIDSource struct {
	store *localstore.GuestStore
}

func (g guestIDSource) GuestID() string { return g.store.Load().AnonID }

type practiceApp struct {
	cfg      *config.Config
	actor    identity.Identity
	api      *apiClient
	guests   *localstore.GuestStore
	drafts   *localstore.FileDraftStore
	localEnt service.EntitlementService
	in       *bufio.Scanner
}

func (a *practiceApp) run() error {
	if a.actor.IsSigned() {
		fmt.Printf("Signed in as %s\n", a.actor.Email)
	} else {
		fmt.Println("Practicing as a guest. Progress is stored on this machine only.")
	}

	if !a.ensureEntitled() {
		return nil
	}

	t, err := a.chooseTask()
	if err != nil {
		return err
	}
	prompt, err := a.choosePrompt(t)
	if err != nil {
		return err
	}

	fin := &httpFinalizer{api: a.api, actor: a.actor, guests: a.guests}
	runner := session.NewRunner(t, prompt.Text, a.drafts, fin,
		session.WithNotifier(func(msg string) { fmt.Println("\n" + msg) }))

	if snap := runner.Snapshot(); snap.Draft != "" {
		fmt.Printf("\nRecovered an autosaved draft (%d words). Keep typing to continue it.\n", snap.WordCount())
	}

	a.printTaskHeader(t, prompt)
	runner.Start()
	defer runner.Stop()

	a.editLoop(runner)

	select {
	case <-runner.Finished():
	default:
		// Left without submitting.
		return nil
	}

	if res := fin.result(); res != nil {
		printScore(*res)
	}
	a.postSessionBookkeeping()
	a.printStats()
	return nil
}

// ensureEntitled gates session creation on the free-trial/promo state. A
// blocked actor is offered one promo code entry before being routed to the
// paywall.
func (a *practiceApp) ensureEntitled() bool {
	ent := a.loadEntitlement()
	if ent.CanStartNewSession() {
		return true
	}

	fmt.Println("\nYou've used your free practice test.")
	fmt.Print("Enter a promo code to unlock more tests, or press Enter to see purchase options: ")
	code := strings.TrimSpace(a.readLine())
	if code != "" {
		next, err := a.applyPromo(code)
		if err != nil {
			fmt.Println("Invalid promo code.")
		} else {
			fmt.Printf("Promo applied. Remaining tests: %d\n", next.RemainingTests)
			ent = next
		}
	}
	if ent.CanStartNewSession() {
		return true
	}

	checkout, err := a.api.CreateCheckout(context.Background())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create checkout session")
		fmt.Println("Purchasing is unavailable right now. Please try again later.")
		return false
	}
	fmt.Printf("To continue practicing, complete your purchase at:\n  %s\n", checkout.CheckoutURL)
	return false
}

func (a *practiceApp) loadEntitlement() service.Entitlement {
	if a.actor.IsSigned() {
		resp, err := a.api.GetEntitlement(context.Background())
		if err != nil {
			log.Warn().Err(err).Msg("Failed to fetch entitlement, assuming unused trial")
			return service.Entitlement{}
		}
		return service.Entitlement{
			HasUsedFreeTest:  resp.HasUsedFreeTest,
			PromoCodeApplied: resp.PromoCodeApplied,
			RemainingTests:   resp.RemainingTests,
		}
	}
	return a.localEnt.Load(a.actor)
}

func (a *practiceApp) applyPromo(code string) (service.Entitlement, error) {
	if a.actor.IsSigned() {
		resp, err := a.api.ApplyPromo(context.Background(), code)
		if err != nil {
			return service.Entitlement{}, err
		}
		if !resp.Success {
			return service.Entitlement{}, service.ErrInvalidPromoCode
		}
		return service.Entitlement{
			HasUsedFreeTest:  resp.Entitlement.HasUsedFreeTest,
			PromoCodeApplied: resp.Entitlement.PromoCodeApplied,
			RemainingTests:   resp.Entitlement.RemainingTests,
		}, nil
	}
	return a.localEnt.ApplyPromoCode(a.actor, code)
}

// postSessionBookkeeping consumes guest entitlement after a successful
// submission. Signed-in consumption happens server side when the attempt
// is recorded.
func (a *practiceApp) postSessionBookkeeping() {
	if a.actor.IsSigned() {
		return
	}
	ent := a.localEnt.Load(a.actor)
	if ent.PromoCodeApplied && ent.RemainingTests > 0 {
		a.localEnt.DecrementRemainingTests(a.actor)
		return
	}
	a.localEnt.MarkFreeTestConsumed(a.actor)
}

func (a *practiceApp) chooseTask() (task.Type, error) {
	fmt.Println("\nChoose a writing task:")
	fmt.Println("  1. Email (27 minutes, 150-200 words)")
	fmt.Println("  2. Survey response (26 minutes, 200-250 words)")
	for {
		fmt.Print("> ")
		switch strings.TrimSpace(a.readLine()) {
		case "1":
			return task.Email, nil
		case "2":
			return task.Survey, nil
		case "":
			return "", fmt.Errorf("no task selected")
		default:
			fmt.Println("Enter 1 or 2.")
		}
	}
}

func (a *practiceApp) choosePrompt(t task.Type) (task.Prompt, error) {
	prompts := a.fetchPrompts(t)
	if len(prompts) == 0 {
		return task.Prompt{}, fmt.Errorf("no prompts available for task %s", t)
	}
	fmt.Println("\nChoose a prompt:")
	for _, p := range prompts {
		fmt.Printf("  %d. %s\n", p.ID, p.Title)
	}
	for {
		fmt.Print("> ")
		n, err := strconv.Atoi(strings.TrimSpace(a.readLine()))
		if err == nil {
			for _, p := range prompts {
				if p.ID == n {
					return p, nil
				}
			}
		}
		fmt.Printf("Enter a number between 1 and %d.\n", len(prompts))
	}
}

// fetchPrompts prefers the server's bank so prompt updates ship without a
// client release, falling back to the built-in bank offline.
func (a *practiceApp) fetchPrompts(t task.Type) []task.Prompt {
	resp, err := a.api.GetPrompts(context.Background(), t)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch prompts from server, using built-in bank")
		return t.Prompts()
	}
	prompts := make([]task.Prompt, 0, len(resp.Prompts))
	for _, p := range resp.Prompts {
		prompts = append(prompts, task.Prompt{ID: p.ID, Title: p.Title, Text: p.Text})
	}
	return prompts
}

func (a *practiceApp) printTaskHeader(t task.Type, prompt task.Prompt) {
	target := t.WordTarget()
	fmt.Printf("\n=== %s: %s ===\n\n", strings.ToUpper(t.String()), prompt.Title)
	fmt.Println(t.Instructions())
	fmt.Println()
	fmt.Println(prompt.Text)
	fmt.Printf("\nTime limit %s, target %d-%d words. The timer starts when you type.\n",
		t.TimeLimit(), target.Min, target.Max)
	fmt.Println("Type your response line by line. Commands: :submit :save :status :quit")
	fmt.Println()
}

// editLoop feeds stdin lines into the runner until the session finishes or
// the user leaves. Each entered line is appended to the draft.
func (a *practiceApp) editLoop(runner *session.Runner) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for a.in.Scan() {
			lines <- a.in.Text()
		}
	}()

	var draft strings.Builder
	if snap := runner.Snapshot(); snap.Draft != "" {
		draft.WriteString(snap.Draft)
	}

	for {
		select {
		case <-runner.Finished():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			switch strings.TrimSpace(line) {
			case ":submit":
				if err := runner.Submit(); err != nil {
					fmt.Printf("Cannot submit: %v\n", err)
					continue
				}
				fmt.Println("Submitting...")
				select {
				case <-runner.Finished():
					return
				case <-time.After(30 * time.Second):
					fmt.Println("Submission is taking too long; your draft is saved. Try :submit again.")
				}
			case ":save":
				runner.SaveNow()
				fmt.Println("Draft saved.")
			case ":status":
				snap := runner.Snapshot()
				fmt.Printf("%s | %d words | %s remaining\n",
					snap.Status, snap.WordCount(), (time.Duration(snap.Remaining) * time.Second))
			case ":quit":
				if runner.RequestLeave() {
					fmt.Print("A test is in progress. Leave anyway? Your draft stays saved. (y/N) ")
					if !strings.EqualFold(strings.TrimSpace(a.readLine()), "y") {
						continue
					}
					runner.ConfirmLeave()
					runner.SaveNow()
				}
				return
			default:
				if draft.Len() > 0 {
					draft.WriteString("\n")
				}
				draft.WriteString(line)
				runner.Edit(draft.String())
			}
		}
	}
}

func (a *practiceApp) printStats() {
	guestID := ""
	if !a.actor.IsSigned() {
		guestID = a.actor.GuestID
	}
	stats, err := a.api.GetStats(context.Background(), guestID)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch stats")
		return
	}
	fmt.Println("\n=== Your Progress ===")
	fmt.Printf("Tests completed: %d\n", stats.TotalAttempts)
	fmt.Printf("Average score:   %.1f\n", stats.AverageScore)
	fmt.Printf("Time practiced:  %s\n", time.Duration(stats.TimePracticed)*time.Second)
	fmt.Printf("Words written:   %d\n", stats.WordsWritten)
}

func (a *practiceApp) readLine() string {
	if a.in.Scan() {
		return a.in.Text()
	}
	return ""
}

func printScore(res dto.ScoringResult) {
	fmt.Println("\n=== Your Score ===")
	fmt.Printf("Overall:        %.1f / 12\n", res.Overall)
	fmt.Printf("Grammar:        %.1f\n", res.Grammar)
	fmt.Printf("Vocabulary:     %.1f\n", res.Vocabulary)
	fmt.Printf("Coherence:      %.1f\n", res.Coherence)
	fmt.Printf("Task relevance: %.1f\n", res.TaskRelevance)
	fmt.Printf("\n%s\n", res.Feedback)
	if len(res.ImprovementTips) > 0 {
		fmt.Println("\nHow to improve:")
		for _, tip := range res.ImprovementTips {
			fmt.Printf("  - %s\n", tip)
		}
	}
}

// httpFinalizer scores the submission and records the attempt over the API.
// The scored result is kept for display after the session finishes.
type httpFinalizer struct {
	api    *apiClient
	actor  identity.Identity
	guests *localstore.GuestStore

	mu     sync.Mutex
	scored *dto.ScoringResult
}

func (f *httpFinalizer) Finalize(ctx context.Context, sub session.Submission) error {
	score, err := f.api.Score(ctx, dto.ScoreRequest{
		TaskType:  sub.Task.String(),
		Prompt:    sub.Prompt,
		Response:  sub.Response,
		WordCount: sub.WordCount,
	})
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	req := dto.AttemptCreateRequest{
		TaskType:  sub.Task.String(),
		Prompt:    sub.Prompt,
		Response:  sub.Response,
		WordCount: sub.WordCount,
		TimeSpent: sub.TimeSpent,
		Score:     *score,
	}
	if !f.actor.IsSigned() {
		req.GuestID = f.guests.Load().AnonID
	}
	if _, err := f.api.CreateAttempt(ctx, req); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	f.mu.Lock()
	f.scored = score
	f.mu.Unlock()
	return nil
}

func (f *httpFinalizer) result() *dto.ScoringResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scored
}

// apiClient is a thin JSON client for the practice API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *apiClient) Score(ctx context.Context, req dto.ScoreRequest) (*dto.ScoringResult, error) {
	var out dto.ScoringResult
	if err := c.do(ctx, http.MethodPost, "/score", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) CreateAttempt(ctx context.Context, req dto.AttemptCreateRequest) (*dto.AttemptResponse, error) {
	var out dto.AttemptResponse
	if err := c.do(ctx, http.MethodPost, "/attempts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) GetStats(ctx context.Context, guestID string) (*dto.StatsResponse, error) {
	path := "/stats"
	if guestID != "" {
		path += "?guestId=" + url.QueryEscape(guestID)
	}
	var out dto.StatsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) GetPrompts(ctx context.Context, t task.Type) (*dto.PromptBankResponse, error) {
	var out dto.PromptBankResponse
	if err := c.do(ctx, http.MethodGet, "/prompts?taskType="+url.QueryEscape(t.String()), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) GetEntitlement(ctx context.Context) (*dto.EntitlementResponse, error) {
	var out dto.EntitlementResponse
	if err := c.do(ctx, http.MethodGet, "/entitlement", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) ApplyPromo(ctx context.Context, code string) (*dto.PromoResponse, error) {
	var out dto.PromoResponse
	if err := c.do(ctx, http.MethodPost, "/promo", dto.PromoRequest{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) CreateCheckout(ctx context.Context) (*dto.CheckoutResponse, error) {
	var out dto.CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/checkout", dto.CheckoutRequest{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr dto.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
