package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/logger"
	"github.com/dtroode/taskflow-server/internal/model"
)

const (
	prioritiesMarker = "---PRIORITIES---"
	noTasksNarrative = "You have no open tasks. Enjoy the clear runway or capture something new."
)

// Assist relays task data to a chat-completion model and reshapes the reply.
type Assist struct {
	completer   model.Completer
	tasks       model.TaskStore
	settings    model.SettingsStore
	fallbackKey string
	modelName   string
	now         func() time.Time
	logger      *logger.Logger
}

func NewAssist(
	completer model.Completer,
	tasks model.TaskStore,
	settings model.SettingsStore,
	fallbackKey string,
	modelName string,
	logger *logger.Logger,
) *Assist {
	return &Assist{
		completer:   completer,
		tasks:       tasks,
		settings:    settings,
		fallbackKey: fallbackKey,
		modelName:   modelName,
		now:         time.Now,
		logger:      logger,
	}
}

type categorizeReply struct {
	Category string   `json:"category"`
	ListName string   `json:"listName"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`
	DueDate  *string  `json:"dueDate"`
}

// Categorize classifies free-form text into a category, list, tags and due date.
func (s *Assist) Categorize(ctx context.Context, params model.CategorizeParams) (model.Categorization, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return model.Categorization{}, apiErrors.NewErrValidation("taskText is required")
	}
	if params.UserID == uuid.Nil && strings.TrimSpace(params.APIKey) == "" {
		return model.Categorization{}, apiErrors.NewErrNoSessionToken()
	}

	key, err := s.resolveKey(ctx, params.UserID, params.APIKey)
	if err != nil {
		return model.Categorization{}, err
	}

	result, err := s.completer.Complete(ctx, model.CompletionRequest{
		APIKey: key,
		Messages: []model.ChatMessage{
			{Role: "system", Content: categorizePrompt(params.ExistingLists, params.Context, s.now())},
			{Role: "user", Content: text},
		},
		Temperature: 0.3,
		MaxTokens:   200,
	})
	if err != nil {
		s.logger.Error("Assist service: categorize completion failed",
			"user_id", params.UserID,
			"error", err.Error())
		return model.Categorization{}, apiErrors.NewErrUpstream(err.Error())
	}

	var reply categorizeReply
	if err := json.Unmarshal([]byte(stripFences(result.Content)), &reply); err != nil {
		s.logger.Warn("Assist service: unparseable categorization",
			"user_id", params.UserID,
			"content", result.Content)
		return model.Categorization{}, apiErrors.NewErrUpstream("Failed to parse categorization response")
	}

	return normalizeCategorization(reply, text), nil
}

func normalizeCategorization(reply categorizeReply, original string) model.Categorization {
	out := model.Categorization{
		Category: model.Category(strings.ToLower(strings.TrimSpace(reply.Category))),
		ListName: strings.TrimSpace(reply.ListName),
		Text:     cleanText(reply.Text),
		Tags:     cleanTags(reply.Tags),
	}
	if !out.Category.Valid() {
		out.Category = model.CategoryActions
	}
	if out.ListName == "" {
		out.ListName = model.DefaultListName
	}
	if out.Text == "" {
		out.Text = cleanText(original)
	}
	if reply.DueDate != nil {
		if due, err := parseDueDate(*reply.DueDate); err == nil && due != nil {
			formatted := due.Format(dateLayout)
			out.DueDate = &formatted
		}
	}
	return out
}

func categorizePrompt(lists model.ExistingLists, userContext string, now time.Time) string {
	var b strings.Builder
	b.WriteString(`You classify to-do items. Reply with ONLY a JSON object of this shape:
{
  "category": "people" | "projects" | "actions",
  "listName": "a person's name, a project or meeting name, or 'Personal Actions'",
  "text": "the task text, cleaned up",
  "tags": ["waiting", "follow-up", "action", "to-contact", "urgent"],
  "dueDate": "YYYY-MM-DD" or null
}
`)
	if !lists.Empty() {
		b.WriteString("\nThe user already has these lists. Prefer an existing list over a new one and match names loosely (\"talk to shane\" belongs to \"Shane\"):\n")
		writeListLine(&b, "People", lists.People)
		writeListLine(&b, "Projects/Meetings", lists.Projects)
		writeListLine(&b, "Actions", lists.Actions)
	}
	if c := strings.TrimSpace(userContext); c != "" {
		fmt.Fprintf(&b, "\nAbout the user: %s\n", c)
	}
	fmt.Fprintf(&b, `
Rules:
- A task about a specific person (talk to, ask, email, call someone) is "people" with that person as listName.
- A task about a meeting, project or initiative is "projects" with its name as listName.
- Anything else is "actions" in "Personal Actions".
- Convert any date mention to YYYY-MM-DD. Today is %s.
- Only use tags from the list above that apply.
- Keep the meaning of the text when cleaning it up.`, now.Format(dateLayout))
	return b.String()
}

func writeListLine(b *strings.Builder, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(names, ", "))
}

// Briefing summarizes and/or ranks the caller's open tasks.
func (s *Assist) Briefing(ctx context.Context, params model.BriefingParams) (model.Briefing, error) {
	mode := params.Mode
	if mode == "" {
		mode = model.BriefingModeNarrative
	}
	if !mode.Valid() {
		return model.Briefing{}, apiErrors.NewErrValidation(fmt.Sprintf("Unknown mode %q", params.Mode))
	}

	all, err := s.tasks.ListByUser(ctx, params.UserID)
	if err != nil {
		return model.Briefing{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	open := filterOpenTasks(all, params.ListName, params.Category)

	now := s.now()
	briefing := model.Briefing{
		Mode:        mode,
		TaskCount:   len(open),
		Prioritized: []model.PrioritizedTask{},
		GeneratedAt: now,
		Model:       s.modelName,
	}
	if len(open) == 0 {
		briefing.Narrative = noTasksNarrative
		return briefing, nil
	}

	key, err := s.resolveKey(ctx, params.UserID, "")
	if err != nil {
		return model.Briefing{}, err
	}
	userContext, err := s.userContext(ctx, params.UserID)
	if err != nil {
		return model.Briefing{}, err
	}

	req := briefingRequest(mode, formatTaskListing(open, now), userContext, params.CustomContext, now)
	req.APIKey = key

	result, err := s.completer.Complete(ctx, req)
	if err != nil {
		s.logger.Error("Assist service: briefing completion failed",
			"user_id", params.UserID,
			"mode", mode,
			"error", err.Error())
		return model.Briefing{}, apiErrors.NewErrUpstream(err.Error())
	}
	if result.Model != "" {
		briefing.Model = result.Model
	}

	reply := strings.TrimSpace(result.Content)
	switch mode {
	case model.BriefingModeNarrative:
		briefing.Narrative = reply
	case model.BriefingModePrioritize:
		if ranked, ok := parseRanking(reply, open); ok {
			briefing.Prioritized = ranked
		} else {
			briefing.Narrative = reply
		}
	case model.BriefingModeBoth:
		briefing.Narrative, briefing.Prioritized = splitBriefing(reply, open)
	}

	s.logger.Info("Assist service: briefing generated",
		"user_id", params.UserID,
		"mode", mode,
		"tasks", len(open),
		"ranked", len(briefing.Prioritized))

	return briefing, nil
}

// resolveKey picks the request key, then the user's stored key, then the
// configured fallback.
func (s *Assist) resolveKey(ctx context.Context, userID uuid.UUID, requestKey string) (string, error) {
	if k := strings.TrimSpace(requestKey); k != "" {
		return k, nil
	}
	if userID != uuid.Nil {
		settings, err := s.settings.Get(ctx, userID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return "", fmt.Errorf("failed to get settings: %w", err)
		}
		if settings.AIAPIKey != "" {
			return settings.AIAPIKey, nil
		}
	}
	if s.fallbackKey == "" {
		return "", apiErrors.NewErrValidation("No AI API key configured")
	}
	return s.fallbackKey, nil
}

func (s *Assist) userContext(ctx context.Context, userID uuid.UUID) (string, error) {
	settings, err := s.settings.Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}

	parts := make([]string, 0, 2)
	for _, p := range []string{settings.AIContext, settings.AINotes} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func filterOpenTasks(tasks []model.Task, listName, category string) []model.Task {
	listName = strings.TrimSpace(listName)
	category = strings.TrimSpace(category)

	open := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed || t.IsArchived {
			continue
		}
		if listName != "" && !strings.EqualFold(t.ListName, listName) {
			continue
		}
		if category != "" && !strings.EqualFold(string(t.Category), category) {
			continue
		}
		open = append(open, t)
	}
	return open
}

// formatTaskListing renders one numbered line per task:
//
//  1. [HIGH] (people/Shane) send deck | due 2025-03-01 (OVERDUE by 2 days) | status: waiting
func formatTaskListing(tasks []model.Task, now time.Time) string {
	today := dateOnly(now)

	var b strings.Builder
	for i, t := range tasks {
		priority := t.Priority
		if priority == "" {
			priority = model.PriorityNone
		}
		fmt.Fprintf(&b, "%d. [%s] (%s/%s) %s", i+1, strings.ToUpper(string(priority)), t.Category, t.ListName, t.Text)
		if t.DueDate != nil {
			fmt.Fprintf(&b, " | due %s (%s)", t.DueDate.Format(dateLayout), dueAnnotation(dateOnly(*t.DueDate), today))
		}
		status := "open"
		if t.HasTag("waiting") {
			status = "waiting"
		}
		fmt.Fprintf(&b, " | status: %s\n", status)
	}
	return b.String()
}

func dueAnnotation(due, today time.Time) string {
	days := int(math.Round(due.Sub(today).Hours() / 24))
	switch {
	case days < 0:
		return fmt.Sprintf("OVERDUE by %d days", -days)
	case days == 0:
		return "due today"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func briefingRequest(mode model.BriefingMode, listing, userContext, customContext string, now time.Time) model.CompletionRequest {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s.\n", now.Format("Monday, 2006-01-02"))
	if userContext != "" {
		fmt.Fprintf(&b, "About me:\n%s\n", userContext)
	}
	if c := strings.TrimSpace(customContext); c != "" {
		fmt.Fprintf(&b, "Today's context: %s\n", c)
	}
	fmt.Fprintf(&b, "\nMy open tasks:\n%s\n", listing)

	req := model.CompletionRequest{Temperature: 0.7, MaxTokens: 600}
	switch mode {
	case model.BriefingModeNarrative:
		b.WriteString(narrativeInstruction)
	case model.BriefingModePrioritize:
		b.WriteString(rankingInstruction)
		req.Temperature = 0.3
		req.MaxTokens = 800
	case model.BriefingModeBoth:
		b.WriteString(narrativeInstruction)
		fmt.Fprintf(&b, "\n\nAfter the briefing write a line containing only %s and then:\n", prioritiesMarker)
		b.WriteString(rankingInstruction)
		req.MaxTokens = 1400
	}

	req.Messages = []model.ChatMessage{
		{Role: "system", Content: "You are a sharp executive assistant. Be concise and concrete."},
		{Role: "user", Content: b.String()},
	}
	return req
}

const narrativeInstruction = `Write a short morning briefing in Markdown with these sections:
TODAY'S FOCUS (top 3 priorities), RISKS (overdue or waiting items that need a nudge),
QUICK WINS, and one closing RECOMMENDATION. Keep it tight; it is read on a commute.`

const rankingInstruction = `Rank every task by urgency. Reply with ONLY a JSON array, most urgent first:
[{"index": <task number>, "score": <0-100>, "reason": "<one short sentence>"}]`

type rankItem struct {
	Index  int     `json:"index"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// splitBriefing separates the narrative from the ranked list. It tries the
// marker first, then the last JSON array in the reply, and otherwise returns
// the whole reply as narrative with an empty ranking.
func splitBriefing(reply string, tasks []model.Task) (string, []model.PrioritizedTask) {
	if idx := strings.Index(reply, prioritiesMarker); idx >= 0 {
		if ranked, ok := parseRanking(reply[idx+len(prioritiesMarker):], tasks); ok {
			return strings.TrimSpace(reply[:idx]), ranked
		}
	}

	if start, ranked, ok := lastRanking(reply, tasks); ok {
		narrative := strings.TrimSpace(reply[:start])
		narrative = strings.TrimSpace(strings.TrimSuffix(narrative, "```json"))
		narrative = strings.TrimSpace(strings.TrimSuffix(narrative, "```"))
		return narrative, ranked
	}

	return reply, []model.PrioritizedTask{}
}

// lastRanking scans for the last '[' at which a ranking array decodes.
func lastRanking(reply string, tasks []model.Task) (int, []model.PrioritizedTask, bool) {
	for i := strings.LastIndex(reply, "["); i >= 0; i = strings.LastIndex(reply[:i], "[") {
		var items []rankItem
		if err := json.NewDecoder(strings.NewReader(reply[i:])).Decode(&items); err != nil {
			continue
		}
		if ranked := buildRanking(items, tasks); len(ranked) > 0 {
			return i, ranked, true
		}
	}
	return 0, nil, false
}

func parseRanking(raw string, tasks []model.Task) ([]model.PrioritizedTask, bool) {
	var items []rankItem
	if err := json.Unmarshal([]byte(stripFences(raw)), &items); err != nil {
		_, ranked, ok := lastRanking(raw, tasks)
		return ranked, ok
	}
	ranked := buildRanking(items, tasks)
	return ranked, len(ranked) > 0
}

func buildRanking(items []rankItem, tasks []model.Task) []model.PrioritizedTask {
	seen := make(map[int]bool, len(items))
	ranked := make([]model.PrioritizedTask, 0, len(items))
	for _, item := range items {
		if item.Index < 1 || item.Index > len(tasks) || seen[item.Index] {
			continue
		}
		seen[item.Index] = true

		score := int(math.Round(math.Max(0, math.Min(100, item.Score))))
		t := tasks[item.Index-1]
		ranked = append(ranked, model.PrioritizedTask{
			ID:      t.ID,
			Text:    t.Text,
			Score:   score,
			Urgency: model.UrgencyForScore(score),
			Reason:  strings.TrimSpace(item.Reason),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

// stripFences removes Markdown code fences around a JSON payload.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
