package services

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/brokerage-backend/internal/data/repos"
	types "github.com/yungbote/brokerage-backend/internal/domain"
	domainagg "github.com/yungbote/brokerage-backend/internal/domain/aggregates"
	"github.com/yungbote/brokerage-backend/internal/domain/transactions"
	"github.com/yungbote/brokerage-backend/internal/observability"
	"github.com/yungbote/brokerage-backend/internal/platform/dbctx"
	"github.com/yungbote/brokerage-backend/internal/platform/logger"
)

//go:embed guided_steps.yaml
var guidedStepsYAML []byte

const (
	StepStatusCompleted = "completed"
	StepStatusCurrent   = "current"
	StepStatusUpcoming  = "upcoming"

	ReminderPriorityHigh   = "high"
	ReminderPriorityMedium = "medium"
)

type GuidedActionDef struct {
	Code         string `yaml:"code"`
	Title        string `yaml:"title"`
	Required     bool   `yaml:"required"`
	DueDateField string `yaml:"due_date_field"`
	Guidance     string `yaml:"guidance"`
}

type GuidedStepDef struct {
	Code               string            `yaml:"code"`
	Title              string            `yaml:"title"`
	Description        string            `yaml:"description"`
	CompletedDateField string            `yaml:"completed_date_field"`
	Actions            []GuidedActionDef `yaml:"actions"`
}

// GuidedStepCatalog holds the two journeys. It is immutable once loaded.
type GuidedStepCatalog struct {
	BuyerSteps  []GuidedStepDef `yaml:"buyer_steps"`
	VendorSteps []GuidedStepDef `yaml:"vendor_steps"`
}

// Steps whose completion date falls back to a fixed transaction column.
var stepCompletedDateFallback = map[string]string{
	"preparation":  "created_at",
	"submit_offer": "promise_to_purchase_date",
	"accept_offer": "promise_acceptance_date",
}

func LoadGuidedStepCatalog(raw []byte) (*GuidedStepCatalog, error) {
	var c GuidedStepCatalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse guided steps: %w", err)
	}
	for view, steps := range map[string][]GuidedStepDef{"buyer_steps": c.BuyerSteps, "vendor_steps": c.VendorSteps} {
		seen := map[string]bool{}
		for i, s := range steps {
			if strings.TrimSpace(s.Code) == "" {
				return nil, fmt.Errorf("%s[%d]: missing code", view, i)
			}
			if seen[s.Code] {
				return nil, fmt.Errorf("%s: duplicate step %q", view, s.Code)
			}
			seen[s.Code] = true
			for j, a := range s.Actions {
				if strings.TrimSpace(a.Code) == "" {
					return nil, fmt.Errorf("%s.%s.actions[%d]: missing code", view, s.Code, j)
				}
				if a.DueDateField != "" && !transactions.HasAttribute(a.DueDateField) {
					return nil, fmt.Errorf("%s.%s.%s: unknown due_date_field %q", view, s.Code, a.Code, a.DueDateField)
				}
			}
			if s.CompletedDateField != "" && !transactions.HasAttribute(s.CompletedDateField) {
				return nil, fmt.Errorf("%s.%s: unknown completed_date_field %q", view, s.Code, s.CompletedDateField)
			}
		}
	}
	return &c, nil
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *GuidedStepCatalog
	defaultCatalogErr  error
)

// DefaultGuidedStepCatalog parses the embedded journeys once per process.
func DefaultGuidedStepCatalog() (*GuidedStepCatalog, error) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = LoadGuidedStepCatalog(guidedStepsYAML)
	})
	return defaultCatalog, defaultCatalogErr
}

func (c *GuidedStepCatalog) allSteps() []GuidedStepDef {
	out := make([]GuidedStepDef, 0, len(c.BuyerSteps)+len(c.VendorSteps))
	out = append(out, c.BuyerSteps...)
	return append(out, c.VendorSteps...)
}

// ActionCodes lists every action code of both journeys, deduplicated.
func (c *GuidedStepCatalog) ActionCodes() []string {
	return c.collect(func(a GuidedActionDef) bool { return true })
}

// RequiredActionCodes lists the required action codes of both journeys, deduplicated.
func (c *GuidedStepCatalog) RequiredActionCodes() []string {
	return c.collect(func(a GuidedActionDef) bool { return a.Required })
}

func (c *GuidedStepCatalog) collect(keep func(GuidedActionDef) bool) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range c.allSteps() {
		for _, a := range s.Actions {
			if keep(a) && !seen[a.Code] {
				seen[a.Code] = true
				out = append(out, a.Code)
			}
		}
	}
	return out
}

// StepCodes lists every step code of both journeys, deduplicated.
func (c *GuidedStepCatalog) StepCodes() []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range c.allSteps() {
		if !seen[s.Code] {
			seen[s.Code] = true
			out = append(out, s.Code)
		}
	}
	return out
}

// ComputeProgress is the rounded share of unique required actions present
// in completedActions, capped at 100. An empty catalog yields 0.
func (c *GuidedStepCatalog) ComputeProgress(completedActions []string) int {
	required := c.RequiredActionCodes()
	if len(required) == 0 {
		return 0
	}
	done := toSet(completedActions)
	n := 0
	for _, code := range required {
		if done[code] {
			n++
		}
	}
	p := int(math.Round(100 * float64(n) / float64(len(required))))
	if p > 100 {
		p = 100
	}
	return p
}

type GuidedTransactionSummary struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	Price    float64 `json:"price"`
	Buyer    string  `json:"buyer"`
	Seller   string  `json:"seller"`
	Status   string  `json:"status"`
	Progress int     `json:"progress"`
}

type GuidedActionView struct {
	Code      string     `json:"code"`
	Title     string     `json:"title"`
	Required  bool       `json:"required"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Guidance  string     `json:"guidance,omitempty"`
}

type GuidedStepView struct {
	Code          string             `json:"code"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	Status        string             `json:"status"`
	CompletedDate *time.Time         `json:"completed_date,omitempty"`
	Actions       []GuidedActionView `json:"actions"`
}

type GuidedReminder struct {
	View       string    `json:"view"`
	StepCode   string    `json:"step_code"`
	ActionCode string    `json:"action_code"`
	Title      string    `json:"title"`
	DueDate    time.Time `json:"due_date"`
	Priority   string    `json:"priority"`
	Overdue    bool      `json:"overdue"`
}

type GuidedStepsView struct {
	Transaction GuidedTransactionSummary `json:"transaction"`
	BuyerSteps  []GuidedStepView         `json:"buyer_steps"`
	VendorSteps []GuidedStepView         `json:"vendor_steps"`
	Reminders   []GuidedReminder         `json:"reminders"`
}

// ProjectGuidedSteps renders both journeys from the transaction's checklist
// sets. It never writes.
func ProjectGuidedSteps(ctx context.Context, c *GuidedStepCatalog, trx *types.Transaction, now time.Time) GuidedStepsView {
	completedActions := toSet(trx.CompletedActions)
	completedSteps := toSet(trx.CompletedSteps)

	view := GuidedStepsView{
		Transaction: GuidedTransactionSummary{
			ID:       trx.ID,
			Name:     trx.Name,
			Address:  joinNonEmpty(", ", trx.PropertyAddress, trx.PropertyCity),
			Price:    displayPrice(trx),
			Buyer:    joinNonEmpty(", ", trx.Buyers...),
			Seller:   joinNonEmpty(", ", trx.Sellers...),
			Status:   string(trx.Status),
			Progress: c.ComputeProgress(trx.CompletedActions),
		},
		Reminders: []GuidedReminder{},
	}

	project := func(name string, steps []GuidedStepDef) []GuidedStepView {
		out := make([]GuidedStepView, 0, len(steps))
		prevCompleted := false
		for i, s := range steps {
			sv := GuidedStepView{
				Code:        s.Code,
				Title:       s.Title,
				Description: s.Description,
				Actions:     make([]GuidedActionView, 0, len(s.Actions)),
			}
			anyDone := false
			for _, a := range s.Actions {
				av := GuidedActionView{
					Code:      a.Code,
					Title:     a.Title,
					Required:  a.Required,
					Completed: completedActions[a.Code],
					Guidance:  a.Guidance,
				}
				if av.Completed {
					anyDone = true
				}
				if a.DueDateField != "" {
					av.DueDate = timeAttribute(ctx, trx, a.DueDateField)
				}
				if !av.Completed && av.DueDate != nil {
					priority := ReminderPriorityMedium
					if a.Required {
						priority = ReminderPriorityHigh
					}
					view.Reminders = append(view.Reminders, GuidedReminder{
						View:       name,
						StepCode:   s.Code,
						ActionCode: a.Code,
						Title:      a.Title,
						DueDate:    *av.DueDate,
						Priority:   priority,
						Overdue:    av.DueDate.Before(now),
					})
				}
				sv.Actions = append(sv.Actions, av)
			}

			done := stepCompleted(s, completedActions)
			switch {
			case done:
				sv.Status = StepStatusCompleted
				sv.CompletedDate = stepCompletedDate(ctx, trx, s)
			case completedSteps[s.Code], anyDone, i == 0, prevCompleted:
				sv.Status = StepStatusCurrent
			default:
				sv.Status = StepStatusUpcoming
			}
			prevCompleted = done
			out = append(out, sv)
		}
		return out
	}

	view.BuyerSteps = project("buyer", c.BuyerSteps)
	view.VendorSteps = project("vendor", c.VendorSteps)
	sort.SliceStable(view.Reminders, func(i, j int) bool {
		return view.Reminders[i].DueDate.Before(view.Reminders[j].DueDate)
	})
	return view
}

// stepCompleted requires at least one required action and all of them done.
func stepCompleted(s GuidedStepDef, completedActions map[string]bool) bool {
	required := 0
	for _, a := range s.Actions {
		if !a.Required {
			continue
		}
		required++
		if !completedActions[a.Code] {
			return false
		}
	}
	return required > 0
}

func stepCompletedDate(ctx context.Context, trx *types.Transaction, s GuidedStepDef) *time.Time {
	if s.CompletedDateField != "" {
		if t := timeAttribute(ctx, trx, s.CompletedDateField); t != nil {
			return t
		}
	}
	if field, ok := stepCompletedDateFallback[s.Code]; ok {
		return timeAttribute(ctx, trx, field)
	}
	return nil
}

func timeAttribute(ctx context.Context, trx *types.Transaction, field string) *time.Time {
	v, ok := trx.Attribute(ctx, field)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil
		}
		return &t
	case *time.Time:
		if t == nil || t.IsZero() {
			return nil
		}
		c := *t
		return &c
	}
	return nil
}

func displayPrice(trx *types.Transaction) float64 {
	switch {
	case trx.FinalPrice > 0:
		return trx.FinalPrice
	case trx.OfferedPrice > 0:
		return trx.OfferedPrice
	default:
		return trx.ListingPrice
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func toSet(codes []string) map[string]bool {
	out := make(map[string]bool, len(codes))
	for _, c := range codes {
		out[c] = true
	}
	return out
}

type GuidedStepsService interface {
	GuidedSteps(ctx context.Context, transactionID uint) (*GuidedStepsView, error)
	ToggleAction(ctx context.Context, transactionID uint, actionCode string, completed bool) ([]string, error)
	ToggleStep(ctx context.Context, transactionID uint, stepCode string, completed bool) ([]string, error)
}

type guidedStepsService struct {
	log          *logger.Logger
	transactions repos.TransactionRepo
	checklist    domainagg.TransactionActionAggregate
	catalog      *GuidedStepCatalog
	now          func() time.Time
}

func NewGuidedStepsService(
	baseLog *logger.Logger,
	transactions repos.TransactionRepo,
	checklist domainagg.TransactionActionAggregate,
	catalog *GuidedStepCatalog,
) GuidedStepsService {
	return &guidedStepsService{
		log:          baseLog.With("service", "GuidedStepsService"),
		transactions: transactions,
		checklist:    checklist,
		catalog:      catalog,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *guidedStepsService) GuidedSteps(ctx context.Context, transactionID uint) (*GuidedStepsView, error) {
	const op = "GuidedSteps.Project"
	if s == nil || s.transactions == nil || s.catalog == nil {
		return nil, fmt.Errorf("guided steps service not configured")
	}
	ctx, span := observability.Tracer().Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.Int("transaction.id", int(transactionID)))

	trx, err := s.transactions.GetByID(dbctx.Context{Ctx: ctx}, transactionID)
	if err != nil {
		return nil, err
	}
	if trx == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "Transaction introuvable", nil)
	}
	view := ProjectGuidedSteps(ctx, s.catalog, trx, s.now())
	return &view, nil
}
