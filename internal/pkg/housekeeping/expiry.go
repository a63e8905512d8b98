package housekeeping

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ZapResell/ZapAdmin/app/models"
	"github.com/ZapResell/ZapAdmin/app/repository"
	"github.com/ZapResell/ZapAdmin/internal/pkg/evolution"
	"github.com/ZapResell/ZapAdmin/internal/pkg/mail"
)

// StatusFlipper suspends a subscription. The production implementation calls
// the internal suspend endpoint over HTTP with the elevated service token so
// the flip goes through the same handler path as admin actions.
type StatusFlipper interface {
	Suspend(ctx context.Context, subscriptionID uint) error
}

// RowResult records the outcome of one expired subscription.
type RowResult struct {
	SubscriptionID uint   `json:"subscription_id"`
	UserID         uint   `json:"user_id"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

// Summary is the batch outcome returned by Run.
type Summary struct {
	Processed int         `json:"processed"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Results   []RowResult `json:"results"`
}

// Service performs the credit-expiry sweep. One row's failure never aborts
// the batch; already-suspended rows are excluded by the scan, so re-running
// is idempotent.
type Service struct {
	subs      repository.SubscriptionRepository
	users     repository.UserRepository
	instances repository.InstanceRepository
	configs   repository.ConfigRepository
	flipper   StatusFlipper
}

// NewService wires the sweep from repositories and a status flipper.
func NewService(repos *repository.Repositories, flipper StatusFlipper) *Service {
	return &Service{
		subs:      repos.Subscription,
		users:     repos.User,
		instances: repos.Instance,
		configs:   repos.Config,
		flipper:   flipper,
	}
}

// Run scans for active subscriptions past their credit expiry and suspends
// them one by one. Secondary effects (Evolution logout, client mail) are
// best-effort and never fail the row.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	expired, err := s.subs.ListExpired(time.Now())
	if err != nil {
		return nil, fmt.Errorf("expiry scan failed: %w", err)
	}

	summary := &Summary{Processed: len(expired)}
	for _, sub := range expired {
		result := RowResult{SubscriptionID: sub.ID, UserID: sub.UserID}

		if err := s.flipper.Suspend(ctx, sub.ID); err != nil {
			result.Error = err.Error()
			summary.Failed++
			summary.Results = append(summary.Results, result)
			log.Printf("housekeeping: suspend failed for subscription %d: %v", sub.ID, err)
			continue
		}
		result.Success = true
		summary.Succeeded++
		summary.Results = append(summary.Results, result)

		s.disconnectInstances(ctx, sub.UserID)
		s.notifyClient(sub)
	}

	return summary, nil
}

// disconnectInstances logs out all of the owner's instances on the Evolution
// server. Failures are logged and swallowed.
func (s *Service) disconnectInstances(ctx context.Context, userID uint) {
	cfg, err := s.configs.GetEvolution()
	if err != nil || cfg == nil || !cfg.Enabled {
		return
	}
	client, err := evolution.NewClient(cfg)
	if err != nil {
		return
	}

	instances, err := s.instances.GetByUserID(userID)
	if err != nil {
		log.Printf("housekeeping: instance lookup failed for user %d: %v", userID, err)
		return
	}
	for _, instance := range instances {
		if err := client.Logout(ctx, instance.Name); err != nil {
			log.Printf("housekeeping: evolution logout failed for %s: %v", instance.Name, err)
		}
	}
}

// notifyClient sends the expiry mail. Best-effort.
func (s *Service) notifyClient(sub models.Subscription) {
	user, err := s.users.GetByID(sub.UserID)
	if err != nil {
		log.Printf("housekeeping: user lookup failed for subscription %d: %v", sub.ID, err)
		return
	}
	subject := "Seus créditos expiraram"
	body := fmt.Sprintf("<p>Olá %s,</p><p>os créditos do plano <b>%s</b> expiraram e sua assinatura foi suspensa. Renove para reativar suas instâncias.</p>", user.Name, sub.PlanName)
	_ = mail.SendMail(user.Email, subject, body)
}
