package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/alumnet/internal/alumnet/domain"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/store"
	"github.com/aussiebroadwan/alumnet/internal/alumnet/telemetry"
	"github.com/aussiebroadwan/alumnet/pkg/idx"
	"github.com/aussiebroadwan/alumnet/pkg/safego"
)

const (
	DefaultMailInterval    = 30 * time.Second
	DefaultMailMaxAttempts = 5
	mailDispatchBatchSize  = 50
)

// Message is one rendered outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a single message. Implementations must be safe for
// sequential use from the dispatch loop.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// DispatchResult counts the outcomes of one DispatchPending run.
type DispatchResult struct {
	Sent    int
	Retried int
	Failed  int
}

// MailService is the invitation outbox. Mail is written as a MailJob in the
// same transaction as the record it announces and delivered later by a
// background loop, so delivery outcomes stay queryable per batch.
type MailService struct {
	Store       store.Store
	Sender      Sender
	Logger      *slog.Logger
	BaseURL     string
	Interval    time.Duration
	MaxAttempts int

	mu      sync.Mutex // one dispatch run at a time
	started atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	kickCh  chan struct{}
}

// NewMailService creates the outbox worker. Zero interval or attempts fall
// back to the defaults.
func NewMailService(
	st store.Store,
	sender Sender,
	logger *slog.Logger,
	baseURL string,
	interval time.Duration,
	maxAttempts int,
) *MailService {
	if interval <= 0 {
		interval = DefaultMailInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMailMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MailService{
		Store:       st,
		Sender:      sender,
		Logger:      logger,
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Interval:    interval,
		MaxAttempts: maxAttempts,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		kickCh:      make(chan struct{}, 1),
	}
}

// InviteLink is the account creation URL embedded in invitation mail.
func (s *MailService) InviteLink(rawToken string) string {
	return s.BaseURL + "/create-account?token=" + url.QueryEscape(rawToken)
}

// EnqueueInvitation queues the invitation for inv on st, which should be the
// transaction that persists the invite.
func (s *MailService) EnqueueInvitation(
	ctx context.Context,
	st store.Store,
	inv domain.Invite,
	rawToken string,
	institutionName string,
) (domain.MailJob, error) {
	audience := "Alumni"
	if inv.UserType == domain.UserTypeStudent {
		audience = "Student"
	}

	body := strings.Join([]string{
		fmt.Sprintf("Hello %s,", audience),
		"",
		fmt.Sprintf("You have been invited to join the %s Alumni Platform.", institutionName),
		"",
		"To create your account, visit: " + s.InviteLink(rawToken),
		"",
		fmt.Sprintf("This invitation link expires on %s. If you have any questions, please contact your institution's administration.",
			inv.ExpiresAt.UTC().Format("2 January 2006")),
		"",
		"Alumni Platform Team",
	}, "\r\n")

	job := domain.MailJob{
		ID:        idx.New().String(),
		BatchID:   inv.BatchID,
		InviteID:  inv.ID,
		Recipient: inv.Email,
		Subject:   fmt.Sprintf("Account Invitation - %s Alumni Platform", institutionName),
		Body:      body,
		Status:    domain.MailPending,
		CreatedAt: time.Now(),
	}
	if err := st.MailJobs().CreateMailJob(ctx, job); err != nil {
		return domain.MailJob{}, fmt.Errorf("queue invitation mail: %w", err)
	}
	return job, nil
}

// EnqueueAdminCredentials queues the temporary password mail for an
// institution admin, either newly created or after a password reset.
func (s *MailService) EnqueueAdminCredentials(
	ctx context.Context,
	st store.Store,
	admin domain.User,
	password string,
	institutionName string,
	reset bool,
) error {
	intro := fmt.Sprintf("Your admin account has been created for the %s Alumni Platform.", institutionName)
	subject := fmt.Sprintf("Admin Account - %s Alumni Platform", institutionName)
	if reset {
		intro = fmt.Sprintf("Your admin password for the %s Alumni Platform has been reset.", institutionName)
		subject = fmt.Sprintf("Admin Password Reset - %s Alumni Platform", institutionName)
	}

	body := strings.Join([]string{
		"Hello Administrator,",
		"",
		intro,
		"",
		"Login Credentials:",
		"- Login URL: " + s.BaseURL + "/login",
		"- Username: " + admin.Username,
		"- Temporary Password: " + password,
		"",
		"You must change this password on your first login.",
		"",
		"Alumni Platform Team",
	}, "\r\n")

	return st.MailJobs().CreateMailJob(ctx, domain.MailJob{
		ID:        idx.New().String(),
		Recipient: admin.Email,
		Subject:   subject,
		Body:      body,
		Status:    domain.MailPending,
		CreatedAt: time.Now(),
	})
}

// Start begins the background dispatch loop. Call Stop to shut it down.
func (s *MailService) Start() {
	s.started.Store(true)
	go s.run()
	s.Logger.Info("mail dispatcher started", slog.Duration("interval", s.Interval))
}

// Stop shuts down the loop, waiting for an in-flight run to finish.
func (s *MailService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("mail dispatcher stopped")
}

// Running reports whether the dispatch loop was started and has not exited.
func (s *MailService) Running() bool {
	return loopRunning(&s.started, s.doneCh)
}

// Kick asks the loop to dispatch now instead of waiting for the next tick.
func (s *MailService) Kick() {
	select {
	case s.kickCh <- struct{}{}:
	default:
	}
}

func (s *MailService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.dispatchLogged()
	for {
		select {
		case <-ticker.C:
			s.dispatchLogged()
		case <-s.kickCh:
			s.dispatchLogged()
		case <-s.stopCh:
			return
		}
	}
}

func (s *MailService) dispatchLogged() {
	done := make(chan struct{})
	// A panicking Sender must not kill the loop.
	safego.Go(func() {
		defer close(done)
		res, err := s.DispatchPending(context.Background())
		if err != nil {
			s.Logger.Error("mail dispatch failed", slog.Any("error", err))
			return
		}
		if res != (DispatchResult{}) {
			s.Logger.Info("mail dispatch completed",
				slog.Int("sent", res.Sent),
				slog.Int("retried", res.Retried),
				slog.Int("failed", res.Failed),
			)
		}
	})
	<-done
}

// DispatchPending delivers every pending job, fewest attempts first. Each job
// is tried at most once per run and marked sent or has its failure recorded
// independently of the others.
func (s *MailService) DispatchPending(ctx context.Context) (DispatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res  DispatchResult
		seen = make(map[string]struct{})
	)
	for {
		jobs, err := s.Store.MailJobs().ListPendingMailJobs(ctx, mailDispatchBatchSize)
		if err != nil {
			return res, fmt.Errorf("list pending mail: %w", err)
		}
		if len(seen) == 0 {
			telemetry.MailQueueDepth.Set(float64(len(jobs)))
		}

		fresh := 0
		for _, job := range jobs {
			if _, ok := seen[job.ID]; ok {
				continue
			}
			seen[job.ID] = struct{}{}
			fresh++

			if err := ctx.Err(); err != nil {
				return res, err
			}
			outcome, err := s.deliver(ctx, job)
			if err != nil {
				return res, err
			}
			switch outcome {
			case domain.MailSent:
				res.Sent++
			case domain.MailFailed:
				res.Failed++
			default:
				res.Retried++
			}
		}
		if fresh == 0 || len(jobs) < mailDispatchBatchSize {
			return res, nil
		}
	}
}

func (s *MailService) deliver(ctx context.Context, job domain.MailJob) (domain.MailStatus, error) {
	log := s.Logger.With(slog.String("mail_job_id", job.ID), slog.String("batch_id", job.BatchID))

	sendErr := s.Sender.Send(ctx, Message{To: job.Recipient, Subject: job.Subject, Body: job.Body})
	if sendErr == nil {
		if err := s.Store.MailJobs().MarkMailJobSent(ctx, job.ID, time.Now()); err != nil {
			return "", fmt.Errorf("mark mail sent: %w", err)
		}
		telemetry.MailJobsTotal.WithLabelValues("sent").Inc()
		return domain.MailSent, nil
	}

	if err := s.Store.MailJobs().RecordMailJobFailure(ctx, job.ID, sendErr.Error(), s.MaxAttempts); err != nil {
		return "", fmt.Errorf("record mail failure: %w", err)
	}
	if job.Attempts+1 >= s.MaxAttempts {
		log.Error("mail delivery failed permanently",
			slog.Int("attempts", job.Attempts+1),
			slog.Any("error", sendErr),
		)
		telemetry.MailJobsTotal.WithLabelValues("failed").Inc()
		return domain.MailFailed, nil
	}
	log.Warn("mail delivery failed, will retry",
		slog.Int("attempts", job.Attempts+1),
		slog.Any("error", sendErr),
	)
	telemetry.MailJobsTotal.WithLabelValues("retry").Inc()
	return domain.MailPending, nil
}
