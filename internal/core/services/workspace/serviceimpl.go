package workspace

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/core/services/catalog"
	"gitlab.com/codearena.net/internal/core/services/reconcile"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

var _ IWorkspaceService = (*workspaceService)(nil)

type workspaceService struct {
	catalog        catalog.ICatalogService
	submissionPort secondary.SubmissionPort
	reconciler     reconcile.IReconciler
	channel        primary.RealtimeChannel
	validator      *validator.Validate
	logger         primary.Logger

	mu       sync.RWMutex
	problem  *domain.Problem
	language domain.Language
}

type Option func(*workspaceService)

// WithLanguage sets the language selected before any problem is opened.
func WithLanguage(lang domain.Language) Option {
	return func(s *workspaceService) {
		s.language = lang
	}
}

// NewWorkspaceService wires the flow. channel may be nil, in which case submissions are
// created but never tracked live.
func NewWorkspaceService(
	catalog catalog.ICatalogService,
	submissionPort secondary.SubmissionPort,
	reconciler reconcile.IReconciler,
	channel primary.RealtimeChannel,
	logger primary.Logger,
	options ...Option,
) IWorkspaceService {
	s := &workspaceService{
		catalog:        catalog,
		submissionPort: submissionPort,
		reconciler:     reconciler,
		channel:        channel,
		validator:      validator.New(),
		logger:         logger,
		language:       domain.LanguageJava,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// SelectProblem abandons whatever was being tracked before fetching the new problem.
func (s *workspaceService) SelectProblem(ctx context.Context, problemID string) (*domain.Problem, error) {
	s.reconciler.Reset()

	p, err := s.catalog.Get(ctx, problemID)
	if err != nil {
		s.logger.Error("Failed to fetch problem", "problemId", problemID, "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.problem = p
	s.mu.Unlock()

	s.reconciler.SetProblem(p.ID, len(p.TestCases))
	s.logger.Info("Problem selected", "problemId", p.ID, "tests", len(p.TestCases))
	return p, nil
}

func (s *workspaceService) SelectLanguage(lang domain.Language) (string, error) {
	parsed, ok := domain.ParseLanguage(string(lang))
	if !ok {
		return "", fmt.Errorf("%w: %s", errs.ErrUnsupportedLang, lang)
	}
	s.reconciler.Reset()

	s.mu.Lock()
	s.language = parsed
	s.mu.Unlock()
	return s.StarterCode(), nil
}

func (s *workspaceService) Problem() *domain.Problem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.problem
}

func (s *workspaceService) Language() domain.Language {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

func (s *workspaceService) StarterCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return catalog.StarterCode(s.problem, s.language)
}

// Submit creates a submission and starts tracking it. Updates for the previous
// submission stop applying as soon as Submit is called.
func (s *workspaceService) Submit(ctx context.Context, code string) (*domain.Submission, error) {
	s.mu.RLock()
	problem, lang := s.problem, s.language
	s.mu.RUnlock()

	if problem == nil {
		return nil, errs.ErrNoProblemSelected
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errs.ErrEmptyCode
	}

	req := domain.CreateSubmissionRequest{ProblemID: problem.ID, Code: code, Language: lang}
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}

	s.reconciler.Detach()
	submission, err := s.submissionPort.CreateSubmission(ctx, problem.ID, req)
	if err != nil {
		s.reconciler.CreationFailed(err)
		return nil, err
	}
	if submission.ProblemID == "" {
		submission.ProblemID = problem.ID
	}
	if submission.Language == "" {
		submission.Language = lang
	}

	if err := s.reconciler.Begin(submission); err != nil {
		s.reconciler.CreationFailed(err)
		return nil, err
	}
	if s.channel != nil {
		s.reconciler.Attach(s.channel)
	}
	s.logger.Info("Submission created", "submissionId", submission.ID, "problemId", problem.ID, "language", lang)
	return submission, nil
}

// Resume seeds the view from the fetched submission, then asks the service once more after
// subscribing. A result reached between the fetch and the subscription is not lost.
func (s *workspaceService) Resume(ctx context.Context, submission *domain.Submission) error {
	if submission == nil || submission.ID == "" {
		return errs.ErrMissingSubmissionID
	}
	s.reconciler.Detach()

	if submission.ProblemID != "" {
		p, err := s.catalog.Get(ctx, submission.ProblemID)
		if err != nil {
			s.logger.Warn("Problem unavailable, test count unknown", "problemId", submission.ProblemID, "error", err)
		} else {
			s.mu.Lock()
			s.problem = p
			if submission.Language != "" {
				s.language = submission.Language
			}
			s.mu.Unlock()
			s.reconciler.SetProblem(p.ID, len(p.TestCases))
		}
	}

	if err := s.reconciler.Begin(submission); err != nil {
		return err
	}
	s.reconciler.HandleUpdate(submission.ID, submission.Payload())
	if s.channel == nil {
		return nil
	}
	s.reconciler.Attach(s.channel)

	latest, err := s.submissionPort.GetSubmission(ctx, submission.ID)
	if err != nil {
		s.logger.Warn("Failed to re-check submission", "submissionId", submission.ID, "error", err)
		return nil
	}
	s.reconciler.HandleUpdate(submission.ID, latest.Payload())
	s.logger.Info("Resumed submission", "submissionId", submission.ID, "state", s.reconciler.View().State)
	return nil
}

func (s *workspaceService) Close() {
	s.reconciler.Detach()
}
