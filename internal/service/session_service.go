package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
)

// sessionLabelPattern matches academic year labels like "2025-2026".
var sessionLabelPattern = regexp.MustCompile(`^(\d{4})-(\d{4})$`)

type profileRepository interface {
	Get(ctx context.Context) (*models.SchoolProfile, error)
	Update(ctx context.Context, profile *models.SchoolProfile) error
	RenameSessionLinks(ctx context.Context, oldLabel, newLabel string) error
	SessionLinkCounts(ctx context.Context, session string) (models.SessionLinkCounts, error)
}

// ProfileListener is notified after the school profile changes, with the
// freshly persisted state. Used to keep per-session views in sync with the
// current-session pointer.
type ProfileListener func(profile models.SchoolProfile)

// UpdateProfileRequest edits the school's identity fields. Session
// membership and the current-session pointer have dedicated operations and
// are deliberately absent here.
type UpdateProfileRequest struct {
	SchoolName       string   `json:"school_name" validate:"required"`
	Address          string   `json:"address"`
	Phone            string   `json:"phone"`
	Email            string   `json:"email" validate:"omitempty,email"`
	FeesReceiptTerms string   `json:"fees_receipt_terms"`
	SliderImages     []string `json:"slider_images"`
}

// SessionService owns the school profile singleton: the registered session
// labels, the current-session pointer and the identity fields. All session
// mutations go through here so the invariants hold: labels are unique,
// the current session is always a member, and a session with linked active
// records cannot be removed.
type SessionService struct {
	repo      profileRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.RWMutex
	listeners []ProfileListener
}

// SessionServiceParams groups constructor dependencies.
type SessionServiceParams struct {
	Repo     profileRepository
	Cache    *CacheService
	Validate *validator.Validate
	Logger   *zap.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(params SessionServiceParams) *SessionService {
	if params.Validate == nil {
		params.Validate = validator.New()
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &SessionService{
		repo:      params.Repo,
		cache:     params.Cache,
		validator: params.Validate,
		logger:    params.Logger,
		now:       time.Now,
	}
}

// Subscribe registers a listener invoked after every profile change.
func (s *SessionService) Subscribe(listener ProfileListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, listener)
}

// Profile returns the school profile, from cache when possible.
func (s *SessionService) Profile(ctx context.Context) (*models.SchoolProfile, error) {
	if s.cache != nil {
		var cached models.SchoolProfile
		if err := s.cache.GetProfile(ctx, &cached); err == nil {
			return &cached, nil
		}
	}

	profile, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}

	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, profile); err != nil {
			s.logger.Warn("profile cache write failed", zap.Error(err))
		}
	}
	return profile, nil
}

// UpdateProfile edits the identity fields of the school profile.
func (s *SessionService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.SchoolProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	profile, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	profile.SchoolName = req.SchoolName
	profile.Address = req.Address
	profile.Phone = req.Phone
	profile.Email = req.Email
	profile.FeesReceiptTerms = req.FeesReceiptTerms
	profile.SliderImages = req.SliderImages

	return s.persist(ctx, profile)
}

// Sessions lists the registered session labels, newest first, plus the
// current pointer.
func (s *SessionService) Sessions(ctx context.Context) ([]string, string, error) {
	profile, err := s.Profile(ctx)
	if err != nil {
		return nil, "", err
	}
	return profile.Sessions, profile.CurrentSession, nil
}

// NextSessionLabel derives the label following the latest registered one,
// e.g. "2025-2026" after "2024-2025". Falls back to the current calendar
// year's label when no parsable label exists.
func (s *SessionService) NextSessionLabel(ctx context.Context) (string, error) {
	profile, err := s.Profile(ctx)
	if err != nil {
		return "", err
	}

	latest := -1
	for _, label := range profile.Sessions {
		m := sessionLabelPattern.FindStringSubmatch(label)
		if m == nil {
			continue
		}
		start, _ := strconv.Atoi(m[1])
		if start > latest {
			latest = start
		}
	}
	if latest < 0 {
		year := s.now().Year()
		return fmt.Sprintf("%d-%d", year, year+1), nil
	}
	return fmt.Sprintf("%d-%d", latest+1, latest+2), nil
}

// AddSession registers a new session label, keeping the list sorted newest
// first. The first session ever added becomes current.
func (s *SessionService) AddSession(ctx context.Context, label string) (*models.SchoolProfile, error) {
	if !sessionLabelPattern.MatchString(label) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session label %q must look like 2025-2026", label))
	}

	profile, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	if profile.HasSession(label) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("session %s already exists", label))
	}

	profile.Sessions = append(profile.Sessions, label)
	sort.Sort(sort.Reverse(sort.StringSlice(profile.Sessions)))
	if profile.CurrentSession == "" {
		profile.CurrentSession = label
	}
	return s.persist(ctx, profile)
}

// RenameSession relabels a session everywhere: the profile list, the
// current pointer if it matched, and every linked record.
func (s *SessionService) RenameSession(ctx context.Context, oldLabel, newLabel string) (*models.SchoolProfile, error) {
	if !sessionLabelPattern.MatchString(newLabel) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session label %q must look like 2025-2026", newLabel))
	}

	profile, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	if !profile.HasSession(oldLabel) {
		return nil, appErrors.Clone(appErrors.ErrUnknownSession, "")
	}
	if oldLabel == newLabel {
		return profile, nil
	}
	if profile.HasSession(newLabel) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("session %s already exists", newLabel))
	}

	if err := s.repo.RenameSessionLinks(ctx, oldLabel, newLabel); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to relabel linked records")
	}

	for i, label := range profile.Sessions {
		if label == oldLabel {
			profile.Sessions[i] = newLabel
		}
	}
	if profile.CurrentSession == oldLabel {
		profile.CurrentSession = newLabel
	}
	return s.persist(ctx, profile)
}

// SetCurrentSession moves the current pointer to an already registered label.
func (s *SessionService) SetCurrentSession(ctx context.Context, label string) (*models.SchoolProfile, error) {
	profile, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	if !profile.HasSession(label) {
		return nil, appErrors.Clone(appErrors.ErrUnknownSession, "")
	}
	if profile.CurrentSession == label {
		return profile, nil
	}

	profile.CurrentSession = label
	return s.persist(ctx, profile)
}

// DeleteSession removes a session label. The current session is protected,
// and so is any session that active records still reference; trashed
// records do not count, matching what the operator sees in the UI.
func (s *SessionService) DeleteSession(ctx context.Context, label string) (*models.SchoolProfile, error) {
	profile, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load school profile")
	}
	if !profile.HasSession(label) {
		return nil, appErrors.Clone(appErrors.ErrUnknownSession, "")
	}
	if profile.CurrentSession == label {
		return nil, appErrors.Clone(appErrors.ErrActiveSession, "")
	}

	counts, err := s.repo.SessionLinkCounts(ctx, label)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count linked records")
	}
	if !counts.Empty() {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrSessionLinked, ""), counts)
	}

	kept := profile.Sessions[:0]
	for _, existing := range profile.Sessions {
		if existing != label {
			kept = append(kept, existing)
		}
	}
	profile.Sessions = kept
	return s.persist(ctx, profile)
}

func (s *SessionService) persist(ctx context.Context, profile *models.SchoolProfile) (*models.SchoolProfile, error) {
	if err := s.repo.Update(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update school profile")
	}

	if s.cache != nil {
		if err := s.cache.InvalidateProfile(ctx); err != nil {
			s.logger.Warn("profile cache invalidation failed", zap.Error(err))
		}
		if err := s.cache.Invalidate(ctx, dashboardKeyPrefix+":*"); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
		}
	}

	s.notify(*profile)
	return profile, nil
}

func (s *SessionService) notify(profile models.SchoolProfile) {
	s.mu.RLock()
	listeners := make([]ProfileListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(profile)
	}
}
