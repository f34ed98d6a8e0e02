// File: internal/registration/service.go
package registration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"marketplace_onboarding/internal/audit"
	"marketplace_onboarding/internal/common"
	"marketplace_onboarding/internal/documents"
	"marketplace_onboarding/internal/draft"
	"marketplace_onboarding/internal/marketplace"
	"marketplace_onboarding/internal/metrics"
	"marketplace_onboarding/internal/notification"
	"marketplace_onboarding/internal/platform/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MarketplaceAPI is the part of the marketplace client the wizard calls.
type MarketplaceAPI interface {
	Register(ctx context.Context, req marketplace.RegisterRequest) (*marketplace.RegisteredUser, error)
	CreateSellerProfile(ctx context.Context, token string, req marketplace.SellerProfileRequest) error
	CreateBuyerProfile(ctx context.Context, token string, req marketplace.BuyerProfileRequest) error
}

// AttemptRecorder stores the outcome of final submissions.
type AttemptRecorder interface {
	Record(ctx context.Context, attempt *audit.RegistrationAttempt)
}

// Service drives the three-step registration wizard of one session.
type Service interface {
	SubmitCredentials(ctx context.Context, sid string, role Role, in CredentialsInput) (*StepResult, error)
	EnterCompanyProfile(ctx context.Context, sid string, role Role) (*StepResult, error)
	SubmitCompanyProfile(ctx context.Context, sid string, role Role, in CompanyProfileInput) (*StepResult, error)
	EnterVerification(ctx context.Context, sid string, role Role) (*StepResult, error)
	UploadDocument(ctx context.Context, sid string, role Role, docType DocumentType, file marketplace.File) (*StepResult, error)
	Submit(ctx context.Context, sid string, role Role, files map[DocumentType]marketplace.File) (*StepResult, error)
	Draft(ctx context.Context, sid string) (*StepResult, error)
	Reset(ctx context.Context, sid string) error
}

type ServiceImplementation struct {
	drafts    draft.Store
	staging   *Staging
	api       MarketplaceAPI
	uploader  documents.Uploader
	attempts  AttemptRecorder
	notifier  notification.Notifier
	validator *validator.Validate
	inflight  singleflight.Group
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new registration wizard service.
func NewService(
	drafts draft.Store,
	staging *Staging,
	api MarketplaceAPI,
	uploader documents.Uploader,
	attempts AttemptRecorder,
	notifier notification.Notifier,
	logger *zap.Logger,
) *ServiceImplementation {
	return &ServiceImplementation{
		drafts:    drafts,
		staging:   staging,
		api:       api,
		uploader:  uploader,
		attempts:  attempts,
		notifier:  notifier,
		validator: common.NewValidator(),
		logger:    logger.Named("RegistrationService"),
		now:       time.Now,
	}
}

// SubmitCredentials handles the first step. Customers are registered right away;
// sellers and buyers get a fresh draft holding only their credentials.
func (s *ServiceImplementation) SubmitCredentials(ctx context.Context, sid string, role Role, in CredentialsInput) (*StepResult, error) {
	in.normalize()
	if err := validateCredentials(s.validator, role, &in); err != nil {
		metrics.IncStep(string(role), "credentials", "invalid")
		return nil, err
	}

	if role == RoleCustomer {
		return s.registerCustomer(ctx, sid, in)
	}

	next, err := Transition(StateEmpty, EventCredentialsSaved)
	if err != nil {
		return nil, err
	}
	d := &draft.Draft{
		Role:      role.Normalize(),
		Step1:     in.toDraft(),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.drafts.Write(ctx, sid, d); err != nil {
		metrics.IncStep(string(role), "credentials", "failed")
		return nil, fmt.Errorf("saving registration draft: %w", err)
	}
	metrics.IncStep(string(role), "credentials", "saved")

	return &StepResult{
		State:      next,
		RedirectTo: role.Step2Route(),
		Role:       role,
	}, nil
}

func (s *ServiceImplementation) registerCustomer(ctx context.Context, sid string, in CredentialsInput) (*StepResult, error) {
	log := logger.FromContext(ctx, s.logger)
	role := RoleCustomer

	user, err := s.api.Register(ctx, marketplace.RegisterRequest{
		Name:         in.FullName,
		Email:        in.WorkEmail,
		Password:     in.Password,
		MobileNumber: in.MobileNumber,
		Role:         role.Normalize(),
	})
	if err != nil {
		log.Warn("Customer registration failed", zap.String("session_id", sid), zap.Error(err))
		metrics.IncStep(string(role), "credentials", "failed")
		s.record(ctx, sid, role, in.WorkEmail, "", nil, audit.StageRegister, err, nil)
		return nil, upstreamAPIError(err, StateEmpty, audit.StageRegister)
	}

	next, err := Transition(StateEmpty, EventCustomerRegistered)
	if err != nil {
		return nil, err
	}
	metrics.IncStep(string(role), "credentials", "saved")
	s.record(ctx, sid, role, in.WorkEmail, "", user, "", nil, nil)

	return &StepResult{
		State:      next,
		RedirectTo: role.DoneRoute(),
		Role:       role,
		Message:    "Registration successful.",
	}, nil
}

// EnterCompanyProfile guards the second step.
func (s *ServiceImplementation) EnterCompanyProfile(ctx context.Context, sid string, role Role) (*StepResult, error) {
	d, redirect, err := s.guard(ctx, sid, role, "company")
	if err != nil || redirect != nil {
		return redirect, err
	}
	return &StepResult{
		State:      StateOf(d),
		RedirectTo: role.Step2Route(),
		Role:       role,
		Draft:      d.Redacted(),
	}, nil
}

// SubmitCompanyProfile merges the company data into the draft, keeping step1.
func (s *ServiceImplementation) SubmitCompanyProfile(ctx context.Context, sid string, role Role, in CompanyProfileInput) (*StepResult, error) {
	d, redirect, err := s.guard(ctx, sid, role, "company")
	if err != nil || redirect != nil {
		return redirect, err
	}

	in.normalize()
	if err := validateCompanyProfile(s.validator, &in); err != nil {
		metrics.IncStep(string(role), "company", "invalid")
		return nil, err
	}

	next, err := Transition(StateOf(d), EventProfileSaved)
	if err != nil {
		return nil, err
	}
	d.Step2 = in.toDraft()
	d.UpdatedAt = s.now().UTC()
	if err := s.drafts.Write(ctx, sid, d); err != nil {
		metrics.IncStep(string(role), "company", "failed")
		return nil, fmt.Errorf("saving registration draft: %w", err)
	}
	metrics.IncStep(string(role), "company", "saved")

	return &StepResult{
		State:      next,
		RedirectTo: role.Step3Route(),
		Role:       role,
	}, nil
}

// EnterVerification guards the third step and reports the documents staged so far.
func (s *ServiceImplementation) EnterVerification(ctx context.Context, sid string, role Role) (*StepResult, error) {
	d, redirect, err := s.guard(ctx, sid, role, "verification")
	if err != nil || redirect != nil {
		return redirect, err
	}
	return &StepResult{
		State:      StateOf(d),
		RedirectTo: role.Step3Route(),
		Role:       role,
		Documents:  s.staging.Get(sid).Fields(),
		Draft:      d.Redacted(),
	}, nil
}

// UploadDocument eagerly uploads one document into its staging slot.
// A failed upload empties the slot so the client can pick the file again.
func (s *ServiceImplementation) UploadDocument(ctx context.Context, sid string, role Role, docType DocumentType, file marketplace.File) (*StepResult, error) {
	d, redirect, err := s.guard(ctx, sid, role, "document")
	if err != nil || redirect != nil {
		return redirect, err
	}
	log := logger.FromContext(ctx, s.logger)

	urls, err := s.uploader.Upload(ctx, sid, []marketplace.File{file})
	if err == nil && (len(urls) != 1 || urls[0] == "") {
		err = fmt.Errorf("upload returned %d urls for one file: %w", len(urls), marketplace.ErrUnexpectedResponse)
	}
	if err != nil {
		s.staging.Clear(sid, docType)
		metrics.IncDocumentUpload(string(docType), "eager", "failed")
		log.Warn("Document upload failed",
			zap.String("session_id", sid),
			zap.String("document_type", string(docType)),
			zap.Error(err),
		)
		return nil, common.NewUploadAPIError(fmt.Sprintf("Failed to upload %s. Please try again.", docType.label())).
			WithDetails(map[string]string{"document_type": string(docType), "reason": marketplace.ErrorMessage(err)})
	}

	s.staging.Set(sid, docType, urls[0])
	metrics.IncDocumentUpload(string(docType), "eager", "ok")

	return &StepResult{
		State:      StateOf(d),
		RedirectTo: role.Step3Route(),
		Role:       role,
		Documents:  s.staging.Get(sid).Fields(),
	}, nil
}

// Submit runs the final registration. Concurrent submits of one session and role share
// a single execution and its result. The execution is detached from the caller's
// cancellation so a client that disconnects does not fail the others that joined it.
func (s *ServiceImplementation) Submit(ctx context.Context, sid string, role Role, files map[DocumentType]marketplace.File) (*StepResult, error) {
	shared := context.WithoutCancel(ctx)
	v, err, joined := s.inflight.Do(sid+"|"+string(role), func() (interface{}, error) {
		return s.submit(shared, sid, role, files)
	})
	if joined {
		logger.FromContext(ctx, s.logger).Debug("Joined in-flight submission", zap.String("session_id", sid))
	}
	if err != nil {
		return nil, err
	}
	return v.(*StepResult), nil
}

func (s *ServiceImplementation) submit(ctx context.Context, sid string, role Role, files map[DocumentType]marketplace.File) (*StepResult, error) {
	log := logger.FromContext(ctx, s.logger).With(zap.String("session_id", sid), zap.String("role", string(role)))

	d, err := s.readDraft(ctx, sid, role)
	if err != nil {
		return nil, err
	}
	if err := s.checkSubmittable(d, files); err != nil {
		email := ""
		if d != nil && d.Step1 != nil {
			email = d.Step1.WorkEmail
		}
		metrics.IncSubmission(string(role), "failed_"+string(audit.StageValidation))
		s.record(ctx, sid, role, email, "", nil, audit.StageValidation, err, nil)
		return nil, err
	}

	state, err := Transition(StateOf(d), EventSubmitStarted)
	if err != nil {
		return nil, err
	}
	step1, step2 := d.Step1, d.Step2

	fail := func(stage audit.Stage, cause error, urls DocumentURLs) (*StepResult, error) {
		failed, _ := Transition(state, EventSubmitFailed)
		resting, _ := Transition(failed, EventRetry)
		log.Warn("Registration submission failed", zap.String("stage", string(stage)), zap.Error(cause))
		metrics.IncSubmission(string(role), "failed_"+string(stage))
		s.record(ctx, sid, role, step1.WorkEmail, step2.CompanyName, nil, stage, cause, urls)
		if stage == audit.StageUpload {
			return nil, common.NewUploadAPIError(marketplace.ErrorMessage(cause)).
				WithDetails(map[string]string{"state": string(resting), "stage": string(stage)})
		}
		return nil, upstreamAPIError(cause, resting, stage)
	}

	user, err := s.api.Register(ctx, marketplace.RegisterRequest{
		Name:            step1.FullName,
		Email:           step1.WorkEmail,
		Password:        step1.Password,
		ConfirmPassword: step1.ConfirmPassword,
		Role:            role.Normalize(),
	})
	if err != nil {
		return fail(audit.StageRegister, err, nil)
	}

	urls, err := s.resolveDocuments(ctx, sid, files)
	if err != nil {
		return fail(audit.StageUpload, err, urls)
	}

	docs := urls.toMarketplace()
	switch role {
	case RoleSeller:
		err = s.api.CreateSellerProfile(ctx, user.Token, marketplace.SellerProfileRequest{
			CompanyName:  step2.CompanyName,
			Country:      step2.Country,
			City:         step2.City,
			BusinessType: step2.BusinessType,
			Documents:    docs,
		})
	case RoleBuyer:
		err = s.api.CreateBuyerProfile(ctx, user.Token, marketplace.BuyerProfileRequest{
			CompanyName: step2.CompanyName,
			Country:     step2.Country,
			City:        step2.City,
			Documents:   docs,
		})
	}
	if err != nil {
		return fail(audit.StageProfile, err, urls)
	}

	done, err := Transition(state, EventSubmitSucceeded)
	if err != nil {
		return nil, err
	}

	if err := s.uploader.Attach(ctx, sid, urls.Ordered()); err != nil {
		log.Error("Failed to mark documents as attached", zap.Error(err))
	}
	if err := s.drafts.Clear(ctx, sid); err != nil {
		log.Error("Failed to clear registration draft after submission", zap.Error(err))
	}
	s.staging.Reset(sid)
	s.record(ctx, sid, role, step1.WorkEmail, step2.CompanyName, user, "", nil, urls)

	result := &StepResult{
		State:      done,
		RedirectTo: role.DoneRoute(),
		Role:       role,
		Documents:  urls.Fields(),
		Message:    "Registration successful.",
	}
	if user.PendingVerification() {
		result.RedirectTo = PendingVerificationRoute
		result.Message = "Registration received. Your documents are pending verification."
		metrics.IncSubmission(string(role), "pending")
		s.notifyPending(ctx, role, step1, step2, urls)
	} else {
		metrics.IncSubmission(string(role), "verified")
	}
	log.Info("Registration submitted", zap.String("redirect_to", result.RedirectTo))
	return result, nil
}

// checkSubmittable enforces that both steps are in the draft and all three files were sent.
func (s *ServiceImplementation) checkSubmittable(d *draft.Draft, files map[DocumentType]marketplace.File) error {
	details := map[string]string{}
	for _, dt := range DocumentTypes {
		if f, ok := files[dt]; !ok || f.Open == nil {
			details[string(dt)] = fmt.Sprintf("The %s file is required.", dt.label())
		}
	}
	if d == nil || d.Step1 == nil || d.Step2 == nil {
		details["draft"] = msgIncompleteDraft
		return common.NewValidationAPIError(details).WithMessage(msgIncompleteDraft)
	}
	if len(details) > 0 {
		return common.NewValidationAPIError(details).WithMessage(msgMissingDocuments)
	}
	return nil
}

// resolveDocuments keeps the staged URLs and bulk uploads only the documents that
// have none, in one call. Nothing is uploaded when every document is staged.
func (s *ServiceImplementation) resolveDocuments(ctx context.Context, sid string, files map[DocumentType]marketplace.File) (DocumentURLs, error) {
	urls := s.staging.Get(sid)
	missing := urls.Missing()
	if len(missing) == 0 {
		return urls, nil
	}

	batch := make([]marketplace.File, 0, len(missing))
	for _, dt := range missing {
		batch = append(batch, files[dt])
	}
	uploaded, err := s.uploader.Upload(ctx, sid, batch)
	if err == nil && len(uploaded) != len(batch) {
		err = fmt.Errorf("bulk upload returned %d urls for %d files: %w", len(uploaded), len(batch), marketplace.ErrUnexpectedResponse)
	}
	if err != nil {
		for _, dt := range missing {
			metrics.IncDocumentUpload(string(dt), "bulk", "failed")
		}
		return urls, err
	}
	for i, dt := range missing {
		urls[dt] = uploaded[i]
		// Keep them staged so a retry after a later failure does not upload again.
		s.staging.Set(sid, dt, uploaded[i])
		metrics.IncDocumentUpload(string(dt), "bulk", "ok")
	}
	return urls, nil
}

func (s *ServiceImplementation) notifyPending(ctx context.Context, role Role, step1 *draft.Credentials, step2 *draft.CompanyProfile, urls DocumentURLs) {
	err := s.notifier.NotifyPendingVerification(ctx, notification.PendingVerification{
		Role:        role.Normalize(),
		Email:       step1.WorkEmail,
		FullName:    step1.FullName,
		CompanyName: step2.CompanyName,
		Country:     step2.Country,
		City:        step2.City,
		Documents:   urls.Fields(),
	})
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("Pending verification notification failed", zap.Error(err))
	}
}

// Draft returns the session's draft without passwords.
func (s *ServiceImplementation) Draft(ctx context.Context, sid string) (*StepResult, error) {
	d, err := s.drafts.Read(ctx, sid)
	if errors.Is(err, draft.ErrNotFound) {
		return &StepResult{State: StateEmpty}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading registration draft: %w", err)
	}
	role := Role(d.Role)
	return &StepResult{
		State:      StateOf(d),
		RedirectTo: resumeRoute(role, StateOf(d)),
		Role:       role,
		Documents:  s.staging.Get(sid).Fields(),
		Draft:      d.Redacted(),
	}, nil
}

// Reset discards the draft and every staged document URL of the session.
func (s *ServiceImplementation) Reset(ctx context.Context, sid string) error {
	if err := s.drafts.Clear(ctx, sid); err != nil {
		return fmt.Errorf("clearing registration draft: %w", err)
	}
	s.staging.Reset(sid)
	return nil
}

// guard returns the draft when it belongs to role, or a redirect back to step one.
func (s *ServiceImplementation) guard(ctx context.Context, sid string, role Role, step string) (*draft.Draft, *StepResult, error) {
	d, err := s.readDraft(ctx, sid, role)
	if err != nil {
		return nil, nil, err
	}
	if d == nil || d.Step1 == nil {
		metrics.IncStep(string(role), step, "redirected")
		return nil, &StepResult{
			State:      StateEmpty,
			RedirectTo: role.Step1Route(),
			Role:       role,
			Message:    "Please complete the first registration step.",
		}, nil
	}
	return d, nil, nil
}

// readDraft returns nil when the session has no draft for role.
func (s *ServiceImplementation) readDraft(ctx context.Context, sid string, role Role) (*draft.Draft, error) {
	d, err := s.drafts.Read(ctx, sid)
	if errors.Is(err, draft.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading registration draft: %w", err)
	}
	if d.Role != role.Normalize() {
		return nil, nil
	}
	return d, nil
}

func (s *ServiceImplementation) record(
	ctx context.Context,
	sid string,
	role Role,
	email, company string,
	user *marketplace.RegisteredUser,
	stage audit.Stage,
	cause error,
	urls DocumentURLs,
) {
	attempt := &audit.RegistrationAttempt{
		SessionID:    sid,
		Role:         role.Normalize(),
		Email:        email,
		CompanyName:  company,
		Outcome:      audit.OutcomeSucceeded,
		DocumentURLs: audit.URLList(urls.Ordered()),
	}
	if stage != "" {
		attempt.Outcome = audit.OutcomeFailed
		attempt.FailedStage = &stage
		attempt.Message = failureMessage(cause)
	}
	if user != nil {
		attempt.Verified = user.IsVarified
		attempt.UpstreamUser = user.ID
	}
	s.attempts.Record(ctx, attempt)
}

func failureMessage(err error) string {
	if apiErr, ok := common.IsAPIError(err); ok {
		return apiErr.Message
	}
	return marketplace.ErrorMessage(err)
}

// upstreamAPIError maps a marketplace failure to the error returned to the client.
// Upstream 4xx statuses pass through; server and transport failures become 502.
func upstreamAPIError(err error, state State, stage audit.Stage) *common.APIError {
	status := http.StatusUnprocessableEntity
	var upErr *marketplace.UpstreamError
	switch {
	case errors.As(err, &upErr):
		if upErr.StatusCode >= 500 {
			status = http.StatusBadGateway
		} else if upErr.StatusCode >= 400 {
			status = upErr.StatusCode
		}
	case marketplace.IsTransport(err), errors.Is(err, marketplace.ErrUnexpectedResponse):
		status = http.StatusBadGateway
	}
	return common.NewRegistrationAPIError(status, marketplace.ErrorMessage(err)).
		WithDetails(map[string]string{"state": string(state), "stage": string(stage)})
}

func resumeRoute(role Role, state State) string {
	switch state {
	case StateStep1Filled:
		return role.Step2Route()
	case StateStep2Filled:
		return role.Step3Route()
	}
	return role.Step1Route()
}
