package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"autuacao-mobile/internal/attachment"
	"autuacao-mobile/internal/form"
	"autuacao-mobile/internal/model"
	"autuacao-mobile/internal/refdata"
)

// FormSession bundles the three collaborators of one open form: the state
// manager, its reference-data resolver and its attachment list.
type FormSession struct {
	Form        *form.Session
	Resolver    *refdata.Resolver
	Attachments *attachment.Manager
}

// FormView is what the host screen renders after every operation.
type FormView struct {
	SessionID   uuid.UUID               `json:"session_id"`
	Report      model.AutoInfracao      `json:"report"`
	BaseState   form.TierState          `json:"base_state"`
	ScopedState form.TierState          `json:"scoped_state"`
	EditMode    bool                    `json:"edit_mode"`
	Attachments []attachment.Attachment `json:"attachments"`
	Collections refdata.Collections     `json:"collections"`
}

// FormService owns the open form sessions and drives the cascade: every
// upstream change clears downstream state in the same step that triggers
// the dependent reload.
type FormService struct {
	fetcher        refdata.Fetcher
	previews       attachment.PreviewStore
	maxAttachments int
	autos          *AutoService
	log            zerolog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*FormSession
}

func NewFormService(fetcher refdata.Fetcher, previews attachment.PreviewStore, maxAttachments int, autos *AutoService, log zerolog.Logger) *FormService {
	return &FormService{
		fetcher:        fetcher,
		previews:       previews,
		maxAttachments: maxAttachments,
		autos:          autos,
		log:            log.With().Str("component", "form").Logger(),
		sessions:       make(map[uuid.UUID]*FormSession),
	}
}

// Open starts a form session, either blank or editing an existing draft,
// and resolves the base reference data for the session's date. In edit
// mode with an operator already on the draft, the scoped tier loads too.
func (s *FormService) Open(ctx context.Context, auditID *uuid.UUID) (*FormView, []model.Notice, error) {
	var fs *form.Session
	if auditID != nil {
		draft, err := s.autos.Get(ctx, *auditID)
		if err != nil {
			return nil, nil, err
		}
		fs = form.NewEditSession(*draft)
	} else {
		fs = form.NewSession()
	}

	session := &FormSession{
		Form:        fs,
		Resolver:    refdata.NewResolver(s.fetcher, s.log),
		Attachments: attachment.NewManager(s.previews, s.maxAttachments, s.log),
	}

	s.mu.Lock()
	s.sessions[fs.ID] = session
	s.mu.Unlock()

	report := fs.Snapshot()
	notices, err := s.loadBase(ctx, session, report.DataInfracao)
	if err != nil {
		return nil, nil, err
	}

	if report.SiglaServico != "" {
		scoped, err := s.loadScoped(ctx, session, report.SiglaServico, report.DataInfracao)
		if err != nil {
			return nil, nil, err
		}
		notices = append(notices, scoped...)
	}

	view := s.view(session)
	return &view, notices, nil
}

func (s *FormService) Get(sessionID uuid.UUID) (*FormView, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	view := s.view(session)
	return &view, nil
}

// Close releases the session's preview handles and forgets it. This is the
// unmount path; closing an unknown session is a no-op.
func (s *FormService) Close(sessionID uuid.UUID) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if ok {
		session.Attachments.Clear()
	}
}

// SetDate applies the date cascade: the operator and everything scoped by
// it are cleared before the tier-1 reload is issued.
func (s *FormService) SetDate(ctx context.Context, sessionID uuid.UUID, date string) (*FormView, []model.Notice, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(date) == "" {
		return nil, nil, ErrInvalidInput
	}

	session.Form.SetDate(date)
	notices, err := s.loadBase(ctx, session, date)
	if err != nil {
		return nil, nil, err
	}

	view := s.view(session)
	return &view, notices, nil
}

// SelectOperator resolves the operator against the current roster; on a
// match the scoped tier reloads with the operator's sigla. A stale id only
// clears the selection.
func (s *FormService) SelectOperator(ctx context.Context, sessionID uuid.UUID, operatorID int) (*FormView, []model.Notice, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, nil, err
	}

	collections := session.Resolver.Snapshot()
	sigla, found := session.Form.SelectOperator(operatorID, collections.Operadoras)

	var notices []model.Notice
	if found {
		date := session.Form.Snapshot().DataInfracao
		notices, err = s.loadScoped(ctx, session, sigla, date)
		if err != nil {
			return nil, nil, err
		}
	}

	view := s.view(session)
	return &view, notices, nil
}

type Selection string

const (
	SelectVehicle    Selection = "vehicle"
	SelectPreposto   Selection = "preposto"
	SelectLinha      Selection = "linha"
	SelectInfracao   Selection = "infracao"
	SelectLocalidade Selection = "localidade"
)

// Select applies one of the non-cascading selections. A stale id clears the
// reference's fields instead of failing.
func (s *FormService) Select(sessionID uuid.UUID, kind Selection, id int) (*FormView, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	collections := session.Resolver.Snapshot()
	switch kind {
	case SelectVehicle:
		session.Form.SelectVehicle(id, collections.Veiculos)
	case SelectPreposto:
		session.Form.SelectPreposto(id, collections.Prepostos)
	case SelectLinha:
		session.Form.SelectLinha(id, collections.Linhas)
	case SelectInfracao:
		session.Form.SelectInfracao(id, collections.Infracoes)
	case SelectLocalidade:
		session.Form.SelectLocalidade(id, collections.Localidades)
	default:
		return nil, ErrInvalidInput
	}

	view := s.view(session)
	return &view, nil
}

func (s *FormService) Patch(sessionID uuid.UUID, patch form.FieldPatch) (*FormView, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	session.Form.ApplyPatch(patch)
	view := s.view(session)
	return &view, nil
}

func (s *FormService) AddAttachments(sessionID uuid.UUID, files []attachment.File) (*FormView, []model.Notice, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, nil, err
	}
	_, notices := session.Attachments.Add(files)
	view := s.view(session)
	return &view, notices, nil
}

func (s *FormService) RemoveAttachment(sessionID, attachmentID uuid.UUID) (*FormView, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	session.Attachments.Remove(attachmentID)
	view := s.view(session)
	return &view, nil
}

func (s *FormService) Save(ctx context.Context, sessionID uuid.UUID) (*FormView, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.autos.Save(ctx, session.Form, session.Attachments); err != nil {
		return nil, err
	}
	view := s.view(session)
	return &view, nil
}

func (s *FormService) Submit(ctx context.Context, sessionID uuid.UUID, principal model.Principal) (*FormView, error) {
	session, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.autos.Submit(ctx, principal, session.Form, session.Attachments); err != nil {
		return nil, err
	}
	view := s.view(session)
	return &view, nil
}

func (s *FormService) lookup(sessionID uuid.UUID) (*FormSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *FormService) loadBase(ctx context.Context, session *FormSession, date string) ([]model.Notice, error) {
	session.Form.MarkBase(form.TierLoading)
	notices, err := session.Resolver.LoadBase(ctx, date)
	if err != nil {
		session.Form.MarkBase(form.TierUnresolved)
		return nil, ErrInvalidInput
	}
	session.Form.MarkBase(form.TierResolved)
	return notices, nil
}

func (s *FormService) loadScoped(ctx context.Context, session *FormSession, sigla, date string) ([]model.Notice, error) {
	session.Form.MarkScoped(form.TierLoading)
	notices, err := session.Resolver.LoadOperatorScoped(ctx, sigla, date)
	if err != nil {
		session.Form.MarkScoped(form.TierUnresolved)
		return nil, ErrInvalidInput
	}
	session.Form.MarkScoped(form.TierResolved)
	return notices, nil
}

func (s *FormService) view(session *FormSession) FormView {
	return FormView{
		SessionID:   session.Form.ID,
		Report:      session.Form.Snapshot(),
		BaseState:   session.Form.BaseState(),
		ScopedState: session.Form.ScopedState(),
		EditMode:    session.Form.EditMode(),
		Attachments: session.Attachments.List(),
		Collections: session.Resolver.Snapshot(),
	}
}
