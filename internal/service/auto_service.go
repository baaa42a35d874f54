package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"autuacao-mobile/internal/attachment"
	"autuacao-mobile/internal/form"
	"autuacao-mobile/internal/model"
	"autuacao-mobile/internal/semob"
	"autuacao-mobile/internal/store"
)

// ProtocolAPI is the slice of the backend client the orchestrator needs.
type ProtocolAPI interface {
	CreateAuto(ctx context.Context, preAutos []semob.PreAuto, documento semob.Documento, arquivo semob.Arquivo) (semob.CreateAutoResult, error)
	PreAutoCount(ctx context.Context, userID int) (int, error)
	SendToSEI(ctx context.Context, idFuncionario int) error
}

// AutoService orchestrates local saves and remote submissions of violation
// reports, plus the list/view/delete operations over the draft store.
type AutoService struct {
	drafts *store.DraftRepository
	api    ProtocolAPI
	log    zerolog.Logger
}

func NewAutoService(drafts *store.DraftRepository, api ProtocolAPI, log zerolog.Logger) *AutoService {
	return &AutoService{
		drafts: drafts,
		api:    api,
		log:    log.With().Str("component", "autos").Logger(),
	}
}

// Save persists the session's report as a local draft. A fresh report gets
// its id and creation stamp here; the status is always forced back to draft.
func (s *AutoService) Save(ctx context.Context, session *form.Session, attachments *attachment.Manager) (model.AutoInfracao, error) {
	if !session.BeginOp() {
		return model.AutoInfracao{}, ErrBusy
	}
	defer session.EndOp()

	snapshot := session.PrepareSave(attachments.Names())
	if err := s.drafts.Upsert(ctx, &snapshot); err != nil {
		return model.AutoInfracao{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.log.Info().Str("auto_id", snapshot.ID.String()).Msg("draft saved")
	return snapshot, nil
}

// Submit validates the report, protocols it against the backend and, on
// success only, flips the status, adopts the assigned number and persists.
// On failure local state is left exactly as it was.
func (s *AutoService) Submit(ctx context.Context, principal model.Principal, session *form.Session, attachments *attachment.Manager) (model.AutoInfracao, error) {
	if !principal.IsAuthenticated() {
		return model.AutoInfracao{}, ErrUnauthenticated
	}
	if !session.BeginOp() {
		return model.AutoInfracao{}, ErrBusy
	}
	defer session.EndOp()

	snapshot := session.Snapshot()

	var missing []string
	arquivo, ok := attachments.Single()
	if !ok {
		missing = append(missing, "anexo (exatamente um)")
	}
	if snapshot.IDPermissao == 0 {
		missing = append(missing, "operadora")
	}
	if snapshot.IDPermVei == 0 {
		missing = append(missing, "veículo")
	}
	if snapshot.IDLinha == 0 {
		missing = append(missing, "linha")
	}
	if snapshot.IDInfracao == 0 {
		missing = append(missing, "infração")
	}
	if snapshot.IDLocalidade == 0 {
		missing = append(missing, "localidade")
	}
	if len(missing) > 0 {
		return model.AutoInfracao{}, &ValidationError{Missing: missing}
	}

	// The payload is built from the untouched snapshot; nothing local is
	// mutated until the backend accepts the protocol.
	payload := snapshot
	if payload.CreatedAt.IsZero() {
		payload.CreatedAt = time.Now()
	}
	preAuto := semob.BuildPreAuto(payload, principal)
	documento := semob.Documento{
		IDUsuario:  principal.IDUsuario,
		UsuarioWeb: principal.Username,
	}

	result, err := s.api.CreateAuto(ctx, []semob.PreAuto{preAuto}, documento, semob.Arquivo{
		Name:        arquivo.Name,
		ContentType: arquivo.ContentType,
		Content:     arquivo.Content,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("protocol request failed")
		return model.AutoInfracao{}, err
	}

	session.PrepareSubmit(attachments.Names())
	final := session.ApplySubmitted(result.NumeroDocumento)
	if err := s.drafts.Upsert(ctx, &final); err != nil {
		return model.AutoInfracao{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	attachments.Clear()
	s.log.Info().Str("auto_id", final.ID.String()).Str("numero", final.Numero).Msg("auto protocolled")
	return final, nil
}

func (s *AutoService) List(ctx context.Context) ([]model.AutoInfracao, error) {
	return s.drafts.List(ctx)
}

func (s *AutoService) Get(ctx context.Context, id uuid.UUID) (*model.AutoInfracao, error) {
	auto, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		if err == store.ErrDraftNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return auto, nil
}

func (s *AutoService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.drafts.Delete(ctx, id)
	if err == store.ErrDraftNotFound {
		return ErrNotFound
	}
	return err
}

// PendingCount proxies the backend's pre-auto counter for the inspector.
func (s *AutoService) PendingCount(ctx context.Context, principal model.Principal) (int, error) {
	if !principal.IsAuthenticated() {
		return 0, ErrUnauthenticated
	}
	return s.api.PreAutoCount(ctx, principal.IDUsuario)
}

// DispatchSEI asks the backend to forward the inspector's protocolled autos
// to the official document system.
func (s *AutoService) DispatchSEI(ctx context.Context, principal model.Principal) error {
	if !principal.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return s.api.SendToSEI(ctx, principal.IDFuncionario)
}
