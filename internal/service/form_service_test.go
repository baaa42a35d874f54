package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autuacao-mobile/internal/attachment"
	"autuacao-mobile/internal/form"
	"autuacao-mobile/internal/model"
	"autuacao-mobile/internal/semob"
)

type lookupFetcher struct {
	linhasCalls int
}

func (f *lookupFetcher) Operadoras(context.Context, string) ([]model.Operadora, error) {
	return testOperadoras, nil
}

func (f *lookupFetcher) Veiculos(context.Context) ([]model.Veiculo, error) {
	return testVeiculos, nil
}

func (f *lookupFetcher) Linhas(context.Context, string, string) ([]model.Linha, error) {
	f.linhasCalls++
	return testLinhas, nil
}

func (f *lookupFetcher) Prepostos(context.Context, string) ([]model.Preposto, error) {
	return []model.Preposto{{IDPreposto: 401, NomePreposto: "João da Silva", NumeroRegistro: "P-7781"}}, nil
}

func (f *lookupFetcher) Infracoes(context.Context) ([]model.Infracao, error) {
	return testInfracoes, nil
}

func (f *lookupFetcher) Localidades(context.Context) ([]model.Localidade, error) {
	return testLocalidades, nil
}

func newFormService(t *testing.T) (*FormService, *AutoService, *lookupFetcher) {
	t.Helper()
	fetcher := &lookupFetcher{}
	autos := newAutoService(t, &fakeProtocolAPI{})
	svc := NewFormService(fetcher, nopPreviewStore{}, 1, autos, zerolog.Nop())
	return svc, autos, fetcher
}

func TestOpenBlankFormResolvesBase(t *testing.T) {
	svc, _, _ := newFormService(t)

	view, notices, err := svc.Open(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, notices)

	assert.Equal(t, model.ReportTipoSTPC, view.Report.Tipo)
	assert.NotEmpty(t, view.Report.DataInfracao)
	assert.Equal(t, form.TierResolved, view.BaseState)
	assert.Equal(t, form.TierUnresolved, view.ScopedState)
	assert.False(t, view.EditMode)
	assert.Len(t, view.Collections.Operadoras, 1)
	assert.Len(t, view.Collections.Veiculos, 1)
	assert.Empty(t, view.Collections.Linhas)
}

func TestSelectOperatorLoadsScopedTier(t *testing.T) {
	svc, _, fetcher := newFormService(t)

	opened, _, err := svc.Open(context.Background(), nil)
	require.NoError(t, err)

	view, _, err := svc.SelectOperator(context.Background(), opened.SessionID, 10)
	require.NoError(t, err)

	assert.Equal(t, 10, view.Report.IDPermissao)
	assert.Equal(t, "VPL", view.Report.SiglaServico)
	assert.Equal(t, form.TierResolved, view.ScopedState)
	assert.Len(t, view.Collections.Linhas, 1)
	assert.Equal(t, 1, fetcher.linhasCalls)
}

func TestSelectOperatorStaleIDSkipsScopedLoad(t *testing.T) {
	svc, _, fetcher := newFormService(t)

	opened, _, err := svc.Open(context.Background(), nil)
	require.NoError(t, err)

	view, _, err := svc.SelectOperator(context.Background(), opened.SessionID, 999)
	require.NoError(t, err)

	assert.Zero(t, view.Report.IDPermissao)
	assert.Equal(t, form.TierUnresolved, view.ScopedState)
	assert.Zero(t, fetcher.linhasCalls)
}

func TestSetDateCascadesThroughService(t *testing.T) {
	svc, _, _ := newFormService(t)

	opened, _, err := svc.Open(context.Background(), nil)
	require.NoError(t, err)
	_, _, err = svc.SelectOperator(context.Background(), opened.SessionID, 10)
	require.NoError(t, err)

	view, _, err := svc.SetDate(context.Background(), opened.SessionID, "2025-10-04")
	require.NoError(t, err)

	assert.Equal(t, "2025-10-04", view.Report.DataInfracao)
	assert.Zero(t, view.Report.IDPermissao)
	assert.Empty(t, view.Report.SiglaServico)
	assert.Equal(t, form.TierResolved, view.BaseState)
	assert.Equal(t, form.TierUnresolved, view.ScopedState)
	assert.Empty(t, view.Collections.Linhas)
}

func TestSetDateRejectsBlank(t *testing.T) {
	svc, _, _ := newFormService(t)
	opened, _, err := svc.Open(context.Background(), nil)
	require.NoError(t, err)

	_, _, err = svc.SetDate(context.Background(), opened.SessionID, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOpenEditSessionLoadsScopedTier(t *testing.T) {
	svc, autos, _ := newFormService(t)

	draft := completeSession(t).PrepareSave(nil)
	require.NoError(t, autos.drafts.Upsert(context.Background(), &draft))

	view, _, err := svc.Open(context.Background(), &draft.ID)
	require.NoError(t, err)

	assert.True(t, view.EditMode)
	assert.Equal(t, draft.ID, view.Report.ID)
	assert.Equal(t, "VPL", view.Report.SiglaServico)
	assert.Equal(t, form.TierResolved, view.ScopedState)
	assert.Len(t, view.Collections.Linhas, 1)
}

func TestOpenUnknownDraft(t *testing.T) {
	svc, _, _ := newFormService(t)
	unknown := uuid.New()
	_, _, err := svc.Open(context.Background(), &unknown)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloseForgetsSession(t *testing.T) {
	svc, _, _ := newFormService(t)
	opened, _, err := svc.Open(context.Background(), nil)
	require.NoError(t, err)

	svc.Close(opened.SessionID)
	_, err = svc.Get(opened.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Closing again is a no-op.
	svc.Close(opened.SessionID)
}

func TestSelectUnknownKind(t *testing.T) {
	svc, _, _ := newFormService(t)
	opened, _, err := svc.Open(context.Background(), nil)
	require.NoError(t, err)

	_, err = svc.Select(opened.SessionID, Selection("driver"), 1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitThroughFormService(t *testing.T) {
	fetcher := &lookupFetcher{}
	api := &fakeProtocolAPI{
		createResult: semob.CreateAutoResult{Message: "pre auto cadastrado", NumeroDocumento: "2025099"},
	}
	autos := newAutoService(t, api)
	svc := NewFormService(fetcher, nopPreviewStore{}, 1, autos, zerolog.Nop())

	opened, _, err := svc.Open(context.Background(), nil)
	require.NoError(t, err)
	sid := opened.SessionID

	_, _, err = svc.SelectOperator(context.Background(), sid, 10)
	require.NoError(t, err)
	_, err = svc.Select(sid, SelectVehicle, 101)
	require.NoError(t, err)
	_, err = svc.Select(sid, SelectLinha, 301)
	require.NoError(t, err)
	_, err = svc.Select(sid, SelectInfracao, 501)
	require.NoError(t, err)
	_, err = svc.Select(sid, SelectLocalidade, 601)
	require.NoError(t, err)

	_, _, err = svc.AddAttachments(sid, []attachment.File{
		{Name: "foto.jpg", ContentType: "image/jpeg", Content: []byte("jpeg-bytes")},
	})
	require.NoError(t, err)

	view, err := svc.Submit(context.Background(), sid, testPrincipal)
	require.NoError(t, err)

	assert.Equal(t, model.ReportStatusSubmitted, view.Report.Situacao)
	assert.Equal(t, "2025099", view.Report.Numero)
	assert.Empty(t, view.Attachments)
	assert.Equal(t, 1, api.createCalls)
}
