package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"autuacao-mobile/internal/attachment"
	"autuacao-mobile/internal/form"
	"autuacao-mobile/internal/model"
	"autuacao-mobile/internal/semob"
	"autuacao-mobile/internal/store"
)

type fakeProtocolAPI struct {
	createCalls  int
	lastPreAutos []semob.PreAuto
	lastArquivo  semob.Arquivo
	createResult semob.CreateAutoResult
	createErr    error
	pendingCount int
	seiCalls     int
}

func (f *fakeProtocolAPI) CreateAuto(_ context.Context, preAutos []semob.PreAuto, _ semob.Documento, arquivo semob.Arquivo) (semob.CreateAutoResult, error) {
	f.createCalls++
	f.lastPreAutos = preAutos
	f.lastArquivo = arquivo
	if f.createErr != nil {
		return semob.CreateAutoResult{}, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeProtocolAPI) PreAutoCount(context.Context, int) (int, error) {
	return f.pendingCount, nil
}

func (f *fakeProtocolAPI) SendToSEI(context.Context, int) error {
	f.seiCalls++
	return nil
}

type nopPreviewStore struct{}

func (nopPreviewStore) Acquire(id uuid.UUID, name string, _ []byte) (string, error) {
	return "preview/" + id.String(), nil
}

func (nopPreviewStore) Release(string) error { return nil }

func newAutoService(t *testing.T, api ProtocolAPI) *AutoService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.AutoInfracao{}))
	return NewAutoService(store.NewDraftRepository(db), api, zerolog.Nop())
}

var (
	testPrincipal = model.Principal{
		IDUsuario:       42,
		IDFuncionario:   17,
		NomeFuncionario: "Maria Souza",
		Username:        "fiscal01",
		Sigla:           "FISCAL01",
	}
	testOperadoras = []model.Operadora{
		{IDPermissao: 10, NomeOperadora: "Viação Planalto", SiglaServico: "VPL"},
	}
	testVeiculos = []model.Veiculo{
		{ID: 101, Placa: "ABC1D23", NumeroVeiculo: "4411", ModeloVeiculo: "MB O-500", CorVeiculo: "Azul", AnoVeiculo: 2019},
	}
	testLinhas = []model.Linha{
		{IDLinha: 301, CodigoLinha: "0.130", DenominacaoLinha: "Rodoviária - Gama"},
	}
	testInfracoes = []model.Infracao{
		{IDInfracao: 501, CodigoInfracao: 7020, DescricaoInfracao: "Trafegar fora do itinerário"},
	}
	testLocalidades = []model.Localidade{
		{ID: 601, Descricao: "RA I - Brasília"},
	}
)

func completeSession(t *testing.T) *form.Session {
	t.Helper()
	s := form.NewSession()
	s.SetDate("2025-10-03")
	_, found := s.SelectOperator(10, testOperadoras)
	require.True(t, found)
	require.True(t, s.SelectVehicle(101, testVeiculos))
	require.True(t, s.SelectLinha(301, testLinhas))
	require.True(t, s.SelectInfracao(501, testInfracoes))
	require.True(t, s.SelectLocalidade(601, testLocalidades))
	return s
}

func attachmentsWithPhoto(t *testing.T) *attachment.Manager {
	t.Helper()
	m := attachment.NewManager(nopPreviewStore{}, 1, zerolog.Nop())
	added, _ := m.Add([]attachment.File{{Name: "foto.jpg", ContentType: "image/jpeg", Content: []byte("jpeg-bytes")}})
	require.Len(t, added, 1)
	return m
}

func TestSaveStampsDraft(t *testing.T) {
	svc := newAutoService(t, &fakeProtocolAPI{})
	session := completeSession(t)
	attachments := attachmentsWithPhoto(t)

	saved, err := svc.Save(context.Background(), session, attachments)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, model.ReportStatusDraft, saved.Situacao)
	assert.Equal(t, []string{"foto.jpg"}, saved.AttachmentNames)

	loaded, err := svc.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC1D23", loaded.Placa)
	assert.Equal(t, []string{"foto.jpg"}, loaded.AttachmentNames)

	// A second save keeps the identity stable.
	again, err := svc.Save(context.Background(), session, attachments)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)

	all, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSubmitValidatesBeforeNetwork(t *testing.T) {
	api := &fakeProtocolAPI{}
	svc := newAutoService(t, api)

	session := form.NewSession()
	attachments := attachment.NewManager(nopPreviewStore{}, 1, zerolog.Nop())

	_, err := svc.Submit(context.Background(), testPrincipal, session, attachments)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Missing, "anexo (exatamente um)")
	assert.Contains(t, vErr.Missing, "operadora")
	assert.Contains(t, vErr.Missing, "infração")
	assert.Zero(t, api.createCalls)
}

func TestSubmitRequiresAuthentication(t *testing.T) {
	api := &fakeProtocolAPI{}
	svc := newAutoService(t, api)

	_, err := svc.Submit(context.Background(), model.Principal{}, completeSession(t), attachmentsWithPhoto(t))
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Zero(t, api.createCalls)
}

func TestSubmitSuccess(t *testing.T) {
	api := &fakeProtocolAPI{
		createResult: semob.CreateAutoResult{Message: "pre auto cadastrado", NumeroDocumento: "2025099"},
	}
	svc := newAutoService(t, api)
	session := completeSession(t)
	attachments := attachmentsWithPhoto(t)

	final, err := svc.Submit(context.Background(), testPrincipal, session, attachments)
	require.NoError(t, err)

	assert.Equal(t, "2025099", final.Numero)
	assert.Equal(t, model.ReportStatusSubmitted, final.Situacao)
	assert.Zero(t, attachments.Count())

	require.Equal(t, 1, api.createCalls)
	require.Len(t, api.lastPreAutos, 1)
	assert.Equal(t, 17, api.lastPreAutos[0].IDFuncionario)
	assert.Equal(t, "ABC1D23", api.lastPreAutos[0].Placa)
	assert.Equal(t, "fiscal01", api.lastPreAutos[0].UsuarioWeb)
	assert.Equal(t, "foto.jpg", api.lastArquivo.Name)

	loaded, err := svc.Get(context.Background(), final.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportStatusSubmitted, loaded.Situacao)
	assert.Equal(t, "2025099", loaded.Numero)
}

func TestSubmitFailureLeavesStateUntouched(t *testing.T) {
	api := &fakeProtocolAPI{createErr: semob.ErrTimeout}
	svc := newAutoService(t, api)
	session := completeSession(t)
	attachments := attachmentsWithPhoto(t)

	_, err := svc.Submit(context.Background(), testPrincipal, session, attachments)
	assert.ErrorIs(t, err, semob.ErrTimeout)

	snapshot := session.Snapshot()
	assert.Equal(t, model.ReportStatusDraft, snapshot.Situacao)
	assert.Empty(t, snapshot.Numero)
	assert.Equal(t, 1, attachments.Count())

	all, listErr := svc.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, all)
}

func TestSubmitWhileBusy(t *testing.T) {
	svc := newAutoService(t, &fakeProtocolAPI{})
	session := completeSession(t)
	require.True(t, session.BeginOp())
	defer session.EndOp()

	_, err := svc.Submit(context.Background(), testPrincipal, session, attachmentsWithPhoto(t))
	assert.ErrorIs(t, err, ErrBusy)
}

func TestDeleteUnknownIsNotFound(t *testing.T) {
	svc := newAutoService(t, &fakeProtocolAPI{})
	assert.ErrorIs(t, svc.Delete(context.Background(), uuid.New()), ErrNotFound)
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPendingCountAndDispatch(t *testing.T) {
	api := &fakeProtocolAPI{pendingCount: 3}
	svc := newAutoService(t, api)

	count, err := svc.PendingCount(context.Background(), testPrincipal)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, svc.DispatchSEI(context.Background(), testPrincipal))
	assert.Equal(t, 1, api.seiCalls)

	_, err = svc.PendingCount(context.Background(), model.Principal{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, svc.DispatchSEI(context.Background(), model.Principal{}), ErrUnauthenticated)
}
