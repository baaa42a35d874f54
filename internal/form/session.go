package form

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"autuacao-mobile/internal/model"
)

// TierState tracks one reference-data dependency tier. The clear-downstream
// step of each cascade is a mandatory transition, never an afterthought.
type TierState string

const (
	TierUnresolved TierState = "UNRESOLVED"
	TierLoading    TierState = "LOADING"
	TierResolved   TierState = "RESOLVED"
	TierStale      TierState = "STALE"
)

// Session is the single source of truth for one report being edited. All
// mutations happen under one lock and every reader gets a full snapshot,
// so no partially-cascaded state is ever observable.
type Session struct {
	ID uuid.UUID

	mu       sync.Mutex
	report   model.AutoInfracao
	base     TierState // operators/vehicles/violations/localities vs. date
	scoped   TierState // lines/prepostos vs. selected operator
	busy     bool
	editMode bool
}

func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID: uuid.New(),
		report: model.AutoInfracao{
			Tipo:         model.ReportTipoSTPC,
			DataInfracao: now.Format("2006-01-02"),
			HoraInfracao: now.Format("15:04"),
			Situacao:     model.ReportStatusDraft,
		},
		base:   TierUnresolved,
		scoped: TierUnresolved,
	}
}

// NewEditSession wraps an existing draft for editing.
func NewEditSession(report model.AutoInfracao) *Session {
	s := NewSession()
	s.report = report
	s.editMode = true
	return s
}

func (s *Session) Snapshot() model.AutoInfracao {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() model.AutoInfracao {
	copied := s.report
	copied.AttachmentNames = append([]string(nil), s.report.AttachmentNames...)
	return copied
}

func (s *Session) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

// SetDate changes the occurrence date. The operator roster is date-scoped,
// so the operator and everything below it are cleared in the same step.
func (s *Session) SetDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report.DataInfracao = date
	s.report.ClearOperator()
	s.base = TierStale
	s.scoped = TierUnresolved
}

// SelectOperator resolves the operator by permission id against the current
// roster. Downstream selections are cleared either way; a stale id also
// clears the operator itself and reports that no scoped reload is due.
func (s *Session) SelectOperator(id int, operadoras []model.Operadora) (sigla string, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report.ClearOperator()
	s.scoped = TierUnresolved

	for _, op := range operadoras {
		if op.IDPermissao == id {
			s.report.IDPermissao = op.IDPermissao
			s.report.SiglaOperador = op.SiglaServico
			s.report.NomeOperador = op.NomeOperadora
			s.report.SiglaServico = op.SiglaServico
			s.scoped = TierStale
			return op.SiglaServico, true
		}
	}
	return "", false
}

func (s *Session) SelectVehicle(id int, veiculos []model.Veiculo) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report.ClearVehicle()
	for _, v := range veiculos {
		if v.ID == id {
			s.report.IDPermVei = v.ID
			s.report.NumeroVeiculo = v.NumeroVeiculo
			s.report.Placa = v.Placa
			s.report.MarcaModelo = v.ModeloVeiculo
			s.report.Cor = v.CorVeiculo
			s.report.AnoFabricacao = v.AnoVeiculo
			return true
		}
	}
	return false
}

func (s *Session) SelectPreposto(id int, prepostos []model.Preposto) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report.ClearPreposto()
	for _, p := range prepostos {
		if p.IDPreposto == id {
			s.report.IDPreposto = p.IDPreposto
			s.report.NomePreposto = p.NomePreposto
			s.report.NumeroPreposto = p.NumeroRegistro
			return true
		}
	}
	return false
}

func (s *Session) SelectLinha(id int, linhas []model.Linha) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report.ClearLinha()
	for _, l := range linhas {
		if l.IDLinha == id {
			s.report.IDLinha = l.IDLinha
			s.report.CodigoLinha = l.CodigoLinha
			s.report.DenominacaoLinha = l.DenominacaoLinha
			return true
		}
	}
	return false
}

func (s *Session) SelectInfracao(id int, infracoes []model.Infracao) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report.IDInfracao = 0
	for _, inf := range infracoes {
		if inf.IDInfracao == id {
			s.report.IDInfracao = inf.IDInfracao
			return true
		}
	}
	return false
}

func (s *Session) SelectLocalidade(id int, localidades []model.Localidade) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report.ClearLocalidade()
	for _, loc := range localidades {
		if loc.ID == id {
			s.report.IDLocalidade = loc.ID
			s.report.RegiaoAdministrativa = loc.Descricao
			return true
		}
	}
	return false
}

// FieldPatch updates free-text fields. Nil pointers leave fields untouched.
type FieldPatch struct {
	OrdemServico  *string  `json:"ordem_servico"`
	HoraInfracao  *string  `json:"hora_infracao"`
	NumeroVeiculo *string  `json:"numero_veiculo"`
	Placa         *string  `json:"placa"`
	MarcaModelo   *string  `json:"marca_modelo"`
	Cor           *string  `json:"cor"`
	AnoFabricacao *int     `json:"ano_fabricacao"`
	LocalInfracao *string  `json:"local_infracao"`
	DescricaoFato *string  `json:"descricao_fato"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}

func (s *Session) ApplyPatch(patch FieldPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.OrdemServico != nil {
		s.report.OrdemServico = *patch.OrdemServico
	}
	if patch.HoraInfracao != nil {
		s.report.HoraInfracao = *patch.HoraInfracao
	}
	if patch.NumeroVeiculo != nil {
		s.report.NumeroVeiculo = *patch.NumeroVeiculo
	}
	if patch.Placa != nil {
		s.report.Placa = *patch.Placa
	}
	if patch.MarcaModelo != nil {
		s.report.MarcaModelo = *patch.MarcaModelo
	}
	if patch.Cor != nil {
		s.report.Cor = *patch.Cor
	}
	if patch.AnoFabricacao != nil {
		s.report.AnoFabricacao = *patch.AnoFabricacao
	}
	if patch.LocalInfracao != nil {
		s.report.LocalInfracao = *patch.LocalInfracao
	}
	if patch.DescricaoFato != nil {
		s.report.DescricaoFato = *patch.DescricaoFato
	}
	if patch.Latitude != nil {
		s.report.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		s.report.Longitude = *patch.Longitude
	}
}

// PrepareSave stamps identity and status for a local save and returns the
// snapshot to persist.
func (s *Session) PrepareSave(attachmentNames []string) model.AutoInfracao {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.report.ID == uuid.Nil {
		s.report.ID = uuid.New()
	}
	if s.report.CreatedAt.IsZero() {
		s.report.CreatedAt = time.Now()
	}
	s.report.AttachmentNames = append([]string(nil), attachmentNames...)
	s.report.Situacao = model.ReportStatusDraft
	return s.snapshotLocked()
}

// PrepareSubmit stamps identity like PrepareSave but leaves the status
// untouched; the caller flips it only after the protocol call succeeds.
func (s *Session) PrepareSubmit(attachmentNames []string) model.AutoInfracao {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.report.ID == uuid.Nil {
		s.report.ID = uuid.New()
	}
	if s.report.CreatedAt.IsZero() {
		s.report.CreatedAt = time.Now()
	}
	s.report.AttachmentNames = append([]string(nil), attachmentNames...)
	return s.snapshotLocked()
}

// ApplySubmitted records a successful protocol: adopts the server-assigned
// number and flips the status.
func (s *Session) ApplySubmitted(numero string) model.AutoInfracao {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report.Numero = numero
	s.report.Situacao = model.ReportStatusSubmitted
	return s.snapshotLocked()
}

func (s *Session) BaseState() TierState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base
}

func (s *Session) ScopedState() TierState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoped
}

func (s *Session) MarkBase(state TierState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = state
}

func (s *Session) MarkScoped(state TierState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scoped = state
}

// BeginOp marks the session busy for a save or submit. A second call before
// EndOp reports false and the caller must not run concurrently.
func (s *Session) BeginOp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *Session) EndOp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}
