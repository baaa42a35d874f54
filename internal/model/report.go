package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "DRAFT"
	ReportStatusSubmitted ReportStatus = "SUBMITTED"
)

const ReportTipoSTPC = "STPC"

// AutoInfracao is the violation report being edited. Denormalized display
// fields (nome/codigo/placa...) are copies taken at selection time and are
// cleared together with their owning id.
type AutoInfracao struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Numero       string    `gorm:"type:varchar(32)" json:"numero"`
	Tipo         string    `gorm:"type:varchar(16);not null" json:"tipo"`
	OrdemServico string    `gorm:"type:varchar(64)" json:"ordem_servico"`
	DataInfracao string    `gorm:"type:varchar(10);not null" json:"data_infracao"`
	HoraInfracao string    `gorm:"type:varchar(5)" json:"hora_infracao"`

	IDPermissao   int    `gorm:"column:id_permissao" json:"id_permissao"`
	SiglaOperador string `gorm:"type:varchar(16)" json:"sigla_operador"`
	NomeOperador  string `gorm:"type:varchar(255)" json:"nome_operador"`
	SiglaServico  string `gorm:"type:varchar(16)" json:"sigla_servico"`

	IDPermVei     int    `gorm:"column:id_perm_vei" json:"id_perm_vei"`
	NumeroVeiculo string `gorm:"type:varchar(16)" json:"numero_veiculo"`
	Placa         string `gorm:"type:varchar(16)" json:"placa"`
	MarcaModelo   string `gorm:"type:varchar(64)" json:"marca_modelo"`
	Cor           string `gorm:"type:varchar(32)" json:"cor"`
	AnoFabricacao int    `json:"ano_fabricacao"`

	IDPreposto     int    `gorm:"column:id_preposto" json:"preposto_id"`
	NomePreposto   string `gorm:"type:varchar(255)" json:"nome_preposto"`
	NumeroPreposto string `gorm:"type:varchar(32)" json:"numero_preposto"`

	IDLinha          int    `gorm:"column:id_linha" json:"linha_id"`
	CodigoLinha      string `gorm:"type:varchar(16)" json:"codigo_linha"`
	DenominacaoLinha string `gorm:"type:varchar(255)" json:"denominacao_linha"`

	IDLocalidade         int     `gorm:"column:id_localidade" json:"id_localidade"`
	RegiaoAdministrativa string  `gorm:"type:varchar(128)" json:"regiao_administrativa"`
	LocalInfracao        string  `gorm:"type:varchar(255)" json:"local_infracao"`
	Latitude             float64 `json:"latitude"`
	Longitude            float64 `json:"longitude"`

	IDInfracao    int    `gorm:"column:id_infracao" json:"infracao_id"`
	DescricaoFato string `gorm:"type:text" json:"descricao_fato"`

	Situacao        ReportStatus `gorm:"type:varchar(16);not null;default:'DRAFT'" json:"situacao"`
	CreatedAt       time.Time    `json:"created_at"`
	SavedAt         time.Time    `gorm:"index:idx_autos_saved_at,sort:desc" json:"saved_at"`
	AttachmentNames []string     `gorm:"serializer:json" json:"attachment_names"`
}

func (AutoInfracao) TableName() string {
	return "autos_infracao"
}

func (a *AutoInfracao) BeforeSave(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ClearOperator resets the operator selection and everything scoped by it.
func (a *AutoInfracao) ClearOperator() {
	a.IDPermissao = 0
	a.SiglaOperador = ""
	a.NomeOperador = ""
	a.SiglaServico = ""
	a.ClearVehicle()
	a.ClearPreposto()
	a.ClearLinha()
}

func (a *AutoInfracao) ClearVehicle() {
	a.IDPermVei = 0
	a.NumeroVeiculo = ""
	a.Placa = ""
	a.MarcaModelo = ""
	a.Cor = ""
	a.AnoFabricacao = 0
}

func (a *AutoInfracao) ClearPreposto() {
	a.IDPreposto = 0
	a.NomePreposto = ""
	a.NumeroPreposto = ""
}

func (a *AutoInfracao) ClearLinha() {
	a.IDLinha = 0
	a.CodigoLinha = ""
	a.DenominacaoLinha = ""
}

func (a *AutoInfracao) ClearLocalidade() {
	a.IDLocalidade = 0
	a.RegiaoAdministrativa = ""
}
