package semob

import "autuacao-mobile/internal/model"

// PreAuto is one element of the batch-shaped protocol payload. Field names
// and casing follow the backend contract exactly.
type PreAuto struct {
	IDFuncionario         int     `json:"idFuncionario"`
	IDPermissao           int     `json:"idPermissao"`
	IDInfracao            int     `json:"idInfracao"`
	DataAutuacao          string  `json:"dataAutuacao"`
	HoraAutuacao          string  `json:"horaAutuacao"`
	LocalAutuacao         string  `json:"localAutuacao"`
	Observacao            string  `json:"observacao"`
	DataCadastramentoAuto string  `json:"dataCadastramentoAuto"`
	IDPreposto            int     `json:"idPreposto"`
	IDLinha               int     `json:"idLinha"`
	IDPermVei             int     `json:"idPermVei"`
	Serie                 *string `json:"serie"`
	IDTipoAuto            *int    `json:"idTipoAuto"`
	UsuarioWeb            string  `json:"usuarioWeb"`
	Placa                 string  `json:"placa"`
	NumeroVeiculo         string  `json:"numeroVeiculo"`
	NumeroRegPreposto     string  `json:"numeroRegPreposto"`
	NomePreposto          string  `json:"nomePreposto"`
	CdLinha               string  `json:"cdLinha"`
	DenominacaoLinha      string  `json:"denominacaoLinha"`
	ModeloVeiculo         string  `json:"modeloVeiculo"`
	AnoVeiculo            int     `json:"anoVeiculo"`
	CorVeiculo            string  `json:"corVeiculo"`
	CienciaInfrator       *bool   `json:"cienciaInfrator"`
	IDLocalidade          int     `json:"idLocalidade"`
	Latitude              float64 `json:"Latitude"`
	Longitude             float64 `json:"Longitude"`
	LatitudeImagem        float64 `json:"LatitudeImagem"`
	LongitudeImagem       float64 `json:"LongitudeImagem"`
}

// Documento carries the acting user's identity on a protocol request.
type Documento struct {
	IDUsuario  int    `json:"IdUsuario"`
	UsuarioWeb string `json:"usuarioWeb"`
}

// BuildPreAuto maps a report plus the acting inspector onto the wire shape.
func BuildPreAuto(report model.AutoInfracao, principal model.Principal) PreAuto {
	return PreAuto{
		IDFuncionario:         principal.IDFuncionario,
		IDPermissao:           report.IDPermissao,
		IDInfracao:            report.IDInfracao,
		DataAutuacao:          report.DataInfracao,
		HoraAutuacao:          report.HoraInfracao,
		LocalAutuacao:         report.LocalInfracao,
		Observacao:            report.DescricaoFato,
		DataCadastramentoAuto: report.CreatedAt.Format("2006-01-02"),
		IDPreposto:            report.IDPreposto,
		IDLinha:               report.IDLinha,
		IDPermVei:             report.IDPermVei,
		UsuarioWeb:            principal.Username,
		Placa:                 report.Placa,
		NumeroVeiculo:         report.NumeroVeiculo,
		NumeroRegPreposto:     report.NumeroPreposto,
		NomePreposto:          report.NomePreposto,
		CdLinha:               report.CodigoLinha,
		DenominacaoLinha:      report.DenominacaoLinha,
		ModeloVeiculo:         report.MarcaModelo,
		AnoVeiculo:            report.AnoFabricacao,
		CorVeiculo:            report.Cor,
		IDLocalidade:          report.IDLocalidade,
		Latitude:              report.Latitude,
		Longitude:             report.Longitude,
		LatitudeImagem:        report.Latitude,
		LongitudeImagem:       report.Longitude,
	}
}
