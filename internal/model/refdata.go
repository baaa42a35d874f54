package model

// Reference records as returned by the SEMOB backend. They are typed here,
// at the client boundary, so untyped payloads never reach the form state.

type FuncionarioDetalhe struct {
	IDUsuario       int    `json:"IdUsuario"`
	IDFuncionario   int    `json:"IdFuncionario"`
	NomeFuncionario string `json:"NomeFuncionario"`
	Email           string `json:"email,omitempty"`
}

type Operadora struct {
	IDPermissao   int    `json:"idPermissao"`
	NomeOperadora string `json:"nomeOperadora"`
	SiglaServico  string `json:"siglaServico"`
}

type Veiculo struct {
	ID            int    `json:"id"`
	Placa         string `json:"placa"`
	NumeroVeiculo string `json:"numeroVeiculo"`
	ModeloVeiculo string `json:"modeloVeiculo"`
	CorVeiculo    string `json:"corVeiculo"`
	AnoVeiculo    int    `json:"anoVeiculo"`
}

type Linha struct {
	IDLinha          int    `json:"idLinha"`
	NomeOperadora    string `json:"nomeOperadora"`
	CodigoLinha      string `json:"codigoLinha"`
	DenominacaoLinha string `json:"denominacaoLinha"`
}

type Preposto struct {
	IDPreposto     int    `json:"idPreposto"`
	NomeOperadora  string `json:"NomeOperadora"`
	NomePreposto   string `json:"NomePreposto"`
	NumeroRegistro string `json:"numeroRegistro"`
}

type Infracao struct {
	IDInfracao        int    `json:"idInfracao"`
	CodigoInfracao    int    `json:"codigoInfracao"`
	DescricaoInfracao string `json:"descricaoInfracao"`
}

type Localidade struct {
	ID        int    `json:"id"`
	Descricao string `json:"descricao"`
}
