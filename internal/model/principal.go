package model

// Principal is the authenticated inspector. It is issued into the local
// session token after login and persisted so the app restores the session
// without network access.
type Principal struct {
	IDUsuario       int    `json:"id_usuario"`
	IDFuncionario   int    `json:"id_funcionario"`
	NomeFuncionario string `json:"nome_funcionario"`
	Username        string `json:"username"`
	Sigla           string `json:"sigla"`
}

func (p Principal) IsAuthenticated() bool {
	return p.IDUsuario != 0
}
