package domain

// FieldPatch é uma edição de campo endereçada por caminho com ponto
// (ex: "totals.gross_amount"). Source identifica a origem da edição.
//
// A semântica do patch (merge/replace, validação) pertence ao serviço externo.
type FieldPatch struct {
	Path   string `json:"path"`
	Value  any    `json:"value"`
	Source string `json:"source"`
}

// RecalculateRequest dispara o recálculo de limites para um conjunto de documentos.
type RecalculateRequest struct {
	TenantID string   `json:"tenant_id"`
	Year     int      `json:"year"`
	DocIDs   []string `json:"doc_ids"`
}

// PresignRequest pede uma credencial curta de upload. O corpo da resposta não é inspecionado.
type PresignRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	TenantID    string `json:"tenant_id"`
}
