package domain

import "time"

// DocumentClassification is the closed enum of document classes produced by
// C5. The union of both upstream enum copies; unrecognised values coerce to
// Outro rather than failing the batch.
type DocumentClassification string

const (
	ClassCertificadoDeRegularidade DocumentClassification = "CERTIFICADO_DE_REGULARIDADE"
	ClassCAEPF                    DocumentClassification = "CAEPF"
	ClassDeclaracaoDeResidencia    DocumentClassification = "DECLARACAO_DE_RESIDENCIA"
	ClassCNIS                     DocumentClassification = "CNIS"
	ClassTermoDeRepresentacao      DocumentClassification = "TERMO_DE_REPRESENTACAO"
	ClassProcuracao               DocumentClassification = "PROCURACAO"
	ClassGPSEComprovante           DocumentClassification = "GPS_E_COMPROVANTE"
	ClassBiometria                 DocumentClassification = "BIOMETRIA"
	ClassComprovanteResidencia     DocumentClassification = "COMPROVANTE_RESIDENCIA"
	ClassDocumentoIdentidade       DocumentClassification = "DOCUMENTO_IDENTIDADE"
	ClassCIN                       DocumentClassification = "CIN"
	ClassCPF                       DocumentClassification = "CPF"
	ClassREAP                      DocumentClassification = "REAP"
	ClassOutro                     DocumentClassification = "OUTRO"
)

var validClassifications = map[DocumentClassification]bool{
	ClassCertificadoDeRegularidade: true,
	ClassCAEPF:                     true,
	ClassDeclaracaoDeResidencia:    true,
	ClassCNIS:                      true,
	ClassTermoDeRepresentacao:      true,
	ClassProcuracao:                true,
	ClassGPSEComprovante:           true,
	ClassBiometria:                 true,
	ClassComprovanteResidencia:     true,
	ClassDocumentoIdentidade:       true,
	ClassCIN:                       true,
	ClassCPF:                       true,
	ClassREAP:                      true,
	ClassOutro:                     true,
}

// CoerceClassification maps any unrecognised classification string to the
// sentinel Outro value, per the enum-union resolution of the migration
// history this domain reconciles.
func CoerceClassification(v string) DocumentClassification {
	c := DocumentClassification(v)
	if validClassifications[c] {
		return c
	}
	return ClassOutro
}

// AllowedUploadMimetypes is the closed set C5 accepts for a blob.
var AllowedUploadMimetypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":       true,
	"image/png":        true,
	"image/tiff":       true,
}

// Document belongs to exactly one Solicitation and is mutated by C5 only
// (creation, then classification).
type Document struct {
	ID             string                   `json:"id"`
	SolicitationID string                   `json:"solicitation_id"`
	S3Key          string                   `json:"s3_key"`
	Mimetype       string                   `json:"mimetype"`
	FileName       string                   `json:"file_name"`
	UploadedBy     string                   `json:"uploaded_by"`
	UploadedAt     time.Time                `json:"uploaded_at"`
	Classification *DocumentClassification `json:"classification,omitempty"`
	Confidence     *float64                 `json:"confidence,omitempty"`
}

// DocumentExtraction is at-most-one per Document, upserted by C6.
type DocumentExtraction struct {
	DocumentID   string                 `json:"document_id"`
	DocumentType string                 `json:"document_type"`
	Payload      map[string]interface{} `json:"payload"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// EligibilityStatus is the closed verdict enum produced by C7.
type EligibilityStatus string

const (
	EligibilityApto    EligibilityStatus = "apto"
	EligibilityNaoApto EligibilityStatus = "nao_apto"
)

// EligibilityResult is at-most-one per Solicitation, upserted by C7.
type EligibilityResult struct {
	SolicitationID string            `json:"solicitation_id"`
	Status         EligibilityStatus `json:"status"`
	ScoreText      string            `json:"score_text"`
	PendingItems   []string          `json:"pending_items,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
