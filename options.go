package futon

import (
	"github.com/go-playground/validator/v10"

	"github.com/go-kivik/futon/chttp"
)

var validate = validator.New()

func validationError(err error) error {
	if err == nil {
		return nil
	}
	return &chttp.RequestError{Op: "validate", Err: err}
}

// UpdateMode controls whether a view is brought up to date before it is read.
type UpdateMode string

// Accepted UpdateMode values.
const (
	UpdateTrue  UpdateMode = "true"
	UpdateFalse UpdateMode = "false"
	UpdateLazy  UpdateMode = "lazy"
)

// ViewQueryParameters are the options of a view query. They are sent as the
// JSON body of the request. Use NewViewQueryParameters for the defaults,
// which favor consistent reads.
type ViewQueryParameters struct {
	Conflicts       bool          `json:"conflicts"`
	Descending      bool          `json:"descending"`
	EndKey          interface{}   `json:"end_key,omitempty"`
	EndKeyDocID     string        `json:"end_key_doc_id,omitempty"`
	Group           bool          `json:"group"`
	GroupLevel      *int          `json:"group_level,omitempty" validate:"omitempty,min=0"`
	IncludeDocs     bool          `json:"include_docs"`
	Attachments     bool          `json:"attachments"`
	AttEncodingInfo bool          `json:"att_encoding_info"`
	InclusiveEnd    bool          `json:"inclusive_end"`
	Key             interface{}   `json:"key,omitempty"`
	Keys            []interface{} `json:"keys,omitempty"`
	Limit           *int          `json:"limit,omitempty" validate:"omitempty,min=0"`
	Reduce          bool          `json:"reduce"`
	Skip            int           `json:"skip" validate:"min=0"`
	Sorted          bool          `json:"sorted"`
	Stable          bool          `json:"stable"`
	StartKey        interface{}   `json:"start_key,omitempty"`
	StartKeyDocID   string        `json:"start_key_doc_id,omitempty"`
	Update          UpdateMode    `json:"update,omitempty" validate:"omitempty,oneof=true false lazy"`
	UpdateSeq       bool          `json:"update_seq"`
}

// NewViewQueryParameters returns the default parameters.
func NewViewQueryParameters() *ViewQueryParameters {
	return &ViewQueryParameters{
		Sorted: true,
		Update: UpdateTrue,
	}
}

// Validate checks the parameters before they are sent.
func (p *ViewQueryParameters) Validate() error {
	return validationError(validate.Struct(p))
}

// DatabaseCreationParams are the query parameters of a database creation.
type DatabaseCreationParams struct {
	// Q is the number of shards. The server default applies when nil.
	Q *int `form:"q,omitempty" validate:"omitempty,min=1"`
	// N is the number of replicas. The server default applies when nil.
	N           *int `form:"n,omitempty" validate:"omitempty,min=1"`
	Partitioned bool `form:"partitioned"`
}

// PartitionedDatabase returns parameters for a partitioned database.
func PartitionedDatabase() DatabaseCreationParams {
	return DatabaseCreationParams{Partitioned: true}
}

// Validate checks the parameters before they are sent.
func (p DatabaseCreationParams) Validate() error {
	return validationError(validate.Struct(p))
}

// viewParams returns p, or the defaults if p is nil, after validation.
func viewParams(p *ViewQueryParameters) (*ViewQueryParameters, error) {
	if p == nil {
		return NewViewQueryParameters(), nil
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
