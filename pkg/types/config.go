package types

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultBaseURL is the NCBI E-utilities root.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-affiliations/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RetryConfig controls the fixed retry loop around every E-utilities request.
type RetryConfig struct {
	// MaxAttempts is the total number of tries per request, first included (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts" validate:"min=1"`

	// Delay is the pause before each retry. No pause precedes the first attempt.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay" validate:"min=0"`
}

// QueryConfig describes what to search for and which titles to keep.
type QueryConfig struct {
	// Terms is the free-text part of the PubMed query.
	Terms string `json:"terms" yaml:"terms" mapstructure:"terms" validate:"required"`

	// PublicationTypes are OR-combined "[Publication Type]" constraints.
	PublicationTypes []string `json:"publication_types" yaml:"publication_types" mapstructure:"publication_types" validate:"dive,required"`

	// YearFrom and YearTo bound the publication year, both inclusive.
	YearFrom int `json:"year_from" yaml:"year_from" mapstructure:"year_from" validate:"min=1800,max=2200"`
	YearTo   int `json:"year_to" yaml:"year_to" mapstructure:"year_to" validate:"gtefield=YearFrom,max=2200"`

	// Keywords are matched case-insensitively against article titles.
	// An article is kept when any keyword matches.
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords" validate:"min=1,dive,required"`
}

// HarvestConfig holds every setting for one harvest run.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities root; esearch.fcgi and efetch.fcgi hang off it.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// APIKey is the NCBI API key. It is never read from or written to config files.
	APIKey string `json:"-" yaml:"-" mapstructure:"-" validate:"required"`

	// Tool and Email identify the caller to NCBI (optional).
	Tool  string `json:"tool,omitempty" yaml:"tool,omitempty" mapstructure:"tool"`
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`

	// BatchSize is the number of ids per efetch request (default 200).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size" validate:"min=1"`

	// Delay is the pause between search pages and between fetch batches.
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay" validate:"min=0"`

	// MaxResults caps pagination: a page is requested only while its offset
	// is below this value.
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results" validate:"min=1"`

	// RetMax is the esearch page size (default 500).
	RetMax int `json:"retmax" yaml:"retmax" mapstructure:"retmax" validate:"min=1,max=10000"`

	Retry RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
	Query QueryConfig `json:"query" yaml:"query" mapstructure:"query"`
}

// DefaultHarvestConfig returns the settings used when neither the config
// file nor flags override them.
func DefaultHarvestConfig() HarvestConfig {
	return HarvestConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   60 * time.Second,
			UserAgent: "pubmed-affiliations/0.1",
		},
		BaseURL:    DefaultBaseURL,
		Tool:       "pubmed-affiliations",
		BatchSize:  200,
		Delay:      340 * time.Millisecond,
		MaxResults: 10000,
		RetMax:     500,
		Retry: RetryConfig{
			MaxAttempts: 3,
			Delay:       time.Second,
		},
		Query: QueryConfig{
			Terms:            "gene regulation",
			PublicationTypes: []string{"Journal Article", "Review"},
			YearFrom:         2015,
			YearTo:           2024,
			Keywords:         []string{"gene"},
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration before any request is made.
func (c HarvestConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid harvest config: %w", err)
	}
	return nil
}
