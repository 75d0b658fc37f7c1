// Package contract defines the versioned wire envelope around fused search
// responses. Consumers that persist or replay payloads rely on the strict
// discriminator/version checks here; schema changes require a new version and
// an explicitly registered migration, never silent coercion.
package contract

import (
	"time"

	"github.com/mohammad-safakhou/searchfusion/models"
)

// Kind is the fixed discriminator literal for fused search payloads.
const Kind = "fusion_search_results"

// CurrentVersion is the only version Validate accepts.
const CurrentVersion = 1

// Envelope is the versioned wire wrapper around a SearchResponse.
type Envelope struct {
	Kind        string                `json:"kind"`
	Version     int                   `json:"version"`
	Payload     models.SearchResponse `json:"payload"`
	GeneratedAt string                `json:"generatedAt"`
}

// Wrap builds an envelope for a fused response, stamped with the current
// version and generation time.
func Wrap(resp models.SearchResponse) Envelope {
	return Envelope{
		Kind:        Kind,
		Version:     CurrentVersion,
		Payload:     resp,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
