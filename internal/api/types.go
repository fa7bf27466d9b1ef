package api

import (
	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/randomizer"
	"github.com/MJE43/gbwild/internal/store"
)

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types
const (
	// Request validation errors
	ErrTypeInvalidParams = "invalid_params"
	ErrTypeRomTooLarge   = "rom_too_large"

	// Cartridge errors
	ErrTypeUnrecognizedRom = "unrecognized_rom"
	ErrTypeUnknownSpecies  = "unknown_species"

	// History errors
	ErrTypeRunNotFound = "run_not_found"

	// System errors
	ErrTypeTableLength        = "table_length_mismatch"
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryRom        ErrorCategory = "rom"
	CategoryHistory    ErrorCategory = "history"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidParams, ErrTypeRomTooLarge:
		return CategoryValidation
	case ErrTypeUnrecognizedRom, ErrTypeUnknownSpecies:
		return CategoryRom
	case ErrTypeRunNotFound:
		return CategoryHistory
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// GamesResponse lists the supported cartridges.
type GamesResponse struct {
	Games         []game.Spec `json:"games"`
	Generations   []string    `json:"generations"`
	EngineVersion string      `json:"engine_version"`
}

// InspectResponse describes an uploaded cartridge.
type InspectResponse struct {
	Report        *randomizer.Report `json:"report"`
	Size          string             `json:"size"`
	EngineVersion string             `json:"engine_version"`
}

// RunResponse is one history entry with its tables.
type RunResponse struct {
	Run           *store.Run          `json:"run"`
	Tables        []store.TableRecord `json:"tables"`
	EngineVersion string              `json:"engine_version"`
}
